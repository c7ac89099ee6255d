// Package generator produces interview questions, answer evaluations and
// session summaries. Every operation is total: upstream failures are absorbed
// by a deterministic fallback and never reach the caller as an error.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codebuddy/server/internal/adapter/llm"
	"github.com/codebuddy/server/internal/domain"
	"github.com/codebuddy/server/internal/metrics"
)

// Generator wraps the LLM client with prompts and fallbacks.
type Generator struct {
	client  llm.Client
	model   string
	metrics *metrics.Metrics
}

// New creates a generator over the given client. metrics may be nil.
func New(client llm.Client, model string, m *metrics.Metrics) *Generator {
	return &Generator{client: client, model: model, metrics: m}
}

const systemPrompt = "You are a senior engineer conducting a mock technical interview. " +
	"Be concise, specific and encouraging."

// Question produces the next interview question for the domain. Questions in
// prior are avoided where the model cooperates; the fallback table skips them
// outright.
func (g *Generator) Question(ctx context.Context, dom string, prior []string, difficulty domain.Difficulty) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Ask one %s-difficulty interview question about %s.", difficulty, dom)
	if len(prior) > 0 {
		sb.WriteString(" Do not repeat these questions:\n")
		for _, q := range prior {
			sb.WriteString("- " + q + "\n")
		}
	}
	sb.WriteString("Reply with the question only, no preamble.")

	resp, err := g.client.CreateChatCompletion(ctx, &llm.ChatCompletionRequest{
		Model: g.model,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: sb.String()},
		},
	})
	text := strings.TrimSpace(resp.Text())
	if err != nil || text == "" {
		g.recordFallback("question", err)
		return fallbackQuestion(dom, prior)
	}
	return text
}

// evaluationPayload is the structured output requested from the model.
type evaluationPayload struct {
	Feedback     string   `json:"feedback"`
	Score        int      `json:"score"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	FollowUp     string   `json:"follow_up"`
}

// Evaluate scores an answer against the question that prompted it. Scoring
// comes from the model's structured output, validated and clamped; the
// heuristic bundle is used only when the model fails or returns garbage.
func (g *Generator) Evaluate(ctx context.Context, question, answer, dom string, difficulty domain.Difficulty) domain.Evaluation {
	prompt := fmt.Sprintf(
		"Evaluate this %s interview answer.\nQuestion: %s\nAnswer: %s\n"+
			`Respond with JSON: {"feedback": string, "score": 0-100, "strengths": [string], "improvements": [string], "follow_up": string}. `+
			"follow_up may be empty if no follow-up is warranted.",
		dom, question, answer)

	resp, err := g.client.CreateChatCompletion(ctx, &llm.ChatCompletionRequest{
		Model: g.model,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: map[string]interface{}{"type": "json_object"},
	})
	if err != nil {
		g.recordFallback("evaluate", err)
		return fallbackEvaluation(dom, answer)
	}

	var payload evaluationPayload
	if err := json.Unmarshal([]byte(extractJSON(resp.Text())), &payload); err != nil || payload.Feedback == "" {
		g.recordFallback("evaluate", err)
		return fallbackEvaluation(dom, answer)
	}
	return domain.Evaluation{
		Feedback:     payload.Feedback,
		Score:        clampScore(payload.Score),
		Strengths:    payload.Strengths,
		Improvements: payload.Improvements,
		FollowUp:     strings.TrimSpace(payload.FollowUp),
	}
}

// summaryPayload is the structured summary requested from the model.
type summaryPayload struct {
	Summary             string   `json:"summary"`
	OverallScore        int      `json:"overall_score"`
	TechnicalScore      int      `json:"technical_score"`
	CommunicationScore  int      `json:"communication_score"`
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
}

// Summarize produces end-of-session feedback over the whole transcript.
func (g *Generator) Summarize(ctx context.Context, history []domain.Message, dom string) domain.SessionSummary {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Summarize this %s mock interview and score the candidate.\nTranscript:\n", dom)
	for _, msg := range history {
		fmt.Fprintf(&sb, "%s: %s\n", msg.Speaker, msg.Content)
	}
	sb.WriteString(`Respond with JSON: {"summary": string, "overall_score": 0-100, "technical_score": 0-100, "communication_score": 0-100, "strengths": [string], "areas_for_improvement": [string]}.`)

	resp, err := g.client.CreateChatCompletion(ctx, &llm.ChatCompletionRequest{
		Model: g.model,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: sb.String()},
		},
		ResponseFormat: map[string]interface{}{"type": "json_object"},
	})
	if err != nil {
		g.recordFallback("summarize", err)
		return fallbackSummary(history)
	}

	var payload summaryPayload
	if err := json.Unmarshal([]byte(extractJSON(resp.Text())), &payload); err != nil || payload.Summary == "" {
		g.recordFallback("summarize", err)
		return fallbackSummary(history)
	}
	return domain.SessionSummary{
		Summary:             payload.Summary,
		OverallScore:        clampScore(payload.OverallScore),
		TechnicalScore:      clampScore(payload.TechnicalScore),
		CommunicationScore:  clampScore(payload.CommunicationScore),
		Strengths:           payload.Strengths,
		AreasForImprovement: payload.AreasForImprovement,
	}
}

func (g *Generator) recordFallback(op string, err error) {
	if err != nil && err != llm.ErrDisabled {
		log.Warn().Str("op", op).Err(err).Msg("llm call failed, using fallback")
	}
	if g.metrics != nil {
		g.metrics.GeneratorFallbacks.WithLabelValues(op).Inc()
	}
}

// extractJSON tolerates models that wrap JSON in markdown fences.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
	}
	return s
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
