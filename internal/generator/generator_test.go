package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codebuddy/server/internal/adapter/llm"
	"github.com/codebuddy/server/internal/domain"
)

func TestQuestionFromModel(t *testing.T) {
	client := &llm.MockClient{Responses: []string{"What is a goroutine?"}}
	g := New(client, "mock", nil)

	q := g.Question(context.Background(), "backend", nil, domain.DifficultyMedium)
	if q != "What is a goroutine?" {
		t.Fatalf("unexpected question: %q", q)
	}
	if len(client.Requests) != 1 {
		t.Fatalf("expected 1 llm call, got %d", len(client.Requests))
	}
}

func TestQuestionFallbackOnError(t *testing.T) {
	client := &llm.MockClient{Err: errors.New("boom")}
	g := New(client, "mock", nil)

	q := g.Question(context.Background(), "frontend", nil, domain.DifficultyEasy)
	if q == "" {
		t.Fatalf("expected a fallback question")
	}
	if q != fallbackQuestions["frontend"][0] {
		t.Fatalf("expected first frontend fallback, got %q", q)
	}
}

func TestQuestionFallbackSkipsPrior(t *testing.T) {
	client := &llm.MockClient{Err: llm.ErrDisabled}
	g := New(client, "mock", nil)

	prior := []string{fallbackQuestions["frontend"][0]}
	q := g.Question(context.Background(), "frontend", prior, domain.DifficultyEasy)
	if q != fallbackQuestions["frontend"][1] {
		t.Fatalf("expected second fallback, got %q", q)
	}
}

func TestQuestionFallbackUnknownDomain(t *testing.T) {
	client := &llm.MockClient{Err: llm.ErrDisabled}
	g := New(client, "mock", nil)

	q := g.Question(context.Background(), "underwater-basket-weaving", nil, domain.DifficultyHard)
	if q != fallbackQuestions["general"][0] {
		t.Fatalf("expected general fallback, got %q", q)
	}
}

func TestEvaluateParsesStructuredOutput(t *testing.T) {
	client := &llm.MockClient{Responses: []string{
		`{"feedback": "Solid answer.", "score": 130, "strengths": ["clear"], "improvements": ["examples"], "follow_up": "What about edge cases?"}`,
	}}
	g := New(client, "mock", nil)

	eval := g.Evaluate(context.Background(), "Q", "A", "backend", domain.DifficultyMedium)
	if eval.Feedback != "Solid answer." {
		t.Fatalf("unexpected feedback: %q", eval.Feedback)
	}
	if eval.Score != 100 {
		t.Fatalf("expected score clamped to 100, got %d", eval.Score)
	}
	if eval.FollowUp != "What about edge cases?" {
		t.Fatalf("unexpected follow up: %q", eval.FollowUp)
	}
}

func TestEvaluateToleratesMarkdownFences(t *testing.T) {
	client := &llm.MockClient{Responses: []string{
		"```json\n{\"feedback\": \"ok\", \"score\": 60, \"strengths\": [], \"improvements\": []}\n```",
	}}
	g := New(client, "mock", nil)

	eval := g.Evaluate(context.Background(), "Q", "A", "backend", domain.DifficultyMedium)
	if eval.Feedback != "ok" || eval.Score != 60 {
		t.Fatalf("unexpected evaluation: %+v", eval)
	}
}

func TestEvaluateFallbackOnGarbage(t *testing.T) {
	client := &llm.MockClient{Responses: []string{"not json at all"}}
	g := New(client, "mock", nil)

	eval := g.Evaluate(context.Background(), "Q", "a reasonable answer about indexes and trade-offs in databases, with examples covering both reads and writes", "backend", domain.DifficultyMedium)
	if eval.Feedback == "" {
		t.Fatalf("fallback must produce feedback")
	}
	if eval.Score <= 0 || eval.Score > 100 {
		t.Fatalf("fallback score out of range: %d", eval.Score)
	}
}

func TestEvaluateFallbackOnError(t *testing.T) {
	client := &llm.MockClient{Err: errors.New("timeout")}
	g := New(client, "mock", nil)

	eval := g.Evaluate(context.Background(), "Q", "short", "frontend", domain.DifficultyEasy)
	if eval.Feedback == "" || len(eval.Improvements) == 0 {
		t.Fatalf("expected well-formed fallback bundle, got %+v", eval)
	}
}

func TestSummarizeParsesStructuredOutput(t *testing.T) {
	client := &llm.MockClient{Responses: []string{
		`{"summary": "Good interview.", "overall_score": 82, "technical_score": 80, "communication_score": 85, "strengths": ["depth"], "areas_for_improvement": ["pacing"]}`,
	}}
	g := New(client, "mock", nil)

	history := []domain.Message{
		{Speaker: domain.SpeakerAI, Content: "Q1", CreatedAt: time.Now()},
		{Speaker: domain.SpeakerUser, Content: "A1", CreatedAt: time.Now()},
	}
	summary := g.Summarize(context.Background(), history, "backend")
	if summary.Summary != "Good interview." || summary.OverallScore != 82 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestSummarizeFallbackOnError(t *testing.T) {
	client := &llm.MockClient{Err: errors.New("quota exceeded")}
	g := New(client, "mock", nil)

	history := []domain.Message{
		{Speaker: domain.SpeakerAI, Content: "Q1"},
		{Speaker: domain.SpeakerUser, Content: "A1"},
		{Speaker: domain.SpeakerAI, Content: "F1"},
	}
	summary := g.Summarize(context.Background(), history, "backend")
	if summary.Summary == "" {
		t.Fatalf("fallback must produce a summary")
	}
	if summary.OverallScore == 0 {
		t.Fatalf("fallback must score the session")
	}
}
