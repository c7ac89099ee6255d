package generator

import (
	"strconv"

	"github.com/codebuddy/server/internal/domain"
)

// fallbackQuestions holds canned questions per domain, used when the model is
// unavailable. The "general" table serves unrecognized domains.
var fallbackQuestions = map[string][]string{
	"frontend": {
		"How would you center an element horizontally and vertically using flexbox?",
		"Explain the difference between the DOM and the virtual DOM.",
		"What happens from the moment you type a URL until the page renders?",
	},
	"backend": {
		"How do you design a REST endpoint to be idempotent?",
		"What are the trade-offs between SQL and document databases?",
		"How would you handle a slow downstream dependency in an API server?",
	},
	"algorithms": {
		"How would you find the first non-repeating character in a string?",
		"Explain the difference between a BFS and a DFS traversal and when you would pick each.",
		"How would you detect a cycle in a linked list?",
	},
	"system-design": {
		"How would you design a URL shortening service?",
		"How would you add caching to a read-heavy service, and what invalidation strategy would you use?",
		"How would you scale a WebSocket service to millions of concurrent connections?",
	},
	"general": {
		"Tell me about a technically challenging project you worked on recently.",
		"How do you approach debugging a problem you have never seen before?",
		"Walk me through how you would review a teammate's pull request.",
	},
}

// fallbackQuestion picks the first canned question for the domain not already
// asked, wrapping back to the start when all are exhausted.
func fallbackQuestion(dom string, prior []string) string {
	table, ok := fallbackQuestions[dom]
	if !ok {
		table = fallbackQuestions["general"]
	}
	asked := make(map[string]bool, len(prior))
	for _, q := range prior {
		asked[q] = true
	}
	for _, q := range table {
		if !asked[q] {
			return q
		}
	}
	return table[len(prior)%len(table)]
}

// fallbackEvaluation is the canned evaluation bundle. The score is a coarse
// length heuristic so short throwaway answers do not grade the same as a real
// attempt.
func fallbackEvaluation(dom, answer string) domain.Evaluation {
	score := 50
	switch {
	case len(answer) >= 400:
		score = 75
	case len(answer) >= 120:
		score = 65
	case len(answer) < 20:
		score = 35
	}
	return domain.Evaluation{
		Feedback: "Thanks for your answer. A reviewer is not available right now, " +
			"so here is general guidance: structure your answer around the problem, " +
			"your approach, and the trade-offs you considered.",
		Score:        score,
		Strengths:    []string{"Engaged with the question"},
		Improvements: []string{"Add concrete examples", "Discuss trade-offs explicitly"},
	}
}

// fallbackSummary is the canned end-of-session summary.
func fallbackSummary(history []domain.Message) domain.SessionSummary {
	answers := 0
	for _, msg := range history {
		if msg.Speaker == domain.SpeakerUser {
			answers++
		}
	}
	return domain.SessionSummary{
		Summary: "Interview completed successfully. Detailed feedback is unavailable " +
			"right now; review the transcript to revisit your answers.",
		OverallScore:        70,
		TechnicalScore:      70,
		CommunicationScore:  70,
		Strengths:           []string{"Completed the interview", "Answered " + plural(answers, "question")},
		AreasForImprovement: []string{"Practice explaining your reasoning out loud"},
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
