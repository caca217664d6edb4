package companion

import (
	"context"
	"fmt"
	"strings"
)

type cannedRule struct {
	keywords []string
	reply    string
}

var cannedRules = []cannedRule{
	{
		keywords: []string{"forget", "forgot", "forgetful", "memory", "remember"},
		reply:    "Memory slips happen to everyone. A short daily recall exercise, like listing what you ate yesterday, keeps those pathways active.",
	},
	{
		keywords: []string{"lonely", "alone", "isolated"},
		reply:    "I'm sorry you're feeling alone. Reaching out to a friend or joining a group activity this week could really help.",
	},
	{
		keywords: []string{"sleep", "tired", "exhausted", "insomnia"},
		reply:    "Rest matters a lot for focus. Try keeping a regular bedtime and aim for at least seven hours tonight.",
	},
	{
		keywords: []string{"stress", "stressed", "anxious", "worried", "nervous", "overwhelmed"},
		reply:    "Let's slow down together. Breathe in for four counts, hold for four, and out for six. A few rounds can ease the tension.",
	},
	{
		keywords: []string{"exercise", "walk", "workout", "active"},
		reply:    "Moving your body is great for your brain too. Even a brisk twenty minute walk counts.",
	},
	{
		keywords: []string{"hello", "hi", "hey", "morning", "evening"},
		reply:    "Hello! It's good to hear from you. How are you feeling today?",
	},
}

const cannedDefault = "Thank you for sharing that with me. I'm here to listen. Would you like to tell me more about your day?"

// CannedResponder answers from keyword triggered templates without external calls.
type CannedResponder struct{}

// Respond picks the first rule whose keyword appears in the message. Questions about the
// score are answered from the most recent snapshot in the bundle.
func (CannedResponder) Respond(_ context.Context, bundle ContextBundle, message string) (Generated, error) {
	words := tokenize(message)
	if containsAny(words, "score", "scores", "result", "results") {
		if len(bundle.RecentScores) > 0 {
			latest := bundle.RecentScores[0]
			return Generated{Text: fmt.Sprintf("Your latest cognitive score is %d, which is in the %s range. Keep up with your plan activities to see how it develops.", latest.Score, latest.Status)}, nil
		}
		return Generated{Text: "You don't have a cognitive score yet. Complete a check-in and I can tell you how you're doing."}, nil
	}
	for _, rule := range cannedRules {
		if containsAny(words, rule.keywords...) {
			return Generated{Text: rule.reply}, nil
		}
	}
	return Generated{Text: cannedDefault}, nil
}

func containsAny(words []string, keywords ...string) bool {
	for _, w := range words {
		for _, k := range keywords {
			if strings.EqualFold(w, k) {
				return true
			}
		}
	}
	return false
}

var _ Responder = CannedResponder{}
