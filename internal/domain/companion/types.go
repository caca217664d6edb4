package companion

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/cogniwell/internal/domain/health"
	"github.com/yanqian/cogniwell/pkg/metrics"
)

// Sentiment is the mood detected in a user message.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
	SentimentAnxious  Sentiment = "anxious"
)

// Source names the collaborator that produced a reply.
type Source string

const (
	SourceLLM    Source = "llm"
	SourceCanned Source = "canned"
)

// ConversationEntry is one logged exchange with the companion.
type ConversationEntry struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"userId"`
	Message    string    `json:"message"`
	Response   string    `json:"response"`
	Sentiment  Sentiment `json:"sentiment"`
	Summary    string    `json:"summary"`
	Source     Source    `json:"source"`
	TokenCount int       `json:"tokenCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ContextBundle is everything the responder may draw on.
type ContextBundle struct {
	RecentDetections            []health.DetectionResult        `json:"recentDetections"`
	RecentScores                []health.CognitiveScoreSnapshot `json:"recentScores"`
	RecentConversationSummaries []string                        `json:"recentConversationSummaries"`
	DetectedSentiment           Sentiment                       `json:"detectedSentiment"`
}

// Generated is a responder output.
type Generated struct {
	Text  string
	Usage metrics.TokenUsage
}

// Responder turns a message and its context into reply text.
type Responder interface {
	Respond(ctx context.Context, bundle ContextBundle, message string) (Generated, error)
}

// ConversationLog persists exchanges.
type ConversationLog interface {
	Append(ctx context.Context, entry ConversationEntry) (ConversationEntry, error)
	// ListRecent returns the newest entries that fit both budgets, oldest first.
	// A non-positive budget is unbounded.
	ListRecent(ctx context.Context, userID uuid.UUID, maxTokens, maxEntries int) ([]ConversationEntry, error)
}

// TokenCounter measures text in model tokens.
type TokenCounter interface {
	Count(text string) int
}

// Config bounds the context bundle.
type Config struct {
	MaxHistoryEntries int
	MaxHistoryTokens  int
	RecentDetections  int
	RecentScores      int
	SummaryChars      int
}

func (c Config) withDefaults() Config {
	if c.MaxHistoryEntries <= 0 {
		c.MaxHistoryEntries = 10
	}
	if c.MaxHistoryTokens <= 0 {
		c.MaxHistoryTokens = 800
	}
	if c.RecentDetections <= 0 {
		c.RecentDetections = 10
	}
	if c.RecentScores <= 0 {
		c.RecentScores = 5
	}
	if c.SummaryChars <= 0 {
		c.SummaryChars = 120
	}
	return c
}
