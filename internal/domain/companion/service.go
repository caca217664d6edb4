package companion

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yanqian/cogniwell/internal/domain/health"
	apperrors "github.com/yanqian/cogniwell/pkg/errors"
	"github.com/yanqian/cogniwell/pkg/metrics"
)

// MaxMessageChars bounds a single user message.
const MaxMessageChars = 2000

// MessageInput is a message sent to the companion.
type MessageInput struct {
	Message string `json:"message" binding:"required"`
}

// Reply is the companion answer together with the logged exchange.
type Reply struct {
	Text              string             `json:"text"`
	Sentiment         Sentiment          `json:"sentiment"`
	Source            Source             `json:"source"`
	Entry             ConversationEntry  `json:"entry"`
	Persisted         bool               `json:"persisted"`
	UsedHistoryTokens int                `json:"usedHistoryTokens"`
	Usage             metrics.TokenUsage `json:"usage"`
}

// HistoryResponse lists logged exchanges, oldest first.
type HistoryResponse struct {
	Entries []ConversationEntry `json:"entries"`
}

// Service runs the companion conversation.
type Service interface {
	Reply(ctx context.Context, userID uuid.UUID, input MessageInput) (Reply, error)
	History(ctx context.Context, userID uuid.UUID, limit int) (HistoryResponse, error)
}

// Dependencies groups the collaborators of the companion service. LLM may be nil.
type Dependencies struct {
	Detections health.DetectionRepository
	Scores     health.ScoreRepository
	Log        ConversationLog
	LLM        Responder
	Tokens     TokenCounter
}

type service struct {
	cfg        Config
	detections health.DetectionRepository
	scores     health.ScoreRepository
	log        ConversationLog
	llm        Responder
	fallback   Responder
	tokens     TokenCounter
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs the companion service.
func NewService(cfg Config, deps Dependencies, logger *slog.Logger) Service {
	tokens := deps.Tokens
	if tokens == nil {
		tokens = EstimateCounter{}
	}
	return &service{
		cfg:        cfg.withDefaults(),
		detections: deps.Detections,
		scores:     deps.Scores,
		log:        deps.Log,
		llm:        deps.LLM,
		fallback:   CannedResponder{},
		tokens:     tokens,
		logger:     logger.With("component", "companion.service"),
		now:        time.Now,
	}
}

func (s *service) Reply(ctx context.Context, userID uuid.UUID, input MessageInput) (Reply, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return Reply{}, apperrors.Invalid("message cannot be empty")
	}
	if utf8.RuneCountInString(message) > MaxMessageChars {
		return Reply{}, apperrors.Invalid("message is too long")
	}

	now := s.now()
	bundle, usedTokens, err := s.buildContext(ctx, userID, message, now)
	if err != nil {
		return Reply{}, err
	}

	generated, source := s.respond(ctx, userID, bundle, message)
	text := strings.TrimSpace(generated.Text)
	if text == "" {
		text = cannedDefault
	}

	entry := ConversationEntry{
		ID:         uuid.New(),
		UserID:     userID,
		Message:    message,
		Response:   text,
		Sentiment:  bundle.DetectedSentiment,
		Summary:    summarize(message, bundle.DetectedSentiment, s.cfg.SummaryChars),
		Source:     source,
		TokenCount: s.tokens.Count(message) + s.tokens.Count(text),
		CreatedAt:  now,
	}
	reply := Reply{
		Text:              text,
		Sentiment:         bundle.DetectedSentiment,
		Source:            source,
		Entry:             entry,
		UsedHistoryTokens: usedTokens,
		Usage:             generated.Usage,
	}
	saved, err := s.log.Append(ctx, entry)
	if err != nil {
		s.logger.Warn("conversation log append failed", "user_id", userID, "error", err)
		return reply, nil
	}
	reply.Entry = saved
	reply.Persisted = true
	return reply, nil
}

func (s *service) respond(ctx context.Context, userID uuid.UUID, bundle ContextBundle, message string) (Generated, Source) {
	if s.llm != nil {
		out, err := s.llm.Respond(ctx, bundle, message)
		if err == nil && strings.TrimSpace(out.Text) != "" {
			return out, SourceLLM
		}
		s.logger.Warn("llm reply unavailable, using canned response", "user_id", userID, "error", err)
	}
	out, _ := s.fallback.Respond(ctx, bundle, message)
	return out, SourceCanned
}

func (s *service) buildContext(ctx context.Context, userID uuid.UUID, message string, now time.Time) (ContextBundle, int, error) {
	bundle := ContextBundle{
		DetectedSentiment:           DetectSentiment(message),
		RecentConversationSummaries: []string{},
	}

	detections, err := s.detections.Query(ctx, health.Filter{
		UserID: userID,
		From:   now.AddDate(0, 0, -7),
		To:     now,
		Limit:  s.cfg.RecentDetections,
		Order:  health.Descending,
	})
	if err != nil {
		return ContextBundle{}, 0, apperrors.Upstream("failed to load recent detections", err)
	}
	scores, err := s.scores.Query(ctx, health.Filter{
		UserID: userID,
		Limit:  s.cfg.RecentScores,
		Order:  health.Descending,
	})
	if err != nil {
		return ContextBundle{}, 0, apperrors.Upstream("failed to load recent scores", err)
	}
	bundle.RecentDetections = nonNil(detections)
	bundle.RecentScores = nonNil(scores)

	history, err := s.log.ListRecent(ctx, userID, s.cfg.MaxHistoryTokens, s.cfg.MaxHistoryEntries)
	if err != nil {
		s.logger.Warn("conversation history unavailable", "user_id", userID, "error", err)
		return bundle, 0, nil
	}
	used := 0
	for _, entry := range history {
		bundle.RecentConversationSummaries = append(bundle.RecentConversationSummaries, entry.Summary)
		if entry.TokenCount > 0 {
			used += entry.TokenCount
		}
	}
	return bundle, used, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID, limit int) (HistoryResponse, error) {
	if limit < 0 {
		return HistoryResponse{}, apperrors.Invalid("limit cannot be negative")
	}
	if limit == 0 {
		limit = 50
	}
	entries, err := s.log.ListRecent(ctx, userID, 0, limit)
	if err != nil {
		return HistoryResponse{}, apperrors.Upstream("failed to load conversation history", err)
	}
	return HistoryResponse{Entries: nonNil(entries)}, nil
}

func summarize(message string, sentiment Sentiment, maxChars int) string {
	text := strings.Join(strings.Fields(message), " ")
	if utf8.RuneCountInString(text) > maxChars {
		runes := []rune(text)
		text = strings.TrimSpace(string(runes[:maxChars])) + "..."
	}
	return string(sentiment) + ": " + text
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
