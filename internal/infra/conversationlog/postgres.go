package conversationlog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/cogniwell/internal/domain/companion"
	"github.com/yanqian/cogniwell/pkg/util"
)

// PostgresLog persists companion_conversations in Postgres.
type PostgresLog struct {
	pool *pgxpool.Pool
}

// NewPostgresLog constructs the adapter.
func NewPostgresLog(pool *pgxpool.Pool) *PostgresLog {
	return &PostgresLog{pool: pool}
}

// Append inserts an exchange.
func (l *PostgresLog) Append(ctx context.Context, entry companion.ConversationEntry) (companion.ConversationEntry, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = util.NowUTC()
	}
	_, err := l.pool.Exec(ctx, `
		INSERT INTO companion_conversations (id, user_id, message, response, sentiment, summary, source, token_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, entry.ID, entry.UserID, entry.Message, entry.Response, entry.Sentiment, entry.Summary, entry.Source, entry.TokenCount, entry.CreatedAt)
	if err != nil {
		return companion.ConversationEntry{}, err
	}
	return entry, nil
}

// ListRecent returns the newest exchanges that fit within the token and entry budgets, oldest first.
func (l *PostgresLog) ListRecent(ctx context.Context, userID uuid.UUID, maxTokens, maxEntries int) ([]companion.ConversationEntry, error) {
	limit := maxEntries
	if limit <= 0 {
		limit = 200
	}
	rows, err := l.pool.Query(ctx, `
		SELECT id, user_id, message, response, sentiment, summary, source, token_count, created_at
		FROM companion_conversations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collected := make([]companion.ConversationEntry, 0)
	total := 0
	for rows.Next() {
		var e companion.ConversationEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Message, &e.Response, &e.Sentiment, &e.Summary, &e.Source, &e.TokenCount, &e.CreatedAt); err != nil {
			return nil, err
		}
		tokens := max(e.TokenCount, 0)
		if maxTokens > 0 && total+tokens > maxTokens {
			break
		}
		total += tokens
		collected = append(collected, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	reverse(collected)
	return collected, nil
}

var _ companion.ConversationLog = (*PostgresLog)(nil)
