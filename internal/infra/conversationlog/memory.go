package conversationlog

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yanqian/cogniwell/internal/domain/companion"
	"github.com/yanqian/cogniwell/pkg/util"
)

// MemoryLog stores companion exchanges in-memory.
type MemoryLog struct {
	mu      sync.RWMutex
	entries map[uuid.UUID][]companion.ConversationEntry
}

// NewMemoryLog constructs the in-memory conversation log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{entries: make(map[uuid.UUID][]companion.ConversationEntry)}
}

// Append stores an exchange.
func (l *MemoryLog) Append(_ context.Context, entry companion.ConversationEntry) (companion.ConversationEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = util.NowUTC()
	}
	l.entries[entry.UserID] = append(l.entries[entry.UserID], entry)
	return entry, nil
}

// ListRecent walks newest first and stops at the first entry that would exceed either budget.
func (l *MemoryLog) ListRecent(_ context.Context, userID uuid.UUID, maxTokens, maxEntries int) ([]companion.ConversationEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := l.entries[userID]
	selected := make([]companion.ConversationEntry, 0)
	total := 0
	for i := len(entries) - 1; i >= 0; i-- {
		if maxEntries > 0 && len(selected) >= maxEntries {
			break
		}
		tokens := max(entries[i].TokenCount, 0)
		if maxTokens > 0 && total+tokens > maxTokens {
			break
		}
		total += tokens
		selected = append(selected, entries[i])
	}
	reverse(selected)
	return selected, nil
}

func reverse(entries []companion.ConversationEntry) {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
}

var _ companion.ConversationLog = (*MemoryLog)(nil)
