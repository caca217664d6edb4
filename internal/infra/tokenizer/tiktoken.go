package tokenizer

import (
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/yanqian/cogniwell/internal/domain/companion"
)

// DefaultEncoding is used when no encoding is configured.
const DefaultEncoding = "cl100k_base"

// TiktokenCounter counts tokens with a BPE encoding. The encoding is loaded on first use;
// when it cannot be loaded the counter falls back to companion.EstimateTokens.
type TiktokenCounter struct {
	encoding string
	logger   *slog.Logger

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewTiktokenCounter constructs a counter for the named encoding.
func NewTiktokenCounter(encoding string, logger *slog.Logger) *TiktokenCounter {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	return &TiktokenCounter{encoding: encoding, logger: logger.With("component", "tokenizer")}
}

// Count implements companion.TokenCounter.
func (c *TiktokenCounter) Count(text string) int {
	c.once.Do(c.load)
	if c.enc == nil || text == "" {
		return companion.EstimateTokens(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

func (c *TiktokenCounter) load() {
	enc, err := tiktoken.GetEncoding(c.encoding)
	if err != nil {
		c.logger.Warn("tiktoken encoding unavailable, estimating token counts", "encoding", c.encoding, "error", err)
		return
	}
	c.enc = enc
}

var _ companion.TokenCounter = (*TiktokenCounter)(nil)
