package service

import (
	"log"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used to size history.
const DefaultEncoding = "cl100k_base"

// TokenCounter reports how many tokens a text occupies.
type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	encoding string
	once     sync.Once
	tke      *tiktoken.Tiktoken
}

// NewTokenCounter returns a counter backed by tiktoken. The encoding is loaded
// on first use; if it cannot be loaded the counter estimates instead.
func NewTokenCounter(encoding string) TokenCounter {
	return &tiktokenCounter{encoding: encoding}
}

func (c *tiktokenCounter) Count(text string) int {
	c.once.Do(func() {
		tke, err := tiktoken.GetEncoding(c.encoding)
		if err != nil {
			log.Printf("WARN: failed to load %s encoding, estimating token counts: %v", c.encoding, err)
			return
		}
		c.tke = tke
	})
	if c.tke == nil {
		return estimateTokens(text)
	}
	return len(c.tke.Encode(text, nil, nil))
}

// estimateTokens assumes roughly four characters per token.
func estimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}

// EstimateCounter counts tokens without loading any encoding.
type EstimateCounter struct{}

func (EstimateCounter) Count(text string) int {
	return estimateTokens(text)
}
