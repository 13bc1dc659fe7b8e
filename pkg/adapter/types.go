package adapter

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Usage captures normalized token usage across providers.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the normalized output of one provider call.
type Response struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Hash      string    `json:"hash"`
	CreatedAt time.Time `json:"created_at"`
	Usage     *Usage    `json:"usage,omitempty"`
}

// NewResponse builds a Response with a fresh id, UTC timestamp, and
// content hash.
func NewResponse(content, provider, model string) *Response {
	r := &Response{
		ID:        uuid.NewString(),
		Content:   content,
		Provider:  provider,
		Model:     model,
		CreatedAt: time.Now().UTC(),
	}
	r.Hash = r.computeHash()
	return r
}

// computeHash fingerprints content, provider, and model. Sixteen hex
// chars is enough to spot duplicate outputs in analytics.
func (r *Response) computeHash() string {
	h := sha256.New()
	h.Write([]byte(r.Content))
	h.Write([]byte(r.Provider))
	h.Write([]byte(r.Model))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
