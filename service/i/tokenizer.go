package i

import (
	"time"
)

// Tokenizer issues and verifies the bearer tokens handed to operators.
type Tokenizer interface {
	// Generate signs claims into a token that expires after expTime.
	Generate(claims map[string]interface{}, expTime time.Duration) (string, error)

	// Decode validates a token and returns its claims.
	Decode(token string) (map[string]interface{}, error)
}
