package testutil

import (
	"fmt"

	"github.com/roach88/canopy/internal/store"
)

// SequenceTokens builds a deterministic token generator yielding
// "tok-01", "tok-02", ... up to n. Stores built with it produce
// byte-identical dispatch traces across runs, which golden snapshot
// comparison depends on.
func SequenceTokens(n int) *store.FixedGenerator {
	tokens := make([]string, n)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("tok-%02d", i+1)
	}
	return store.NewFixedGenerator(tokens...)
}

// RepeatingToken generates the same token every time, for scenarios
// where every dispatch should share one correlation token.
//
// Thread-safety: RepeatingToken is stateless and safe for concurrent use.
type RepeatingToken struct {
	token string
}

// NewRepeatingToken creates a repeating token generator. An empty token
// defaults to "test-token-default".
func NewRepeatingToken(token string) *RepeatingToken {
	if token == "" {
		token = "test-token-default"
	}
	return &RepeatingToken{token: token}
}

// Generate returns the fixed token.
//
// Implements store.TokenGenerator.
func (g *RepeatingToken) Generate() string {
	return g.token
}
