package queue

import (
	"fmt"

	"foodhub/internal/state"
)

// FormatToken renders a token id like "CHA-001". Numbers are zero padded to
// three digits; wider numbers print in full, so 1000 becomes "CHA-1000".
func FormatToken(code string, n int) state.Token {
	return state.Token(fmt.Sprintf("%s-%03d", code, n))
}
