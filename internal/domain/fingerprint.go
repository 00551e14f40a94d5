package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Fingerprint derives a stable identifier from the semantic inputs of a request.
// Candidates are part of the identity; their order is significant. Every field is
// length-prefixed, so no field content can mimic a boundary between fields.
func Fingerprint(req PromptRequest, candidates []int) string {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = strconv.Itoa(c)
	}

	h := sha256.New()
	for _, field := range []string{
		string(req.Domain),
		req.Model,
		req.SystemPrompt,
		req.UserPrompt,
		strings.Join(ids, ","),
	} {
		fmt.Fprintf(h, "%d:%s;", len(field), field)
	}
	return hex.EncodeToString(h.Sum(nil))
}
