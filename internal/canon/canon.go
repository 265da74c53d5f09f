// Package canon builds canonical, collision-free cache keys from query
// parameters. The canonical form is a versioned, pipe-delimited string of
// sorted k=v pairs with delimiter bytes percent-escaped, so distinct
// parameter combinations can never serialize to the same text (no ambiguity
// between {a:"1",b:"2"} and {a:"1|b=2"}). The key is the SHA-256 hex digest
// of that form: deterministic across processes and filesystem-safe.
package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Version is folded into every canonical form. Bump it when the meaning of
// a parameter changes; old and new entries then live under disjoint keys.
const Version = "v1"

// Pair is one query parameter.
type Pair struct {
	K, V string
}

var escaper = strings.NewReplacer("%", "%25", "|", "%7C", "=", "%3D")

// String returns the canonical text form: "v1|k=v|k=v" with pairs sorted by
// key (ties broken by value). Empty values are kept; an absent parameter and
// an empty one are distinct inputs and the caller decides which to pass.
func String(pairs ...Pair) string {
	s := make([]Pair, len(pairs))
	copy(s, pairs)
	sort.Slice(s, func(i, j int) bool {
		if s[i].K != s[j].K {
			return s[i].K < s[j].K
		}
		return s[i].V < s[j].V
	})

	var b strings.Builder
	b.WriteString(Version)
	for _, p := range s {
		b.WriteByte('|')
		b.WriteString(escaper.Replace(p.K))
		b.WriteByte('=')
		b.WriteString(escaper.Replace(p.V))
	}
	return b.String()
}

// Key returns the lowercase hex SHA-256 digest of the canonical form.
func Key(pairs ...Pair) string {
	sum := sha256.Sum256([]byte(String(pairs...)))
	return hex.EncodeToString(sum[:])
}
