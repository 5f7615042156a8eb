// Package names keeps bar titles unique among their siblings.
package names

import (
	"fmt"

	"tableflip.dev/barswitch/pkg/tree"
)

// Resolve returns candidate when it is not taken, otherwise the first
// candidate_N (N starting at 1) that is free.
func Resolve(existing []string, candidate string) string {
	taken := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		taken[t] = struct{}{}
	}
	if _, ok := taken[candidate]; !ok {
		return candidate
	}
	for n := 1; ; n++ {
		next := fmt.Sprintf("%s_%d", candidate, n)
		if _, ok := taken[next]; !ok {
			return next
		}
	}
}

// ResolveSibling resolves candidate against siblings, ignoring selfID so a
// node never collides with its own title.
func ResolveSibling(siblings []tree.Node, selfID, candidate string) string {
	existing := make([]string, 0, len(siblings))
	for _, s := range siblings {
		if s.ID != selfID {
			existing = append(existing, s.Title)
		}
	}
	return Resolve(existing, candidate)
}
