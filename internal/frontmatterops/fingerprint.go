// Package frontmatterops builds on the frontmatter package: content fingerprints
// for build reports and document assembly for generated starter pages.
package frontmatterops

import (
	"errors"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
)

// Fingerprint computes the canonical fingerprint of a page source.
//
// Canonicalization:
//   - the fingerprint field itself is excluded
//   - fields are serialized as sorted YAML with LF newlines
//   - a single trailing newline is trimmed from the serialized YAML before hashing
func Fingerprint(fields map[string]any, body []byte) (string, error) {
	if fields == nil {
		return "", errors.New("fields map is nil")
	}

	forHash := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == mdfp.FingerprintField {
			continue
		}
		forHash[k] = v
	}

	serialized, err := frontmatter.SerializeYAML(forHash, frontmatter.Style{Newline: "\n"})
	if err != nil {
		return "", err
	}
	block := strings.TrimSuffix(string(serialized), "\n")
	return mdfp.CalculateFingerprintFromParts(block, string(body)), nil
}

// Changed reports whether a stored fingerprint differs from the current one.
// An empty previous value always counts as a change.
func Changed(previous, current string) bool {
	return strings.TrimSpace(previous) == "" || strings.TrimSpace(previous) != strings.TrimSpace(current)
}
