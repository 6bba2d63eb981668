// Package normalization maps loosely written configuration strings onto typed values.
package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// Normalizer converts trimmed, case-folded strings to values of T.
type Normalizer[T comparable] struct {
	values    map[string]T
	fallback  T
	validKeys []string
}

// NewNormalizer builds a normalizer over values. Unknown input maps to fallback.
func NewNormalizer[T comparable](values map[string]T, fallback T) *Normalizer[T] {
	n := &Normalizer[T]{values: make(map[string]T, len(values)), fallback: fallback}
	for k, v := range values {
		key := clean(k)
		n.values[key] = v
		n.validKeys = append(n.validKeys, key)
	}
	slices.Sort(n.validKeys)
	return n
}

// Normalize returns the value for raw, or the fallback when raw is unknown.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[clean(raw)]; ok {
		return v
	}
	return n.fallback
}

// Lookup returns the value for raw or an error listing the accepted keys.
func (n *Normalizer[T]) Lookup(raw string) (T, error) {
	if v, ok := n.values[clean(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %v", raw, n.validKeys)
}

// ValidKeys returns the accepted keys in sorted order.
func (n *Normalizer[T]) ValidKeys() []string {
	return slices.Clone(n.validKeys)
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
