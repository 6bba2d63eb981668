package build

import "errors"

// Sentinel errors for request validation. They are wrapped with context at
// the call site.
var (
	ErrNoConfig = errors.New("sitebuilder: config required")
	ErrCanceled = errors.New("sitebuilder: build canceled")
)
