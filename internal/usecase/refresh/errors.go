// Package refresh implements the C6 refresh orchestrator: driving the
// parser, store, and enricher for every active source in a region
// under a bounded fan-out and a per-source deadline.
package refresh

import "errors"

// ErrNoActiveSources is returned by Refresh when no active source is
// registered for the requested region label.
var ErrNoActiveSources = errors.New("no active sources for region")
