// Package domain defines the core entities for partlens.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Job: one backend analysis task tracked through upload and completion
//   - Event: the normalised vocabulary produced by every transport adapter
//   - Selection: the set of input files for one submission
//   - Workflow: the upload endpoint and transport variant for a job
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
