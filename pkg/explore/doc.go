// Package explore runs independent schedule candidates concurrently.
//
// This package includes:
//   - Explorer: runs every Candidate on its own deep copy of a base plan
//   - Option: configuration options for explorers
//   - Config: YAML-loadable settings for concurrency, verification and timeouts
//   - Best: picks the best successful outcome by a caller-supplied ordering
//
// Candidates never share a Line or Job, so the timing engine runs in each
// of them without locking. Deciding what a candidate does, and how plans
// are scored, is left to the caller.
package explore
