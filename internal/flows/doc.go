// Package flows contains the transport-free authentication and session
// validation state machines. Dependencies arrive as function values so
// the root package can map classified failures onto its error taxonomy
// without import cycles.
package flows
