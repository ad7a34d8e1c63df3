// Package debug holds internal invariant checks and trace logging that
// cost nothing in regular builds.
//
// Build with -tags assert to turn Assert into a panicking check, and with
// -tags debug to send Log output to stderr through log/slog. Misuse by
// callers of memkit (double frees, use after Destroy) is not an internal
// invariant and panics regardless of tags.
package debug
