// Package retry provides the exponential backoff policy shared by the remote
// API client and the workflow stages.
//
// A Policy describes how many retries follow the first attempt and how long to
// wait between them. The delay before retry n (zero based) is
//
//	Base * Multiplier^n
//
// so the defaults (Base 1s, Multiplier 2, MaxRetries 3) wait 1s, 2s and 4s.
// Policies are converted into cenkalti/backoff values with jitter disabled,
// which keeps the sequence deterministic and testable.
package retry
