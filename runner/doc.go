// Package runner executes batches of independent I/O-bound tasks with a fixed
// concurrency cap.
//
// Results are returned in submission order regardless of completion order, so
// callers may zip them positionally against the inputs that produced them.
// Tasks own their failure policy: a task that fails returns a sentinel value
// (typically a nil pointer) and the runner passes it through untouched.
//
// A Runner's cap is shared by every batch submitted to it. Tasks must not
// submit nested batches to the same Runner.
package runner
