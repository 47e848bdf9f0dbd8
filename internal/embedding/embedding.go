package embedding

import "context"

// Embedder defines the interface for turning text into a fixed-length
// vector. This interface is the boundary between the application core and
// external embedding providers, following the hexagonal architecture pattern.
//
// Implementations must not retry internally: the event-driven consumers rely
// on transport redelivery, and the backfill reconciler applies its own
// backoff policy at the call site.
type Embedder interface {
	// Embed returns a vector of exactly the requested dimensionality for the
	// given text. It fails with ErrTransientFailure-wrapped errors on
	// provider outages and ErrInvalidResponse on malformed output.
	Embed(ctx context.Context, text string, dimensions int) ([]float32, error)
}

// Verdict is the outcome of a pairwise duplicate judgment.
type Verdict string

// Possible classification verdicts.
const (
	VerdictMatch   Verdict = "match"
	VerdictNoMatch Verdict = "no_match"

	// VerdictInconclusive is returned when the classifier produced something
	// other than the two canonical answer tokens. It is not an error: the
	// candidate is skipped, not treated as a match.
	VerdictInconclusive Verdict = "inconclusive"
)

// Classifier judges whether two short text snippets describe the same
// underlying work item. It is a separate capability from Embedder even when
// both are backed by the same provider, so either can be swapped or mocked
// independently.
type Classifier interface {
	// Classify compares two task summaries and returns a verdict. Malformed
	// or empty model output maps to VerdictInconclusive, never to an error.
	Classify(ctx context.Context, textA, textB string) (Verdict, error)
}
