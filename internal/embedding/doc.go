// Package embedding defines the oracle boundary of the similarity pipeline:
// the Embedder and Classifier interfaces and their error taxonomy. Concrete
// providers live under internal/platform.
package embedding
