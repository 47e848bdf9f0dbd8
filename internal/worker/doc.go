// Package worker provides the background task processing runtime for the
// similarity pipeline: a persistent task queue, a pool of workers, crash
// recovery for interrupted tasks, and the concrete task types that regenerate
// embeddings and run duplicate detection.
package worker
