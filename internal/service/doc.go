// Package service contains the core pipeline operations: generating and
// upserting embeddings for changed tasks, answering related-task queries,
// detecting duplicates within a project, and the backfill sweep that repairs
// tasks with no embedding record.
//
// Services depend on small consumer-side interfaces (task reader, embedding
// store, oracles, event emitter) so each collaborator can be mocked
// independently in tests.
package service
