// Package events defines the event envelope and payloads exchanged between
// the task-management core and the similarity pipeline, together with the
// Emitter/Handler contracts and an in-memory emitter used for single-process
// deployments and tests.
package events
