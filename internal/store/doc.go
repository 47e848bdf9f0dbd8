// Package store defines persistence interfaces and the shared error
// vocabulary used by the similarity pipeline. Concrete implementations live
// in internal/platform/postgres.
package store
