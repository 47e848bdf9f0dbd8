// Package postgres implements the store interfaces on PostgreSQL. Vector
// columns use the pgvector extension; nearest-neighbor queries order by
// cosine distance.
package postgres
