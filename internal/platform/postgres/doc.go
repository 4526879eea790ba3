// Package postgres provides PostgreSQL implementations of the store
// interfaces using the pgx stdlib driver through database/sql. Stores accept
// either a connection pool or a transaction via store.DBTX, so services can
// compose multi-row effects inside a single transaction with
// store.RunInTransaction and row-level locks.
package postgres
