// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing the request state machine and
// catalog rules to remain independent of specific database technologies.
package store
