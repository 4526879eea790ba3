// Package task implements background task processing for the application.
//
// Tasks are persisted to the database before execution so that work queued
// shortly before a crash is recovered and re-run on the next startup. A
// fixed-size worker pool consumes tasks from a buffered channel; a monitor
// goroutine periodically resets tasks stuck in the processing state.
//
// The only task type today is RequestDecidedTask, which delivers a
// notification to a requester after a borrow or exchange request reaches a
// terminal status.
package task
