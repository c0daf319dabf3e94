// internal/vgrid/scheduler/scheduler.go
package scheduler

import "time"

// Scheduler serializes grid work onto a single logical thread.
//
// Post runs a task as soon as possible, in order. RequestFrame coalesces every
// request made under the same key before the next frame boundary into one run
// of the most recent task. AfterFunc runs a task after a delay; the returned
// stop function cancels it and reports whether it was still pending.
type Scheduler interface {
	Post(task func())
	RequestFrame(key string, task func())
	AfterFunc(d time.Duration, task func()) (stop func() bool)
}
