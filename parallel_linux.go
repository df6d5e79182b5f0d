//go:build linux

package foldsum

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinWorker locks the calling goroutine to an OS thread and binds that
// thread to one CPU. The thread stays locked for the worker's lifetime; the
// runtime discards it when the goroutine exits, matching the
// fresh-threads-per-call dispatch model.
func pinWorker(i int) error {
	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(i % runtime.NumCPU())
	return unix.SchedSetaffinity(0, &set)
}
