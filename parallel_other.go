//go:build !linux

package foldsum

// pinWorker is a no-op on platforms without thread affinity support.
func pinWorker(int) error { return nil }
