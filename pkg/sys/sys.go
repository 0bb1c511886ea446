// Package sys provides system utilities with the same API across OSes.
package sys

import (
	"os"
	"runtime"
	"time"

	"github.com/mattn/go-isatty"
)

// IsATTY determines whether the given file is a terminal.
func IsATTY(file *os.File) bool {
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Usage is a snapshot of the resources consumed by the current process.
type Usage struct {
	// CPU is user plus system CPU time.
	CPU time.Duration
	// MaxRSS is the peak resident set size in bytes, or 0 if unknown.
	MaxRSS int64
}

// ProcessUsage returns the resource usage of the current process.
func ProcessUsage() Usage { return processUsage() }

// OSName returns the name of the operating system kernel, such as "Linux" or
// "Darwin". It falls back to runtime.GOOS when the kernel cannot be queried.
func OSName() string {
	if name := osName(); name != "" {
		return name
	}
	return runtime.GOOS
}

// DumpStack returns the stack traces of all goroutines.
func DumpStack() string {
	buf := make([]byte, 8192)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			return string(buf[:n])
		}
		buf = make([]byte, len(buf)*2)
	}
}
