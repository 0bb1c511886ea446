//go:build !unix

package sys

import "time"

var start = time.Now()

// processUsage approximates CPU time with wall time since start on platforms
// without getrusage.
func processUsage() Usage {
	return Usage{CPU: time.Since(start)}
}

func osName() string { return "" }
