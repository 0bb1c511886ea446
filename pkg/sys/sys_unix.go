//go:build unix

package sys

import (
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

func processUsage() Usage {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return Usage{}
	}
	cpu := time.Duration(ru.Utime.Nano() + ru.Stime.Nano())
	maxRSS := int64(ru.Maxrss)
	// Linux reports ru_maxrss in KiB; Darwin reports bytes.
	if runtime.GOOS != "darwin" {
		maxRSS *= 1024
	}
	return Usage{CPU: cpu, MaxRSS: maxRSS}
}

func osName() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uts.Sysname[:])
}
