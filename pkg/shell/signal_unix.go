//go:build unix

package shell

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
	"src.rook.sh/pkg/sys"
)

var extraSignals = []os.Signal{syscall.SIGUSR1}

func signalName(sig os.Signal) string {
	if s, ok := sig.(syscall.Signal); ok {
		return unix.SignalName(s)
	}
	return sig.String()
}

func handleSignal(sig os.Signal, stderr *os.File) {
	switch sig {
	case syscall.SIGUSR1:
		fmt.Fprint(stderr, sys.DumpStack())
	}
}
