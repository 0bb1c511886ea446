//go:build !unix

package shell

import "os"

var extraSignals []os.Signal

func signalName(sig os.Signal) string { return sig.String() }

func handleSignal(os.Signal, *os.File) {}
