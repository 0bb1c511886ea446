package shell

import (
	"os"
	"os/signal"

	"src.rook.sh/pkg/eval"
)

func initSignal(fds [3]*os.File) func() {
	if len(extraSignals) == 0 {
		return func() {}
	}
	sigCh := make(chan os.Signal, 8)
	signal.Notify(sigCh, extraSignals...)
	go func() {
		for sig := range sigCh {
			logger.Println("signal", signalName(sig))
			handleSignal(sig, fds[2])
		}
	}()
	return func() {
		signal.Stop(sigCh)
		close(sigCh)
	}
}

// interruptOnSignal interrupts the evaluation running in ev when the process
// gets an interrupt signal, until the returned function is called.
func interruptOnSignal(ev *eval.Evaler) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-sigCh:
				logger.Println("interrupting evaluation")
				ev.Interrupt()
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
