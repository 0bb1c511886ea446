// Package pprof adds profiling support to the Rook program.
package pprof

import (
	"fmt"
	"os"
	"runtime/pprof"

	"src.rook.sh/pkg/prog"
)

// Program adds support for the -cpuprofile and -memprofile flags. It never
// runs by itself; it starts profiling and defers to the next program.
type Program struct {
	cpuProfile string
	memProfile string
}

func (p *Program) RegisterFlags(f *prog.FlagSet) {
	f.StringVar(&p.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	f.StringVar(&p.memProfile, "memprofile", "", "write heap profile to file on exit")
}

func (p *Program) Run(fds [3]*os.File, _ []string) error {
	var cleanups []func([3]*os.File)
	if f := create(fds, p.cpuProfile, "CPU profile"); f != nil {
		pprof.StartCPUProfile(f)
		cleanups = append(cleanups, func([3]*os.File) {
			pprof.StopCPUProfile()
			f.Close()
		})
	}
	if f := create(fds, p.memProfile, "heap profile"); f != nil {
		cleanups = append(cleanups, func([3]*os.File) {
			pprof.Lookup("heap").WriteTo(f, 0)
			f.Close()
		})
	}
	return prog.NextProgram(cleanups...)
}

// create creates a profile file, warning and returning nil on failure.
func create(fds [3]*os.File, path, what string) *os.File {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(fds[2], "Warning: cannot create %s: %v\n", what, err)
		fmt.Fprintf(fds[2], "Continuing without %s.\n", what)
		return nil
	}
	return f
}
