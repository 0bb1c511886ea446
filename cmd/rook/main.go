// Rook is an interpreter for a small Rust-flavored scripting language. It
// runs scripts, provides a REPL with persistent history and checkpoints,
// serves notebooks and editors, and translates scripts to Rust.
package main

import (
	"os"

	"src.rook.sh/pkg/buildinfo"
	"src.rook.sh/pkg/kernel"
	"src.rook.sh/pkg/lsp"
	"src.rook.sh/pkg/pprof"
	"src.rook.sh/pkg/prog"
	"src.rook.sh/pkg/shell"
	"src.rook.sh/pkg/transpile"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(
			&pprof.Program{}, &buildinfo.Program{}, &lsp.Program{},
			&kernel.Program{}, &transpile.Program{}, &shell.Program{})))
}
