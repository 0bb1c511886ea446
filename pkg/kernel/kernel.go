// Package kernel runs an interpreter session for a notebook server.
//
// The notebook server talks to the kernel with JSON-RPC 2.0 over stdin and
// stdout, each message preceded by a Content-Length header. Every cell runs in
// the environment left by the cells before it; a failing cell leaves the
// environment untouched.
//
// Methods:
//
//	execute   {"code": "..."}                -> CellResult
//	complete  {"code": "...", "cursor": N}   -> {"matches": [...]}
//	snapshot  null                           -> {"checkpoint": {...}}
//	restore   {"checkpoint": {...}}          -> {"skipped": [...]}
//	reset     null                           -> null
//	interrupt null                           -> null
//	info      null                           -> KernelInfo
package kernel

import (
	"context"
	"io"
	"os"

	"github.com/sourcegraph/jsonrpc2"
	"src.rook.sh/pkg/env"
	"src.rook.sh/pkg/logutil"
	"src.rook.sh/pkg/prog"
)

var logger = logutil.GetLogger("[kernel] ")

// Program is the kernel subprogram.
type Program struct {
	run     bool
	session *prog.SessionFlags
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.run, "kernel", false, "run the notebook kernel instead of REPL")
	p.session = fs.Session()
}

func (p *Program) Run(fds [3]*os.File, _ []string) error {
	if !p.run {
		return prog.ErrNextProgram
	}
	settings, err := p.session.Settings()
	if err != nil {
		return err
	}
	serve(context.Background(), transport{fds[0], fds[1]}, settings)
	return nil
}

// serve runs a kernel on rwc until the connection is closed.
func serve(ctx context.Context, rwc io.ReadWriteCloser, settings env.Settings) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	k := newKernel(settings)
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.AsyncHandler(handler(k)))
	<-conn.DisconnectNotify()
	logger.Println("connection closed")
}

type transport struct{ in, out *os.File }

func (c transport) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c transport) Write(p []byte) (int, error) { return c.out.Write(p) }

func (c transport) Close() error {
	if err := c.in.Close(); err != nil {
		c.out.Close()
		return err
	}
	return c.out.Close()
}
