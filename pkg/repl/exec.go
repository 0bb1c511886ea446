package repl

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

// shellTimeout bounds a shell one-liner when the session has no timeout.
const shellTimeout = time.Minute

func (s *Session) shell(cmdline string) Output {
	if cmdline == "" {
		return message("Usage: !<command>")
	}
	timeout := s.rs.Evaler.Limits.Timeout
	if timeout <= 0 {
		timeout = shellTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdline)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	logger.Printf("running shell command %q", cmdline)
	err := cmd.Run()
	text := strings.TrimSuffix(stdout.String()+stderr.String(), "\n")
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		if text != "" {
			text += "\n"
		}
		return Output{Kind: Error, Err: err, Text: text + "shell: " + err.Error()}
	}
	return Output{Kind: Message, Text: text}
}
