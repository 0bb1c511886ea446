package repl

// history is a ring buffer of the most recent inputs.
type history struct {
	buf   []string
	start int
	n     int
}

func newHistory(size int) *history {
	if size <= 0 {
		size = 1000
	}
	return &history{buf: make([]string, size)}
}

func (h *history) add(s string) {
	i := (h.start + h.n) % len(h.buf)
	h.buf[i] = s
	if h.n < len(h.buf) {
		h.n++
	} else {
		h.start = (h.start + 1) % len(h.buf)
	}
}

// entries returns the inputs, oldest first.
func (h *history) entries() []string {
	out := make([]string, h.n)
	for i := range out {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

func (h *history) clear() { h.start, h.n = 0, 0 }
