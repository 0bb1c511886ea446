package replay

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// RecordingVersion is the version of the recording format written by
// Recorder.
const RecordingVersion = "1.0.0"

// InputMode tells how an input was entered.
type InputMode string

// Input modes.
const (
	Interactive InputMode = "interactive"
	Paste       InputMode = "paste"
	File        InputMode = "file"
	Script      InputMode = "script"
)

// Recording is a session recorded for replay.
type Recording struct {
	Version     string      `yaml:"version"`
	Metadata    Metadata    `yaml:"metadata"`
	Environment Environment `yaml:"environment"`
	Timeline    []Event     `yaml:"timeline"`
}

// Metadata describes a recording.
type Metadata struct {
	SessionID string    `yaml:"session_id"`
	CreatedAt time.Time `yaml:"created_at"`
	Tags      []string  `yaml:"tags,omitempty"`
}

// Environment is what a replay needs to reproduce the session.
type Environment struct {
	Seed      uint64 `yaml:"seed"`
	TimeoutMS int64  `yaml:"timeout_ms"`
	MemoryMB  int    `yaml:"memory_mb"`
	MaxDepth  int    `yaml:"max_depth"`
}

// Event is one entry of the timeline. Exactly one of Input, Output and State
// is set. Time is the logical clock of the recorder.
type Event struct {
	ID     uint64       `yaml:"id"`
	Time   uint64       `yaml:"time"`
	Input  *InputEvent  `yaml:"input,omitempty"`
	Output *OutputEvent `yaml:"output,omitempty"`
	State  *StateEvent  `yaml:"state,omitempty"`
}

// InputEvent is an input entered by the user.
type InputEvent struct {
	Text string    `yaml:"text"`
	Mode InputMode `yaml:"mode"`
}

// OutputEvent is the result of an input.
type OutputEvent struct {
	Value  string `yaml:"value,omitempty"`
	Error  string `yaml:"error,omitempty"`
	Stdout string `yaml:"stdout,omitempty"`
}

// StateEvent records the state of the session after an input.
type StateEvent struct {
	StateHash string        `yaml:"state_hash"`
	Usage     ResourceUsage `yaml:"resource_usage"`
}

// Recorder appends events to a Recording.
type Recorder struct {
	rec  Recording
	next uint64
}

// NewRecorder starts a recording of a session with the given seed.
func NewRecorder(id string, env Environment) *Recorder {
	return &Recorder{
		rec: Recording{
			Version:     RecordingVersion,
			Metadata:    Metadata{SessionID: id, CreatedAt: time.Now().UTC().Truncate(time.Second)},
			Environment: env,
		},
		next: 1,
	}
}

func (r *Recorder) add(e Event) uint64 {
	e.ID = r.next
	e.Time = r.next
	r.next++
	r.rec.Timeline = append(r.rec.Timeline, e)
	return e.ID
}

// RecordInput records an input and returns the ID of its event.
func (r *Recorder) RecordInput(text string, mode InputMode) uint64 {
	return r.add(Event{Input: &InputEvent{Text: text, Mode: mode}})
}

// RecordResult records the output of an input followed by the state of the
// session after it.
func (r *Recorder) RecordResult(res Result) {
	out := &OutputEvent{Stdout: res.Stdout}
	if res.Err != nil {
		out.Error = res.Err.Error()
	} else {
		out.Value = res.Output()[len(res.Stdout):]
	}
	r.add(Event{Output: out})
	r.add(Event{State: &StateEvent{StateHash: res.StateHash, Usage: res.Usage}})
}

// Recording returns the recording so far.
func (r *Recorder) Recording() *Recording { return &r.rec }

// Save writes the recording as YAML.
func (rec *Recording) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rec); err != nil {
		return err
	}
	return enc.Close()
}

// LoadRecording reads a recording written by Save.
func LoadRecording(r io.Reader) (*Recording, error) {
	var rec Recording
	if err := yaml.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("cannot load recording: %w", err)
	}
	if rec.Version != RecordingVersion {
		return nil, fmt.Errorf("unsupported recording version %q", rec.Version)
	}
	return &rec, nil
}

// Report is the result of replaying a recording.
type Report struct {
	Passed      bool
	Total       int
	Successful  int
	Divergences []Divergence
}

// Validate replays the inputs of a recording on a fresh deterministic
// session with the recorded seed, and compares each output and state hash
// with the recorded ones. Divergence indices count inputs.
func Validate(rec *Recording) Report {
	s := New(rec.Environment.Seed)
	s.Evaler.Limits.Timeout = time.Duration(rec.Environment.TimeoutMS) * time.Millisecond
	s.Evaler.Limits.MemoryCap = rec.Environment.MemoryMB << 20
	s.Evaler.Limits.MaxDepth = rec.Environment.MaxDepth

	var report Report
	var last Result
	input := -1
	for _, e := range rec.Timeline {
		switch {
		case e.Input != nil:
			input++
			report.Total++
			last = s.Execute(e.Input.Text)
		case e.Output != nil && input >= 0:
			if want, got := recordedOutput(e.Output), last.Output(); want != got {
				report.Divergences = append(report.Divergences,
					Divergence{OutputDivergence, input, want, got})
			} else {
				report.Successful++
			}
		case e.State != nil && input >= 0:
			if e.State.StateHash != last.StateHash {
				report.Divergences = append(report.Divergences,
					Divergence{StateDivergence, input, e.State.StateHash, last.StateHash})
			}
		}
	}
	report.Passed = len(report.Divergences) == 0
	return report
}

func recordedOutput(o *OutputEvent) string {
	if o.Error != "" {
		return o.Stdout + "error: " + o.Error
	}
	return o.Stdout + o.Value
}
