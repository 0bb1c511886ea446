package repl

import (
	"encoding/json"

	"src.rook.sh/pkg/replay"
)

// CellResult is the result of executing a notebook cell.
type CellResult struct {
	// Output is what the cell printed followed by its value, or the error
	// message when Success is false.
	Output    string `json:"output"`
	Success   bool   `json:"success"`
	StateHash string `json:"state_hash"`
	ElapsedNs int64  `json:"elapsed_ns"`
}

// ExecuteCell runs a notebook cell in the environment of the session. A
// failing cell leaves the bindings as they were before it.
func (s *Session) ExecuteCell(code string) CellResult {
	if s.recorder != nil {
		s.recorder.RecordInput(code, replay.Paste)
	}
	r := s.rs.Execute(code)
	if s.recorder != nil {
		s.recorder.RecordResult(r)
	}
	s.stats.evaluations++
	s.stats.total += r.Elapsed
	res := CellResult{Success: r.OK(), StateHash: r.StateHash, ElapsedNs: r.Elapsed.Nanoseconds()}
	if r.OK() {
		s.stats.successes++
		res.Output = r.Output()
	} else {
		res.Output = r.Stdout + RenderError(r.Err)
	}
	return res
}

// SnapshotJSON serializes a checkpoint of the session as JSON.
func (s *Session) SnapshotJSON() ([]byte, error) {
	return json.Marshal(s.rs.Checkpoint())
}

// RestoreJSON restores a checkpoint serialized by SnapshotJSON. It returns
// the names of the bindings whose values could not be restored.
func (s *Session) RestoreJSON(data []byte) ([]string, error) {
	var c replay.Checkpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return s.rs.Restore(c), nil
}
