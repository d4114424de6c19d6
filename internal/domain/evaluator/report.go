package evaluator

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/okian/burstcov/internal/domain/model"
)

// Task levels reported in TaskFailure.Level.
const (
	LevelOrbit     = "orbit"
	LevelWindow    = "window"
	LevelPartition = "partition"
)

// Report is the outcome of one evaluation run.
type Report struct {
	RunID    string                 `json:"run_id"`
	Result   model.EvaluationResult `json:"result"`
	Failures []TaskFailure          `json:"failures"`
	Stats    Stats                  `json:"stats"`
}

// Stats summarizes the work done by one run.
type Stats struct {
	Bursts     int     `json:"bursts"`
	Orbits     int     `json:"orbits"`
	Windows    int     `json:"windows"`
	Partitions int     `json:"partitions"`
	Tasks      int     `json:"tasks"`
	Matches    int     `json:"matches"`
	Selected   int     `json:"selected"`
	ElapsedMS  float64 `json:"elapsed_ms"`
}

// TaskFailure describes one task excluded from aggregation. Err wraps
// ErrPartialTaskFailure.
type TaskFailure struct {
	Level      string
	Orbit      int
	Window     model.TimeWindow
	TileSetIDs []string
	Err        error
}

func newFailure(level string, orbit int, w model.TimeWindow, ids []string, cause error) TaskFailure {
	return TaskFailure{
		Level:      level,
		Orbit:      orbit,
		Window:     w,
		TileSetIDs: ids,
		Err:        fmt.Errorf("%w: %w", ErrPartialTaskFailure, cause),
	}
}

func (f TaskFailure) Error() string {
	if f.Window.Start.IsZero() {
		return fmt.Sprintf("%s task (orbit %d): %v", f.Level, f.Orbit, f.Err)
	}
	return fmt.Sprintf("%s task (orbit %d, window %s..%s): %v", f.Level, f.Orbit,
		f.Window.Start.Format(time.RFC3339), f.Window.End.Format(time.RFC3339), f.Err)
}

func (f TaskFailure) Unwrap() error { return f.Err }

// MarshalJSON renders the failure with its error as text.
func (f TaskFailure) MarshalJSON() ([]byte, error) {
	type window struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	}
	out := struct {
		Level      string   `json:"level"`
		Orbit      int      `json:"orbit"`
		Window     *window  `json:"window,omitempty"`
		TileSetIDs []string `json:"tile_set_ids,omitempty"`
		Error      string   `json:"error"`
	}{
		Level:      f.Level,
		Orbit:      f.Orbit,
		TileSetIDs: f.TileSetIDs,
	}
	if !f.Window.Start.IsZero() {
		out.Window = &window{Start: f.Window.Start, End: f.Window.End}
	}
	if f.Err != nil {
		out.Error = f.Err.Error()
	}
	return json.Marshal(out)
}
