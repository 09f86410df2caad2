package layout

import (
	"time"

	"github.com/matzehuels/spangrid/pkg/grid"
	"github.com/matzehuels/spangrid/pkg/lanes"
)

// Placement is where one attached item ended up.
type Placement struct {
	Position int        `json:"position"`
	Label    string     `json:"label,omitempty"`
	Lane     int        `json:"lane"`
	ColSpan  int        `json:"col_span"`
	RowSpan  int        `json:"row_span"`
	Frame    lanes.Rect `json:"frame"`
}

// Result is the outcome of a layout or jump run.
type Result struct {
	Manifest   string          `json:"manifest"`
	Config     grid.Config     `json:"config"`
	LaneSize   int             `json:"lane_size"`
	Placements []Placement     `json:"placements"`
	Lanes      []lanes.Rect    `json:"lanes"`
	State      grid.SavedState `json:"state"`
	Stats      Stats           `json:"stats"`
}

// Stats describes a run.
type Stats struct {
	Items       int           `json:"items"`
	Attached    int           `json:"attached"`
	Cached      int           `json:"cached"`
	Unplaceable int           `json:"unplaceable"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Placement returns the placement of position, if it is attached.
func (r *Result) Placement(position int) (Placement, bool) {
	for _, p := range r.Placements {
		if p.Position == position {
			return p, true
		}
	}
	return Placement{}, false
}

func newResult(name string, v *Viewport, count int, started time.Time) *Result {
	e := v.Engine()
	res := &Result{
		Manifest: name,
		Config:   e.Config(),
		LaneSize: e.Lanes().LaneSize(),
		Lanes:    e.Lanes().Snapshot(),
		State:    e.SavedState(),
	}
	for _, item := range e.Attached() {
		entry, _ := e.Entries().Get(item.Position)
		res.Placements = append(res.Placements, Placement{
			Position: item.Position,
			Label:    item.Label,
			Lane:     item.Lane,
			ColSpan:  entry.ColSpan,
			RowSpan:  entry.RowSpan,
			Frame:    item.Frame,
		})
	}
	res.Stats = Stats{
		Items:       count,
		Attached:    len(res.Placements),
		Cached:      e.Entries().Len(),
		Unplaceable: v.Unplaceable(),
		Elapsed:     time.Since(started),
	}
	return res
}
