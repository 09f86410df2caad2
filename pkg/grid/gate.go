package grid

// ScrollGate suspends scrolling while a single item is measured, so an item
// that fills its parent on both axes can resolve its size without the
// container re-entering layout.
//
// The zero value is an open gate.
type ScrollGate struct {
	held bool
}

// Suspend closes the gate and returns the func that reopens it. Callers
// defer the release so it runs on every exit path:
//
//	release := gate.Suspend()
//	defer release()
//
// Suspend panics if the gate is already closed; measurement never nests.
func (g *ScrollGate) Suspend() (release func()) {
	if g.held {
		panic("grid: scroll gate suspended twice")
	}
	g.held = true
	return func() { g.held = false }
}

// Held reports whether scrolling is currently suspended.
func (g *ScrollGate) Held() bool { return g.held }
