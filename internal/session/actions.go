package session

import "github.com/ThatOtherAndrew/Sketchmatch/internal/models"

// Action is an input event. Every state change goes through Session.Dispatch
// with one of the types below.
type Action interface {
	isAction()
}

// StartStroke begins a new stroke on Slot in the selected colour. A stroke
// still in progress on that slot is finished first.
type StartStroke struct {
	Slot models.Slot
}

// AppendPoint extends the stroke in progress on Slot. Without one it does
// nothing.
type AppendPoint struct {
	Slot models.Slot
	X, Y float64
}

type EndStroke struct {
	Slot models.Slot
}

// Clear removes every stroke on Slot.
type Clear struct {
	Slot models.Slot
}

type SelectColor struct {
	Color models.Color
}

// SetSyncMode mirrors stroke input on one canvas to the other while enabled.
type SetSyncMode struct {
	Enabled bool
}

// Compare scores the user drawing against the reference in the background.
// Zero dimensions fall back to the prepared canvas size.
type Compare struct {
	Width, Height int
}

// PrepareCanvas records the canvas size. A selected shape is refitted to it.
type PrepareCanvas struct {
	Width, Height int
}

// SelectShape places a shape from the table on the reference canvas.
type SelectShape struct {
	Name string
}

func (StartStroke) isAction()   {}
func (AppendPoint) isAction()   {}
func (EndStroke) isAction()     {}
func (Clear) isAction()         {}
func (SelectColor) isAction()   {}
func (SetSyncMode) isAction()   {}
func (Compare) isAction()       {}
func (PrepareCanvas) isAction() {}
func (SelectShape) isAction()   {}
