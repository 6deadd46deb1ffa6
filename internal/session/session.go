// Package session holds the drawing state of one practice session and runs
// comparisons against it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/assets"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/logger"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/score"
	"github.com/google/uuid"
)

var (
	ErrClosed       = errors.New("session closed")
	ErrInvalidSlot  = errors.New("invalid canvas slot")
	ErrInvalidColor = errors.New("invalid colour")
	ErrUnknownShape = errors.New("unknown shape")
	ErrNoCanvas     = errors.New("canvas size unknown")
	ErrNoStrategy   = errors.New("no scoring strategy configured")
)

// State is an immutable snapshot of a session.
type State struct {
	Reference models.Drawing `json:"reference"`
	User      models.Drawing `json:"user"`
	// Active holds the stroke in progress per slot, indexed by models.Slot.
	Active        [2]*models.Stroke `json:"active"`
	SelectedColor models.Color      `json:"selected_color"`
	Synced        bool              `json:"synced"`
	Shape         string            `json:"shape,omitempty"`
	CanvasWidth   int               `json:"canvas_width,omitempty"`
	CanvasHeight  int               `json:"canvas_height,omitempty"`
	// Score is the latest comparison result; nil until a comparison
	// finishes, and again after any stroke changes.
	Score     *score.Result `json:"score"`
	Comparing bool          `json:"comparing"`
	Err       string        `json:"error,omitempty"`
	Version   uint64        `json:"version"`
}

// Drawing returns the finished strokes on slot.
func (s *State) Drawing(slot models.Slot) models.Drawing {
	if slot == models.SlotReference {
		return s.Reference
	}
	return s.User
}

func (s *State) setDrawing(slot models.Slot, d models.Drawing) {
	if slot == models.SlotReference {
		s.Reference = d
	} else {
		s.User = d
	}
}

type Options struct {
	Strategy score.Strategy
	// Shapes is the table SelectShape picks from. May be nil.
	Shapes *assets.Table
	// Padding is the canvas fraction kept free around a selected shape.
	Padding float64
}

type subscriber struct {
	id int
	fn func(State)
}

type Session struct {
	strategy score.Strategy
	shapes   *assets.Table
	padding  float64

	state atomic.Pointer[State]

	// mu serialises writers. notifyMu is taken before mu is released so
	// subscribers see transitions in the order they happened.
	mu       sync.Mutex
	notifyMu sync.Mutex

	subs   []subscriber
	nextID int

	generation uint64
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closed     bool
}

func New(opts Options) *Session {
	s := &Session{
		strategy: opts.Strategy,
		shapes:   opts.Shapes,
		padding:  opts.Padding,
	}
	s.state.Store(&State{SelectedColor: models.Black})
	return s
}

// Snapshot returns the current state. It never blocks on writers.
func (s *Session) Snapshot() State {
	return snapshot(s.state.Load())
}

// snapshot copies the active strokes with their capacity clipped so appends
// by a reader cannot reach the session's backing arrays.
func snapshot(p *State) State {
	st := *p
	for i, a := range st.Active {
		if a != nil {
			c := *a
			c.Points = c.Points[:len(c.Points):len(c.Points)]
			st.Active[i] = &c
		}
	}
	return st
}

// Subscribe registers fn to be called with every new state. Calls are made
// in transition order from the goroutine that caused the transition; fn must
// not call Dispatch itself.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.notifyMu.Lock()
			defer s.notifyMu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					break
				}
			}
		})
	}
}

// Dispatch applies an action. Input actions return once the new state is
// visible; Compare returns immediately and the result arrives in a later
// state.
func (s *Session) Dispatch(a Action) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	cur := s.state.Load()
	next := *cur
	changed, err := s.apply(&next, a)
	if err != nil || !changed {
		s.mu.Unlock()
		return err
	}
	s.commit(&next)
	return nil
}

// commit publishes next and notifies subscribers. It must be called with mu
// held and releases it.
func (s *Session) commit(next *State) {
	next.Version++
	s.state.Store(next)
	snap := snapshot(next)
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, sub := range s.subs {
		sub.fn(snap)
	}
}

func (s *Session) apply(st *State, a Action) (bool, error) {
	switch a := a.(type) {
	case StartStroke:
		if !a.Slot.Valid() {
			return false, fmt.Errorf("%w: %d", ErrInvalidSlot, int(a.Slot))
		}
		for _, slot := range s.targets(st, a.Slot) {
			finish(st, slot)
			st.Active[slot] = &models.Stroke{ID: newStrokeID(), Color: st.SelectedColor}
		}
		s.invalidate(st)
		return true, nil

	case AppendPoint:
		if !a.Slot.Valid() {
			return false, fmt.Errorf("%w: %d", ErrInvalidSlot, int(a.Slot))
		}
		changed := false
		p := models.Point{X: a.X, Y: a.Y}
		for _, slot := range s.targets(st, a.Slot) {
			active := st.Active[slot]
			if active == nil {
				continue
			}
			// the previous state keeps its own length, so sharing the
			// backing array is safe
			grown := *active
			grown.Points = append(grown.Points, p)
			st.Active[slot] = &grown
			changed = true
		}
		if changed {
			s.invalidate(st)
		}
		return changed, nil

	case EndStroke:
		if !a.Slot.Valid() {
			return false, fmt.Errorf("%w: %d", ErrInvalidSlot, int(a.Slot))
		}
		changed := false
		for _, slot := range s.targets(st, a.Slot) {
			if st.Active[slot] != nil {
				finish(st, slot)
				changed = true
			}
		}
		if changed {
			s.invalidate(st)
		}
		return changed, nil

	case Clear:
		if !a.Slot.Valid() {
			return false, fmt.Errorf("%w: %d", ErrInvalidSlot, int(a.Slot))
		}
		for _, slot := range s.targets(st, a.Slot) {
			st.setDrawing(slot, nil)
			st.Active[slot] = nil
			if slot == models.SlotReference {
				st.Shape = ""
			}
		}
		s.invalidate(st)
		return true, nil

	case SelectColor:
		if !a.Color.Valid() {
			return false, fmt.Errorf("%w: %q", ErrInvalidColor, a.Color)
		}
		st.SelectedColor = a.Color
		return true, nil

	case SetSyncMode:
		st.Synced = a.Enabled
		return true, nil

	case PrepareCanvas:
		if a.Width <= 0 || a.Height <= 0 {
			return false, fmt.Errorf("%w: %dx%d", ErrNoCanvas, a.Width, a.Height)
		}
		st.CanvasWidth, st.CanvasHeight = a.Width, a.Height
		if st.Shape != "" {
			if err := s.placeShape(st, st.Shape); err != nil {
				return false, err
			}
		}
		return true, nil

	case SelectShape:
		if err := s.placeShape(st, a.Name); err != nil {
			return false, err
		}
		return true, nil

	case Compare:
		return true, s.startCompare(st, a)
	}
	return false, fmt.Errorf("unsupported action %T", a)
}

// targets lists the slots an input on slot applies to.
func (s *Session) targets(st *State, slot models.Slot) []models.Slot {
	if st.Synced {
		return []models.Slot{slot, slot.Other()}
	}
	return []models.Slot{slot}
}

// finish moves the stroke in progress on slot into the slot's drawing.
// Strokes without points are dropped.
func finish(st *State, slot models.Slot) {
	active := st.Active[slot]
	st.Active[slot] = nil
	if active == nil || len(active.Points) == 0 {
		return
	}
	done := *active
	done.Points = done.Points[:len(done.Points):len(done.Points)]
	d := st.Drawing(slot)
	st.setDrawing(slot, append(d[:len(d):len(d)], done))
}

func (s *Session) placeShape(st *State, name string) error {
	d, ok := s.shapes.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownShape, name)
	}
	st.Reference = assets.FitToCanvas(d, float64(st.CanvasWidth), float64(st.CanvasHeight), s.padding)
	st.Active[models.SlotReference] = nil
	st.Shape = name
	s.invalidate(st)
	return nil
}

// invalidate drops the score and abandons a comparison in flight. Must be
// called with mu held.
func (s *Session) invalidate(st *State) {
	st.Score = nil
	st.Err = ""
	if st.Comparing {
		s.generation++
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
		st.Comparing = false
	}
}

func newStrokeID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Close abandons any comparison in flight and waits for background work to
// stop. Further dispatches fail with ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
	logger.Get().Debug("session closed")
}
