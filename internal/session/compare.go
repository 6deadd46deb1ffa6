package session

import (
	"context"
	"fmt"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/logger"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/score"
)

// startCompare launches a comparison of the drawings in st. A comparison
// already running is cancelled and its result will be ignored. Must be
// called with mu held.
func (s *Session) startCompare(st *State, a Compare) error {
	if s.strategy == nil {
		return ErrNoStrategy
	}
	w, h := a.Width, a.Height
	if w <= 0 || h <= 0 {
		w, h = st.CanvasWidth, st.CanvasHeight
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrNoCanvas, a.Width, a.Height)
	}

	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	st.Comparing = true
	st.Score = nil
	st.Err = ""

	in := score.Input{Reference: st.Reference, User: st.User, Width: w, Height: h}
	s.wg.Add(1)
	go s.runCompare(ctx, s.generation, in)
	return nil
}

func (s *Session) runCompare(ctx context.Context, generation uint64, in score.Input) {
	defer s.wg.Done()
	res, err := s.strategy.Score(ctx, in)

	s.mu.Lock()
	if s.closed || generation != s.generation {
		s.mu.Unlock()
		logger.Get().Debug("discarding stale comparison", "generation", generation)
		return
	}
	s.cancel()
	s.cancel = nil

	next := *s.state.Load()
	next.Comparing = false
	if err != nil {
		next.Err = err.Error()
		logger.Get().Warn("comparison failed", "strategy", s.strategy.Name(), "err", err)
	} else {
		next.Score = &res
		logger.Get().Info("comparison finished", "strategy", res.Strategy, "score", res.Percent())
	}
	s.commit(&next)
}
