package roadmap

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// defaultCompletionClear is how long the completion signal stays raised after
// the position crosses 100.
const defaultCompletionClear = 3 * time.Second

// Session holds the simulation state for one roadmap: a position on the 0-100
// axis and a discrete subject selection, kept consistent under every
// transition. HTTP handlers and the websocket reader may touch a session
// concurrently, so all state is guarded by a mutex.
type Session struct {
	mu         sync.Mutex
	roadmap    Roadmap
	position   float64
	selected   Selection
	activeDrag *Drag
	completeUp bool // completion signal currently raised
	clearDelay time.Duration
	clearTimer *time.Timer
	onComplete func()
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithCompletionClearDelay overrides how long the completion signal stays
// raised. Used by tests.
func WithCompletionClearDelay(d time.Duration) SessionOption {
	return func(s *Session) { s.clearDelay = d }
}

// WithCompletionFunc registers a callback fired on each upward crossing into
// position >= 100. The callback runs while the session lock is not held.
func WithCompletionFunc(fn func()) SessionOption {
	return func(s *Session) { s.onComplete = fn }
}

// NewSession creates a session over the given roadmap with position 0 and an
// empty selection.
func NewSession(r Roadmap, opts ...SessionOption) *Session {
	s := &Session{
		roadmap:    r,
		selected:   Selection{},
		clearDelay: defaultCompletionClear,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetRoadmap replaces the roadmap wholesale and resets the simulation state to
// (position 0, empty selection). Any active drag is invalidated.
func (s *Session) SetRoadmap(r Roadmap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roadmap = r
	s.position = 0
	s.selected = Selection{}
	if s.activeDrag != nil {
		s.activeDrag.released.Store(true)
		s.activeDrag = nil
	}
	s.lowerCompletion()
}

// Roadmap returns the active roadmap.
func (s *Session) Roadmap() Roadmap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roadmap
}

// Position returns the current progress position.
func (s *Session) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Selected returns a copy of the current selection.
func (s *Session) Selected() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(Selection, len(s.selected))
	for i := range s.selected {
		out[i] = struct{}{}
	}
	return out
}

// Completing reports whether the completion signal is currently raised.
func (s *Session) Completing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completeUp
}

// Covered returns the covered subject prefix at the current position.
func (s *Session) Covered() []Subject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CoveredAt(s.roadmap.Subjects, s.position)
}

// Next returns the next milestone past the current position.
func (s *Session) Next() (Milestone, float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NextMilestone(s.roadmap.Subjects, s.position)
}

// SetPosition moves the progress position (clamped to [0,100]) and re-derives
// the selection as the covered prefix.
func (s *Session) SetPosition(p float64) {
	s.mu.Lock()
	p = ClampPosition(p)
	s.selected = SelectionFromPosition(s.roadmap.Subjects, p)
	fire := s.updatePosition(p)
	s.mu.Unlock()
	if fire && s.onComplete != nil {
		s.onComplete()
	}
}

// Toggle flips one subject in the selection and re-derives the position as the
// sum of selected weightages.
func (s *Session) Toggle(i int) {
	s.mu.Lock()
	s.selected = ToggleSubject(s.selected, i)
	p := PositionFromSelection(s.roadmap.Subjects, s.selected)
	fire := s.updatePosition(p)
	s.mu.Unlock()
	if fire && s.onComplete != nil {
		s.onComplete()
	}
}

// updatePosition commits a new position and reports whether the completion
// signal should fire. The signal is edge-triggered: it fires only on the
// upward crossing into >= 100, never while the position stays there. Caller
// holds the lock.
func (s *Session) updatePosition(p float64) bool {
	crossed := p >= 100 && s.position < 100
	s.position = p
	if !crossed {
		return false
	}
	s.completeUp = true
	if s.clearTimer != nil {
		s.clearTimer.Stop()
	}
	s.clearTimer = time.AfterFunc(s.clearDelay, func() {
		s.mu.Lock()
		s.completeUp = false
		s.mu.Unlock()
	})
	return true
}

// lowerCompletion clears the completion signal immediately. Caller holds the
// lock.
func (s *Session) lowerCompletion() {
	s.completeUp = false
	if s.clearTimer != nil {
		s.clearTimer.Stop()
		s.clearTimer = nil
	}
}

// Drag is a scoped handle for one drag gesture. It exists only between
// BeginDrag and Release; once released (or once the roadmap is replaced) the
// handle is inert and further moves are ignored. This makes the Idle/Dragging
// transition explicit: entering Dragging hands out the handle, entering Idle
// detaches it deterministically.
type Drag struct {
	s        *Session
	width    float64
	released atomic.Bool
}

// BeginDrag enters the Dragging state for a track of the given pixel width.
// It fails if a drag is already active or the width is not positive.
func (s *Session) BeginDrag(trackWidth float64) (*Drag, error) {
	if trackWidth <= 0 {
		return nil, fmt.Errorf("track width must be positive, got %v", trackWidth)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeDrag != nil {
		return nil, fmt.Errorf("drag already active")
	}
	d := &Drag{s: s, width: trackWidth}
	s.activeDrag = d
	return d, nil
}

// Move maps a horizontal track offset to a position and applies it. Offsets
// outside the track clamp to the ends. Moves on a released handle are no-ops.
func (d *Drag) Move(x float64) {
	if d.released.Load() {
		return
	}
	d.s.SetPosition(x / d.width * 100)
}

// Release returns the session to Idle and detaches the handle.
func (d *Drag) Release() {
	if d.released.Swap(true) {
		return
	}
	d.s.mu.Lock()
	if d.s.activeDrag == d {
		d.s.activeDrag = nil
	}
	d.s.mu.Unlock()
}
