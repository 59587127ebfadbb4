package surveillance

import (
	"time"

	"surveillance/internal/detector"
	"surveillance/internal/logger"
)

// State is the controller mode. It starts Idle, goes Active when a frame has
// motion, falls back to Recording while quiet but within the idle timeout,
// and returns to Idle once the timeout elapses.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateActive
)

// StatusText is the operator-facing status line for the state. Active and
// Recording both map to an open session; the split only improves feedback.
func (s State) StatusText() string {
	switch s {
	case StateActive:
		return "Active, Recording..."
	case StateRecording:
		return "Idle, Recording..."
	default:
		return "Idle."
	}
}

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateRecording:
		return "recording"
	default:
		return "idle"
	}
}

// Recorder is the session lifecycle the controller drives.
type Recorder interface {
	Start() error
	Stop() error
}

// StatusListener observes state transitions.
type StatusListener interface {
	StateChanged(state State, status string, at time.Time)
}

// Controller decides, once per frame tick, whether a recording session should
// be open. State is mutated only on tick boundaries.
type Controller struct {
	recorder    Recorder
	listener    StatusListener
	logger      *logger.Logger
	idleTimeout time.Duration

	state      State
	lastActive time.Time
}

// NewController creates a Controller in the Idle state. lastActive starts at
// the zero time, so the first quiet ticks resolve to Idle. The listener may
// be nil.
func NewController(rec Recorder, idleTimeout time.Duration, listener StatusListener, logger *logger.Logger) *Controller {
	return &Controller{
		recorder:    rec,
		listener:    listener,
		logger:      logger,
		idleTimeout: idleTimeout,
		state:       StateIdle,
	}
}

// State returns the current controller mode.
func (c *Controller) State() State {
	return c.state
}

// Tick applies one state transition for the regions detected this frame.
// Exclusion filtering already happened in the detector, so motion solely
// inside the excluded zone arrives here as an empty set.
func (c *Controller) Tick(regions []detector.MotionRegion, now time.Time) error {
	var candidate State
	switch {
	case len(regions) > 0:
		candidate = StateActive
		c.lastActive = now
	case now.Sub(c.lastActive) > c.idleTimeout:
		candidate = StateIdle
	default:
		candidate = StateRecording
	}

	switch candidate {
	case StateActive:
		if c.state == StateIdle {
			if err := c.recorder.Start(); err != nil {
				return err
			}
		}
		c.setState(StateActive, now)

	case StateRecording:
		// Only reachable with a session open; after a failed start the
		// controller stays Idle rather than claim a recording it doesn't have.
		if c.state != StateIdle {
			c.setState(StateRecording, now)
		}

	case StateIdle:
		if c.state != StateIdle {
			if err := c.recorder.Stop(); err != nil {
				return err
			}
			c.setState(StateIdle, now)
		}
	}

	return nil
}

func (c *Controller) setState(state State, now time.Time) {
	if state == c.state {
		return
	}
	c.state = state
	c.logger.Info("Status: %s", state.StatusText())
	if c.listener != nil {
		c.listener.StateChanged(state, state.StatusText(), now)
	}
}
