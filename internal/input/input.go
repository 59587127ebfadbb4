package input

// Button channels recognized by the controller. Anything else is reported and
// treated as a quit.
const (
	ChannelStart = 0
	ChannelStop  = 1
	ChannelQuit  = 2
)

// Event is a discrete button press identified by its channel index.
type Event struct {
	Channel int
}

// Source delivers input events to the main loop. Decoupling the hardware
// binding from control logic keeps the loop testable with synthetic events.
type Source interface {
	Events() <-chan Event
}

// ChanSource is a Source fed programmatically, used both for synthetic test
// input and for adapting key presses from the display window.
type ChanSource struct {
	events chan Event
}

// NewChanSource creates a ChanSource with a small buffer so senders that race
// the main loop do not block.
func NewChanSource() *ChanSource {
	return &ChanSource{events: make(chan Event, 8)}
}

func (s *ChanSource) Events() <-chan Event {
	return s.events
}

// Push queues an event, dropping it if the buffer is full.
func (s *ChanSource) Push(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}
