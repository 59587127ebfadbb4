package display

import "surveillance/internal/logger"

// Status codes shown on the operator display.
const (
	ready     = "IDLE"
	recording = "REC "
)

// StatusDisplay is the operator-facing status indicator. Implementations are
// selected at construction time, so the core never branches on whether
// hardware is present.
type StatusDisplay interface {
	ShowReady()
	ShowRecording()
	Clear()
}

// Buzzer gives audible feedback on a button press.
type Buzzer interface {
	Beep(channel int)
}

// Console logs status changes instead of driving a physical display.
type Console struct {
	logger *logger.Logger
}

// NewConsole creates a Console display.
func NewConsole(logger *logger.Logger) *Console {
	return &Console{logger: logger}
}

func (c *Console) ShowReady() {
	c.logger.Info("Display: %s", ready)
}

func (c *Console) ShowRecording() {
	c.logger.Info("Display: %s", recording)
}

func (c *Console) Clear() {
	c.logger.Info("Display cleared")
}

// Beep logs the tone that a hardware buzzer would play.
func (c *Console) Beep(channel int) {
	c.logger.Info("Beep for channel %d", channel)
}

// Null discards all display and buzzer activity.
type Null struct{}

func (Null) ShowReady()     {}
func (Null) ShowRecording() {}
func (Null) Clear()         {}
func (Null) Beep(int)       {}
