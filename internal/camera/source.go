package camera

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// ErrCaptureFailed is returned when the device stops producing frames. The
// core has no retry policy for this; it propagates to the top level.
var ErrCaptureFailed = errors.New("frame capture failed")

// FrameSource produces a lazy, infinite, non-restartable sequence of frames.
// The returned Mat is a buffer owned by the source and is only valid until
// the next Read.
type FrameSource interface {
	Read() (gocv.Mat, error)
	Close() error
}

// Capture is a FrameSource backed by a local video device.
type Capture struct {
	device *gocv.VideoCapture
	frame  gocv.Mat
}

var _ FrameSource = (*Capture)(nil)

// OpenCapture opens the device and applies the configured geometry.
func OpenCapture(deviceID, width, height int, fps float64) (*Capture, error) {
	device, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera device %d: %w", deviceID, err)
	}

	device.Set(gocv.VideoCaptureFrameWidth, float64(width))
	device.Set(gocv.VideoCaptureFrameHeight, float64(height))
	device.Set(gocv.VideoCaptureFPS, fps)

	return &Capture{device: device, frame: gocv.NewMat()}, nil
}

// Read pulls the next frame into the capture buffer.
func (c *Capture) Read() (gocv.Mat, error) {
	if ok := c.device.Read(&c.frame); !ok || c.frame.Empty() {
		return gocv.Mat{}, ErrCaptureFailed
	}
	return c.frame, nil
}

// Close releases the buffer and the device.
func (c *Capture) Close() error {
	c.frame.Close()
	return c.device.Close()
}
