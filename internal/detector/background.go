package detector

import "gocv.io/x/gocv"

// BackgroundModel maintains an exponentially-weighted running average of the
// scene. It is created empty and initialized from the first frame it sees;
// the only way to reset it is a process restart.
type BackgroundModel struct {
	acc   gocv.Mat
	decay float64
	ready bool
}

// NewBackgroundModel creates an empty model with the given decay weight.
func NewBackgroundModel(decay float64) *BackgroundModel {
	return &BackgroundModel{decay: decay}
}

// Ready reports whether the model has been initialized from a frame.
func (m *BackgroundModel) Ready() bool {
	return m.ready
}

// Initialize seeds the accumulator from a grayscale frame.
func (m *BackgroundModel) Initialize(gray gocv.Mat) {
	m.acc = gocv.NewMat()
	gray.ConvertTo(&m.acc, gocv.MatTypeCV32F)
	m.ready = true
}

// Accumulate folds a grayscale frame into the running average.
func (m *BackgroundModel) Accumulate(gray gocv.Mat) {
	gocv.AccumulatedWeighted(gray, &m.acc, m.decay)
}

// Delta writes the absolute difference between the frame and the running
// average into delta.
func (m *BackgroundModel) Delta(gray gocv.Mat, delta *gocv.Mat) {
	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.ConvertScaleAbs(m.acc, &scaled, 1, 0)
	gocv.AbsDiff(gray, scaled, delta)
}

// Close releases the accumulator Mat.
func (m *BackgroundModel) Close() {
	if m.ready {
		m.acc.Close()
		m.ready = false
	}
}
