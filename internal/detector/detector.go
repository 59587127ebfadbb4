package detector

import (
	"image"

	"gocv.io/x/gocv"

	"surveillance/internal/logger"
)

// Weight of the current frame in the running background average.
const backgroundDecay = 0.5

// MotionRegion is a bounding box of detected change.
type MotionRegion struct {
	X      int
	Y      int
	Width  int
	Height int
	Area   float64
}

// ExclusionZone is a rectangular area whose motion is ignored. It covers the
// burned-in timestamp overlay so the overlay refresh cannot keep a recording
// alive forever.
type ExclusionZone struct {
	XMin int
	XMax int
	YMin int
	YMax int
}

// Contains reports whether a region origin falls inside the zone, bounds inclusive.
func (z ExclusionZone) Contains(x, y int) bool {
	return z.XMin <= x && x <= z.XMax && z.YMin <= y && y <= z.YMax
}

// Detector finds motion regions by comparing each frame against a running
// background average.
type Detector struct {
	model     *BackgroundModel
	minArea   float64
	threshold float32
	exclusion ExclusionZone
	kernel    gocv.Mat
	logger    *logger.Logger
}

// New creates a Detector. minArea is the smallest contour area reported;
// threshold is the per-pixel delta needed to count as change.
func New(minArea float64, threshold float32, exclusion ExclusionZone, logger *logger.Logger) *Detector {
	return &Detector{
		model:     NewBackgroundModel(backgroundDecay),
		minArea:   minArea,
		threshold: threshold,
		exclusion: exclusion,
		kernel:    gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3)),
		logger:    logger,
	}
}

// Detect returns the motion regions in frame, which may be empty. On the very
// first frame it initializes the background model and returns nil: no motion
// can be claimed before a baseline exists.
func (d *Detector) Detect(frame gocv.Mat) []MotionRegion {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	gocv.GaussianBlur(gray, &gray, image.Pt(21, 21), 0, 0, gocv.BorderDefault)

	if !d.model.Ready() {
		d.logger.Info("Starting background model")
		d.model.Initialize(gray)
		return nil
	}

	d.model.Accumulate(gray)

	delta := gocv.NewMat()
	defer delta.Close()
	d.model.Delta(gray, &delta)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(delta, &thresh, d.threshold, 255, gocv.ThresholdBinary)

	// Two dilation passes merge fragmented regions before contour extraction.
	gocv.Dilate(thresh, &thresh, d.kernel)
	gocv.Dilate(thresh, &thresh, d.kernel)

	contours := gocv.FindContours(thresh, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var regions []MotionRegion
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		rect := gocv.BoundingRect(contour)
		region := MotionRegion{
			X:      rect.Min.X,
			Y:      rect.Min.Y,
			Width:  rect.Dx(),
			Height: rect.Dy(),
			Area:   gocv.ContourArea(contour),
		}
		if keepRegion(region, d.minArea, d.exclusion) {
			regions = append(regions, region)
		}
	}

	return regions
}

// Close releases the detector's Mats.
func (d *Detector) Close() {
	d.kernel.Close()
	d.model.Close()
}

// keepRegion decides whether a candidate region counts as motion: it must be
// at least minArea in size and must not originate inside the exclusion zone.
func keepRegion(region MotionRegion, minArea float64, exclusion ExclusionZone) bool {
	if region.Area < minArea {
		return false
	}
	return !exclusion.Contains(region.X, region.Y)
}
