package app

import (
	"fmt"
	"image"
	"image/color"
	"net/http"
	"os"
	"time"

	"gocv.io/x/gocv"

	"surveillance/internal/camera"
	"surveillance/internal/config"
	"surveillance/internal/detector"
	"surveillance/internal/display"
	"surveillance/internal/input"
	"surveillance/internal/logger"
	"surveillance/internal/model"
	"surveillance/internal/recorder"
	"surveillance/internal/repository"
	"surveillance/internal/repository/sqlite"
	"surveillance/internal/storage"
	"surveillance/internal/surveillance"
	"surveillance/internal/web"
)

// App owns every collaborator of the control loop. Everything is constructed
// once here and passed by reference; there are no package-level singletons.
type App struct {
	config     *config.Config
	logger     *logger.Logger
	db         *sqlite.DB
	recordings repository.RecordingRepository
	events     repository.MotionEventRepository
	detector   *detector.Detector
	recorder   *recorder.Recorder
	controller *surveillance.Controller
	hub        *web.Hub
	display    *display.Console
	inputs     *input.ChanSource

	// openSource defaults to the configured camera device; tests swap in a
	// synthetic source.
	openSource func() (camera.FrameSource, error)
}

// New wires the application from configuration.
func New(cfg *config.Config) (*App, error) {
	log := logger.New(cfg.LogDirectory)

	if err := os.MkdirAll(cfg.WriteDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create video directory: %w", err)
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	recordings := sqlite.NewRecordingRepository(db)
	events := sqlite.NewMotionEventRepository(db)

	var hub *web.Hub
	if cfg.WebStatusEnabled {
		hub = web.NewHub(log)
	}

	disp := display.NewConsole(log)
	reclaimer := storage.NewReclaimer(cfg.WriteDirectory, cfg.MinFreeSpaceGB, recordings, log)
	sink := camera.NewFileSink(cfg.FrameWidth, cfg.FrameHeight, cfg.FPS)

	var recListener recorder.Listener
	if hub != nil {
		recListener = hub
	}
	rec := recorder.New(sink, reclaimer, recordings, disp, recListener, recorder.Options{
		Dir:                cfg.WriteDirectory,
		RotateHourly:       cfg.Mode == config.ModeBlock,
		AnnotationInterval: time.Duration(cfg.AnnotationInterval) * time.Second,
	}, log)

	var ctrl *surveillance.Controller
	var det *detector.Detector
	if cfg.Mode == config.ModeMotion {
		det = detector.New(cfg.MinContourArea, cfg.DeltaThreshold, detector.ExclusionZone{
			XMin: cfg.ExclusionXMin,
			XMax: cfg.ExclusionXMax,
			YMin: cfg.ExclusionYMin,
			YMax: cfg.ExclusionYMax,
		}, log)

		var ctrlListener surveillance.StatusListener
		if hub != nil {
			ctrlListener = hub
		}
		ctrl = surveillance.NewController(rec, time.Duration(cfg.IdleTimeoutSec)*time.Second, ctrlListener, log)
	}

	return &App{
		config:     cfg,
		logger:     log,
		db:         db,
		recordings: recordings,
		events:     events,
		detector:   det,
		recorder:   rec,
		controller: ctrl,
		hub:        hub,
		display:    disp,
		inputs:     input.NewChanSource(),
		openSource: func() (camera.FrameSource, error) {
			return camera.OpenCapture(cfg.CameraDevice, cfg.FrameWidth, cfg.FrameHeight, cfg.FPS)
		},
	}, nil
}

// Inputs returns the event source the main loop consumes, so hardware
// bindings (or tests) can inject button presses.
func (a *App) Inputs() *input.ChanSource {
	return a.inputs
}

// Run drives the frame loop until a quit event or a capture failure.
func (a *App) Run() error {
	defer a.db.Close()

	if a.hub != nil {
		go a.hub.Run()
		go func() {
			addr := fmt.Sprintf(":%d", a.config.Port)
			a.logger.Info("Status endpoint listening on %s", addr)
			if err := http.ListenAndServe(addr, web.SetupRoutes(a.hub, a.recordings, a.events, a.logger)); err != nil {
				a.logger.Error("Status endpoint stopped: %v", err)
			}
		}()
	}

	source, err := a.openSource()
	if err != nil {
		return err
	}
	defer source.Close()

	var window *gocv.Window
	if a.config.ShowVideo {
		window = gocv.NewWindow("Video Surveillance")
		defer window.Close()
	}

	if a.detector != nil {
		defer a.detector.Close()
	}

	// Exit behavior: stop an open session first, clear the display last.
	defer func() {
		if a.recorder.Recording() {
			if err := a.recorder.Stop(); err != nil {
				a.logger.Error("Failed to stop recording on shutdown: %v", err)
			}
		}
		a.display.Clear()
	}()

	if a.config.CameraWarmupSec > 0 {
		a.logger.Info("Warming up camera for %d seconds", a.config.CameraWarmupSec)
		time.Sleep(time.Duration(a.config.CameraWarmupSec) * time.Second)
	}

	a.display.ShowReady()
	a.logger.Info("Surveillance running in %s mode, writing to %s", a.config.Mode, a.config.WriteDirectory)

	for {
		select {
		case ev := <-a.inputs.Events():
			if quit := a.handleEvent(ev); quit {
				return nil
			}
			continue
		default:
		}

		frame, err := source.Read()
		if err != nil {
			return err
		}
		now := time.Now()

		var regions []detector.MotionRegion
		if a.controller != nil {
			regions = a.detector.Detect(frame)
			if err := a.controller.Tick(regions, now); err != nil {
				return err
			}
			a.recordMotionEvents(regions, now)
		}

		if err := a.recorder.WriteFrame(frame); err != nil {
			a.logger.Error("Failed to write frame: %v", err)
		}

		if window != nil {
			a.annotatePreview(&frame, regions)
			window.IMShow(frame)
			if window.WaitKey(1) == 'q' {
				a.inputs.Push(input.Event{Channel: input.ChannelQuit})
			}
		}
	}
}

// handleEvent reacts to one button press. Unknown channels are reported and
// fail safe into the quit path.
func (a *App) handleEvent(ev input.Event) bool {
	a.display.Beep(ev.Channel)

	switch ev.Channel {
	case input.ChannelStart:
		if a.config.Mode == config.ModeBlock && !a.recorder.Recording() {
			if err := a.recorder.Start(); err != nil {
				a.logger.Error("Failed to start recording: %v", err)
			}
		}
	case input.ChannelStop:
		if a.config.Mode == config.ModeBlock && a.recorder.Recording() {
			if err := a.recorder.Stop(); err != nil {
				a.logger.Error("Failed to stop recording: %v", err)
			}
		}
	case input.ChannelQuit:
		a.logger.Info("Quit requested")
		return true
	default:
		a.logger.Warning("Unexpected input channel %d, shutting down", ev.Channel)
		return true
	}
	return false
}

// recordMotionEvents indexes this tick's regions against the open recording.
func (a *App) recordMotionEvents(regions []detector.MotionRegion, now time.Time) {
	if len(regions) == 0 {
		return
	}
	recordingID := a.recorder.CurrentRecordingID()
	if recordingID == "" {
		return
	}

	events := make([]model.MotionEvent, 0, len(regions))
	for _, region := range regions {
		events = append(events, model.MotionEvent{
			RecordingID: recordingID,
			DetectedAt:  now,
			X:           region.X,
			Y:           region.Y,
			Width:       region.Width,
			Height:      region.Height,
			Area:        region.Area,
		})
	}
	if err := a.events.InsertBatch(events); err != nil {
		a.logger.Error("Failed to index motion events: %v", err)
	}
}

// annotatePreview draws motion boxes and the status line on the live view.
func (a *App) annotatePreview(frame *gocv.Mat, regions []detector.MotionRegion) {
	green := color.RGBA{0, 255, 0, 0}
	red := color.RGBA{0, 0, 255, 0}

	for _, region := range regions {
		rect := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height)
		gocv.Rectangle(frame, rect, green, 2)
	}

	status := "Ready."
	if a.controller != nil {
		status = a.controller.State().StatusText()
	} else if a.recorder.Recording() {
		status = "Recording..."
	}
	gocv.PutText(frame, "Status: "+status, image.Pt(10, 20), gocv.FontHersheySimplex, 0.5, red, 2)
}
