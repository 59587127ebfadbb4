package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Recorder modes.
const (
	ModeMotion = "motion" // recordings start/stop on detected motion
	ModeBlock  = "block"  // recordings start/stop on button input, rotated on hour boundaries
)

type Config struct {
	CameraDevice       int
	CameraWarmupSec    int
	FrameWidth         int
	FrameHeight        int
	FPS                float64
	MinContourArea     float64
	DeltaThreshold     float32
	IdleTimeoutSec     int // Seconds without motion before a recording stops
	ExclusionXMin      int
	ExclusionXMax      int
	ExclusionYMin      int
	ExclusionYMax      int
	WriteDirectory     string
	MinFreeSpaceGB     float64
	AnnotationInterval int // Seconds between in-frame timestamp refreshes
	Mode               string
	ShowVideo          bool
	DatabasePath       string
	WebStatusEnabled   bool
	Port               int
	LogDirectory       string
}

func Load() *Config {
	return &Config{
		CameraDevice:       getEnvAsInt("CAMERA_DEVICE", 0),
		CameraWarmupSec:    getEnvAsInt("CAMERA_WARMUP", 2),
		FrameWidth:         getEnvAsInt("FRAME_WIDTH", 960),
		FrameHeight:        getEnvAsInt("FRAME_HEIGHT", 720),
		FPS:                getEnvAsFloat("FPS", 16),
		MinContourArea:     getEnvAsFloat("MIN_AREA", 500), // 100 gets triggered by large snowflakes
		DeltaThreshold:     float32(getEnvAsFloat("DELTA_THRESHOLD", 5)),
		IdleTimeoutSec:     getEnvAsInt("IDLE_TIMEOUT", 30),
		ExclusionXMin:      getEnvAsInt("EXCLUSION_X_MIN", 0),
		ExclusionXMax:      getEnvAsInt("EXCLUSION_X_MAX", 260),
		ExclusionYMin:      getEnvAsInt("EXCLUSION_Y_MIN", 0),
		ExclusionYMax:      getEnvAsInt("EXCLUSION_Y_MAX", 30),
		WriteDirectory:     getEnv("WRITE_DIR", filepath.Join(".", "videos")),
		MinFreeSpaceGB:     getEnvAsFloat("MIN_FREE_SPACE_GB", 10), // An hour of video runs ~7.2 GB
		AnnotationInterval: getEnvAsInt("ANNOTATION_INTERVAL", 1),
		Mode:               getEnv("MODE", ModeMotion),
		ShowVideo:          getEnvAsBool("SHOW_VIDEO", false),
		DatabasePath:       getEnv("DATABASE_PATH", filepath.Join(".", "recordings.db")),
		WebStatusEnabled:   getEnvAsBool("WEB_STATUS", false),
		Port:               getEnvAsInt("PORT", 8080),
		LogDirectory:       getEnv("LOG_DIR", filepath.Join(".", "logs")),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
