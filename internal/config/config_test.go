package config

import "testing"

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		value    string
		def      int
		expected int
	}{
		{"10", 5, 10},
		{"", 5, 5},
		{"abc", 7, 7},
		{"-1", 5, -1},
	}

	for _, tt := range tests {
		// Set unconditionally so an earlier case's value cannot leak into the
		// empty-value case; getEnvAsInt treats "" as unset.
		t.Setenv("TEST_INT", tt.value)
		if got := getEnvAsInt("TEST_INT", tt.def); got != tt.expected {
			t.Errorf("getEnvAsInt(%q, %d) = %d, expected %d", tt.value, tt.def, got, tt.expected)
		}
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "7.5")
	if got := getEnvAsFloat("TEST_FLOAT", 1); got != 7.5 {
		t.Errorf("Expected 7.5, got %v", got)
	}
	if got := getEnvAsFloat("TEST_FLOAT_MISSING", 2.5); got != 2.5 {
		t.Errorf("Expected default 2.5, got %v", got)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	if !getEnvAsBool("TEST_BOOL", false) {
		t.Error("Expected true")
	}
	t.Setenv("TEST_BOOL", "junk")
	if getEnvAsBool("TEST_BOOL", false) {
		t.Error("Expected default false on invalid value")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Mode != ModeMotion {
		t.Errorf("Expected default mode %q, got %q", ModeMotion, cfg.Mode)
	}
	if cfg.MinFreeSpaceGB != 10 {
		t.Errorf("Expected 10 GB free-space floor, got %v", cfg.MinFreeSpaceGB)
	}
	if cfg.AnnotationInterval != 1 {
		t.Errorf("Expected 1 second annotation interval, got %d", cfg.AnnotationInterval)
	}
}
