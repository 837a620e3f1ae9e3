package errors

import (
	"math"
	"testing"
)

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"positive", 0.25, false},
		{"large", 1e6, false},

		{"zero", 0, true},
		{"negative", -1, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositive(ErrCodeInvalidConfig, "grid_step", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePositive(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfig) {
				t.Errorf("ValidatePositive(%v) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidConfig)
			}
		})
	}
}

func TestValidateNonNegative(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"positive", 0.3, false},

		{"negative", -0.01, true},
		{"nan", math.NaN(), true},
		{"neg inf", math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNonNegative(ErrCodeInvalidConfig, "margin", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNonNegative(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFootprint(t *testing.T) {
	tests := []struct {
		name    string
		l, w, h float64
		wantErr bool
	}{
		{"cabinet", 1.0, 0.5, 2.0, false},
		{"zero length", 0, 0.5, 2.0, true},
		{"negative width", 1.0, -0.5, 2.0, true},
		{"zero height", 1.0, 0.5, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFootprint(tt.l, tt.w, tt.h)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFootprint() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidFootprint) {
				t.Errorf("ValidateFootprint() code = %v, want %v", GetCode(err), ErrCodeInvalidFootprint)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "scene_objects_world.json", false},
		{"absolute", "/tmp/scans/room.json", false},
		{"nested", "scans/2025/room.json", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"null byte", "room\x00.json", true},
		{"control char", "room\x01.json", true},
		{"too long", string(make([]byte, 5000)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
