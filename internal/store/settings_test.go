package store

import (
	"errors"
	"testing"
)

func TestSettings_GetMissing(t *testing.T) {
	repo := newTestStore(t).Settings()

	if _, err := repo.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetFloat(KeyCalibration); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetFloat() error = %v, want ErrNotFound", err)
	}
}

func TestSettings_SetOverwrites(t *testing.T) {
	repo := newTestStore(t).Settings()

	if err := repo.Set("theme", "dark"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Set("theme", "light"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := repo.Get("theme")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "light" {
		t.Errorf("Get() = %q, want %q", got, "light")
	}
}

func TestSettings_Float(t *testing.T) {
	repo := newTestStore(t).Settings()

	tests := []struct {
		name  string
		value float64
	}{
		{"integer height", 170},
		{"fractional height", 163.25},
		{"calibration", 1.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.SetFloat(KeyReferenceHeight, tt.value); err != nil {
				t.Fatalf("SetFloat() error = %v", err)
			}
			got, err := repo.GetFloat(KeyReferenceHeight)
			if err != nil {
				t.Fatalf("GetFloat() error = %v", err)
			}
			if got != tt.value {
				t.Errorf("GetFloat() = %v, want %v", got, tt.value)
			}
		})
	}
}

func TestSettings_GetFloatRejectsGarbage(t *testing.T) {
	repo := newTestStore(t).Settings()

	for _, raw := range []string{"tall", "NaN", "+Inf"} {
		if err := repo.Set(KeyReferenceHeight, raw); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if _, err := repo.GetFloat(KeyReferenceHeight); err == nil {
			t.Errorf("GetFloat() with %q should fail", raw)
		}
	}
}

func TestSettings_Delete(t *testing.T) {
	repo := newTestStore(t).Settings()

	if err := repo.Delete(KeyCalibration); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() missing error = %v, want ErrNotFound", err)
	}

	repo.SetFloat(KeyCalibration, 2.1)
	if err := repo.Delete(KeyCalibration); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get(KeyCalibration); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}
