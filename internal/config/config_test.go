package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Missing config should not error, got %v", err)
	}
	if c != Default() {
		t.Error("Expected defaults for a missing config file")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.json")
	data := `{"walk_speed": 3.5, "physics_hz": 120}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.WalkSpeed != 3.5 {
		t.Errorf("Expected walk speed 3.5, got %g", c.WalkSpeed)
	}
	if c.PhysicsHz != 120 {
		t.Errorf("Expected 120 Hz, got %d", c.PhysicsHz)
	}
	// Untouched fields keep their defaults.
	if c.SprintSpeed != Default().SprintSpeed {
		t.Errorf("Expected default sprint speed, got %g", c.SprintSpeed)
	}
}

func TestLoadMalformedFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	c, err := Load(path)
	if err == nil {
		t.Error("Malformed config should surface an error")
	}
	if c != Default() {
		t.Error("Malformed config should fall back to defaults")
	}
}

func TestLoadSanitizesStepping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.json")
	if err := os.WriteFile(path, []byte(`{"physics_hz": 0, "max_substeps": -1}`), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.PhysicsHz != Default().PhysicsHz {
		t.Errorf("Expected physics rate restored to default, got %d", c.PhysicsHz)
	}
	if c.MaxSubsteps != Default().MaxSubsteps {
		t.Errorf("Expected substep bound restored to default, got %d", c.MaxSubsteps)
	}
}

func TestFixedTimestep(t *testing.T) {
	c := Default()
	want := 1.0 / 144.0
	if diff := float64(c.FixedTimestep()) - want; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("Expected fixed timestep %g, got %g", want, c.FixedTimestep())
	}
}
