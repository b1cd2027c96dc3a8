package config

import "testing"

func TestDefaultRaycastConfigMatchesBuiltInValues(t *testing.T) {
	cfg := DefaultRaycastConfig()
	if cfg.NewtonIters != 100 {
		t.Fatalf("got %d newton iterations, want 100", cfg.NewtonIters)
	}
	if cfg.StepSize != 0.5 {
		t.Fatalf("got %v step size, want 0.5", cfg.StepSize)
	}
}

func TestLoadWithEmptyPathUsesEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Raycast.MaxSteps != 100 {
		t.Fatalf("got %d, want 100", cfg.Raycast.MaxSteps)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load("/nonexistent/path.yaml"); err == nil {
		t.Fatal("expected an error for a missing override file")
	}
}
