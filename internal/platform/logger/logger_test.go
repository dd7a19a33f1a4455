package logger

import "testing"

func TestNewModes(t *testing.T) {
	for _, env := range []string{"dev", "prod", "Production", ""} {
		log, err := New(env)
		if err != nil {
			t.Fatalf("New(%q) returned error: %v", env, err)
		}
		log.Info("logger ready")
		_ = log.Sync()
	}
}
