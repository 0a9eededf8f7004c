package process

import (
	"os"
	"path/filepath"
	"testing"
)

func TestShellRunner_Success(t *testing.T) {
	r := NewShellRunner()

	marker := filepath.Join(t.TempDir(), "ran")
	if err := r.Run("touch " + marker); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("Command did not run: %v", err)
	}
}

func TestShellRunner_Failure(t *testing.T) {
	r := NewShellRunner()
	if err := r.Run("exit 3"); err == nil {
		t.Error("Run should surface a non-zero exit code")
	}
}

func TestShellRunner_Background(t *testing.T) {
	r := NewShellRunner()
	// A backgrounded command must return as soon as the shell does.
	if err := r.Run("sleep 30 & echo started"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}
