package capability

import (
	"testing"

	"github.com/AdityaBoddepalli/HoverPeek/models"
)

func testConfig() models.Config {
	cfg := models.DefaultConfig()
	cfg.APIKeyEnv = "HOVERPEEK_TEST_KEY"
	return cfg
}

func TestNewRegistry_NoKey(t *testing.T) {
	t.Setenv("HOVERPEEK_TEST_KEY", "")

	r := NewRegistry(testConfig(), nil)

	if got := r.Snapshot().State; got != StateUnavailable {
		t.Errorf("state = %q, want unavailable without a key", got)
	}
}

func TestNewRegistry_KeyPresent(t *testing.T) {
	t.Setenv("HOVERPEEK_TEST_KEY", "sk-test")

	r := NewRegistry(testConfig(), nil)

	status := r.Snapshot()
	if status.State != StateDownloadable {
		t.Errorf("state = %q, want downloadable with a key", status.State)
	}
	if status.Model == "" {
		t.Error("snapshot missing model name")
	}
}

func TestNewRegistry_PreviewDisabled(t *testing.T) {
	t.Setenv("HOVERPEEK_TEST_KEY", "sk-test")

	cfg := testConfig()
	cfg.DisablePreview = true

	if got := NewRegistry(cfg, nil).Snapshot().State; got != StateUnavailable {
		t.Errorf("state = %q, want unavailable when previews are disabled", got)
	}
}

func TestDownload_Unavailable(t *testing.T) {
	t.Setenv("HOVERPEEK_TEST_KEY", "")

	r := NewRegistry(testConfig(), nil)
	if err := r.Download(nil); err == nil {
		t.Error("Download() error = nil, want unavailable error")
	}
}

func TestMarkAvailable(t *testing.T) {
	t.Setenv("HOVERPEEK_TEST_KEY", "sk-test")

	r := NewRegistry(testConfig(), nil)
	r.MarkAvailable()

	status := r.Snapshot()
	if status.State != StateAvailable {
		t.Errorf("state = %q, want available after a successful prompt", status.State)
	}
	if status.Progress != 1 {
		t.Errorf("progress = %v, want 1", status.Progress)
	}
}

func TestMarkAvailable_DoesNotResurrect(t *testing.T) {
	t.Setenv("HOVERPEEK_TEST_KEY", "")

	r := NewRegistry(testConfig(), nil)
	r.MarkAvailable()

	if got := r.Snapshot().State; got != StateUnavailable {
		t.Errorf("state = %q, want unavailable to stay terminal", got)
	}
}

func TestSnapshot_IsImmutable(t *testing.T) {
	t.Setenv("HOVERPEEK_TEST_KEY", "sk-test")

	r := NewRegistry(testConfig(), nil)
	before := r.Snapshot()
	r.MarkAvailable()

	if before.State != StateDownloadable {
		t.Errorf("earlier snapshot mutated to %q", before.State)
	}
}

func TestNewTextSession_Unavailable(t *testing.T) {
	t.Setenv("HOVERPEEK_TEST_KEY", "")

	r := NewRegistry(testConfig(), nil)
	if _, err := r.NewTextSession(); err == nil {
		t.Error("NewTextSession() error = nil, want error without capability")
	}
}
