package buildcache

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlogObserver(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := NewSlogObserver(logger)

	obs.Info("looking up", "tag", "fingerprint.abc.ios")
	obs.Success("restored", "path", "/cache/x.app")
	obs.Warn("no token")
	obs.Error("failed", "error", "boom")
	obs.StartProgress("Downloading", 100)
	obs.UpdateProgress(50, "Downloading")
	obs.StopProgress("Downloaded")

	out := buf.String()
	assert.Contains(t, out, `level=INFO msg="looking up" tag=fingerprint.abc.ios`)
	assert.Contains(t, out, `msg=restored status=success path=/cache/x.app`)
	assert.Contains(t, out, `level=WARN msg="no token"`)
	assert.Contains(t, out, `level=ERROR msg=failed error=boom`)
	assert.Contains(t, out, `msg=Downloading total=100`)
	assert.Contains(t, out, `level=DEBUG msg=Downloading current=50`)
	assert.Contains(t, out, `msg=Downloaded`)
}

func TestNopObserver(t *testing.T) {
	t.Parallel()

	obs := NopObserver()
	assert.NotPanics(t, func() {
		obs.Info("x")
		obs.Success("x")
		obs.Warn("x")
		obs.Error("x")
		obs.StartProgress("x", 1)
		obs.UpdateProgress(1, "x")
		obs.StopProgress("x")
	})
}
