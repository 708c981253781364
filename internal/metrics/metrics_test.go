package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/txk/image-augmentor/pkg/types"
)

func TestObserveFile(t *testing.T) {
	r := New()

	r.ObserveFile(types.FileResult{
		SourceWidth:  200,
		SourceHeight: 100,
		Bytes:        1000,
		Duration:     10 * time.Millisecond,
		Notices:      []types.StepNotice{{Step: "scale", Message: "skip"}},
	})
	r.ObserveFile(types.FileResult{Err: errors.New("boom")})

	if got := testutil.ToFloat64(r.filesTotal.WithLabelValues(StatusOK)); got != 1 {
		t.Errorf("expected 1 ok file, got %v", got)
	}
	if got := testutil.ToFloat64(r.filesTotal.WithLabelValues(StatusFailed)); got != 1 {
		t.Errorf("expected 1 failed file, got %v", got)
	}
	if got := testutil.ToFloat64(r.pixelsProcessed); got != 20000 {
		t.Errorf("expected 20000 pixels, got %v", got)
	}
	if got := testutil.ToFloat64(r.bytesWritten); got != 1000 {
		t.Errorf("expected 1000 bytes, got %v", got)
	}
	if got := testutil.ToFloat64(r.stepSkips.WithLabelValues("scale")); got != 1 {
		t.Errorf("expected 1 scale skip, got %v", got)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.ObserveFile(types.FileResult{})
	r.ObserveAbort()
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.ObserveAbort()

	path := filepath.Join(t.TempDir(), "augmentor.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "augmentor_runs_aborted_total 1") {
		t.Errorf("textfile missing abort counter:\n%s", data)
	}
}
