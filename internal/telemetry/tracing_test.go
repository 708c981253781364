package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestSetupTracingDisabled(t *testing.T) {
	logger, _ := test.NewNullLogger()
	for _, exporter := range []string{"", "none", " NONE "} {
		shutdown, err := SetupTracing(context.Background(), TraceConfig{Exporter: exporter}, logger)
		if err != nil {
			t.Fatalf("exporter %q: unexpected error: %v", exporter, err)
		}
		if err := shutdown(context.Background()); err != nil {
			t.Errorf("exporter %q: shutdown failed: %v", exporter, err)
		}
	}
}

func TestSetupTracingErrors(t *testing.T) {
	if _, err := SetupTracing(context.Background(), TraceConfig{Exporter: "zipkin"}, nil); err == nil {
		t.Error("expected error for unsupported exporter")
	}
	if _, err := SetupTracing(context.Background(), TraceConfig{Exporter: "otlp"}, nil); err == nil {
		t.Error("expected error for otlp without endpoint")
	}
}

func TestSetupTracingStdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := SetupTracing(context.Background(), TraceConfig{
		ServiceName: "image-augmentor-test",
		Exporter:    "stdout",
		Writer:      &buf,
	}, nil)
	if err != nil {
		t.Fatalf("stdout exporter setup failed: %v", err)
	}
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	_, span := otel.Tracer("telemetry-test").Start(context.Background(), "enhance.file")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if !strings.Contains(buf.String(), "enhance.file") {
		t.Errorf("expected exported span in output, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "image-augmentor-test") {
		t.Error("expected service name in exported resource")
	}
}

func TestSetupTracingOTLPBuildsProvider(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), TraceConfig{
		ServiceName:  "image-augmentor-test",
		Exporter:     "otlp",
		OTLPEndpoint: "localhost:4318",
		OTLPInsecure: true,
	}, nil)
	if err != nil {
		t.Fatalf("otlp exporter setup failed: %v", err)
	}
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	// No collector is listening; only setup is under test.
	_ = shutdown(ctx)
}
