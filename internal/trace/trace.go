// Package trace wires the OpenTelemetry SDK for pipeline debugging.
// Spans are exported as pretty-printed lines to a file sink; the
// terminal belongs to the UI. When tracing is disabled nothing is
// installed and the API's default no-op provider swallows all spans.
package trace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Provider owns the installed tracer provider and its file sink.
type Provider struct {
	tp   *sdktrace.TracerProvider
	sink *os.File
}

// Init installs a tracer provider exporting to the given file path and
// registers it globally.
func Init(path string) (*Provider, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating trace directory: %w", err)
	}
	sink, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // G304: path comes from application config
	if err != nil {
		return nil, fmt.Errorf("opening trace file: %w", err)
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(sink),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		_ = sink.Close()
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return &Provider{tp: tp, sink: sink}, nil
}

// Shutdown flushes pending spans and closes the sink.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	err := p.tp.Shutdown(ctx)
	if closeErr := p.sink.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
