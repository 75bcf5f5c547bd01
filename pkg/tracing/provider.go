package tracing

import (
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Options selects how spans leave the process.
type Options struct {
	ServiceName    string
	ServiceVersion string
	// Exporter is "stdout" or "none". With "none" spans are still recorded
	// and sampled but never exported.
	Exporter string
	// Writer receives stdout exports. Defaults to os.Stderr so spans do not
	// interleave with the JSON logs on stdout.
	Writer io.Writer
}

// NewTracerProvider builds an SDK tracer provider. The caller installs it
// with otel.SetTracerProvider and must call Shutdown to flush pending spans.
func NewTracerProvider(opts Options) (*sdktrace.TracerProvider, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", opts.ServiceName),
		attribute.String("service.version", opts.ServiceVersion),
	)
	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}

	switch opts.Exporter {
	case "stdout":
		w := opts.Writer
		if w == nil {
			w = os.Stderr
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("create stdout trace exporter: %w", err)
		}
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
	case "none", "":
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", opts.Exporter)
	}

	return sdktrace.NewTracerProvider(providerOpts...), nil
}
