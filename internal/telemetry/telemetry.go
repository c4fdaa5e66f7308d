package telemetry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"

	"github.com/yorlang/yorlang/internal/errdef"
	"github.com/yorlang/yorlang/internal/interp"
)

var tracerName = "github.com/yorlang/yorlang/internal/telemetry"

const (
	PhaseParse     = "parse"
	PhaseInterpret = "interpret"
)

// Instrumenter opens one span per program run.
type Instrumenter interface {
	Start(ctx context.Context, info RunStart) (context.Context, RunSpan)
	Shutdown(ctx context.Context) error
}

type RunStart struct {
	Path string
	Mode string
	Size int
}

type RunResult struct {
	Err   error
	Steps int
}

// RunSpan is the span of a single run. Phases nest under it and routine
// calls are recorded on it as events.
type RunSpan interface {
	Phase(ctx context.Context, name string) (context.Context, PhaseSpan)
	RecordCall(ev interp.CallEvent)
	End(result RunResult)
}

type PhaseSpan interface {
	End(err error)
}

type providerOptions struct {
	exporter       sdktrace.SpanExporter
	spanProcessors []sdktrace.SpanProcessor
}

type Option func(*providerOptions)

func WithSpanProcessor(proc sdktrace.SpanProcessor) Option {
	return func(opts *providerOptions) {
		if proc != nil {
			opts.spanProcessors = append(opts.spanProcessors, proc)
		}
	}
}

func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(opts *providerOptions) {
		if exp != nil {
			opts.exporter = exp
		}
	}
}

type manager struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	shutdown sync.Once
}

// New returns a no-op instrumenter when cfg is disabled and no exporter
// or processor is supplied.
func New(cfg Config, opts ...Option) (Instrumenter, error) {
	builder := providerOptions{}
	for _, opt := range opts {
		opt(&builder)
	}

	if !cfg.Enabled() && builder.exporter == nil && len(builder.spanProcessors) == 0 {
		return Noop(), nil
	}

	res, err := resource.New(
		context.Background(),
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(buildResourceAttributes(cfg)...),
	)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeConfig, err, "telemetry resource")
	}

	exporter := builder.exporter
	if exporter == nil && cfg.Enabled() {
		exporter, err = newExporter(cfg)
		if err != nil {
			return nil, errdef.Wrap(errdef.CodeConfig, err, "telemetry exporter")
		}
	}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if exporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}
	for _, proc := range builder.spanProcessors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(proc))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)
	return &manager{tracer: tp.Tracer(tracerName), provider: tp}, nil
}

func (m *manager) Start(ctx context.Context, info RunStart) (context.Context, RunSpan) {
	attrs := []attribute.KeyValue{
		attribute.Int("yorlang.source.bytes", info.Size),
	}
	if p := strings.TrimSpace(info.Path); p != "" {
		attrs = append(attrs, attribute.String("yorlang.source.path", p))
	}
	if mode := strings.TrimSpace(info.Mode); mode != "" {
		attrs = append(attrs, attribute.String("yorlang.mode", mode))
	}
	ctx, span := m.tracer.Start(
		ctx,
		spanNameFor(info),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, &runSpan{tracer: m.tracer, span: span}
}

func (m *manager) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	var shutdownErr error
	m.shutdown.Do(func() {
		shutdownErr = m.provider.Shutdown(ctx)
	})
	return shutdownErr
}

type runSpan struct {
	tracer trace.Tracer
	span   trace.Span

	mu    sync.Mutex
	calls int
}

func (rs *runSpan) Phase(ctx context.Context, name string) (context.Context, PhaseSpan) {
	if rs == nil || rs.span == nil {
		return ctx, noopPhase{}
	}
	ctx, span := rs.tracer.Start(ctx, "yorlang."+name)
	return ctx, &phaseSpan{span: span}
}

func (rs *runSpan) RecordCall(ev interp.CallEvent) {
	if rs == nil || rs.span == nil {
		return
	}
	rs.mu.Lock()
	rs.calls++
	rs.mu.Unlock()

	attrs := []attribute.KeyValue{
		attribute.String("yorlang.call.name", ev.Name),
		attribute.Bool("yorlang.call.helper", ev.Helper),
		attribute.Int("yorlang.call.args", ev.Args),
		attribute.Int("yorlang.call.depth", ev.Depth),
	}
	if ev.Pos.IsValid() {
		attrs = append(attrs, attribute.String("yorlang.call.pos", ev.Pos.String()))
	}
	rs.span.AddEvent("yorlang.call", trace.WithAttributes(attrs...))
}

func (rs *runSpan) End(result RunResult) {
	if rs == nil || rs.span == nil {
		return
	}
	rs.mu.Lock()
	calls := rs.calls
	rs.mu.Unlock()

	rs.span.SetAttributes(
		attribute.Int("yorlang.steps", result.Steps),
		attribute.Int("yorlang.calls", calls),
	)
	endWithErr(rs.span, result.Err)
}

type phaseSpan struct {
	span trace.Span
}

func (ps *phaseSpan) End(err error) {
	if ps == nil || ps.span == nil {
		return
	}
	endWithErr(ps.span, err)
}

func endWithErr(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("yorlang.error.code", string(errdef.CodeOf(err))))
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "OK")
	}
	span.End()
}

func Noop() Instrumenter {
	return noopInstrumenter{}
}

type noopInstrumenter struct{}

type noopRun struct{}

type noopPhase struct{}

func (noopInstrumenter) Start(ctx context.Context, _ RunStart) (context.Context, RunSpan) {
	return ctx, noopRun{}
}

func (noopInstrumenter) Shutdown(context.Context) error { return nil }

func (noopRun) Phase(ctx context.Context, _ string) (context.Context, PhaseSpan) {
	return ctx, noopPhase{}
}

func (noopRun) RecordCall(interp.CallEvent) {}

func (noopRun) End(RunResult) {}

func (noopPhase) End(error) {}

func newExporter(cfg Config) (sdktrace.SpanExporter, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("telemetry endpoint is required")
	}

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clientOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithDialOption(grpc.WithUserAgent(userAgent(cfg))),
	}
	if cfg.Insecure {
		clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		clientOpts = append(clientOpts, otlptracegrpc.WithHeaders(cfg.Headers))
	}

	client := otlptracegrpc.NewClient(clientOpts...)
	return otlptrace.New(ctx, client)
}

func buildResourceAttributes(cfg Config) []attribute.KeyValue {
	name := cfg.ServiceName
	if strings.TrimSpace(name) == "" {
		name = DefaultServiceName
	}
	attrs := []attribute.KeyValue{semconv.ServiceName(name)}
	if strings.TrimSpace(cfg.Version) != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.Version))
	}
	return attrs
}

func userAgent(cfg Config) string {
	v := strings.TrimSpace(cfg.Version)
	if v == "" {
		v = "dev"
	}
	return DefaultServiceName + "/" + v
}

func spanNameFor(info RunStart) string {
	if p := strings.TrimSpace(info.Path); p != "" {
		return "yorlang.run " + p
	}
	return "yorlang.run"
}
