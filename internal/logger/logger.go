package logger

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"os"
	"runtime"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Active sink, slog or zap depending on LOG_FORMAT
	sink logSink = newSlogSink(io.Discard, "text", slog.LevelInfo)
	// Log level controlled by environment variable
	logLevel slog.Level
	// Whether detailed logging is enabled
	detailedLogging bool
	// Whether tracing is enabled
	tracingEnabled bool
	// OpenTelemetry tracer
	tracer trace.Tracer
	// Tracer provider for shutdown
	tracerProvider *sdktrace.TracerProvider
	// Where log lines and spans are written
	output io.Writer = os.Stdout
	// Log file opened by InitWithConfig, closed by Shutdown
	logFile io.Closer
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level           string // DEBUG, INFO, WARN, ERROR
	Format          string // json, text or zap
	DetailedLogging bool   // Enable detailed logs
	TracingEnabled  bool   // Enable OpenTelemetry tracing
	File            string // Log file; empty means stdout
}

// Init initializes the global logger and tracer based on environment variables
func Init() error {
	config := LoadConfigFromEnv()
	return InitWithConfig(config)
}

// LoadConfigFromEnv loads logging configuration from environment variables
func LoadConfigFromEnv() LogConfig {
	return LogConfig{
		Level:           getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format:          getEnvOrDefault("LOG_FORMAT", "json"),
		DetailedLogging: getEnvOrDefault("LOG_DETAILED", "false") == "true",
		TracingEnabled:  getEnvOrDefault("LOG_TRACING_ENABLED", "false") == "true",
		File:            os.Getenv("LOG_FILE"),
	}
}

// InitWithConfig initializes the logger and tracer with specific configuration
func InitWithConfig(config LogConfig) error {
	logLevel = parseLogLevel(config.Level)
	detailedLogging = config.DetailedLogging
	tracingEnabled = config.TracingEnabled

	closeLogFile()
	output = os.Stdout
	if config.File != "" {
		f, err := os.OpenFile(config.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		output = f
		logFile = f
	}
	return initSink(output, config)
}

// InitWithWriter is InitWithConfig with an explicit destination, used by tests.
func InitWithWriter(w io.Writer, config LogConfig) error {
	logLevel = parseLogLevel(config.Level)
	detailedLogging = config.DetailedLogging
	tracingEnabled = config.TracingEnabled
	output = w
	return initSink(w, config)
}

func initSink(w io.Writer, config LogConfig) error {
	if strings.EqualFold(config.Format, "zap") {
		sink = newZapSink(w, logLevel)
	} else {
		sink = newSlogSink(w, config.Format, logLevel)
	}

	if tracingEnabled {
		if err := initTracer(w); err != nil {
			sink.log(context.Background(), slog.LevelWarn, "Failed to initialize OpenTelemetry tracer, tracing disabled", "error", err)
			tracingEnabled = false
		}
	}
	return nil
}

// initTracer initializes the OpenTelemetry tracer
func initTracer(w io.Writer) error {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return err
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName("crypto-narrator"),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return err
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	tracer = otel.Tracer("crypto-narrator")
	return nil
}

// Shutdown flushes the active sink and shuts down the tracer provider
func Shutdown(ctx context.Context) error {
	sink.sync()
	var err error
	if tracerProvider != nil {
		// Spans are exported to the log file, so it stays open until here.
		err = tracerProvider.Shutdown(ctx)
		tracerProvider = nil
	}
	closeLogFile()
	return err
}

func closeLogFile() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// logSink is the backend a log line is finally written to.
type logSink interface {
	log(ctx context.Context, level slog.Level, msg string, args ...any)
	sync()
}

type slogSink struct{ l *slog.Logger }

func newSlogSink(w io.Writer, format string, level slog.Level) *slogSink {
	// Source is added manually in logWithTrace to get the correct caller
	opts := &slog.HandlerOptions{Level: level, AddSource: false}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &slogSink{l: slog.New(handler)}
}

func (s *slogSink) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	s.l.Log(ctx, level, msg, args...)
}

func (s *slogSink) sync() {}

type zapSink struct{ l *zap.SugaredLogger }

func newZapSink(w io.Writer, level slog.Level) *zapSink {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(w),
		zapLevel(level),
	)
	return &zapSink{l: zap.New(core).Sugar()}
}

func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level <= slog.LevelDebug:
		return zapcore.DebugLevel
	case level <= slog.LevelInfo:
		return zapcore.InfoLevel
	case level <= slog.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func (s *zapSink) log(_ context.Context, level slog.Level, msg string, args ...any) {
	for i, a := range args {
		// zap renders slog groups poorly; flatten them to their string form
		if v, ok := a.(slog.Value); ok {
			args[i] = v.String()
		}
	}
	switch {
	case level <= slog.LevelDebug:
		s.l.Debugw(msg, args...)
	case level <= slog.LevelInfo:
		s.l.Infow(msg, args...)
	case level <= slog.LevelWarn:
		s.l.Warnw(msg, args...)
	default:
		s.l.Errorw(msg, args...)
	}
}

func (s *zapSink) sync() { _ = s.l.Sync() }

// getTraceAttrs extracts trace ID and span ID from context for logging
func getTraceAttrs(ctx context.Context) []any {
	if !tracingEnabled {
		return nil
	}
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}
	return []any{
		"trace_id", span.SpanContext().TraceID().String(),
		"span_id", span.SpanContext().SpanID().String(),
	}
}

// Debug logs a debug message
func Debug(ctx context.Context, msg string, args ...any) {
	if !detailedLogging {
		return
	}
	logWithTrace(ctx, slog.LevelDebug, msg, 2, args...)
}

// Info logs an info message
func Info(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelInfo, msg, 2, args...)
}

// Warn logs a warning message
func Warn(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelWarn, msg, 2, args...)
}

// Error logs an error message
func Error(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelError, msg, 2, args...)
}

// ErrorWithErr logs an error message with an error object
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	recordSpanError(ctx, err)
	allArgs := append([]any{"error", err}, args...)
	logWithTrace(ctx, slog.LevelError, msg, 2, allArgs...)
}

// DebugSkip, InfoSkip and ErrorWithErrSkip report the caller skip frames
// further up, so middleware wrappers log their caller's location.
func DebugSkip(ctx context.Context, skip int, msg string, args ...any) {
	if !detailedLogging {
		return
	}
	logWithTrace(ctx, slog.LevelDebug, msg, 2+skip, args...)
}

func InfoSkip(ctx context.Context, skip int, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelInfo, msg, 2+skip, args...)
}

func WarnSkip(ctx context.Context, skip int, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelWarn, msg, 2+skip, args...)
}

func ErrorWithErrSkip(ctx context.Context, skip int, msg string, err error, args ...any) {
	recordSpanError(ctx, err)
	allArgs := append([]any{"error", err}, args...)
	logWithTrace(ctx, slog.LevelError, msg, 2+skip, allArgs...)
}

func recordSpanError(ctx context.Context, err error) {
	if !tracingEnabled || err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// logWithTrace logs a message with trace ID and span ID if available
// skip parameter indicates how many stack frames to skip to get the actual caller
func logWithTrace(ctx context.Context, level slog.Level, msg string, skip int, args ...any) {
	if traceAttrs := getTraceAttrs(ctx); traceAttrs != nil {
		args = append(traceAttrs, args...)
	}

	if detailedLogging {
		if pc, file, line, ok := runtime.Caller(skip); ok {
			if fn := runtime.FuncForPC(pc); fn != nil {
				args = append(args, "source", slog.GroupValue(
					slog.String("function", fn.Name()),
					slog.String("file", file),
					slog.Int("line", line),
				))
			}
		}
	}

	sink.log(ctx, level, msg, args...)
}

// OperationTimer helps measure operation duration with OpenTelemetry spans
type OperationTimer struct {
	ctx    context.Context
	span   trace.Span
	start  time.Time
	fields []any
}

// StartOperation starts timing an operation with an OpenTelemetry span
func StartOperation(ctx context.Context, operation string, fields ...any) *OperationTimer {
	var span trace.Span
	if tracingEnabled && tracer != nil {
		ctx, span = tracer.Start(ctx, operation, trace.WithAttributes(toAttributes(fields)...))
	}

	Debug(ctx, "Operation started", append([]any{"operation", operation}, fields...)...)

	return &OperationTimer{
		ctx:    ctx,
		span:   span,
		start:  time.Now(),
		fields: fields,
	}
}

func toAttributes(fields []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case string:
			attrs = append(attrs, attribute.String(key, v))
		case int:
			attrs = append(attrs, attribute.Int(key, v))
		case int64:
			attrs = append(attrs, attribute.Int64(key, v))
		case float64:
			attrs = append(attrs, attribute.Float64(key, v))
		case bool:
			attrs = append(attrs, attribute.Bool(key, v))
		}
	}
	return attrs
}

// End completes the operation timer and logs the duration
func (ot *OperationTimer) End(additionalFields ...any) {
	duration := time.Since(ot.start)

	if tracingEnabled && ot.span != nil {
		ot.span.SetAttributes(attribute.Int64("duration_ms", duration.Milliseconds()))
		ot.span.SetAttributes(toAttributes(additionalFields)...)
		ot.span.SetStatus(codes.Ok, "completed")
		ot.span.End()
	}

	fields := append(append([]any{}, ot.fields...), "duration_ms", duration.Milliseconds())
	fields = append(fields, additionalFields...)
	Debug(ot.ctx, "Operation completed", fields...)
}

// EndWithError completes the operation timer with an error
func (ot *OperationTimer) EndWithError(err error, additionalFields ...any) {
	duration := time.Since(ot.start)

	if tracingEnabled && ot.span != nil {
		ot.span.SetAttributes(attribute.Int64("duration_ms", duration.Milliseconds()))
		ot.span.RecordError(err)
		ot.span.SetStatus(codes.Error, err.Error())
		ot.span.End()
	}

	fields := append(append([]any{}, ot.fields...), "duration_ms", duration.Milliseconds(), "error", err)
	fields = append(fields, additionalFields...)
	logWithTrace(ot.ctx, slog.LevelError, "Operation failed", 2, fields...)
}

// GetContext returns the context with the span
func (ot *OperationTimer) GetContext() context.Context {
	return ot.ctx
}

// Challenge logs a challenge verification attempt (always logged regardless of level)
func Challenge(ctx context.Context, sessionID string, passed bool, fields ...any) {
	addSpanEvent(ctx, "challenge_attempt",
		attribute.String("session_id", sessionID),
		attribute.Bool("passed", passed),
	)
	allFields := append([]any{
		"type", "CHALLENGE",
		"session_id", sessionID,
		"passed", passed,
	}, fields...)
	logWithTrace(ctx, slog.LevelInfo, "Challenge attempt", 2, allFields...)
}

// Narrative logs a completed generation. The text itself is never logged.
func Narrative(ctx context.Context, sessionID, model string, chars int, fields ...any) {
	addSpanEvent(ctx, "narrative_generated",
		attribute.String("session_id", sessionID),
		attribute.String("model", model),
		attribute.Int("chars", chars),
	)
	allFields := append([]any{
		"type", "NARRATIVE",
		"session_id", sessionID,
		"model", model,
		"chars", chars,
	}, fields...)
	logWithTrace(ctx, slog.LevelInfo, "Narrative generated", 2, allFields...)
}

// Dispatch logs a webhook delivery attempt
func Dispatch(ctx context.Context, target string, statusCode int, succeeded bool, fields ...any) {
	addSpanEvent(ctx, "webhook_dispatch",
		attribute.String("target", target),
		attribute.Int("status_code", statusCode),
		attribute.Bool("succeeded", succeeded),
	)
	level := slog.LevelInfo
	if !succeeded {
		level = slog.LevelWarn
	}
	allFields := append([]any{
		"type", "DISPATCH",
		"target", target,
		"status_code", statusCode,
		"succeeded", succeeded,
	}, fields...)
	logWithTrace(ctx, level, "Webhook dispatch", 2, allFields...)
}

func addSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	if !tracingEnabled {
		return
	}
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}

// Mask hides all but the first and last 4 characters of a secret.
func Mask(s string) string {
	if len(s) <= 8 {
		if len(s) == 0 {
			return "(not set)"
		}
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// MaskURL reduces a URL to scheme and host. Webhook URLs carry their token in
// the path, so no part of the path is kept.
func MaskURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "(not set)"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "****"
	}
	return u.Scheme + "://" + u.Host
}
