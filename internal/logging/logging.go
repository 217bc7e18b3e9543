// Package logging builds the process-wide structured logger.
//
// Logs are JSON lines written by zap and exposed to the rest of the code as a
// logr.Logger, so packages depend on the logr interface only.
package logging

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = logr.Discard()
)

// New returns a JSON logger writing to stdout. The returned sync func flushes
// buffered entries and should be called before the process exits.
func New(level string, loc *time.Location) (logr.Logger, func()) {
	z := newZap(zapcore.Lock(os.Stdout), level, loc)
	return zapr.NewLogger(z), func() { _ = z.Sync() }
}

// NewWithWriter returns a JSON logger writing to w.
func NewWithWriter(w io.Writer, level string, loc *time.Location) logr.Logger {
	return zapr.NewLogger(newZap(zapcore.AddSync(w), level, loc))
}

func newZap(ws zapcore.WriteSyncer, level string, loc *time.Location) *zap.Logger {
	if loc == nil {
		loc = time.UTC
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.MessageKey = "msg"
	enc.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(t.In(loc).Format(time.RFC3339Nano))
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), ws, zap.NewAtomicLevelAt(lvl))
	return zap.New(core)
}

// Logger returns the global logger.
func Logger() logr.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger sets the global logger.
func SetLogger(l logr.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

type requestIDKey struct{}

// WithRequestID stores the request ID in ctx so log lines written deeper in
// the call chain can be correlated with the access log.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
