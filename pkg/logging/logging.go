// Package logging backs core.Logger with go.uber.org/zap (§9 "replace
// mutable global yafLog/session singletons with an explicit context struct
// passed by reference"). The renderer never reaches for a package-level
// logger; every entry point takes a core.Logger explicitly.
package logging

import (
	"go.uber.org/zap"

	"github.com/lumenforge/tracecore/pkg/core"
)

// ZapLogger adapts a *zap.SugaredLogger to core.Logger's single-method
// Printf contract, so the renderer's formatted progress lines flow through
// zap's structured sinks without the renderer package importing zap itself.
type ZapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger wraps a *zap.Logger (use zap.NewProduction()/zap.NewDevelopment()
// or a caller-supplied config) as a core.Logger.
func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{s: l.Sugar()}
}

// NewDevelopment returns a ZapLogger backed by zap's human-readable
// development config, the default this module ships with absent an
// embedder-supplied logger.
func NewDevelopment() *ZapLogger {
	l, err := zap.NewDevelopment()
	if err != nil {
		l = zap.NewNop()
	}
	return NewZapLogger(l)
}

func (z *ZapLogger) Printf(format string, args ...interface{}) {
	z.s.Infof(format, args...)
}

// Sync flushes any buffered log entries; callers should defer it after
// constructing a ZapLogger for process-lifetime use.
func (z *ZapLogger) Sync() error {
	return z.s.Sync()
}

// PassDiagnostics logs the §7 "driver aggregates counters at pass end"
// requirement as structured fields rather than a formatted string.
func (z *ZapLogger) PassDiagnostics(pass int, d core.Diagnostics) {
	z.s.Infow("pass diagnostics",
		"pass", pass,
		"nanClamped", d.NaNClamped,
		"selfIntersectSkipped", d.SelfIntersectSkipped,
		"degenerateTriangles", d.DegenerateTriangles,
		"zeroPowerLights", d.ZeroPowerLights,
		"photonDepositFailed", d.PhotonDepositFailed,
		"photonsDiscarded", d.PhotonsDiscarded,
	)
}

var _ core.Logger = (*ZapLogger)(nil)
