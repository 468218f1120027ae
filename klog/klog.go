// Package klog is the ambient structured-logging wrapper threaded through
// Kever/Kevery, mirroring the teacher's logger.Logger field pattern
// (massifcommitter.go: `Log logger.Logger`) while backing directly onto
// go.uber.org/zap rather than the teacher's intermediate logger package,
// which this module does not depend on. See SPEC_FULL.md §2.1.
package klog

import "go.uber.org/zap"

// Logger is the narrow surface Kever/Kevery log through — never the
// global zap logger, always a value constructed once and passed down.
type Logger struct {
	z *zap.SugaredLogger
}

// New wraps a *zap.SugaredLogger.
func New(z *zap.SugaredLogger) Logger { return Logger{z: z} }

// NewNop returns a Logger that discards everything, for tests and callers
// that don't want logging wired up.
func NewNop() Logger { return Logger{z: zap.NewNop().Sugar()} }

func (l Logger) Debugw(msg string, kv ...any) {
	if l.z != nil {
		l.z.Debugw(msg, kv...)
	}
}

func (l Logger) Infow(msg string, kv ...any) {
	if l.z != nil {
		l.z.Infow(msg, kv...)
	}
}

func (l Logger) Errorw(msg string, kv ...any) {
	if l.z != nil {
		l.z.Errorw(msg, kv...)
	}
}

// Sugar exposes the underlying *zap.SugaredLogger for call sites that
// need the full zap API.
func (l Logger) Sugar() *zap.SugaredLogger { return l.z }
