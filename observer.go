package buildcache

import "log/slog"

// Observer receives informational and progress events. It is purely
// observational; no component depends on its behavior.
type Observer interface {
	Info(msg string, args ...any)
	Success(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	StartProgress(msg string, total int64)
	UpdateProgress(current int64, msg string)
	StopProgress(msg string)
}

// NewSlogObserver returns an Observer that writes structured records to
// logger. A nil logger uses slog.Default().
func NewSlogObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogObserver{logger: logger}
}

type slogObserver struct {
	logger *slog.Logger
}

func (o *slogObserver) Info(msg string, args ...any) {
	o.logger.Info(msg, args...)
}

func (o *slogObserver) Success(msg string, args ...any) {
	o.logger.Info(msg, append([]any{"status", "success"}, args...)...)
}

func (o *slogObserver) Warn(msg string, args ...any) {
	o.logger.Warn(msg, args...)
}

func (o *slogObserver) Error(msg string, args ...any) {
	o.logger.Error(msg, args...)
}

func (o *slogObserver) StartProgress(msg string, total int64) {
	o.logger.Info(msg, "total", total)
}

func (o *slogObserver) UpdateProgress(current int64, msg string) {
	o.logger.Debug(msg, "current", current)
}

func (o *slogObserver) StopProgress(msg string) {
	o.logger.Info(msg)
}

// NopObserver returns an Observer that discards all events.
func NopObserver() Observer {
	return nopObserver{}
}

type nopObserver struct{}

func (nopObserver) Info(string, ...any)          {}
func (nopObserver) Success(string, ...any)       {}
func (nopObserver) Warn(string, ...any)          {}
func (nopObserver) Error(string, ...any)         {}
func (nopObserver) StartProgress(string, int64)  {}
func (nopObserver) UpdateProgress(int64, string) {}
func (nopObserver) StopProgress(string)          {}
