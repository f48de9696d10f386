package eventcore

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// StructuredLogger adapts a logiface.Logger over stumpy's JSON event
// encoder to the eventLogger surface the driver needs. A *StructuredLogger
// built over a disabled or unconfigured logiface.Logger silently drops
// every call — logiface.Logger itself is nil-receiver safe and every
// Builder method no-ops once Enabled() is false, so there is no separate
// "logging on/off" flag to thread through the core.
type StructuredLogger struct {
	log *logiface.Logger[*stumpy.Event]
}

// NewStructuredLogger builds a StructuredLogger writing newline-delimited
// JSON via stumpy, honoring any stumpy.Option (WithWriter, WithTimeField,
// ...) the caller supplies.
func NewStructuredLogger(options ...stumpy.Option) *StructuredLogger {
	return &StructuredLogger{
		log: stumpy.L.New(stumpy.L.WithStumpy(options...)),
	}
}

// NewDiscardLogger returns a StructuredLogger whose underlying logiface
// Logger has no writer configured, so every call is a no-op; useful for
// tests that want the logging code paths exercised without producing
// output.
func NewDiscardLogger() *StructuredLogger {
	return &StructuredLogger{log: logiface.New[*stumpy.Event]()}
}

func (l *StructuredLogger) logExplorationStart(root EventID) {
	l.log.Info().
		Int(`root_event`, int(root)).
		Log(`exploration start`)
}

func (l *StructuredLogger) logInconsistency(inc *Inconsistency) {
	if inc == nil {
		return
	}
	l.log.Notice().
		Str(`checker`, inc.Checker).
		Int(`event`, int(inc.Event)).
		Str(`reason`, inc.Reason).
		Log(`execution rejected`)
}

func (l *StructuredLogger) logAbort(reason string) {
	l.log.Err().
		Str(`reason`, reason).
		Log(`exploration aborted`)
}

var _ eventLogger = (*StructuredLogger)(nil)
