package dispatch

import (
	"log/slog"
	"runtime/debug"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/errors"
	"github.com/skyframe-dev/xplm-sdk/internal/callctx"
)

// Invoke runs one callback. A non-nil error makes the table return the
// callback's inert value.
type Invoke func(ctx CallContext) error

// Middleware wraps an Invoke to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
//
// Example usage:
//
//	timing := func(next dispatch.Invoke) dispatch.Invoke {
//	    return func(ctx dispatch.CallContext) error {
//	        start := time.Now()
//	        err := next(ctx)
//	        slog.Debug("callback", "label", ctx.Label(), "took", time.Since(start))
//	        return err
//	    }
//	}
type Middleware func(next Invoke) Invoke

// PanicRecoveryMiddleware converts a panic in the callback into a
// *errors.PanicError.
func PanicRecoveryMiddleware() Middleware {
	return func(next Invoke) Invoke {
		return func(ctx CallContext) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &errors.PanicError{Value: r, Callback: ctx.Kind().String(), Stack: debug.Stack()}
				}
			}()
			return next(ctx)
		}
	}
}

// ThreadMiddleware marks the callback's host thread context on tracker for
// the duration of the call and records it in the CallContext.
// Accessor callbacks inherit the context that triggered them.
func ThreadMiddleware(tracker *callctx.Tracker) Middleware {
	return func(next Invoke) Invoke {
		return func(ctx CallContext) error {
			th := ctx.Kind().Thread()
			if th == entities.ThreadNone {
				th = tracker.Current()
			}
			ctx.SetValue(callctx.ThreadKey, th)
			exit := tracker.Enter(th)
			defer exit()
			return next(ctx)
		}
	}
}

// LoggingMiddleware logs every invocation at debug level and every fault at
// error level, with the fault's structured detail.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next Invoke) Invoke {
		return func(ctx CallContext) error {
			logger.Debug("dispatch: invoking callback", "kind", ctx.Kind().String(), "label", ctx.Label(), "refcon", ctx.Refcon())
			err := next(ctx)
			if err != nil {
				detail := errors.ToErrorDetail(err)
				logger.Error("dispatch: callback failed",
					"kind", ctx.Kind().String(),
					"label", ctx.Label(),
					"type", detail.Type.String(),
					"error", detail.Message,
				)
			}
			return err
		}
	}
}
