package logger

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors/errbase"
	"github.com/questline/mint-console/pkg/logger/slogx"
)

type (
	handleFunc func(ctx context.Context, rec slog.Record) error
	middleware func(next handleFunc) handleFunc
)

// chainHandlers wraps a slog.Handler with a middleware chain applied to each
// record before it reaches the underlying handler.
type chainHandlers struct {
	slog.Handler
	handle handleFunc
}

func newChainHandlers(handler slog.Handler, middlewares ...middleware) slog.Handler {
	handle := handler.Handle
	for i := len(middlewares) - 1; i >= 0; i-- {
		handle = middlewares[i](handle)
	}
	return &chainHandlers{Handler: handler, handle: handle}
}

func (h *chainHandlers) Handle(ctx context.Context, rec slog.Record) error {
	return h.handle(ctx, rec)
}

// errorAttrReplacer normalizes error attributes into their string form.
func errorAttrReplacer(groups []string, attr slog.Attr) slog.Attr {
	if attr.Key == slogx.ErrorKey {
		if err, ok := attr.Value.Any().(error); ok && err != nil {
			return slog.String(attr.Key, err.Error())
		}
	}
	return attr
}

// middlewareErrorStackTrace attaches the verbose error rendering and stack
// trace for wrapped errors. Enabled in debug mode only.
func middlewareErrorStackTrace() middleware {
	return func(next handleFunc) handleFunc {
		return func(ctx context.Context, rec slog.Record) error {
			rec.Attrs(func(attr slog.Attr) bool {
				if attr.Key == slogx.ErrorKey || attr.Key == "err" {
					err := attr.Value.Any()
					if err, ok := err.(error); ok && err != nil {
						rec.AddAttrs(slog.String("error_verbose", fmt.Sprintf("%+v", err)))
						if x, ok := err.(errbase.StackTraceProvider); ok {
							rec.AddAttrs(slog.Any("stack_trace", traceLines(x.StackTrace())))
						}
					}
				}
				return false
			})

			return next(ctx, rec)
		}
	}
}

func traceLines(frames errbase.StackTrace) []string {
	traceLines := make([]string, 0, len(frames))

	// Iterate in reverse to skip uninteresting, consecutive runtime frames at
	// the bottom of the trace.
	skipping := true
	for i := len(frames) - 1; i >= 0; i-- {
		pc := uintptr(frames[i]) - 1
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			traceLines = append(traceLines, "unknown")
			skipping = false
			continue
		}

		name := fn.Name()
		if skipping && strings.HasPrefix(name, "runtime.") {
			continue
		}
		skipping = false

		filename, lineNr := fn.FileLine(pc)
		traceLines = append(traceLines, fmt.Sprintf("%s %s:%d", name, filename, lineNr))
	}

	return traceLines[:len(traceLines):len(traceLines)]
}
