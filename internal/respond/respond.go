// Package respond renders every non-success response in the shared error
// envelope. Install routes huma's own errors through the same renderer, so
// query binding failures, unknown routes and panics all look alike.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	apiinternal "github.com/janisto/huma-items-filter/internal/api"
	"github.com/janisto/huma-items-filter/internal/filter"
	appmiddleware "github.com/janisto/huma-items-filter/internal/middleware"
)

const (
	codeRedirect         = "REDIRECT"
	codeNotFound         = "NOT_FOUND"
	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	codeInternal         = "INTERNAL_SERVER_ERROR"

	queryLocation = "query."
)

// Methods tried against the route tree when building an Allow header.
var allowCandidates = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

var installOnce sync.Once

// Install replaces huma.NewError and huma.NewErrorWithContext with the
// envelope renderer. Only the first call has an effect.
func Install() {
	installOnce.Do(func() {
		huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
			return newEnvelopeError(context.Background(), status, "", msg, errs...)
		}
		huma.NewErrorWithContext = func(hctx huma.Context, status int, msg string, errs ...error) huma.StatusError {
			ctx := context.Background()
			if hctx != nil {
				ctx = hctx.Context()
			}
			return newEnvelopeError(ctx, status, "", msg, errs...)
		}
	})
}

// WriteRedirect answers with status and a Location header. The body is an
// envelope so clients that ignore redirects still get a structured reply.
func WriteRedirect(w http.ResponseWriter, r *http.Request, status int, location string) {
	w.Header().Set("Location", location)
	writeEnvelope(w, r, newEnvelopeError(r.Context(), status, codeRedirect, ""))
}

// NotFoundHandler renders unknown routes.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, r, newEnvelopeError(r.Context(), http.StatusNotFound, codeNotFound, "resource not found"))
	}
}

// MethodNotAllowedHandler renders known routes hit with the wrong method and
// lists the accepted ones in Allow.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		writeEnvelope(w, r, newEnvelopeError(r.Context(), http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed"))
	}
}

// Recoverer turns a handler panic into a 500 envelope and logs the stack.
// http.ErrAbortHandler is re-panicked so net/http can abort the connection.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				err = fmt.Errorf("panic serving %s %s: %w\n%s", r.Method, r.URL.Path, err, debug.Stack())
				writeEnvelope(w, r, newEnvelopeError(r.Context(), http.StatusInternalServerError, codeInternal, "internal server error", err))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// envelopeError is both a huma.StatusError and the body huma serializes for it.
type envelopeError struct {
	apiinternal.Envelope[struct{}]
	status int
}

func (e *envelopeError) Error() string {
	if e.Envelope.Error != nil && e.Envelope.Error.Message != "" {
		return e.Envelope.Error.Message
	}
	return http.StatusText(e.status)
}

func (e *envelopeError) GetStatus() int {
	return e.status
}

// newEnvelopeError builds and logs an error envelope. An empty code is
// derived from the status; an empty msg falls back to the status text.
func newEnvelopeError(ctx context.Context, status int, code, msg string, errs ...error) *envelopeError {
	if code == "" {
		code = statusCodeName(status)
	}
	msg = messageOrDefault(status, msg)
	issues := fieldIssues(errs)

	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("code", code),
	}
	if len(issues) > 0 {
		fields = append(fields, zap.Any("details", issues))
	}
	if err := errors.Join(errs...); err != nil {
		fields = append(fields, zap.Error(err))
	}
	appmiddleware.LoggerFromContext(ctx).Log(levelForStatus(status), msg, fields...)

	return &envelopeError{
		Envelope: apiinternal.NewErrorEnvelope[struct{}](appmiddleware.TraceIDFromContext(ctx), code, msg, issues),
		status:   status,
	}
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, e *envelopeError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e.Envelope); err != nil {
		appmiddleware.LogError(r.Context(), "failed to write error envelope", err, zap.Int("status", e.status))
	}
}

// fieldIssues flattens errors into envelope details. Filter binding errors
// expand to one issue per rejected query parameter, carrying the raw value;
// huma's own validation details keep their location and value.
func fieldIssues(errs []error) []apiinternal.FieldIssue {
	var issues []apiinternal.FieldIssue
	for _, err := range errs {
		if err == nil {
			continue
		}
		var verr *filter.ValidationError
		if errors.As(err, &verr) {
			for _, ce := range verr.Errors {
				issues = append(issues, coercionIssue(ce))
			}
			continue
		}
		var ce *filter.CoercionError
		if errors.As(err, &ce) {
			issues = append(issues, coercionIssue(ce))
			continue
		}
		if detailer, ok := err.(huma.ErrorDetailer); ok {
			if d := detailer.ErrorDetail(); d != nil {
				issues = append(issues, apiinternal.FieldIssue{Field: d.Location, Issue: d.Message, Value: d.Value})
				continue
			}
		}
		issues = append(issues, apiinternal.FieldIssue{Issue: err.Error()})
	}
	return issues
}

func coercionIssue(ce *filter.CoercionError) apiinternal.FieldIssue {
	return apiinternal.FieldIssue{
		Field: queryLocation + ce.Field,
		Issue: ce.Issue(),
		Value: ce.Value,
	}
}

func levelForStatus(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// allowedMethods matches the request path against chi's route tree once per
// candidate method.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}
	path := rctx.RoutePath
	if path == "" {
		path = r.URL.RawPath
	}
	if path == "" {
		path = r.URL.Path
	}
	if path == "" {
		path = "/"
	}

	var allowed []string
	for _, method := range allowCandidates {
		if rctx.Routes.Match(chi.NewRouteContext(), method, path) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

// statusCodeName turns a status into an upper snake case code such as
// UNPROCESSABLE_ENTITY.
func statusCodeName(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return fmt.Sprintf("HTTP_%d", status)
	}
	return strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_").Replace(text))
}

func messageOrDefault(status int, msg string) string {
	if strings.TrimSpace(msg) != "" {
		return msg
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}
