package httpdelivery

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/mux"

	"pratica/internal/domain"
	"pratica/internal/requestid"
)

const requestIDHeader = requestid.Header

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// requestIDMiddleware accepts a valid incoming X-Request-ID or issues a new
// one, echoes it on the response and stores it in the request context.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if !requestid.Valid(id) {
			id = requestid.New()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(requestid.NewContext(r.Context(), id)))
	})
}

func loggingMiddleware(log *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			log.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", rec.bytes,
				"duration", time.Since(start),
				"request_id", requestid.FromContext(r.Context()),
			)
		})
	}
}

// recoveryMiddleware turns a handler panic into a 500 so one bad request
// cannot take the process down. If the handler already sent headers the
// response is left as is.
func recoveryMiddleware(log *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusRecorder{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.ErrorContext(r.Context(), "handler panic",
					"panic", rec,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
					"headers_sent", sw.status != 0,
				)
				if sw.status != 0 {
					return
				}
				writeError(log, w, r, http.StatusInternalServerError, domain.ErrCodeInternal,
					publicMessage(domain.ErrCodeInternal))
			}()
			next.ServeHTTP(sw, r)
		})
	}
}

func newRouter(log *slog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = requestIDMiddleware(notFoundHandler(log))
	router.MethodNotAllowedHandler = requestIDMiddleware(methodNotAllowedHandler(log))
	router.Use(requestIDMiddleware, loggingMiddleware(log), recoveryMiddleware(log))
	return router
}
