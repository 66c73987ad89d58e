// Package server exposes the compatibility check over HTTP.
//
//	GET  /healthz           liveness probe
//	GET  /version           build information
//	POST /v1/check          {"dependencies": ["a", "b"]} -> compat.Result
//	GET  /v1/check/{name}   single compat.Verdict; scoped names may be
//	                        given as /v1/check/@scope/name
//
// Every response carries an X-Request-Id header, echoed from the request or
// generated.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/newarch/pkg/buildinfo"
	"github.com/matzehuels/newarch/pkg/compat"
	apperrors "github.com/matzehuels/newarch/pkg/errors"
)

const (
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-Id"

	// MaxDependencies bounds the names accepted by one check request.
	MaxDependencies = 2000

	maxBodySize = 1 << 20
)

// Checker resolves dependency names. [*compat.Resolver] implements it.
type Checker interface {
	Resolve(ctx context.Context, names []string) (*compat.Result, error)
	ResolveOne(ctx context.Context, name string) (compat.Verdict, error)
}

// CheckRequest is the body of POST /v1/check.
type CheckRequest struct {
	Dependencies []string `json:"dependencies"`
}

// ErrorBody is the JSON form of every error response.
type ErrorBody struct {
	Error struct {
		Code    apperrors.Code `json:"code"`
		Message string         `json:"message"`
	} `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

type server struct {
	checker Checker
	logger  *log.Logger
}

// New returns the API handler. A nil logger discards output.
func New(checker Checker, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &server{checker: checker, logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.health)
	r.Get("/version", s.version)
	r.Route("/v1/check", func(r chi.Router) {
		r.Post("/", s.check)
		r.Get("/*", s.checkOne)
	})
	return r
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (s *server) version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *server) check(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.fail(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "malformed request body"))
		return
	}
	if len(req.Dependencies) > MaxDependencies {
		s.fail(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "too many dependencies: %d (max %d)", len(req.Dependencies), MaxDependencies))
		return
	}
	for _, name := range req.Dependencies {
		if err := apperrors.ValidateNpmPackageName(name); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	result, err := s.checker.Resolve(r.Context(), req.Dependencies)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) checkOne(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		s.fail(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidPackage, err, "bad package name escape"))
		return
	}
	if err := apperrors.ValidateNpmPackageName(name); err != nil {
		s.fail(w, r, err)
		return
	}

	v, err := s.checker.ResolveOne(r.Context(), name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", RequestIDFrom(r.Context()), "code", code, "err", err)
	}

	var body ErrorBody
	body.Error.Code = code
	body.Error.Message = apperrors.UserMessage(err)
	body.RequestID = RequestIDFrom(r.Context())
	writeJSON(w, status, body)
}

func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidPackage:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type ctxKey int

const requestIDKey ctxKey = 0

// RequestIDFrom returns the request id stored by the server middleware.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start).Round(time.Millisecond),
			"request_id", RequestIDFrom(r.Context()))
	})
}
