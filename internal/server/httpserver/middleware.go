package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/server/auth"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

type ctxKey string

const (
	subjectKey   ctxKey = "subject"
	requestIDKey ctxKey = "requestID"
)

const requestIDHeader = "X-Request-Id"

// SubjectFromContext returns the subject stored by requireSubject.
func SubjectFromContext(ctx context.Context) (*models.Subject, bool) {
	s, ok := ctx.Value(subjectKey).(*models.Subject)
	return s, ok && s != nil
}

// RequestIDFromContext returns the id assigned by requestLogger.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		s.logger.Info(ctx, "request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// requireSubject authenticates the session cookie and passes the subject
// to next through the request context.
func (s *HTTPServer) requireSubject(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		subject, err := s.auth.LoginWithToken(r.Context(), auth.TokenFromRequest(r))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), subjectKey, subject)
		next(w, r.WithContext(ctx), ps)
	}
}
