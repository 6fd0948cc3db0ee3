// Package httpserver exposes the auth and todo services over HTTP. Sessions
// travel in the access_token cookie.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/dmitrijs2005/gophtodo/internal/server/forms"
	"github.com/dmitrijs2005/gophtodo/internal/server/limiter"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"github.com/julienschmidt/httprouter"
)

const shutdownTimeout = 10 * time.Second

type authService interface {
	LoginWithCredentials(ctx context.Context, username, password string) (*models.Subject, error)
	LoginWithToken(ctx context.Context, token string) (*models.Subject, error)
	StartSession(w http.ResponseWriter, subject *models.Subject) error
	Logout(w http.ResponseWriter)
	Register(ctx context.Context, form forms.UserForm) (*models.Subject, error)
}

type todoService interface {
	List(ctx context.Context, userID int64) ([]*models.Todo, error)
	Create(ctx context.Context, userID int64, form forms.TodoForm) (*models.Todo, error)
	Get(ctx context.Context, userID, id int64) (*models.Todo, error)
	Update(ctx context.Context, userID, id int64, form forms.TodoForm) (*models.Todo, error)
	ToggleComplete(ctx context.Context, userID, id int64) (*models.Todo, error)
	Delete(ctx context.Context, userID, id int64) error
}

type HTTPServer struct {
	address string
	logger  logging.Logger
	auth    authService
	todos   todoService
	limiter limiter.Limiter
	handler http.Handler
}

func NewHTTPServer(address string, l logging.Logger, as authService, ts todoService, lim limiter.Limiter) *HTTPServer {
	s := &HTTPServer{
		address: address,
		logger:  l.With("module", "http_server"),
		auth:    as,
		todos:   ts,
		limiter: lim,
	}
	s.handler = s.requestLogger(s.routes())
	return s
}

// Handler returns the fully wired handler, middleware included.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

func (s *HTTPServer) routes() *httprouter.Router {
	r := httprouter.New()

	r.GET("/healthz", s.health)
	r.GET("/", redirectTo("/todos", http.StatusFound))

	r.GET("/auth/login", s.loginHint)
	r.POST("/auth/login", s.login)
	r.POST("/auth/login-user", s.login)
	r.POST("/auth/register", s.register)
	r.POST("/auth/create-user", s.register)
	r.GET("/auth/logout", s.logout)
	r.POST("/auth/logout", s.logout)
	r.GET("/auth/me", s.requireSubject(s.me))

	r.GET("/todos", s.requireSubject(s.listTodos))
	r.POST("/todos", s.requireSubject(s.createTodo))
	r.GET("/todos/:id", s.requireSubject(s.getTodo))
	r.PUT("/todos/:id", s.requireSubject(s.updateTodo))
	r.DELETE("/todos/:id", s.requireSubject(s.deleteTodo))
	r.POST("/todos/:id/complete", s.requireSubject(s.completeTodo))

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func redirectTo(location string, code int) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		http.Redirect(w, r, location, code)
	}
}
