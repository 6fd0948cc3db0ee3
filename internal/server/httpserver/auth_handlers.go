package httpserver

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/server/forms"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"github.com/julienschmidt/httprouter"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *credentials) fromForm(v url.Values) error {
	c.Username = v.Get("username")
	c.Password = v.Get("password")
	return nil
}

type loginHint struct {
	Action string   `json:"action"`
	Method string   `json:"method"`
	Fields []string `json:"fields"`
}

func (s *HTTPServer) loginHint(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, loginHint{
		Action: common.LoginPath,
		Method: http.MethodPost,
		Fields: []string{"username", "password"},
	})
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	var in credentials
	if err := decodeBody(w, r, &in, in.fromForm); err != nil {
		s.fail(w, r, err)
		return
	}

	in.Username = strings.TrimSpace(in.Username)

	allowed, err := s.limiter.Attempt(ctx, in.Username)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !allowed {
		s.logger.Warn(ctx, "login throttled", "username", in.Username)
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many failed attempts"})
		return
	}

	subject, err := s.auth.LoginWithCredentials(ctx, in.Username, in.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.limiter.Reset(ctx, in.Username); err != nil {
		s.logger.Error(ctx, "reset login failures", "error", err)
	}

	s.startSession(w, r, subject, http.StatusOK)
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var form forms.UserForm
	fromForm := func(v url.Values) error {
		form.Username = v.Get("username")
		form.Email = v.Get("email")
		form.Password = v.Get("password")
		form.Password2 = v.Get("password2")
		return nil
	}
	if err := decodeBody(w, r, &form, fromForm); err != nil {
		s.fail(w, r, err)
		return
	}

	subject, err := s.auth.Register(r.Context(), form)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info(r.Context(), "registered", "user_id", subject.ID)

	s.startSession(w, r, subject, http.StatusCreated)
}

// startSession sets the cookie and answers with the subject, or redirects a
// browser form post to the todo list.
func (s *HTTPServer) startSession(w http.ResponseWriter, r *http.Request, subject *models.Subject, status int) {
	if err := s.auth.StartSession(w, subject); err != nil {
		s.fail(w, r, err)
		return
	}
	if isBrowserForm(r) {
		http.Redirect(w, r, "/todos", http.StatusFound)
		return
	}
	writeJSON(w, status, subject)
}

func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.auth.Logout(w)
	http.Redirect(w, r, common.LoginPath, http.StatusFound)
}

func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	subject, _ := SubjectFromContext(r.Context())
	writeJSON(w, http.StatusOK, subject)
}
