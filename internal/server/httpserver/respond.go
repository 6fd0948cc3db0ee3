package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/julienschmidt/httprouter"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail maps err onto a response. Auth failures are logged with their kind
// but the client only ever sees "unauthorized".
func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case common.IsAuthFailure(err):
		s.logger.Info(ctx, "auth failure", "reason", err.Error(), "path", r.URL.Path)
		unauthorized(w, r)
	case errors.Is(err, common.ErrUsernameTaken):
		writeJSON(w, http.StatusConflict, errorBody{Error: common.ErrUsernameTaken.Error()})
	case errors.Is(err, common.ErrorValidation), errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrorForbidden):
		writeJSON(w, http.StatusNotFound, errorBody{Error: common.ErrorNotFound.Error()})
	default:
		s.logger.Error(ctx, "request failed", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: common.ErrorInternal.Error()})
	}
}

// unauthorized sends browsers to the login page and everyone else a 401.
func unauthorized(w http.ResponseWriter, r *http.Request) {
	if acceptsHTML(r) {
		http.Redirect(w, r, common.LoginPath, http.StatusSeeOther)
		return
	}
	w.Header().Set("Location", common.LoginPath)
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
}

func acceptsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// isBrowserForm reports whether r is a form submitted by a browser, which
// expects a redirect instead of a JSON body.
func isBrowserForm(r *http.Request) bool {
	return !isJSON(r) && acceptsHTML(r)
}

// decodeBody fills dst from a JSON body, or from form values via fromForm
// for any other content type.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, fromForm func(url.Values) error) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return fromForm(r.PostForm)
}

func pathID(ps httprouter.Params) (int64, error) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, ps.ByName("id"))
	}
	return id, nil
}
