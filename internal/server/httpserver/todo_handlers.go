package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/gophtodo/internal/server/forms"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"github.com/julienschmidt/httprouter"
)

func todoFromForm(f *forms.TodoForm) func(url.Values) error {
	return func(v url.Values) error {
		f.Title = v.Get("title")
		f.Description = v.Get("description")
		if raw := v.Get("importance"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("%w: importance must be a number", errBadRequest)
			}
			f.Importance = n
		}
		return nil
	}
}

func subjectID(r *http.Request) int64 {
	s, _ := SubjectFromContext(r.Context())
	return s.ID
}

func (s *HTTPServer) listTodos(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	list, err := s.todos.List(r.Context(), subjectID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if list == nil {
		list = []*models.Todo{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) createTodo(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var form forms.TodoForm
	if err := decodeBody(w, r, &form, todoFromForm(&form)); err != nil {
		s.fail(w, r, err)
		return
	}
	todo, err := s.todos.Create(r.Context(), subjectID(r), form)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

func (s *HTTPServer) getTodo(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := pathID(ps)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	todo, err := s.todos.Get(r.Context(), subjectID(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *HTTPServer) updateTodo(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := pathID(ps)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var form forms.TodoForm
	if err := decodeBody(w, r, &form, todoFromForm(&form)); err != nil {
		s.fail(w, r, err)
		return
	}
	todo, err := s.todos.Update(r.Context(), subjectID(r), id, form)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *HTTPServer) completeTodo(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := pathID(ps)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	todo, err := s.todos.ToggleComplete(r.Context(), subjectID(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *HTTPServer) deleteTodo(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := pathID(ps)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.todos.Delete(r.Context(), subjectID(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
