package httpserver

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/dmitrijs2005/gophtodo/internal/server/auth"
	"github.com/dmitrijs2005/gophtodo/internal/server/forms"
	"github.com/dmitrijs2005/gophtodo/internal/server/limiter"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger          { return n }

// fakeAuth keeps users in memory but signs and checks real session tokens.
type fakeAuth struct {
	mu     sync.Mutex
	users  map[string]*models.User
	nextID int64
	hasher *auth.PasswordHasher
	codec  *auth.TokenCodec
	gate   *auth.SessionGate
	// loginErr, when set, is returned by LoginWithCredentials.
	loginErr error
	// checks counts password verifications.
	checks atomic.Int64
}

func newFakeAuth(t *testing.T) *fakeAuth {
	t.Helper()
	codec, err := auth.NewTokenCodec([]byte("http-test-secret"), time.Minute)
	require.NoError(t, err)
	f := &fakeAuth{
		users:  map[string]*models.User{},
		hasher: auth.NewPasswordHasher(4),
		codec:  codec,
	}
	f.gate = auth.NewSessionGate(codec, f)
	return f
}

func (f *fakeAuth) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAuth) LoginWithCredentials(ctx context.Context, username, password string) (*models.Subject, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.checks.Add(1)
	f.mu.Lock()
	u, ok := f.users[username]
	f.mu.Unlock()
	if !ok || !f.hasher.Verify(password, u.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	return u.Subject(), nil
}

func (f *fakeAuth) LoginWithToken(ctx context.Context, token string) (*models.Subject, error) {
	return f.gate.Authenticate(ctx, token)
}

func (f *fakeAuth) StartSession(w http.ResponseWriter, s *models.Subject) error {
	token, err := f.codec.Encode(s.ID, s.Username)
	if err != nil {
		return err
	}
	auth.SetSessionCookie(w, token, time.Now().Add(f.codec.TTL()), auth.CookieConfig{})
	return nil
}

func (f *fakeAuth) Logout(w http.ResponseWriter) {
	auth.ClearSessionCookie(w, auth.CookieConfig{})
}

func (f *fakeAuth) Register(ctx context.Context, form forms.UserForm) (*models.Subject, error) {
	form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}
	hash, err := f.hasher.Hash(form.Password)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	if _, ok := f.users[form.Username]; ok {
		f.mu.Unlock()
		return nil, common.ErrUsernameTaken
	}
	f.nextID++
	f.users[form.Username] = &models.User{ID: f.nextID, UserName: form.Username, Email: form.Email, PasswordHash: hash}
	f.mu.Unlock()
	return f.LoginWithCredentials(ctx, form.Username, form.Password)
}

type fakeTodos struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.Todo
	err    error
}

func newFakeTodos() *fakeTodos {
	return &fakeTodos{byID: map[int64]*models.Todo{}}
}

func (f *fakeTodos) List(ctx context.Context, userID int64) ([]*models.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Todo
	for _, t := range f.byID {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTodos) Create(ctx context.Context, userID int64, form forms.TodoForm) (*models.Todo, error) {
	form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := &models.Todo{ID: f.nextID, UserID: userID, Title: form.Title, Description: form.Description, Importance: form.Importance}
	f.byID[t.ID] = t
	return t, nil
}

func (f *fakeTodos) owned(userID, id int64) (*models.Todo, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if t.UserID != userID {
		return nil, common.ErrorForbidden
	}
	return t, nil
}

func (f *fakeTodos) Get(ctx context.Context, userID, id int64) (*models.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.owned(userID, id)
}

func (f *fakeTodos) Update(ctx context.Context, userID, id int64, form forms.TodoForm) (*models.Todo, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.owned(userID, id)
	if err != nil {
		return nil, err
	}
	t.Title, t.Description, t.Importance = form.Title, form.Description, form.Importance
	return t, nil
}

func (f *fakeTodos) ToggleComplete(ctx context.Context, userID, id int64) (*models.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.owned(userID, id)
	if err != nil {
		return nil, err
	}
	t.Complete = !t.Complete
	return t, nil
}

func (f *fakeTodos) Delete(ctx context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.owned(userID, id); err != nil {
		return err
	}
	delete(f.byID, id)
	return nil
}

func newTestServer(t *testing.T) (*HTTPServer, *fakeAuth, *fakeTodos) {
	t.Helper()
	lim, err := limiter.NewMemoryLimiter(limiter.Config{MaxFailures: 3, Window: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { lim.Close() })

	a := newFakeAuth(t)
	td := newFakeTodos()
	return NewHTTPServer("127.0.0.1:0", nopLogger{}, a, td, lim), a, td
}

func formFor(name string) forms.UserForm {
	return forms.UserForm{Username: name, Email: name + "@example.com", Password: "wonderland"}
}

func todoForm(title string) forms.TodoForm {
	return forms.TodoForm{Title: title, Importance: 3}
}
