package auth

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MathBio-Lab/s3-output-manager/internal/auth/ratelimit"
	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/mw"
)

// fakeUsers — репозиторий на карте, только то, что нужно ручкам auth.
type fakeUsers struct {
	byName map[string]domain.User
	passOf map[int64]string
}

func newFakeUsers(us ...domain.User) *fakeUsers {
	f := &fakeUsers{byName: map[string]domain.User{}, passOf: map[int64]string{}}
	for _, u := range us {
		f.byName[u.Username] = u
	}
	return f
}

func (f *fakeUsers) Close()                     {}
func (f *fakeUsers) Ping(context.Context) error { return nil }

func (f *fakeUsers) Create(_ context.Context, u domain.User) (domain.User, error) {
	return u, nil
}

func (f *fakeUsers) ActiveByID(_ context.Context, id int64) (domain.User, error) {
	for _, u := range f.byName {
		if u.ID == id && u.DeletedAt == nil {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeUsers) ActiveByUsername(_ context.Context, name string) (domain.User, error) {
	u, ok := f.byName[name]
	if !ok || u.DeletedAt != nil {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) ByID(ctx context.Context, id int64) (domain.User, error) {
	return f.ActiveByID(ctx, id)
}

func (f *fakeUsers) ListActive(context.Context) ([]domain.User, error)  { return nil, nil }
func (f *fakeUsers) ListDeleted(context.Context) ([]domain.User, error) { return nil, nil }

func (f *fakeUsers) Update(_ context.Context, _ int64, _ domain.UserUpdate) (domain.User, error) {
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	f.passOf[id] = hash
	return nil
}

func (f *fakeUsers) SoftDelete(context.Context, int64) error { return nil }
func (f *fakeUsers) Restore(_ context.Context, _ int64) (domain.User, error) {
	return domain.User{}, domain.ErrNotFound
}

// plainHasher сравнивает пароли как есть: argon2id в юнит-тестах ручек
// только замедляет прогон.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error)      { return "h:" + p, nil }
func (plainHasher) Verify(p, enc string) (bool, error) { return "h:"+p == enc, nil }

type fakeTokens struct{ issued string }

func (f *fakeTokens) Issue(_ context.Context, u domain.User) (domain.Token, domain.TokenClaims, error) {
	f.issued = "tok-" + u.Username
	return f.issued, domain.TokenClaims{UserID: u.ID, Username: u.Username}, nil
}

func (f *fakeTokens) Parse(_ context.Context, t domain.Token) (domain.TokenClaims, error) {
	return domain.TokenClaims{}, domain.ErrUnauth
}

func newTestHandler(users *fakeUsers) (*Handler, *fakeTokens) {
	tokens := &fakeTokens{}
	h := &Handler{
		Log:      log.New(io.Discard, "", 0),
		Users:    users,
		Tokens:   tokens,
		Hasher:   plainHasher{},
		Limiter:  ratelimit.NewMemory(3, 15*time.Minute),
		TokenTTL: 168 * time.Hour,
	}
	return h, tokens
}

func karenUser() domain.User {
	return domain.User{ID: 7, Username: "karen", PassHash: "h:secret-pass", Role: domain.RoleClient, Prefix: "karen/"}
}

func postLogin(h *Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	r.RemoteAddr = "10.1.2.3:51000"
	h.Login(w, r)
	return w
}

func TestLoginSuccessSetsSessionCookie(t *testing.T) {
	h, tokens := newTestHandler(newFakeUsers(karenUser()))

	w := postLogin(h, `{"username":"karen","password":"secret-pass"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "karen", resp.User.Username)
	assert.Equal(t, domain.RoleClient, resp.User.Role)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, mw.AuthCookie, c.Name)
	assert.Equal(t, tokens.issued, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, int((168 * time.Hour).Seconds()), c.MaxAge)
}

func TestLoginWrongPasswordAndUnknownUserLookSame(t *testing.T) {
	h, _ := newTestHandler(newFakeUsers(karenUser()))

	wrong := postLogin(h, `{"username":"karen","password":"nope"}`)
	unknown := postLogin(h, `{"username":"ghost","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.JSONEq(t, wrong.Body.String(), unknown.Body.String())
}

func TestLoginBlockedAfterThreeFailures(t *testing.T) {
	h, _ := newTestHandler(newFakeUsers(karenUser()))

	postLogin(h, `{"username":"karen","password":"no1"}`)
	postLogin(h, `{"username":"karen","password":"no2"}`)
	third := postLogin(h, `{"username":"karen","password":"no3"}`)
	require.Equal(t, http.StatusTooManyRequests, third.Code)

	// блок держится и для верного пароля
	blocked := postLogin(h, `{"username":"karen","password":"secret-pass"}`)
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
}

func TestLoginSuccessResetsCounter(t *testing.T) {
	h, _ := newTestHandler(newFakeUsers(karenUser()))

	postLogin(h, `{"username":"karen","password":"no1"}`)
	postLogin(h, `{"username":"karen","password":"no2"}`)
	ok := postLogin(h, `{"username":"karen","password":"secret-pass"}`)
	require.Equal(t, http.StatusOK, ok.Code)

	// счётчик сброшен: две новые неудачи ещё не блок
	postLogin(h, `{"username":"karen","password":"no1"}`)
	again := postLogin(h, `{"username":"karen","password":"no2"}`)
	assert.Equal(t, http.StatusUnauthorized, again.Code)
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	users := newFakeUsers(karenUser())
	h, _ := newTestHandler(users)

	do := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/change-password", strings.NewReader(body))
		r = r.WithContext(domain.WithPrincipal(r.Context(), domain.PrincipalFromUser(karenUser())))
		h.ChangePassword(w, r)
		return w
	}

	wrong := do(`{"currentPassword":"nope","newPassword":"brand-new-pass"}`)
	assert.Equal(t, http.StatusForbidden, wrong.Code)
	assert.Empty(t, users.passOf)

	ok := do(`{"currentPassword":"secret-pass","newPassword":"brand-new-pass"}`)
	require.Equal(t, http.StatusOK, ok.Code)
	assert.Equal(t, "h:brand-new-pass", users.passOf[7])
}

func TestLogoutClearsCookie(t *testing.T) {
	h, _ := newTestHandler(newFakeUsers())

	w := httptest.NewRecorder()
	h.Logout(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))

	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, mw.AuthCookie, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestClientKeyPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.RemoteAddr = "127.0.0.1:9999"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientKey(r))

	r.Header.Del("X-Forwarded-For")
	assert.Equal(t, "127.0.0.1", clientKey(r))
}
