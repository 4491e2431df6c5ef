package users

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

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
)

type fakeRepo struct {
	users   map[int64]domain.User
	nextID  int64
	created *domain.User
	delErr  error
}

func newFakeRepo(us ...domain.User) *fakeRepo {
	f := &fakeRepo{users: map[int64]domain.User{}, nextID: 100}
	for _, u := range us {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeRepo) Close()                     {}
func (f *fakeRepo) Ping(context.Context) error { return nil }

func (f *fakeRepo) Create(_ context.Context, u domain.User) (domain.User, error) {
	for _, ex := range f.users {
		if ex.Username == u.Username && ex.DeletedAt == nil {
			return domain.User{}, domain.ErrConflict
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = u
	f.created = &u
	return u, nil
}

func (f *fakeRepo) ActiveByID(_ context.Context, id int64) (domain.User, error) {
	u, ok := f.users[id]
	if !ok || u.DeletedAt != nil {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) ActiveByUsername(_ context.Context, name string) (domain.User, error) {
	for _, u := range f.users {
		if u.Username == name && u.DeletedAt == nil {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeRepo) ByID(_ context.Context, id int64) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) ListActive(context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		if u.DeletedAt == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListDeleted(context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		if u.DeletedAt != nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, id int64, upd domain.UserUpdate) (domain.User, error) {
	u, ok := f.users[id]
	if !ok || u.DeletedAt != nil {
		return domain.User{}, domain.ErrNotFound
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.PassHash != nil {
		u.PassHash = *upd.PassHash
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.Prefix != nil {
		u.Prefix = *upd.Prefix
	}
	if upd.Metadata != nil {
		u.Metadata = *upd.Metadata
	}
	u.UpdatedAt = time.Now()
	f.users[id] = u
	return u, nil
}

func (f *fakeRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PassHash = hash
	f.users[id] = u
	return nil
}

func (f *fakeRepo) SoftDelete(_ context.Context, id int64) error {
	if f.delErr != nil {
		return f.delErr
	}
	u, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	u.DeletedAt = &now
	f.users[id] = u
	return nil
}

func (f *fakeRepo) Restore(_ context.Context, id int64) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	for _, ex := range f.users {
		if ex.Username == u.Username && ex.DeletedAt == nil {
			return domain.User{}, domain.ErrConflict
		}
	}
	u.DeletedAt = nil
	f.users[id] = u
	return u, nil
}

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error)      { return "h:" + p, nil }
func (plainHasher) Verify(p, enc string) (bool, error) { return "h:"+p == enc, nil }

func newTestHandler(repo *fakeRepo) *Handler {
	return &Handler{Log: log.New(io.Discard, "", 0), Users: repo, Hasher: plainHasher{}}
}

func adminPrincipal() domain.Principal {
	return domain.Principal{ID: 1, Username: "root", Role: domain.RoleAdmin}
}

func request(method, target, body string, id string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, rd)
	r = r.WithContext(domain.WithPrincipal(r.Context(), adminPrincipal()))
	if id != "" {
		r.SetPathValue("id", id)
	}
	return r
}

func TestCreateValidatesRolePrefix(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "client without prefix",
			body: `{"username":"karen","password":"secret-pass","type":"client","prefix":""}`,
			want: http.StatusBadRequest,
		},
		{
			name: "admin with prefix",
			body: `{"username":"boss","password":"secret-pass","type":"admin","prefix":"boss/"}`,
			want: http.StatusBadRequest,
		},
		{
			name: "unknown role",
			body: `{"username":"karen","password":"secret-pass","type":"root","prefix":"karen/"}`,
			want: http.StatusBadRequest,
		},
		{
			name: "short password",
			body: `{"username":"karen","password":"short","type":"client","prefix":"karen/"}`,
			want: http.StatusBadRequest,
		},
		{
			name: "valid client",
			body: `{"username":"karen","password":"secret-pass","type":"client","prefix":"karen/"}`,
			want: http.StatusOK,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeRepo()
			h := newTestHandler(repo)

			w := httptest.NewRecorder()
			h.Create(w, request(http.MethodPost, "/api/v1/users", tc.body, ""))
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestCreateNormalizesPrefixAndHashesPassword(t *testing.T) {
	repo := newFakeRepo()
	h := newTestHandler(repo)

	w := httptest.NewRecorder()
	h.Create(w, request(http.MethodPost, "/api/v1/users",
		`{"username":"karen","password":"secret-pass","type":"client","prefix":"karen"}`, ""))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, repo.created)
	assert.Equal(t, "karen/", repo.created.Prefix)
	assert.Equal(t, "h:secret-pass", repo.created.PassHash)

	// хэш наружу не утёк
	assert.NotContains(t, w.Body.String(), "secret-pass")
	assert.NotContains(t, w.Body.String(), "passHash")
}

func TestCreateDuplicateUsername(t *testing.T) {
	repo := newFakeRepo(domain.User{ID: 2, Username: "karen", Role: domain.RoleClient, Prefix: "karen/"})
	h := newTestHandler(repo)

	w := httptest.NewRecorder()
	h.Create(w, request(http.MethodPost, "/api/v1/users",
		`{"username":"karen","password":"secret-pass","type":"client","prefix":"karen/"}`, ""))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateChecksFinalState(t *testing.T) {
	// смена роли client→admin без очистки префикса нарушает инвариант
	repo := newFakeRepo(domain.User{ID: 5, Username: "karen", Role: domain.RoleClient, Prefix: "karen/"})
	h := newTestHandler(repo)

	w := httptest.NewRecorder()
	h.Update(w, request(http.MethodPut, "/api/v1/users/5", `{"type":"admin"}`, "5"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// а вместе с очисткой префикса — проходит
	w = httptest.NewRecorder()
	h.Update(w, request(http.MethodPut, "/api/v1/users/5", `{"type":"admin","prefix":""}`, "5"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.RoleAdmin, repo.users[5].Role)
	assert.Empty(t, repo.users[5].Prefix)
}

func TestDeleteSelfForbidden(t *testing.T) {
	repo := newFakeRepo(domain.User{ID: 1, Username: "root", Role: domain.RoleAdmin})
	h := newTestHandler(repo)

	w := httptest.NewRecorder()
	h.Delete(w, request(http.MethodDelete, "/api/v1/users/1", "", "1"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, repo.users[1].DeletedAt)
}

func TestDeleteLastAdminForbidden(t *testing.T) {
	repo := newFakeRepo(domain.User{ID: 2, Username: "admin2", Role: domain.RoleAdmin})
	repo.delErr = domain.ErrForbidden
	h := newTestHandler(repo)

	w := httptest.NewRecorder()
	h.Delete(w, request(http.MethodDelete, "/api/v1/users/2", "", "2"))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRestoreConflictsWithActiveName(t *testing.T) {
	deleted := time.Now()
	repo := newFakeRepo(
		domain.User{ID: 3, Username: "karen", Role: domain.RoleClient, Prefix: "karen/", DeletedAt: &deleted},
		domain.User{ID: 4, Username: "karen", Role: domain.RoleClient, Prefix: "karen2/"},
	)
	h := newTestHandler(repo)

	w := httptest.NewRecorder()
	h.Restore(w, request(http.MethodPost, "/api/v1/users/3/restore", "", "3"))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetReturnsDeletedToo(t *testing.T) {
	deleted := time.Now()
	repo := newFakeRepo(domain.User{ID: 9, Username: "old", Role: domain.RoleClient, Prefix: "old/", DeletedAt: &deleted})
	h := newTestHandler(repo)

	w := httptest.NewRecorder()
	h.Get(w, request(http.MethodGet, "/api/v1/users/9", "", "9"))

	require.Equal(t, http.StatusOK, w.Code)
	var v userView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, "old", v.Username)
	assert.NotEmpty(t, v.DeletedAt)
}

func TestBadIDIsBadRequest(t *testing.T) {
	h := newTestHandler(newFakeRepo())

	w := httptest.NewRecorder()
	h.Get(w, request(http.MethodGet, "/api/v1/users/abc", "", "abc"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
