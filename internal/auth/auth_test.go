package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/knowledgeQuest/internal/backendtest"
	"github.com/letsssgooo/knowledgeQuest/internal/client"
	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
	"github.com/letsssgooo/knowledgeQuest/internal/storage"
)

type fixture struct {
	backend *backendtest.Backend
	store   *storage.MemoryStorage
	manager *Manager
	api     *client.HTTPClient
	auth    *Auth
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend := backendtest.New()
	t.Cleanup(backend.Close)

	store := storage.NewMemoryStorage()
	manager := NewManager(store)
	require.NoError(t, manager.Rehydrate(context.Background()))

	api := client.NewHTTPClient(backend.URL(), client.WithHooks(manager))

	return &fixture{
		backend: backend,
		store:   store,
		manager: manager,
		api:     api,
		auth:    NewAuth(manager, api),
	}
}

func anonymous() context.Context {
	return NewContext(context.Background(), &Session{})
}

func TestLogin_StoresTokenAndUser(t *testing.T) {
	f := newFixture(t)
	f.backend.AddUser("s@example.com", "secret1", "Иван", models.RoleStudent)

	ctx := anonymous()
	user, err := f.auth.Login(ctx, "  s@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)

	sess := FromContext(ctx)
	require.NotEmpty(t, sess.ID())
	assert.NotEmpty(t, sess.Token())

	rec, err := f.store.GetSession(context.Background(), sess.ID())
	require.NoError(t, err)
	assert.Equal(t, sess.Token(), rec.Token)
	assert.Equal(t, "Иван", rec.User.FullName)
	assert.True(t, rec.ExpiresAt.After(time.Now()))

	reopened, err := f.manager.Open(context.Background(), sess.ID())
	require.NoError(t, err)
	assert.True(t, reopened.Authenticated())
	assert.Equal(t, user.ID, reopened.User().ID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	f.backend.AddUser("s@example.com", "secret1", "Иван", models.RoleStudent)

	ctx := anonymous()
	user, err := f.auth.Login(ctx, "s@example.com", "nope")
	require.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	detail, ok := client.Detail(err)
	assert.True(t, ok)
	assert.Equal(t, "Неверный email или пароль", detail)
	assert.False(t, FromContext(ctx).Authenticated())
}

func TestLogin_BackendFailureIsNotInvalidCredentials(t *testing.T) {
	f := newFixture(t)
	f.backend.AddUser("s@example.com", "secret1", "Иван", models.RoleStudent)
	f.backend.FailOn(http.MethodPost, "/auth/login", http.StatusInternalServerError, "db down")

	_, err := f.auth.Login(anonymous(), "s@example.com", "secret1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidCredentials))

	detail, ok := client.Detail(err)
	assert.True(t, ok)
	assert.Equal(t, "db down", detail)

	f.backend.FailOn(http.MethodPost, "/auth/register", http.StatusBadGateway, "")
	_, err = f.auth.Register(anonymous(), Registration{
		Email: "t@example.com", Password: "secret1", FullName: "Анна", Role: models.RoleTeacher,
	})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRegistration))
}

func TestLogin_TransportError(t *testing.T) {
	backend := backendtest.New()
	url := backend.URL()
	backend.Close()

	manager := NewManager(storage.NewMemoryStorage())
	require.NoError(t, manager.Rehydrate(context.Background()))
	a := NewAuth(manager, client.NewHTTPClient(url, client.WithHooks(manager)))

	_, err := a.Login(anonymous(), "s@example.com", "secret1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrTransport))
	assert.False(t, errors.Is(err, ErrInvalidCredentials))
}

func TestLogin_WrongPasswordKeepsCurrentSession(t *testing.T) {
	f := newFixture(t)
	f.backend.AddUser("s@example.com", "secret1", "Иван", models.RoleStudent)

	ctx := anonymous()
	_, err := f.auth.Login(ctx, "s@example.com", "secret1")
	require.NoError(t, err)
	sess := FromContext(ctx)
	id := sess.ID()

	_, err = f.auth.Login(ctx, "s@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	assert.True(t, sess.Authenticated())
	assert.Equal(t, id, sess.ID())
	_, err = f.store.GetSession(context.Background(), id)
	assert.NoError(t, err)
}

func TestLogin_ValidationBeforeRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Login(anonymous(), "", "x")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = f.auth.Login(anonymous(), "a@b.c", "")
	assert.ErrorIs(t, err, ErrPasswordRequired)

	assert.Empty(t, f.backend.Calls())
}

func TestRegister_SignsIn(t *testing.T) {
	f := newFixture(t)

	ctx := anonymous()
	user, err := f.auth.Register(ctx, Registration{
		Email:    "t@example.com",
		Password: "secret1",
		FullName: "  Анна   Смирнова ",
		Role:     models.RoleTeacher,
	})
	require.NoError(t, err)
	assert.Equal(t, "Анна Смирнова", user.FullName)
	assert.Equal(t, models.RoleTeacher, FromContext(ctx).User().Role)
}

func TestRegister_DuplicateSurfacesDetail(t *testing.T) {
	f := newFixture(t)
	f.backend.AddUser("t@example.com", "secret1", "Анна", models.RoleTeacher)

	_, err := f.auth.Register(anonymous(), Registration{
		Email:    "t@example.com",
		Password: "secret1",
		FullName: "Анна",
		Role:     models.RoleTeacher,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRegistration))

	detail, ok := client.Detail(err)
	assert.True(t, ok)
	assert.Equal(t, "Email already registered", detail)
}

func TestParseRegistration(t *testing.T) {
	valid := Registration{Email: "a@b.ru", Password: "123456", FullName: "A", Role: models.RoleStudent}

	testCases := []struct {
		name   string
		mutate func(r *Registration)
		err    error
	}{
		{name: "valid", mutate: func(*Registration) {}, err: nil},
		{name: "no email", mutate: func(r *Registration) { r.Email = " " }, err: ErrEmailRequired},
		{name: "bad email", mutate: func(r *Registration) { r.Email = "nope" }, err: ErrEmailInvalid},
		{name: "no name", mutate: func(r *Registration) { r.FullName = "" }, err: ErrFullNameRequired},
		{name: "short password", mutate: func(r *Registration) { r.Password = "12345" }, err: ErrPasswordShort},
		{name: "cyrillic password counts runes", mutate: func(r *Registration) { r.Password = "пароль" }, err: nil},
		{name: "bad role", mutate: func(r *Registration) { r.Role = "admin" }, err: ErrRoleInvalid},
		{name: "role case", mutate: func(r *Registration) { r.Role = "Teacher" }, err: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := valid
			tc.mutate(&r)
			_, err := ParseRegistration(r)
			if tc.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	f := newFixture(t)
	f.backend.AddUser("s@example.com", "secret1", "Иван", models.RoleStudent)

	var ended []string
	f.manager.OnEnd(func(id string) { ended = append(ended, id) })

	ctx := anonymous()
	_, err := f.auth.Login(ctx, "s@example.com", "secret1")
	require.NoError(t, err)
	id := FromContext(ctx).ID()

	f.auth.Logout(ctx)

	sess := FromContext(ctx)
	assert.False(t, sess.Authenticated())
	assert.Empty(t, sess.Token())
	assert.True(t, sess.Cleared())
	assert.Equal(t, []string{id}, ended)

	_, err = f.store.GetSession(context.Background(), id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	f.backend.ResetCalls()
	_, err = f.api.MyResults(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrUnauthorized))
}

func TestUnauthorizedResponse_ClearsSession(t *testing.T) {
	f := newFixture(t)
	f.backend.AddUser("s@example.com", "secret1", "Иван", models.RoleStudent)

	ctx := anonymous()
	_, err := f.auth.Login(ctx, "s@example.com", "secret1")
	require.NoError(t, err)
	sess := FromContext(ctx)
	id := sess.ID()

	f.backend.Revoke(sess.Token())

	_, err = f.api.MyResults(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrUnauthorized))

	assert.False(t, sess.Authenticated())
	assert.True(t, sess.Cleared())
	_, err = f.store.GetSession(context.Background(), id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOpen_ExpiredTokenIsCleared(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SaveSession(context.Background(), &models.SessionRecord{
		ID:        "old",
		Token:     "t",
		User:      models.User{ID: 1, Role: models.RoleStudent},
		ExpiresAt: time.Now().Add(-time.Minute),
		CreatedAt: time.Now().Add(-time.Hour),
	}))

	sess, err := f.manager.Open(context.Background(), "old")
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())
	assert.True(t, sess.Cleared())

	_, err = f.store.GetSession(context.Background(), "old")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOpen_UnknownAndEmpty(t *testing.T) {
	f := newFixture(t)

	for _, id := range []string{"", "missing"} {
		sess, err := f.manager.Open(context.Background(), id)
		require.NoError(t, err)
		assert.False(t, sess.Authenticated())
		assert.False(t, sess.Cleared())
	}
}

func TestOpen_BeforeRehydrate(t *testing.T) {
	m := NewManager(storage.NewMemoryStorage())
	assert.False(t, m.Loaded())

	sess, err := m.Open(context.Background(), "some")
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.False(t, sess.Authenticated())

	require.NoError(t, m.Rehydrate(context.Background()))
	assert.True(t, m.Loaded())
}

func TestTokenExpiry(t *testing.T) {
	f := newFixture(t)
	f.backend.AddUser("s@example.com", "secret1", "Иван", models.RoleStudent)

	exp := tokenExpiry(f.backend.Token("s@example.com"))
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	assert.True(t, tokenExpiry("not-a-jwt").IsZero())
}
