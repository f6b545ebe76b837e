package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanmoi/vanmoi/internal/store"
)

type fakeCredentialStore struct {
	usersByName map[string]store.User
	usersByID   map[uuid.UUID]store.User
	sessions    map[string]store.Session
}

func newFakeCredentialStore() *fakeCredentialStore {
	return &fakeCredentialStore{
		usersByName: make(map[string]store.User),
		usersByID:   make(map[uuid.UUID]store.User),
		sessions:    make(map[string]store.Session),
	}
}

func (f *fakeCredentialStore) addUser(username, password string) store.User {
	hash, _ := HashPassword(password)
	user := store.User{ID: uuid.New(), Username: username, PasswordHash: hash}
	f.usersByName[username] = user
	f.usersByID[user.ID] = user
	return user
}

func (f *fakeCredentialStore) CreateUser(_ context.Context, username, passwordHash string) (store.User, error) {
	user := store.User{ID: uuid.New(), Username: username, PasswordHash: passwordHash}
	f.usersByName[username] = user
	f.usersByID[user.ID] = user
	return user, nil
}

func (f *fakeCredentialStore) FindUserByUsername(_ context.Context, username string) (store.User, error) {
	user, ok := f.usersByName[username]
	if !ok {
		return store.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeCredentialStore) FindUserByID(_ context.Context, id uuid.UUID) (store.User, error) {
	user, ok := f.usersByID[id]
	if !ok {
		return store.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeCredentialStore) UpdateUserPassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	user, ok := f.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	f.usersByID[id] = user
	f.usersByName[user.Username] = user
	return nil
}

func (f *fakeCredentialStore) HasUsers(_ context.Context) (bool, error) {
	return len(f.usersByID) > 0, nil
}

func (f *fakeCredentialStore) CreateSession(_ context.Context, userID uuid.UUID, token string, userAgent, ipAddress *string, ttl time.Duration) (store.Session, error) {
	session := store.Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: time.Now().Add(ttl),
	}
	f.sessions[token] = session
	return session, nil
}

func (f *fakeCredentialStore) FindSessionByToken(_ context.Context, token string) (store.Session, error) {
	session, ok := f.sessions[token]
	if !ok || session.ExpiresAt.Before(time.Now()) {
		// Expired rows are filtered at lookup time, same as the SQL path.
		return store.Session{}, pgx.ErrNoRows
	}
	return session, nil
}

func (f *fakeCredentialStore) DeleteSession(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeCredentialStore) SessionsForUser(_ context.Context, userID uuid.UUID) ([]store.Session, error) {
	var result []store.Session
	for _, session := range f.sessions {
		if session.UserID == userID {
			result = append(result, session)
		}
	}
	return result, nil
}

func TestLoginIssuesSession(t *testing.T) {
	fake := newFakeCredentialStore()
	fake.addUser("admin", "secret")
	svc := NewService(fake, time.Hour)

	session, user, err := svc.Login(context.Background(), "admin", "secret", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, "vmses_", session.Token[:6])

	// The issued token must resolve back to the same user.
	resolved, err := svc.UserForToken(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	fake := newFakeCredentialStore()
	fake.addUser("admin", "secret")
	svc := NewService(fake, time.Hour)

	_, _, unknownErr := svc.Login(context.Background(), "nobody", "secret", nil, nil)
	_, _, wrongErr := svc.Login(context.Background(), "admin", "wrong", nil, nil)

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr, wrongErr)
}

func TestUserForTokenUnknown(t *testing.T) {
	svc := NewService(newFakeCredentialStore(), time.Hour)

	_, err := svc.UserForToken(context.Background(), "vmses_deadbeef")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserForTokenExpired(t *testing.T) {
	fake := newFakeCredentialStore()
	user := fake.addUser("admin", "secret")
	svc := NewService(fake, time.Hour)

	session, err := fake.CreateSession(context.Background(), user.ID, NewSessionToken(), nil, nil, -time.Minute)
	require.NoError(t, err)

	_, err = svc.UserForToken(context.Background(), session.Token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	fake := newFakeCredentialStore()
	fake.addUser("admin", "secret")
	svc := NewService(fake, time.Hour)

	session, _, err := svc.Login(context.Background(), "admin", "secret", nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), session.Token))

	_, err = svc.UserForToken(context.Background(), session.Token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	fake := newFakeCredentialStore()
	user := fake.addUser("admin", "oldpass")
	svc := NewService(fake, time.Hour)

	err := svc.ChangePassword(context.Background(), user, "wrong", "newpass")
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = svc.ChangePassword(context.Background(), user, "oldpass", "newpass")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "admin", "newpass", nil, nil)
	assert.NoError(t, err)
	_, _, err = svc.Login(context.Background(), "admin", "oldpass", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDeleteSessionByID(t *testing.T) {
	fake := newFakeCredentialStore()
	fake.addUser("admin", "secret")
	other := fake.addUser("other", "secret")
	svc := NewService(fake, time.Hour)

	session, user, err := svc.Login(context.Background(), "admin", "secret", nil, nil)
	require.NoError(t, err)

	// Another user cannot delete it, even with the right id.
	err = svc.DeleteSessionByID(context.Background(), other.ID, session.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	require.NoError(t, svc.DeleteSessionByID(context.Background(), user.ID, session.ID))

	_, err = svc.UserForToken(context.Background(), session.Token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestBootstrap(t *testing.T) {
	fake := newFakeCredentialStore()
	svc := NewService(fake, time.Hour)

	require.NoError(t, svc.Bootstrap(context.Background(), "admin", "changeme"))

	_, _, err := svc.Login(context.Background(), "admin", "changeme", nil, nil)
	require.NoError(t, err)
}

func TestBootstrapSkipsWhenUsersExist(t *testing.T) {
	fake := newFakeCredentialStore()
	fake.addUser("existing", "secret")
	svc := NewService(fake, time.Hour)

	require.NoError(t, svc.Bootstrap(context.Background(), "admin", "changeme"))

	// No second account appears.
	_, err := fake.FindUserByUsername(context.Background(), "admin")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
