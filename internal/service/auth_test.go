package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Agus3160/blog-web-app-server-go/internal/domain"
	"github.com/Agus3160/blog-web-app-server-go/internal/dto"
	"github.com/Agus3160/blog-web-app-server-go/internal/repository"
	"github.com/Agus3160/blog-web-app-server-go/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockUserRepo is an in-memory UserRepository
type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*domain.User{}}
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id, username, email, imageURL, imagePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for uid, u := range m.users {
		if uid != id && (u.Username == username || u.Email == email) {
			return repository.ErrDuplicate
		}
	}
	u := m.users[id]
	u.Username = username
	u.Email = email
	u.ImageURL = imageURL
	u.ImagePath = imagePath
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id].PasswordHash = passwordHash
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

// mockStorage records uploads and deletions
type mockStorage struct {
	mu       sync.Mutex
	uploads  []string
	deleted  []string
	failNext bool
}

func (m *mockStorage) UploadBase64(ctx context.Context, directory, data string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return "", "", assert.AnError
	}
	path := directory + "/stored.webp"
	m.uploads = append(m.uploads, path)
	return "https://cdn.example/" + path, path, nil
}

func (m *mockStorage) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, path)
	return nil
}

// mockMailer pushes sent mail onto a channel so async sends can be awaited
type mockMailer struct {
	sent chan string
}

func newMockMailer() *mockMailer {
	return &mockMailer{sent: make(chan string, 4)}
}

func (m *mockMailer) SendPasswordReset(to, username, resetURL string) error {
	m.sent <- resetURL
	return nil
}

// mockPublisher records published event types
type mockPublisher struct {
	mu     sync.Mutex
	events []string
}

func (m *mockPublisher) Publish(ctx context.Context, eventType string, data map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, eventType)
}

func (m *mockPublisher) Close() {}

func (m *mockPublisher) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.events...)
}

type authFixture struct {
	svc     *AuthService
	users   *mockUserRepo
	storage *mockStorage
	mail    *mockMailer
	pub     *mockPublisher
	tokens  *TokenService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newMockUserRepo()
	store := &mockStorage{}
	mail := newMockMailer()
	pub := &mockPublisher{}
	tokens := newTestTokenService(time.Minute, time.Hour, time.Minute)
	svc := NewAuthService(users, NewBcryptHasher(), tokens, store, mail, pub, "https://front.example/reset-password")
	return &authFixture{svc: svc, users: users, storage: store, mail: mail, pub: pub, tokens: tokens}
}

func (f *authFixture) signUp(t *testing.T, username, email, password string) {
	t.Helper()
	err := f.svc.SignUp(context.Background(), &dto.SignupRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
}

func TestAuthService_SignUpAndLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.signUp(t, "alice", "alice@example.com", "password-123")

	session, refreshToken, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice",
		Password: "password-123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Username)
	assert.Equal(t, string(domain.RoleUser), session.Role)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, refreshToken)

	// Both tokens carry the same session payload
	fromAccess, err := f.tokens.VerifyAccess(session.AccessToken)
	require.NoError(t, err)
	fromRefresh, err := f.tokens.VerifyRefresh(refreshToken)
	require.NoError(t, err)
	assert.Equal(t, fromAccess, fromRefresh)

	assert.Contains(t, f.pub.types(), "user.registered")
}

func TestAuthService_SignUpRejectsUnknownRole(t *testing.T) {
	f := newAuthFixture(t)
	err := f.svc.SignUp(context.Background(), &dto.SignupRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "password-123",
		Role:     "SUPERUSER",
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.From(err).HTTPStatus)
}

func TestAuthService_SignUpDuplicate(t *testing.T) {
	f := newAuthFixture(t)
	f.signUp(t, "alice", "alice@example.com", "password-123")

	err := f.svc.SignUp(context.Background(), &dto.SignupRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "password-123",
	})
	require.Error(t, err)
	appErr := apperror.From(err)
	assert.Equal(t, "Conflict", appErr.Name)
	assert.Equal(t, 400, appErr.HTTPStatus)
}

// An unknown username and a wrong password must be indistinguishable in the
// client-facing error.
func TestAuthService_LoginFailuresLookAlike(t *testing.T) {
	f := newAuthFixture(t)
	f.signUp(t, "alice", "alice@example.com", "password-123")

	_, _, errUnknown := f.svc.Login(context.Background(), &dto.LoginRequest{
		Username: "nobody", Password: "password-123",
	})
	_, _, errWrongPass := f.svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice", Password: "wrong-password",
	})

	require.Error(t, errUnknown)
	require.Error(t, errWrongPass)
	a, b := apperror.From(errUnknown), apperror.From(errWrongPass)
	assert.Equal(t, a.HTTPStatus, b.HTTPStatus)
	assert.Equal(t, a.Name, b.Name)
	assert.Equal(t, a.ClientMessage, b.ClientMessage)
}

func TestAuthService_ConcurrentLogins(t *testing.T) {
	f := newAuthFixture(t)
	f.signUp(t, "alice", "alice@example.com", "password-123")

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.svc.Login(context.Background(), &dto.LoginRequest{
				Username: "alice", Password: "password-123",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestAuthService_RefreshMintsNewPair(t *testing.T) {
	f := newAuthFixture(t)
	f.signUp(t, "alice", "alice@example.com", "password-123")
	_, refreshToken, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice", Password: "password-123",
	})
	require.NoError(t, err)

	session, newRefresh, err := f.svc.Refresh(context.Background(), refreshToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Username)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, newRefresh)

	_, err = f.tokens.VerifyAccess(session.AccessToken)
	assert.NoError(t, err)
}

// A profile image changed in another session must show up on the next
// refresh; the stored row, not the token claims, is authoritative for it.
func TestAuthService_RefreshReflectsCurrentProfileImage(t *testing.T) {
	f := newAuthFixture(t)
	f.signUp(t, "alice", "alice@example.com", "password-123")
	_, refreshToken, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice", Password: "password-123",
	})
	require.NoError(t, err)

	stored, err := f.users.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	err = f.users.UpdateProfile(context.Background(), stored.ID,
		"alice", "alice@example.com",
		"https://cdn.example/profile_images/new.webp", "profile_images/new.webp")
	require.NoError(t, err)

	session, newRefresh, err := f.svc.Refresh(context.Background(), refreshToken)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/profile_images/new.webp", session.ProfileImage)

	// The re-issued tokens carry the current image too
	fromAccess, err := f.tokens.VerifyAccess(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/profile_images/new.webp", fromAccess.ProfileImage)
	fromRefresh, err := f.tokens.VerifyRefresh(newRefresh)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/profile_images/new.webp", fromRefresh.ProfileImage)
}

func TestAuthService_RefreshForDeletedUserFails(t *testing.T) {
	f := newAuthFixture(t)
	f.signUp(t, "alice", "alice@example.com", "password-123")
	_, refreshToken, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice", Password: "password-123",
	})
	require.NoError(t, err)

	stored, err := f.users.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NoError(t, f.users.Delete(context.Background(), stored.ID))

	_, _, err = f.svc.Refresh(context.Background(), refreshToken)
	require.Error(t, err)
	assert.Equal(t, 500, apperror.From(err).HTTPStatus)
}

func TestAuthService_RefreshRejectsGarbage(t *testing.T) {
	f := newAuthFixture(t)
	_, _, err := f.svc.Refresh(context.Background(), "garbage")
	require.Error(t, err)
	assert.Equal(t, 401, apperror.From(err).HTTPStatus)
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	f.signUp(t, "alice", "alice@example.com", "old-password-1")

	err := f.svc.RequestPasswordReset(context.Background(), "alice@example.com")
	require.NoError(t, err)

	var resetURL string
	select {
	case resetURL = <-f.mail.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("reset email never sent")
	}

	// The link is base URL + "/" + token
	token := resetURL[len("https://front.example/reset-password/"):]
	require.NotEmpty(t, token)

	err = f.svc.ResetPassword(context.Background(), token, "new-password-1")
	require.NoError(t, err)

	_, _, err = f.svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice", Password: "old-password-1",
	})
	assert.Error(t, err)
	_, _, err = f.svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice", Password: "new-password-1",
	})
	assert.NoError(t, err)

	assert.Contains(t, f.pub.types(), "user.password_changed")
}

func TestAuthService_ResetUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	err := f.svc.RequestPasswordReset(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, 404, apperror.From(err).HTTPStatus)
}

// An expired reset token must leave the stored password untouched.
func TestAuthService_ExpiredResetTokenRejected(t *testing.T) {
	users := newMockUserRepo()
	tokens := NewTokenService(
		TokenConfig{Secret: "access-secret", TTL: time.Minute},
		TokenConfig{Secret: "refresh-secret", TTL: time.Hour},
		TokenConfig{Secret: "reset-secret", TTL: -time.Minute},
	)
	svc := NewAuthService(users, NewBcryptHasher(), tokens, &mockStorage{}, newMockMailer(), &mockPublisher{}, "https://front.example/reset-password")

	err := svc.SignUp(context.Background(), &dto.SignupRequest{
		Username: "alice", Email: "alice@example.com", Password: "old-password-1",
	})
	require.NoError(t, err)

	expired, err := tokens.IssueReset("user-1")
	require.NoError(t, err)

	err = svc.ResetPassword(context.Background(), expired, "new-password-1")
	require.Error(t, err)
	assert.Equal(t, 401, apperror.From(err).HTTPStatus)

	_, _, err = svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice", Password: "old-password-1",
	})
	assert.NoError(t, err)
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	f.signUp(t, "alice", "alice@example.com", "old-password-1")
	_, refreshToken, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice", Password: "old-password-1",
	})
	require.NoError(t, err)

	err = f.svc.ChangePassword(context.Background(), refreshToken, &dto.ChangePasswordRequest{
		CurrentPassword: "wrong", NewPassword: "new-password-1",
	})
	require.Error(t, err)
	assert.Equal(t, 401, apperror.From(err).HTTPStatus)

	err = f.svc.ChangePassword(context.Background(), refreshToken, &dto.ChangePasswordRequest{
		CurrentPassword: "old-password-1", NewPassword: "new-password-1",
	})
	require.NoError(t, err)

	_, _, err = f.svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice", Password: "new-password-1",
	})
	assert.NoError(t, err)
}

func TestAuthService_UpdateProfileReissuesSession(t *testing.T) {
	f := newAuthFixture(t)
	f.signUp(t, "alice", "alice@example.com", "password-123")
	_, refreshToken, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice", Password: "password-123",
	})
	require.NoError(t, err)

	session, newRefresh, err := f.svc.UpdateProfile(context.Background(), refreshToken, &dto.UpdateProfileRequest{
		Username:        "alice-renamed",
		Email:           "alice@example.com",
		CurrentPassword: "password-123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice-renamed", session.Username)

	payload, err := f.tokens.VerifyRefresh(newRefresh)
	require.NoError(t, err)
	assert.Equal(t, "alice-renamed", payload.Username)

	// Old credentials still work; only identity fields changed
	_, _, err = f.svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice-renamed", Password: "password-123",
	})
	assert.NoError(t, err)
}

func TestAuthService_UpdateProfileSwapsImage(t *testing.T) {
	f := newAuthFixture(t)
	err := f.svc.SignUp(context.Background(), &dto.SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password-123",
		Image:    "data:image/webp;base64,aGVsbG8=",
	})
	require.NoError(t, err)
	require.Len(t, f.storage.uploads, 1)

	_, refreshToken, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice", Password: "password-123",
	})
	require.NoError(t, err)

	_, _, err = f.svc.UpdateProfile(context.Background(), refreshToken, &dto.UpdateProfileRequest{
		Username:        "alice",
		Email:           "alice@example.com",
		CurrentPassword: "password-123",
		NewImage:        "data:image/webp;base64,d29ybGQ=",
	})
	require.NoError(t, err)

	assert.Len(t, f.storage.uploads, 2)
	assert.Equal(t, []string{"profile_images/stored.webp"}, f.storage.deleted)
}
