package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Agus3160/blog-web-app-server-go/internal/domain"
	"github.com/Agus3160/blog-web-app-server-go/internal/dto"
	"github.com/Agus3160/blog-web-app-server-go/internal/events"
	"github.com/Agus3160/blog-web-app-server-go/internal/mailer"
	"github.com/Agus3160/blog-web-app-server-go/internal/repository"
	"github.com/Agus3160/blog-web-app-server-go/internal/storage"
	"github.com/Agus3160/blog-web-app-server-go/pkg/apperror"
	"github.com/Agus3160/blog-web-app-server-go/pkg/logger"
	"github.com/Agus3160/blog-web-app-server-go/pkg/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const profileImageDir = "profile_images"

// invalidCredentials is shared by the unknown-user and wrong-password paths
// so the two are indistinguishable to the caller.
func invalidCredentials(message string) *apperror.Error {
	return apperror.Unauthorized(message, "Invalid username or password")
}

// AuthService implements signup, login, token refresh and the password
// lifecycle.
type AuthService struct {
	users     repository.UserRepository
	hasher    PasswordHasher
	tokens    *TokenService
	storage   storage.ObjectStorage
	mail      mailer.Sender
	publisher events.Publisher
	resetURL  string
}

// NewAuthService creates an AuthService. resetURLBase is the frontend page
// the reset token is appended to.
func NewAuthService(
	users repository.UserRepository,
	hasher PasswordHasher,
	tokens *TokenService,
	store storage.ObjectStorage,
	mail mailer.Sender,
	publisher events.Publisher,
	resetURLBase string,
) *AuthService {
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		storage:   store,
		mail:      mail,
		publisher: publisher,
		resetURL:  resetURLBase,
	}
}

// RefreshTTL exposes the refresh token lifetime for cookie max-age
func (s *AuthService) RefreshTTL() time.Duration {
	return s.tokens.RefreshTTL()
}

// SignUp registers a new account. The profile image, when present, is
// uploaded before the row is written so a failed upload never leaves a
// dangling user.
func (s *AuthService) SignUp(ctx context.Context, req *dto.SignupRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.SignUp")
	defer span.End()

	role := domain.Role(req.Role)
	if req.Role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return apperror.BadRequest(
			fmt.Sprintf("unknown role %q", req.Role),
			"Invalid role",
		)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return apperror.Internal("failed to hash password", "Internal Server Error").WithCause(err)
	}

	var imageURL, imagePath string
	if req.Image != "" {
		imageURL, imagePath, err = s.storage.UploadBase64(ctx, profileImageDir, req.Image)
		if err != nil {
			return apperror.BadRequest("failed to store profile image", "Invalid image payload").WithCause(err)
		}
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		ImageURL:     imageURL,
		ImagePath:    imagePath,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if imagePath != "" {
			if delErr := s.storage.Delete(ctx, imagePath); delErr != nil {
				logger.Get().Warn("failed to clean up orphaned profile image",
					zap.String("path", imagePath), zap.Error(delErr))
			}
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return apperror.Conflict(
				"username or email already registered",
				"Username or email already in use",
			).WithCause(err)
		}
		return apperror.Internal("failed to create user", "Internal Server Error").WithCause(err)
	}

	s.publisher.Publish(ctx, events.EventUserRegistered, map[string]interface{}{
		"userId":   user.ID,
		"username": user.Username,
	})
	return nil
}

// Login verifies the credentials and mints an access/refresh token pair. An
// unknown username and a wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.SessionResponse, string, error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, "", apperror.Internal("failed to look up user", "Internal Server Error").WithCause(err)
	}
	if user == nil {
		return nil, "", invalidCredentials("login attempt for unknown username")
	}
	if !s.hasher.Compare(user.PasswordHash, req.Password) {
		return nil, "", invalidCredentials("password mismatch")
	}

	return s.issueSession(user)
}

// Refresh validates the refresh token and mints a fresh token pair from its
// session payload. The profile image is re-read from the store so a change
// made in another session shows up without a re-login.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.SessionResponse, string, error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.Refresh")
	defer span.End()

	session, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, "", apperror.Unauthorized("refresh token rejected", "Invalid session").WithCause(err)
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, "", apperror.Internal("failed to look up user", "Internal Server Error").WithCause(err)
	}
	if user == nil {
		return nil, "", apperror.Internal("session user no longer exists", "Internal Server Error")
	}
	session.ProfileImage = user.ImageURL

	accessToken, err := s.tokens.IssueAccess(*session)
	if err != nil {
		return nil, "", apperror.Internal("failed to sign access token", "Internal Server Error").WithCause(err)
	}
	newRefresh, err := s.tokens.IssueRefresh(*session)
	if err != nil {
		return nil, "", apperror.Internal("failed to sign refresh token", "Internal Server Error").WithCause(err)
	}

	return &dto.SessionResponse{
		UserID:       session.UserID,
		Username:     session.Username,
		ProfileImage: session.ProfileImage,
		Role:         string(session.Role),
		AccessToken:  accessToken,
	}, newRefresh, nil
}

// RequestPasswordReset emails a single-use reset link. Delivery happens in
// the background; a failed send is logged and the caller still gets success.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.RequestPasswordReset")
	defer span.End()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return apperror.Internal("failed to look up user", "Internal Server Error").WithCause(err)
	}
	if user == nil {
		return apperror.NotFound("reset requested for unknown email", "Email not found")
	}

	token, err := s.tokens.IssueReset(user.ID)
	if err != nil {
		return apperror.Internal("failed to sign reset token", "Internal Server Error").WithCause(err)
	}

	resetURL := s.resetURL + "/" + token
	to, username := user.Email, user.Username
	go func() {
		if err := s.mail.SendPasswordReset(to, username, resetURL); err != nil {
			logger.Get().Error("failed to send password reset email",
				zap.String("email", to), zap.Error(err))
		}
	}()
	return nil
}

// ResetPassword completes a reset initiated by email. The token proves
// identity; the stored hash is replaced only when it verifies.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.ResetPassword")
	defer span.End()

	userID, err := s.tokens.VerifyReset(token)
	if err != nil {
		return apperror.Unauthorized("reset token rejected", "Invalid or expired reset link").WithCause(err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperror.Internal("failed to look up user", "Internal Server Error").WithCause(err)
	}
	if user == nil {
		return apperror.NotFound("reset token for deleted user", "User not found")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperror.Internal("failed to hash password", "Internal Server Error").WithCause(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperror.Internal("failed to update password", "Internal Server Error").WithCause(err)
	}

	s.publisher.Publish(ctx, events.EventUserPasswordChanged, map[string]interface{}{
		"userId": user.ID,
	})
	return nil
}

// ChangePassword rotates the password of the session's user after
// re-verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, refreshToken string, req *dto.ChangePasswordRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.ChangePassword")
	defer span.End()

	session, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return apperror.Unauthorized("refresh token rejected", "Invalid session").WithCause(err)
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return apperror.Internal("failed to look up user", "Internal Server Error").WithCause(err)
	}
	if user == nil {
		return apperror.NotFound("session user no longer exists", "User not found")
	}
	if !s.hasher.Compare(user.PasswordHash, req.CurrentPassword) {
		return apperror.Unauthorized("current password mismatch", "Current password is incorrect")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperror.Internal("failed to hash password", "Internal Server Error").WithCause(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperror.Internal("failed to update password", "Internal Server Error").WithCause(err)
	}

	s.publisher.Publish(ctx, events.EventUserPasswordChanged, map[string]interface{}{
		"userId": user.ID,
	})
	return nil
}

// UpdateProfile changes username, email and optionally the profile image,
// then re-issues both tokens so the session reflects the new identity.
func (s *AuthService) UpdateProfile(ctx context.Context, refreshToken string, req *dto.UpdateProfileRequest) (*dto.SessionResponse, string, error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.UpdateProfile")
	defer span.End()

	session, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, "", apperror.Unauthorized("refresh token rejected", "Invalid session").WithCause(err)
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, "", apperror.Internal("failed to look up user", "Internal Server Error").WithCause(err)
	}
	if user == nil {
		return nil, "", apperror.NotFound("session user no longer exists", "User not found")
	}
	if !s.hasher.Compare(user.PasswordHash, req.CurrentPassword) {
		return nil, "", apperror.Unauthorized("current password mismatch", "Current password is incorrect")
	}

	imageURL, imagePath := user.ImageURL, user.ImagePath
	if req.NewImage != "" {
		newURL, newPath, err := s.storage.UploadBase64(ctx, profileImageDir, req.NewImage)
		if err != nil {
			return nil, "", apperror.BadRequest("failed to store profile image", "Invalid image payload").WithCause(err)
		}
		if user.ImagePath != "" {
			if err := s.storage.Delete(ctx, user.ImagePath); err != nil {
				logger.Get().Warn("failed to delete previous profile image",
					zap.String("path", user.ImagePath), zap.Error(err))
			}
		}
		imageURL, imagePath = newURL, newPath
	}

	if err := s.users.UpdateProfile(ctx, user.ID, req.Username, req.Email, imageURL, imagePath); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", apperror.Conflict(
				"username or email already registered",
				"Username or email already in use",
			).WithCause(err)
		}
		return nil, "", apperror.Internal("failed to update profile", "Internal Server Error").WithCause(err)
	}

	user.Username = req.Username
	user.Email = req.Email
	user.ImageURL = imageURL
	return s.issueSession(user)
}

func (s *AuthService) issueSession(user *domain.User) (*dto.SessionResponse, string, error) {
	payload := domain.SessionPayload{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
		ProfileImage: user.ImageURL,
	}

	accessToken, err := s.tokens.IssueAccess(payload)
	if err != nil {
		return nil, "", apperror.Internal("failed to sign access token", "Internal Server Error").WithCause(err)
	}
	refreshToken, err := s.tokens.IssueRefresh(payload)
	if err != nil {
		return nil, "", apperror.Internal("failed to sign refresh token", "Internal Server Error").WithCause(err)
	}

	return &dto.SessionResponse{
		UserID:       user.ID,
		Username:     user.Username,
		ProfileImage: user.ImageURL,
		Role:         string(user.Role),
		AccessToken:  accessToken,
	}, refreshToken, nil
}
