package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventos-web/internal/api"
	"eventos-web/internal/logger"
	"eventos-web/internal/models"
	"eventos-web/internal/storage"

	"github.com/go-playground/validator/v10"
)

// LoginResult is what a login attempt reports to the presentation layer.
// Failures are carried in Error, never returned as Go errors.
type LoginResult struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Session *models.Session `json:"session,omitempty"`
}

// AuthService handles authentication-related business logic. Credentials are
// checked by the backend; this service owns what the browser persists.
type AuthService struct {
	backend  BackendFor
	validate *validator.Validate
}

// NewAuthService creates a new authentication service
func NewAuthService(backend BackendFor) *AuthService {
	return &AuthService{
		backend:  backend,
		validate: newValidator(),
	}
}

// CurrentSession builds the session from persisted identity alone, without
// contacting the backend. It returns nil when any identity slot is missing.
func (s *AuthService) CurrentSession(state *storage.ClientState) *models.Session {
	token := state.SessionToken()
	userID := state.UserID()
	userType := state.UserType()

	if token == "" || userID == "" || userType == "" {
		return nil
	}

	session := &models.Session{
		Token:    token,
		UserID:   userID,
		UserType: userType,
	}
	if userType == models.UserTypeStaff {
		session.EventID = state.SelectedEventID()
		session.StoreID = state.StoreID()
	}
	return session
}

// CheckSession validates the persisted identity against the backend.
//
// A rejected token (401) ends the session. Any other validation failure keeps
// the persisted identity: the buyer stays signed in on transient errors, and
// the session carries no profile.
func (s *AuthService) CheckSession(ctx context.Context, state *storage.ClientState) *models.Session {
	session := s.CurrentSession(state)
	if session == nil {
		return nil
	}

	backend := s.backend(state)

	var (
		profile *models.AuthenticatedUser
		err     error
	)
	if session.UserType == models.UserTypeAttender {
		profile, err = backend.ValidateAttenderSession(ctx)
	} else {
		profile, err = backend.ValidateSession(ctx)
	}

	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			logger.Log.Infow("session rejected by backend", "user_id", session.UserID, "user_type", session.UserType)
			return nil
		}
		logger.Log.Warnw("session validation failed, trusting persisted identity",
			"user_id", session.UserID,
			"user_type", session.UserType,
			"error", err,
		)
		return session
	}

	session.Profile = profile
	if profile.Role != "" {
		session.Role = profile.Role
	}
	if profile.EventID != "" {
		session.EventID = profile.EventID
	}
	if profile.StoreID != "" {
		session.StoreID = profile.StoreID
	}
	return session
}

// Login signs a staff user in
func (s *AuthService) Login(ctx context.Context, state *storage.ClientState, username, password string) LoginResult {
	if strings.TrimSpace(username) == "" || password == "" {
		return LoginResult{Error: "username and password are required"}
	}

	user, err := s.backend(state).Login(ctx, strings.TrimSpace(username), password)
	if err != nil {
		logger.Log.Infow("staff login failed", "username", username, "error", err)
		return LoginResult{Error: api.DisplayMessage(err, "failed to sign in")}
	}

	return s.completeLogin(state, user, models.UserTypeStaff)
}

// LoginAttender signs a buyer in
func (s *AuthService) LoginAttender(ctx context.Context, state *storage.ClientState, email, password string) LoginResult {
	req := &models.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := validateStruct(s.validate, req); err != nil {
		return LoginResult{Error: "a valid email and password are required"}
	}

	user, err := s.backend(state).LoginAttender(ctx, req.Email, req.Password)
	if err != nil {
		logger.Log.Infow("attender login failed", "email", req.Email, "error", err)
		return LoginResult{Error: api.DisplayMessage(err, "failed to sign in")}
	}

	return s.completeLogin(state, user, models.UserTypeAttender)
}

// completeLogin persists the identity in one batch before reporting success
func (s *AuthService) completeLogin(state *storage.ClientState, user *models.AuthenticatedUser, userType models.UserType) LoginResult {
	if user.Token == "" {
		return LoginResult{Error: "the server did not return a session token"}
	}

	identity := storage.Identity{
		Token:    user.Token,
		UserID:   user.UserID,
		UserType: userType,
	}
	if userType == models.UserTypeStaff {
		identity.EventID = user.EventID
		identity.StoreID = user.StoreID
	}
	state.SaveIdentity(identity)

	logger.Log.Infow("user signed in", "user_id", user.UserID, "user_type", userType)

	return LoginResult{
		Success: true,
		Session: &models.Session{
			Token:    user.Token,
			UserID:   user.UserID,
			UserType: userType,
			Role:     user.Role,
			EventID:  identity.EventID,
			StoreID:  identity.StoreID,
			Profile:  user,
		},
	}
}

// Logout forgets the persisted identity. It cannot fail.
func (s *AuthService) Logout(state *storage.ClientState) {
	userID := state.UserID()
	state.ClearAll()
	logger.Log.Infow("user signed out", "user_id", userID)
}

// Register creates a buyer account. The buyer still has to verify the email
// address before signing in.
func (s *AuthService) Register(ctx context.Context, form *models.AttenderRegisterRequest) (string, error) {
	form.Name = capitalize(strings.TrimSpace(form.Name))
	form.LastName = capitalize(strings.TrimSpace(form.LastName))
	form.Email = strings.TrimSpace(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)

	if err := validateStruct(s.validate, form); err != nil {
		return "", err
	}

	id, err := s.backend(nil).RegisterAttender(ctx, api.RegistrationData{
		FullName: form.FullName(),
		Phone:    form.Phone,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to register attender: %w", err)
	}

	logger.Log.Infow("attender registered", "attender_id", id, "email", form.Email)
	return id, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
