package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"eventos-web/internal/logger"
	"eventos-web/internal/models"

	"github.com/tidwall/gjson"
)

const (
	msgBadStaffCredentials    = "incorrect username or password"
	msgBadAttenderCredentials = "incorrect email or password"
	msgVerifyEmail            = "please verify your email address, a new verification email is on its way"
)

// Login signs a staff user in. The backend expects a form-encoded body.
func (c *Client) Login(ctx context.Context, username, password string) (*models.AuthenticatedUser, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/user/login",
		form:   form,
		expect: []int{http.StatusOK},
		errorMessages: map[int]string{
			http.StatusUnauthorized: msgBadStaffCredentials,
			http.StatusNotFound:     msgBadStaffCredentials,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("staff login failed: %w", err)
	}

	return decodeAuthenticated(resp.body)
}

// ValidateSession checks the bound staff token
func (c *Client) ValidateSession(ctx context.Context) (*models.AuthenticatedUser, error) {
	resp, err := c.do(ctx, request{
		method:        http.MethodGet,
		path:          "/user/validate",
		authenticated: true,
		expect:        []int{http.StatusOK},
	})
	if err != nil {
		return nil, fmt.Errorf("staff session validation failed: %w", err)
	}

	return decodeAuthenticated(resp.body)
}

// LoginAttender signs a buyer in. An unverified account (403) triggers a
// verification resend before the error is returned.
func (c *Client) LoginAttender(ctx context.Context, email, password string) (*models.AuthenticatedUser, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/attender/login",
		json: map[string]string{
			"email":    email,
			"password": password,
		},
		expect: []int{http.StatusOK},
		errorMessages: map[int]string{
			http.StatusUnauthorized: msgBadAttenderCredentials,
			http.StatusNotFound:     msgBadAttenderCredentials,
			http.StatusForbidden:    msgVerifyEmail,
		},
	})
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden {
			if resendErr := c.ResendVerificationEmail(ctx, email); resendErr != nil {
				logger.Log.Warnw("failed to resend verification email", "email", email, "error", resendErr)
			}
		}
		return nil, fmt.Errorf("attender login failed: %w", err)
	}

	return decodeAuthenticated(resp.body)
}

// ValidateAttenderSession checks the bound buyer token
func (c *Client) ValidateAttenderSession(ctx context.Context) (*models.AuthenticatedUser, error) {
	resp, err := c.do(ctx, request{
		method:        http.MethodGet,
		path:          "/attender/validate",
		authenticated: true,
		expect:        []int{http.StatusOK},
	})
	if err != nil {
		return nil, fmt.Errorf("attender session validation failed: %w", err)
	}

	return decodeAuthenticated(resp.body)
}

// RegistrationData is the account data sent when a buyer signs up
type RegistrationData struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterAttender creates a buyer account and returns its id
func (c *Client) RegisterAttender(ctx context.Context, data RegistrationData) (string, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/attender",
		json:   data,
		expect: []int{http.StatusOK, http.StatusCreated},
	})
	if err != nil {
		return "", fmt.Errorf("attender registration failed: %w", err)
	}

	return models.IDOf(resp.body), nil
}

// ResendVerificationEmail asks the backend to send a new verification email
func (c *Client) ResendVerificationEmail(ctx context.Context, email string) error {
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/attender/resend_verification",
		query:  url.Values{"email": {email}},
		expect: []int{http.StatusOK},
		errorMessages: map[int]string{
			http.StatusNotFound:   "user not found",
			http.StatusBadRequest: "the email address is already verified",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to resend verification email: %w", err)
	}
	return nil
}

func decodeAuthenticated(body []byte) (*models.AuthenticatedUser, error) {
	if !gjson.ValidBytes(body) {
		return nil, &Error{Kind: KindServer, Message: "unexpected response from server"}
	}

	user := models.DecodeAuthenticatedUser(gjson.ParseBytes(body))
	if user.UserID == "" {
		return nil, &Error{Kind: KindServer, Message: "the server did not return a user"}
	}
	return user, nil
}
