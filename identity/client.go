package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

// UnreachableMessage is the display message for transport-level failures.
const UnreachableMessage = "Unable to connect to the server. Please try again later."

const defaultTimeout = 15 * time.Second

// ErrUnreachable marks a transport-level failure: the request never produced
// an HTTP response.
var ErrUnreachable = errors.New("identity service unreachable")

// Error is a service-classified failure: a response was obtained but carried
// a non-2xx status.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return "identity service error"
	}
	return fmt.Sprintf("identity service error: status %d: %s", e.Status, e.Message)
}

type registrationPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Config carries the client's construction-time settings. The base URL is
// injected here and never read from process environment by the client.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// HTTPClient overrides the underlying transport when set. Its Timeout
	// is left untouched; per-request deadlines come from Config.Timeout.
	HTTPClient *http.Client
}

// Client calls the identity service's REST surface.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient builds a Client from cfg. The base URL must be non-empty.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("identity base URL required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:    base,
		timeout:    timeout,
		httpClient: httpClient,
	}, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, firstName, lastName, email, password string) error {
	return c.post(ctx, "/users/register", registrationPayload{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  password,
	})
}

// Login submits credentials for verification ahead of the login OTP step.
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// VerifyLoginOtp confirms the OTP issued for a login attempt.
func (c *Client) VerifyLoginOtp(ctx context.Context, email, otp string) error {
	return c.post(ctx, "/auth/verify-login-otp", map[string]string{
		"email": email,
		"otp":   otp,
	})
}

// ForgotPassword requests a password-reset OTP for email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.post(ctx, "/auth/forgot-password", map[string]string{
		"email": email,
	})
}

// VerifyResetOtp confirms the OTP issued for a password reset.
func (c *Client) VerifyResetOtp(ctx context.Context, email, otp string) error {
	return c.post(ctx, "/auth/verify-reset-otp", map[string]string{
		"email": email,
		"otp":   otp,
	})
}

// ResetPassword submits the new password together with the verified OTP.
func (c *Client) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	return c.post(ctx, "/auth/reset-password", map[string]string{
		"email":       email,
		"otp":         otp,
		"newPassword": newPassword,
	})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		return nil
	}

	return &Error{
		Status:  resp.StatusCode,
		Message: failureMessage(resp),
	}
}

// failureMessage extracts the service's message from a non-2xx response.
// The body is interpreted as structured data only when the response declares
// it as JSON; anything else is opaque and the status text is used.
func failureMessage(resp *http.Response) string {
	fallback := resp.Status
	if text := http.StatusText(resp.StatusCode); text != "" {
		fallback = text
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fallback
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fallback
	}

	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil || parsed.Message == "" {
		return fallback
	}

	return parsed.Message
}
