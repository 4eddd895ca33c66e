package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	path string
	body map[string]string
}

func newRecordingServer(t *testing.T, status int, contentType, body string) (*httptest.Server, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.path = r.URL.Path
		rec.body = map[string]string{}
		_ = json.NewDecoder(r.Body).Decode(&rec.body)

		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, rec
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := NewClient(Config{BaseURL: baseURL, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)

	_, err = NewClient(Config{BaseURL: "   "})
	require.Error(t, err)
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, "", "")
	client := newTestClient(t, srv.URL+"/")

	require.NoError(t, client.ForgotPassword(context.Background(), "maya@example.com"))
	assert.Equal(t, "/auth/forgot-password", rec.path)
}

func TestRegisterSendsPayload(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusCreated, "", "")
	client := newTestClient(t, srv.URL)

	err := client.Register(context.Background(), "Maya", "Rivera", "maya@example.com", "petunia7")
	require.NoError(t, err)

	assert.Equal(t, "/users/register", rec.path)
	assert.Equal(t, map[string]string{
		"firstName": "Maya",
		"lastName":  "Rivera",
		"email":     "maya@example.com",
		"password":  "petunia7",
	}, rec.body)
}

func TestEndpointPaths(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, "", "")
	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	cases := []struct {
		call func() error
		path string
	}{
		{func() error { return client.Login(ctx, "maya@example.com", "petunia7") }, "/auth/login"},
		{func() error { return client.VerifyLoginOtp(ctx, "maya@example.com", "123456") }, "/auth/verify-login-otp"},
		{func() error { return client.ForgotPassword(ctx, "maya@example.com") }, "/auth/forgot-password"},
		{func() error { return client.VerifyResetOtp(ctx, "maya@example.com", "123456") }, "/auth/verify-reset-otp"},
		{func() error { return client.ResetPassword(ctx, "maya@example.com", "123456", "freesia9") }, "/auth/reset-password"},
	}

	for _, tc := range cases {
		require.NoError(t, tc.call())
		assert.Equal(t, tc.path, rec.path)
	}
}

func TestResetPasswordFieldNames(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, "", "")
	client := newTestClient(t, srv.URL)

	require.NoError(t, client.ResetPassword(context.Background(), "maya@example.com", "123456", "freesia9"))
	assert.Equal(t, map[string]string{
		"email":       "maya@example.com",
		"otp":         "123456",
		"newPassword": "freesia9",
	}, rec.body)
}

func TestJSONFailureUsesServiceMessage(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusConflict, "application/json", `{"message":"User already exists."}`)
	client := newTestClient(t, srv.URL)

	err := client.Register(context.Background(), "Maya", "Rivera", "maya@example.com", "petunia7")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusConflict, svcErr.Status)
	assert.Equal(t, "User already exists.", svcErr.Message)
}

func TestJSONFailureWithCharsetParameter(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusBadRequest, "application/json; charset=utf-8", `{"message":"Invalid or expired OTP."}`)
	client := newTestClient(t, srv.URL)

	err := client.VerifyResetOtp(context.Background(), "maya@example.com", "000000")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "Invalid or expired OTP.", svcErr.Message)
}

func TestNonJSONFailureFallsBackToStatusText(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusBadGateway, "text/html", `<html>upstream broke</html>`)
	client := newTestClient(t, srv.URL)

	err := client.Login(context.Background(), "maya@example.com", "petunia7")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), svcErr.Message)
}

func TestJSONFailureWithoutMessageFallsBack(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusInternalServerError, "application/json", `{"error":"boom"}`)
	client := newTestClient(t, srv.URL)

	err := client.ForgotPassword(context.Background(), "maya@example.com")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), svcErr.Message)
}

func TestTransportFailureIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := newTestClient(t, srv.URL)
	err := client.Login(context.Background(), "maya@example.com", "petunia7")
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestContextCancellationIsUnreachable(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-block
	}))
	t.Cleanup(func() {
		close(block)
		srv.Close()
	})

	client := newTestClient(t, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := client.Login(ctx, "maya@example.com", "petunia7")
	require.ErrorIs(t, err, ErrUnreachable)
}
