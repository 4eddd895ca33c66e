package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrationAllFieldsMissing(t *testing.T) {
	result := Registration(RegistrationForm{})

	assert.False(t, result.Valid())
	assert.Equal(t, "First name is required.", result["firstName"])
	assert.Equal(t, "Last name is required.", result["lastName"])
	assert.Equal(t, "Email is required.", result["email"])
	assert.Equal(t, "Password is required.", result["password"])
	assert.Equal(t, "Please confirm your password.", result["confirmPassword"])
}

func TestRegistrationWhitespaceNamesRejected(t *testing.T) {
	result := Registration(RegistrationForm{
		FirstName:       "   ",
		LastName:        "\t",
		Email:           "maya@example.com",
		Password:        "petunia7",
		ConfirmPassword: "petunia7",
	})

	assert.Equal(t, "First name is required.", result["firstName"])
	assert.Equal(t, "Last name is required.", result["lastName"])
	assert.Empty(t, result["email"])
}

func TestRegistrationValid(t *testing.T) {
	result := Registration(RegistrationForm{
		FirstName:       "Maya",
		LastName:        "Rivera",
		Email:           "maya@example.com",
		Password:        "petunia7",
		ConfirmPassword: "petunia7",
	})

	require.True(t, result.Valid())
	assert.Len(t, result, 5)
}

func TestEmailShape(t *testing.T) {
	cases := []struct {
		email string
		want  string
	}{
		{"maya@example.com", ""},
		{"a@b.co", ""},
		{"first.last@sub.example.org", ""},
		{"", "Email is required."},
		{"   ", "Email is required."},
		{"not-an-email", "Please enter a valid email address."},
		{"missing@dot", "Please enter a valid email address."},
		{"spaces in@example.com", "Please enter a valid email address."},
		{"@example.com", "Please enter a valid email address."},
		{"maya@x.com", ""},
	}

	for _, tc := range cases {
		result := ForgotPassword(tc.email)
		assert.Equal(t, tc.want, result["email"], "email %q", tc.email)
	}
}

func TestPasswordMinLengthBoundary(t *testing.T) {
	short := ResetPassword(ResetPasswordForm{Password: "five5", ConfirmPassword: "five5"})
	assert.Equal(t, "Password must be at least 6 characters.", short["password"])

	exact := ResetPassword(ResetPasswordForm{Password: "sixsix", ConfirmPassword: "sixsix"})
	assert.True(t, exact.Valid())
}

func TestConfirmPasswordMismatch(t *testing.T) {
	result := ResetPassword(ResetPasswordForm{Password: "petunia7", ConfirmPassword: "petunia8"})
	assert.Equal(t, "Passwords do not match.", result["confirmPassword"])
	assert.Empty(t, result["password"])
}

func TestLoginRules(t *testing.T) {
	result := Login(LoginForm{})
	assert.Equal(t, "Email is required.", result["email"])
	assert.Equal(t, "Password is required.", result["password"])

	// Login does not apply the minimum length; only presence.
	result = Login(LoginForm{Email: "maya@example.com", Password: "a"})
	assert.True(t, result.Valid())
}

func TestOtpRules(t *testing.T) {
	const msg = "Please enter the 6-digit OTP sent to your email or phone."

	assert.Equal(t, msg, Otp("")["otp"])
	assert.Equal(t, msg, Otp("123")["otp"])
	assert.Equal(t, msg, Otp("1234567")["otp"])
	assert.Equal(t, msg, Otp("12345a")["otp"])
	assert.True(t, Otp("123456").Valid())
	assert.True(t, Otp("000000").Valid())
}

func TestFormDispatch(t *testing.T) {
	result := Form(FormRegistration, map[string]string{
		"firstName":       "Maya",
		"lastName":        "Rivera",
		"email":           "maya@example.com",
		"password":        "petunia7",
		"confirmPassword": "petunia7",
	})
	assert.True(t, result.Valid())

	result = Form(FormOtp, map[string]string{"otp": "12"})
	assert.False(t, result.Valid())

	assert.Empty(t, Form(Kind(99), nil))
}

func TestFilterOtpInput(t *testing.T) {
	assert.Equal(t, "123456", FilterOtpInput("123456"))
	assert.Equal(t, "123456", FilterOtpInput("12-34-56"))
	assert.Equal(t, "123456", FilterOtpInput("1234567890"))
	assert.Equal(t, "", FilterOtpInput("abc"))
	assert.Equal(t, "42", FilterOtpInput(" 4x2 "))
}

func TestResultAlwaysCarriesEveryField(t *testing.T) {
	result := Login(LoginForm{Email: "maya@example.com", Password: "petunia7"})

	_, hasEmail := result["email"]
	_, hasPassword := result["password"]
	require.True(t, hasEmail)
	require.True(t, hasPassword)
}
