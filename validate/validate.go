package validate

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 6
	// OtpLength is the exact number of digits an OTP must carry.
	OtpLength = 6
)

// Kind identifies which form's rule set to apply.
type Kind uint8

const (
	// FormRegistration is an exported constant or variable used by the flow validator.
	FormRegistration Kind = iota
	// FormLogin is an exported constant or variable used by the flow validator.
	FormLogin
	// FormForgotPassword is an exported constant or variable used by the flow validator.
	FormForgotPassword
	// FormOtp is an exported constant or variable used by the flow validator.
	FormOtp
	// FormResetPassword is an exported constant or variable used by the flow validator.
	FormResetPassword
)

// Result maps field names to display messages. An empty string means the
// field passed. Every field the form defines is always present.
type Result map[string]string

// Valid reports whether every field in the result carries no message.
func (r Result) Valid() bool {
	for _, msg := range r {
		if msg != "" {
			return false
		}
	}
	return true
}

// RegistrationForm carries the registration submission fields.
type RegistrationForm struct {
	FirstName       string `json:"firstName" validate:"notblank"`
	LastName        string `json:"lastName" validate:"notblank"`
	Email           string `json:"email" validate:"notblank,flowemail"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginForm carries the credential submission fields.
type LoginForm struct {
	Email    string `json:"email" validate:"notblank,flowemail"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordForm carries the reset-OTP request field.
type ForgotPasswordForm struct {
	Email string `json:"email" validate:"notblank,flowemail"`
}

// OtpForm carries the one-time-password entry field.
type OtpForm struct {
	Otp string `json:"otp" validate:"otp6"`
}

// ResetPasswordForm carries the new-password submission fields.
type ResetPasswordForm struct {
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var ruleEngine = newRuleEngine()

func newRuleEngine() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "flowemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "otp6", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		if len(code) != OtpLength {
			return false
		}
		for i := 0; i < len(code); i++ {
			if code[i] < '0' || code[i] > '9' {
				return false
			}
		}
		return true
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Registration evaluates the registration rule set.
func Registration(form RegistrationForm) Result {
	return run(form, "firstName", "lastName", "email", "password", "confirmPassword")
}

// Login evaluates the credential rule set.
func Login(form LoginForm) Result {
	return run(form, "email", "password")
}

// ForgotPassword evaluates the reset-OTP request rule set.
func ForgotPassword(email string) Result {
	return run(ForgotPasswordForm{Email: email}, "email")
}

// Otp evaluates the one-time-password rule set.
func Otp(code string) Result {
	return run(OtpForm{Otp: code}, "otp")
}

// ResetPassword evaluates the new-password rule set.
func ResetPassword(form ResetPasswordForm) Result {
	return run(form, "password", "confirmPassword")
}

// Form evaluates the rule set selected by kind against loosely-typed values,
// keyed the same way the Result is. Unknown kinds return an empty Result.
func Form(kind Kind, values map[string]string) Result {
	switch kind {
	case FormRegistration:
		return Registration(RegistrationForm{
			FirstName:       values["firstName"],
			LastName:        values["lastName"],
			Email:           values["email"],
			Password:        values["password"],
			ConfirmPassword: values["confirmPassword"],
		})
	case FormLogin:
		return Login(LoginForm{
			Email:    values["email"],
			Password: values["password"],
		})
	case FormForgotPassword:
		return ForgotPassword(values["email"])
	case FormOtp:
		return Otp(values["otp"])
	case FormResetPassword:
		return ResetPassword(ResetPasswordForm{
			Password:        values["password"],
			ConfirmPassword: values["confirmPassword"],
		})
	default:
		return Result{}
	}
}

// FilterOtpInput applies the entry-time OTP filter: non-digit characters are
// discarded and the value is capped at OtpLength digits. The returned string
// is what the field should hold after the keystroke.
func FilterOtpInput(input string) string {
	var b strings.Builder
	for i := 0; i < len(input); i++ {
		c := input[i]
		if c < '0' || c > '9' {
			continue
		}
		b.WriteByte(c)
		if b.Len() == OtpLength {
			break
		}
	}
	return b.String()
}

func run(form any, fields ...string) Result {
	result := make(Result, len(fields))
	for _, field := range fields {
		result[field] = ""
	}

	err := ruleEngine.Struct(form)
	if err == nil {
		return result
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return result
	}

	for _, fieldErr := range validationErrors {
		name := fieldErr.Field()
		if result[name] != "" {
			continue
		}
		result[name] = message(name, fieldErr.Tag())
	}

	return result
}

func message(field, tag string) string {
	switch field {
	case "firstName":
		return "First name is required."
	case "lastName":
		return "Last name is required."
	case "email":
		if tag == "flowemail" {
			return "Please enter a valid email address."
		}
		return "Email is required."
	case "password":
		if tag == "min" {
			return "Password must be at least 6 characters."
		}
		return "Password is required."
	case "confirmPassword":
		if tag == "eqfield" {
			return "Passwords do not match."
		}
		return "Please confirm your password."
	case "otp":
		return "Please enter the 6-digit OTP sent to your email or phone."
	default:
		return "This field is invalid."
	}
}
