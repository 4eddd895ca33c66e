package flowernursery

// Screen identifies one navigable surface of the authentication flow.
type Screen uint8

const (
	// ScreenLogin is an exported constant or variable used by the flow controller.
	ScreenLogin Screen = iota
	// ScreenRegister is an exported constant or variable used by the flow controller.
	ScreenRegister
	// ScreenForgotPassword is an exported constant or variable used by the flow controller.
	ScreenForgotPassword
	// ScreenOtp is an exported constant or variable used by the flow controller.
	ScreenOtp
	// ScreenResetPassword is an exported constant or variable used by the flow controller.
	ScreenResetPassword
	// ScreenDashboard is an exported constant or variable used by the flow controller.
	ScreenDashboard
)

// String describes the string operation and its observable behavior.
func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "login"
	case ScreenRegister:
		return "register"
	case ScreenForgotPassword:
		return "forgot_password"
	case ScreenOtp:
		return "otp"
	case ScreenResetPassword:
		return "reset_password"
	case ScreenDashboard:
		return "dashboard"
	default:
		return "unknown"
	}
}

// ScreenFor describes the screenfor operation and its observable behavior.
//
// ScreenFor may return an error when input validation, dependency calls, or security checks fail.
// ScreenFor does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ScreenFor(state State) Screen {
	switch state {
	case StateRegistering:
		return ScreenRegister
	case StateAwaitingOtp:
		return ScreenOtp
	case StateAwaitingPasswordReset:
		return ScreenResetPassword
	case StateAuthenticated:
		return ScreenDashboard
	default:
		return ScreenLogin
	}
}

// Resolve describes the resolve operation and its observable behavior.
//
// Resolve decides which screen a flow may actually see. The dashboard is
// reserved for authenticated flows, and the payload-carrying screens redirect
// to the forgot-password entry when the flow does not hold their payload.
// Resolve does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func Resolve(requested Screen, snap Snapshot) Screen {
	switch requested {
	case ScreenDashboard:
		if snap.State != StateAuthenticated {
			return ScreenLogin
		}
		return ScreenDashboard
	case ScreenOtp:
		if snap.State != StateAwaitingOtp || snap.Purpose == PurposeNone || snap.Email == "" {
			return ScreenForgotPassword
		}
		return ScreenOtp
	case ScreenResetPassword:
		if snap.State != StateAwaitingPasswordReset || snap.Email == "" || snap.Otp == "" {
			return ScreenForgotPassword
		}
		return ScreenResetPassword
	default:
		return requested
	}
}
