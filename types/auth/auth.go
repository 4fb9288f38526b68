package auth

import "fmt"

const (
	ActionLogin     = "LOGIN"
	ActionVerifyOTP = "VERIFY_OTP"
)

type StartAuthRequest struct {
	Phone string `json:"phone"`
}

func (r *StartAuthRequest) Validate() error {
	if r.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	return nil
}

type StartAuthResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	Action       string `json:"action"`
	OTPDisplayed string `json:"otp_displayed,omitempty"`
}

type VerifyOTPRequest struct {
	Phone   string `json:"phone"`
	OTPCode string `json:"otp_code"`
}

func (r *VerifyOTPRequest) Validate() error {
	if r.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	if r.OTPCode == "" {
		return fmt.Errorf("otp_code is required")
	}
	return nil
}

type VerifyOTPResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	TempToken string `json:"temp_token"`
}

type SetPasswordRequest struct {
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	TempToken string `json:"temp_token"`
}

func (r *SetPasswordRequest) Validate() error {
	if r.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	if r.TempToken == "" {
		return fmt.Errorf("temp_token is required")
	}
	return nil
}

type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
