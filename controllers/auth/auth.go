package auth

import (
	"github.com/gofiber/fiber/v2"

	"pharma-supply/apperror"
	"pharma-supply/logger"
	"pharma-supply/middleware"
	authService "pharma-supply/services/auth"
	"pharma-supply/types"
	authTypes "pharma-supply/types/auth"
	"pharma-supply/utils"
)

type AuthController struct {
	service *authService.AuthService
	// echoOTP returns the issued code in the start response. Development only.
	echoOTP      bool
	exposeErrors bool
}

func NewAuthController(service *authService.AuthService, echoOTP, exposeErrors bool) *AuthController {
	return &AuthController{service: service, echoOTP: echoOTP, exposeErrors: exposeErrors}
}

func (h *AuthController) badRequest(c *fiber.Ctx, err error) error {
	return utils.SendError(c, apperror.Validation("%v", err), h.exposeErrors)
}

// StartAuth begins login or signup for a phone.
func (h *AuthController) StartAuth(c *fiber.Ctx) error {
	var req authTypes.StartAuthRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return h.badRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return h.badRequest(c, err)
	}

	result, err := h.service.StartAuth(c.UserContext(), req.Phone)
	if err != nil {
		return utils.SendError(c, err, h.exposeErrors)
	}

	if result.Action == authTypes.ActionLogin {
		return c.JSON(authTypes.StartAuthResponse{
			Status:  "success",
			Message: "Account already exists",
			Action:  authTypes.ActionLogin,
		})
	}

	response := authTypes.StartAuthResponse{
		Status:  "success",
		Message: "OTP issued",
		Action:  authTypes.ActionVerifyOTP,
	}
	if h.echoOTP {
		response.Message = "Your OTP code: " + result.OTP
		response.OTPDisplayed = result.OTP
	}
	logger.Success("OTP issued for " + req.Phone)
	return c.JSON(response)
}

// VerifyOTP exchanges a correct code for a temp token.
func (h *AuthController) VerifyOTP(c *fiber.Ctx) error {
	var req authTypes.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return h.badRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return h.badRequest(c, err)
	}

	tempToken, err := h.service.VerifyOTP(c.UserContext(), req.Phone, req.OTPCode)
	if err != nil {
		return utils.SendError(c, err, h.exposeErrors)
	}

	return c.JSON(authTypes.VerifyOTPResponse{
		Status:    "success",
		Message:   "Verification successful",
		TempToken: tempToken,
	})
}

// SetPassword creates the account of a verified phone.
func (h *AuthController) SetPassword(c *fiber.Ctx) error {
	var req authTypes.SetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return h.badRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return h.badRequest(c, err)
	}

	if err := h.service.SetPassword(c.UserContext(), req.Phone, req.Password, req.TempToken); err != nil {
		return utils.SendError(c, err, h.exposeErrors)
	}

	logger.Success("User registered: " + req.Phone)
	return c.JSON(types.StatusResponse{Status: "success", Message: "Registration successful"})
}

// Login issues a bearer token for phone and password.
func (h *AuthController) Login(c *fiber.Ctx) error {
	var req authTypes.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return h.badRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return h.badRequest(c, err)
	}

	token, err := h.service.Login(c.UserContext(), req.Phone, req.Password)
	if err != nil {
		return utils.SendError(c, err, h.exposeErrors)
	}

	return c.JSON(authTypes.LoginResponse{AccessToken: token, TokenType: "bearer"})
}

// Me returns the authenticated user.
func (h *AuthController) Me(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}
