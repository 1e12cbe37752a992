package http

import (
	in "tracker_server/core/port/in"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler serves sign-up, sign-in and the OTP password reset.
type AuthHandler struct {
	service in.AuthService
}

func NewAuthHandler(service in.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register mounts the routes. limiter guards the credential-guessing
// endpoints; pass nil to leave them unlimited.
func (h *AuthHandler) Register(router fiber.Router, limiter fiber.Handler) {
	var guards []fiber.Handler
	if limiter != nil {
		guards = append(guards, limiter)
	}
	guarded := func(handler fiber.Handler) []fiber.Handler {
		return withMiddleware(guards, handler)
	}

	router.Post("/signup", h.SignUp)
	router.Post("/signin", guarded(h.SignIn)...)
	router.Post("/generateOTP", guarded(h.GenerateOTP)...)
	router.Post("/verifyOTP", guarded(h.VerifyOTP)...)
	router.Post("/resetPassword", guarded(h.ResetPassword)...)
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req in.SignUpRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.service.SignUp(c.UserContext(), &req); err != nil {
		return err
	}
	return message(c, fiber.StatusCreated, "User created successfully!")
}

func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req in.SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	token, err := h.service.SignIn(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.JSON(in.SignInResponse{Message: "Sign-in successful!", Token: token})
}

func (h *AuthHandler) GenerateOTP(c *fiber.Ctx) error {
	var req in.GenerateOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.service.GenerateOTP(c.UserContext(), req.Email); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "OTP Sent Successfully")
}

func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req in.VerifyOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.service.VerifyOTP(c.UserContext(), req.Email, req.OTP); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "OTP Verified Successfully")
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req in.ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.service.ResetPassword(c.UserContext(), req.Email, req.Password); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "Password Updated Successfully")
}
