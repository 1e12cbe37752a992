package http

import (
	"strings"

	"tracker_server/core/domain"
	in "tracker_server/core/port/in"
	"tracker_server/core/port/out"
	"tracker_server/infra/middleware"
	"tracker_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	service in.ProfileService
	tokens  out.TokenIssuer
}

// NewProfileHandler creates the handler. tokens re-issues the caller's token
// after a rename; nil disables that.
func NewProfileHandler(service in.ProfileService, tokens out.TokenIssuer) *ProfileHandler {
	return &ProfileHandler{service: service, tokens: tokens}
}

func (h *ProfileHandler) Register(router fiber.Router) {
	router.Get("/getProfile", h.GetProfile)
	// Both paths save the whole document; clients use them interchangeably.
	router.Post("/createProfile", h.SaveProfile)
	router.Post("/editProfile", h.SaveProfile)
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	email, err := ownerEmail(c, c.Query("email"))
	if err != nil {
		return err
	}
	profile, err := h.service.GetProfile(c.UserContext(), email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Data fetched successfully!",
		"data":    profile,
	})
}

func (h *ProfileHandler) SaveProfile(c *fiber.Ctx) error {
	var req in.SaveProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	owner, err := ownerEmail(c, req.OriginalEmail)
	if err != nil {
		return err
	}
	req.OriginalEmail = owner

	if err := h.service.SaveProfile(c.UserContext(), &req); err != nil {
		return err
	}

	resp := fiber.Map{"message": "Profile updated successfully!"}
	if token := h.renewedToken(c, req.Email); token != "" {
		resp["token"] = token
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// renewedToken issues a token carrying the new email when an authenticated
// caller renamed their account. The old token keeps the old email claim.
func (h *ProfileHandler) renewedToken(c *fiber.Ctx, newEmail string) string {
	callerID := middleware.CallerID(c)
	newEmail = strings.TrimSpace(newEmail)
	if h.tokens == nil || callerID == 0 || newEmail == "" || strings.EqualFold(newEmail, middleware.CallerEmail(c)) {
		return ""
	}
	token, err := h.tokens.Issue(&domain.User{ID: callerID, Email: newEmail})
	if err != nil {
		logger.WithContext(c.UserContext()).WithError(err).Warn("[ProfileHandler.SaveProfile] token renewal failed for user %d", callerID)
		return ""
	}
	return token
}
