package http

import (
	in "tracker_server/core/port/in"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsHandler struct {
	service in.AnalyticsService
}

func NewAnalyticsHandler(service in.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/analytics", h.UserAnalytics)
	router.Get("/generalanalytics", h.GlobalAnalytics)
}

func (h *AnalyticsHandler) UserAnalytics(c *fiber.Ctx) error {
	email, err := ownerEmail(c, c.Query("email"))
	if err != nil {
		return err
	}
	result, err := h.service.UserAnalytics(c.UserContext(), email)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *AnalyticsHandler) GlobalAnalytics(c *fiber.Ctx) error {
	result, err := h.service.GlobalAnalytics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(result)
}
