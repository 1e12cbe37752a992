package http

import (
	in "tracker_server/core/port/in"

	"github.com/gofiber/fiber/v2"
)

// DocumentHandler serves AI-drafted cover letters and resumes.
type DocumentHandler struct {
	service in.DocumentService
}

func NewDocumentHandler(service in.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

func (h *DocumentHandler) Register(router fiber.Router) {
	router.Post("/generateCoverLetter", h.GenerateCoverLetter)
	router.Post("/generateResume", h.GenerateResume)
	router.Get("/generatedDocuments", h.ListDocuments)
}

func (h *DocumentHandler) GenerateCoverLetter(c *fiber.Ctx) error {
	req, err := h.bind(c)
	if err != nil {
		return err
	}
	letter, err := h.service.GenerateCoverLetter(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"cover_letter": letter})
}

func (h *DocumentHandler) GenerateResume(c *fiber.Ctx) error {
	req, err := h.bind(c)
	if err != nil {
		return err
	}
	resume, err := h.service.GenerateResume(c.UserContext(), req)
	if err != nil {
		return err
	}
	// Capitalized key kept for existing clients.
	return c.JSON(fiber.Map{"Resume": resume})
}

func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	email, err := ownerEmail(c, c.Query("email"))
	if err != nil {
		return err
	}
	docs, err := h.service.ListDocuments(c.UserContext(), email, c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"documents": docs})
}

func (h *DocumentHandler) bind(c *fiber.Ctx) (*in.GenerateDocumentRequest, error) {
	var req in.GenerateDocumentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}
	email, err := ownerEmail(c, req.Email)
	if err != nil {
		return nil, err
	}
	req.Email = email
	return &req, nil
}
