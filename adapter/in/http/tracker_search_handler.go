package http

import (
	"tracker_server/core/domain"
	in "tracker_server/core/port/in"
	"tracker_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// SearchHandler proxies the external job boards.
type SearchHandler struct {
	service in.SearchService
}

func NewSearchHandler(service in.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// Register mounts the routes behind the given per-route middleware.
func (h *SearchHandler) Register(router fiber.Router, middlewares ...fiber.Handler) {
	router.Get("/jobsearchapi", withMiddleware(middlewares, h.SearchAdzuna)...)
	router.Get("/jooblejobsearchapi", withMiddleware(middlewares, h.SearchJooble)...)
}

func (h *SearchHandler) SearchAdzuna(c *fiber.Ctx) error {
	q := in.JobSearchQuery{Page: 1, Country: "us"}
	if err := c.QueryParser(&q); err != nil {
		return apperr.InvalidInput("page", "must be a number").WithError(err)
	}
	result, err := h.service.SearchAdzuna(c.UserContext(), &q)
	if err != nil {
		return err
	}

	raw := result.Raw
	if raw == nil {
		raw = []map[string]any{}
	}
	return c.JSON(in.AdzunaSearchResponse{
		JobsData:   raw,
		TotalPages: result.TotalPages,
		Listings:   listingsOrEmpty(result.Listings),
	})
}

func (h *SearchHandler) SearchJooble(c *fiber.Ctx) error {
	var q in.JoobleSearchQuery
	if err := c.QueryParser(&q); err != nil {
		return apperr.BadRequest("Invalid query").WithError(err)
	}
	result, err := h.service.SearchJooble(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return c.JSON(in.JoobleSearchResponse{
		TotalJobs: result.Total,
		Jobs:      listingsOrEmpty(result.Listings),
	})
}

func listingsOrEmpty(listings []domain.JobListing) []domain.JobListing {
	if listings == nil {
		return []domain.JobListing{}
	}
	return listings
}
