package http

import (
	in "tracker_server/core/port/in"

	"github.com/gofiber/fiber/v2"
)

// JobHandler serves postings and the caller's applications.
type JobHandler struct {
	service in.JobService
}

func NewJobHandler(service in.JobService) *JobHandler {
	return &JobHandler{service: service}
}

func (h *JobHandler) Register(router fiber.Router) {
	router.Post("/createJob", h.CreateJob)
	router.Get("/getuserJobs", h.ListUserJobs)
	router.Get("/getAllJobs", h.ListAllJobs)
	router.Post("/editJob", h.EditJob)
	router.Post("/deleteJob", h.DeleteJob)
}

func (h *JobHandler) CreateJob(c *fiber.Ctx) error {
	req, err := h.bindJob(c)
	if err != nil {
		return err
	}
	jobID, err := h.service.CreateJob(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Job entry created successfully!",
		"jobs_id": jobID,
	})
}

func (h *JobHandler) EditJob(c *fiber.Ctx) error {
	req, err := h.bindJob(c)
	if err != nil {
		return err
	}
	if err := h.service.EditJob(c.UserContext(), req); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "Job updated successfully!")
}

func (h *JobHandler) DeleteJob(c *fiber.Ctx) error {
	var req in.DeleteJobRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	email, err := ownerEmail(c, req.Email)
	if err != nil {
		return err
	}
	if err := h.service.DeleteJob(c.UserContext(), req.JobID.Int64(), email); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "Job deleted successfully!")
}

func (h *JobHandler) ListUserJobs(c *fiber.Ctx) error {
	email, err := ownerEmail(c, c.Query("email"))
	if err != nil {
		return err
	}
	jobs, err := h.service.ListUserJobs(c.UserContext(), email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"jobs": jobs})
}

func (h *JobHandler) ListAllJobs(c *fiber.Ctx) error {
	jobs, err := h.service.ListAllJobs(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"jobs": jobs})
}

func (h *JobHandler) bindJob(c *fiber.Ctx) (*in.JobRequest, error) {
	var req in.JobRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}
	owner, err := ownerEmail(c, req.OwnerEmail())
	if err != nil {
		return nil, err
	}
	req.OriginalEmail = owner
	return &req, nil
}
