package handlers

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/prasetyo-adi/jobportal_be/internal/models"
)

type JobHandler struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewJobHandler(db *gorm.DB, rdb *redis.Client) *JobHandler {
	return &JobHandler{DB: db, RDB: rdb}
}

const (
	openJobsCacheKey = "jobs:open"
	openJobsCacheTTL = time.Minute
)

type JobReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Location    string `json:"location"`
	FixedSalary *int64 `json:"fixedSalary"`
	SalaryFrom  *int64 `json:"salaryFrom"`
	SalaryTo    *int64 `json:"salaryTo"`
}

// validateJob applies the field constraints shared by create and update.
func validateJob(j *models.Job) FieldErrors {
	errs := FieldErrors{}

	title := strings.TrimSpace(j.Title)
	switch {
	case title == "":
		errs.Add("title", "Title is required")
	case len(title) < 3:
		errs.Add("title", "Title must contain at least 3 characters")
	case len(title) > 30:
		errs.Add("title", "Title cannot exceed 30 characters")
	}

	desc := strings.TrimSpace(j.Description)
	switch {
	case desc == "":
		errs.Add("description", "Description is required")
	case len(desc) < 30:
		errs.Add("description", "Description must contain at least 30 characters")
	case len(desc) > 500:
		errs.Add("description", "Description cannot exceed 500 characters")
	}

	if strings.TrimSpace(j.Category) == "" {
		errs.Add("category", "Category is required")
	}
	if strings.TrimSpace(j.Country) == "" {
		errs.Add("country", "Country is required")
	}
	if strings.TrimSpace(j.City) == "" {
		errs.Add("city", "City is required")
	}

	loc := strings.TrimSpace(j.Location)
	if loc == "" {
		errs.Add("location", "Location is required")
	} else if len(loc) < 5 {
		errs.Add("location", "Location must contain at least 5 characters")
	}

	hasFixed := j.FixedSalary != nil
	hasRange := j.SalaryFrom != nil || j.SalaryTo != nil
	switch {
	case hasFixed && hasRange:
		errs.Add("salary", "Cannot enter fixed and ranged salary together")
	case !hasFixed && !hasRange:
		errs.Add("salary", "Please either provide fixed salary or ranged salary")
	case hasRange && (j.SalaryFrom == nil || j.SalaryTo == nil):
		errs.Add("salary", "Please provide both salary from and salary to")
	}

	return errs
}

func (h *JobHandler) invalidateOpenJobs(c *fiber.Ctx) {
	if h.RDB == nil {
		return
	}
	if err := h.RDB.Del(c.Context(), openJobsCacheKey).Err(); err != nil {
		log.Errorf("invalidating open jobs cache: %v", err)
	}
}

// GetAll returns every non-expired job. Public; the listing is cached
// briefly in Redis and invalidated on any job write.
func (h *JobHandler) GetAll(c *fiber.Ctx) error {
	if h.RDB != nil {
		if cached, err := h.RDB.Get(c.Context(), openJobsCacheKey).Result(); err == nil {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.SendString(cached)
		}
	}

	var jobs []models.Job
	if err := h.DB.
		Where("expired = ?", false).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		log.Errorf("fetching open jobs: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch jobs")
	}

	payload := fiber.Map{
		"success": true,
		"jobs":    jobs,
	}

	if h.RDB != nil {
		if b, err := json.Marshal(payload); err == nil {
			h.RDB.Set(c.Context(), openJobsCacheKey, b, openJobsCacheTTL)
		}
	}

	return c.JSON(payload)
}

func (h *JobHandler) Post(c *fiber.Ctx) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user id")
	}

	var req JobReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	job := models.Job{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Country:     strings.TrimSpace(req.Country),
		City:        strings.TrimSpace(req.City),
		Location:    strings.TrimSpace(req.Location),
		FixedSalary: req.FixedSalary,
		SalaryFrom:  req.SalaryFrom,
		SalaryTo:    req.SalaryTo,
		PostedByID:  callerID,
	}

	if errs := validateJob(&job); len(errs) > 0 {
		return validationFail(c, errs)
	}

	if err := h.DB.Create(&job).Error; err != nil {
		log.Errorf("creating job: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to post job")
	}

	h.invalidateOpenJobs(c)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Job posted successfully",
		"job":     job,
	})
}

func (h *JobHandler) GetMyJobs(c *fiber.Ctx) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user id")
	}

	var jobs []models.Job
	if err := h.DB.
		Where("posted_by_id = ?", callerID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		log.Errorf("fetching my jobs: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch jobs")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"myJobs":  jobs,
	})
}

// JobUpdateReq is the whitelist of mutable fields; pointers distinguish
// "absent" from "set to zero".
type JobUpdateReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Country     *string `json:"country"`
	City        *string `json:"city"`
	Location    *string `json:"location"`
	FixedSalary *int64  `json:"fixedSalary"`
	SalaryFrom  *int64  `json:"salaryFrom"`
	SalaryTo    *int64  `json:"salaryTo"`
	Expired     *bool   `json:"expired"`
}

func (h *JobHandler) Update(c *fiber.Ctx) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user id")
	}

	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid job id")
	}

	var req JobUpdateReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var job models.Job
	if err := h.DB.First(&job, "id = ?", jobID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, "Job not found")
	}

	if job.PostedByID != callerID {
		return fail(c, fiber.StatusForbidden, "You are not allowed to update this job")
	}

	if req.Title != nil {
		job.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		job.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		job.Category = strings.TrimSpace(*req.Category)
	}
	if req.Country != nil {
		job.Country = strings.TrimSpace(*req.Country)
	}
	if req.City != nil {
		job.City = strings.TrimSpace(*req.City)
	}
	if req.Location != nil {
		job.Location = strings.TrimSpace(*req.Location)
	}
	if req.FixedSalary != nil {
		job.FixedSalary = req.FixedSalary
		job.SalaryFrom = nil
		job.SalaryTo = nil
	}
	if req.SalaryFrom != nil {
		job.SalaryFrom = req.SalaryFrom
		job.FixedSalary = nil
	}
	if req.SalaryTo != nil {
		job.SalaryTo = req.SalaryTo
		job.FixedSalary = nil
	}
	if req.Expired != nil {
		job.Expired = *req.Expired
	}

	if errs := validateJob(&job); len(errs) > 0 {
		return validationFail(c, errs)
	}

	if err := h.DB.Save(&job).Error; err != nil {
		log.Errorf("updating job: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to update job")
	}

	h.invalidateOpenJobs(c)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Job updated successfully",
		"job":     job,
	})
}

// Delete removes a job and cascades its applications in one transaction.
func (h *JobHandler) Delete(c *fiber.Ctx) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user id")
	}

	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid job id")
	}

	var job models.Job
	if err := h.DB.First(&job, "id = ?", jobID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, "Job not found")
	}

	if job.PostedByID != callerID {
		return fail(c, fiber.StatusForbidden, "You are not allowed to delete this job")
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", job.ID).Delete(&models.Application{}).Error; err != nil {
			return err
		}
		return tx.Delete(&job).Error
	})
	if err != nil {
		log.Errorf("deleting job: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to delete job")
	}

	h.invalidateOpenJobs(c)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Job deleted successfully",
	})
}

func (h *JobHandler) GetSingle(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid job id")
	}

	var job models.Job
	if err := h.DB.Preload("PostedBy").First(&job, "id = ?", jobID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, "Job not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"job":     job,
	})
}
