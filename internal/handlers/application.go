package handlers

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/prasetyo-adi/jobportal_be/internal/models"
	"github.com/prasetyo-adi/jobportal_be/internal/realtime"
)

type ApplicationHandler struct {
	DB       *gorm.DB
	Notifier *realtime.Notifier

	// UploadDir is where resume files land; served publicly under /uploads.
	UploadDir string
	BaseURL   string
}

func NewApplicationHandler(db *gorm.DB, notifier *realtime.Notifier, uploadDir, baseURL string) *ApplicationHandler {
	return &ApplicationHandler{DB: db, Notifier: notifier, UploadDir: uploadDir, BaseURL: baseURL}
}

var resumeExts = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

const maxResumeSize = 5 * 1024 * 1024

// saveResume stores the uploaded file and returns its descriptor JSON.
func (h *ApplicationHandler) saveResume(c *fiber.Ctx) (datatypes.JSON, error) {
	file, err := c.FormFile("resume")
	if err != nil {
		return nil, nil // no file attached
	}

	if file.Size <= 0 || file.Size > maxResumeSize {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Resume file must be between 1 byte and 5MB")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !resumeExts[ext] {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Resume file type is not supported")
	}

	dir := filepath.Join(h.UploadDir, "resumes")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to prepare upload folder")
	}

	filename := uuid.New().String() + ext
	savePath := filepath.Join(dir, filename)
	if err := c.SaveFile(file, savePath); err != nil {
		log.Errorf("saving resume file: %v", err)
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to save resume file")
	}

	publicPath := "/uploads/resumes/" + filename
	if h.BaseURL != "" {
		publicPath = strings.TrimRight(h.BaseURL, "/") + publicPath
	}

	desc, _ := json.Marshal(fiber.Map{
		"url":      publicPath,
		"fileName": file.Filename,
		"size":     file.Size,
	})
	return datatypes.JSON(desc), nil
}

// Post submits an application for a job. Multipart form: jobId plus
// optional contact fields and a resume file.
func (h *ApplicationHandler) Post(c *fiber.Ctx) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user id")
	}

	jobIDStr := strings.TrimSpace(c.FormValue("jobId"))
	if jobIDStr == "" {
		return fail(c, fiber.StatusBadRequest, "Job id is required")
	}
	jobID, err := uuid.Parse(jobIDStr)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid job id")
	}

	var job models.Job
	if err := h.DB.First(&job, "id = ?", jobID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, "Job not found")
	}

	if job.Expired {
		return fail(c, fiber.StatusBadRequest, "This job is no longer accepting applications")
	}

	var existing models.Application
	if err := h.DB.Where("job_id = ? AND applicant_id = ?", jobID, callerID).
		First(&existing).Error; err == nil {
		return fail(c, fiber.StatusBadRequest, "You have already applied to this job")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, fiber.StatusInternalServerError, "Something went wrong")
	}

	var applicant models.User
	if err := h.DB.First(&applicant, "id = ?", callerID).Error; err != nil {
		return fail(c, fiber.StatusUnauthorized, "User not found")
	}

	resume, err := h.saveResume(c)
	if err != nil {
		if e, ok := err.(*fiber.Error); ok {
			return fail(c, e.Code, e.Message)
		}
		return fail(c, fiber.StatusInternalServerError, "Failed to process resume")
	}

	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		name = applicant.Name
	}
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	if email == "" {
		email = applicant.Email
	}

	app := models.Application{
		JobID:       job.ID,
		ApplicantID: callerID,
		Status:      models.StatusPending,
		Name:        name,
		Email:       email,
		Phone:       strings.TrimSpace(c.FormValue("phone")),
		Address:     strings.TrimSpace(c.FormValue("address")),
		CoverLetter: strings.TrimSpace(c.FormValue("coverLetter")),
		Resume:      resume,
	}

	if err := h.DB.Create(&app).Error; err != nil {
		// unique (job_id, applicant_id) index closes the check-then-create
		// race: a concurrent duplicate lands here
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, fiber.StatusBadRequest, "You have already applied to this job")
		}
		log.Errorf("creating application: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to submit application")
	}

	if resume != nil {
		applicant.Resume = resume
		if err := h.DB.Save(&applicant).Error; err != nil {
			log.Errorf("saving applicant resume descriptor: %v", err)
		}
	}

	h.Notifier.Notify(job.PostedByID, "application_received", fiber.Map{
		"applicationId": app.ID,
		"jobId":         job.ID,
		"jobTitle":      job.Title,
		"applicant":     app.Name,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"message":     "Application submitted successfully",
		"application": app,
	})
}

// QuickApply creates a pending application straight from a job listing,
// with no form fields. The canonical path with resume upload is Post.
func (h *ApplicationHandler) QuickApply(c *fiber.Ctx) error {
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
	if job.Expired {
		return fail(c, fiber.StatusBadRequest, "This job is no longer accepting applications")
	}

	var applicant models.User
	if err := h.DB.First(&applicant, "id = ?", callerID).Error; err != nil {
		return fail(c, fiber.StatusUnauthorized, "User not found")
	}

	app := models.Application{
		JobID:       job.ID,
		ApplicantID: callerID,
		Status:      models.StatusPending,
		Name:        applicant.Name,
		Email:       applicant.Email,
		Phone:       applicant.Phone,
		Resume:      applicant.Resume,
	}

	if err := h.DB.Create(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, fiber.StatusBadRequest, "You have already applied to this job")
		}
		log.Errorf("creating application: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to submit application")
	}

	h.Notifier.Notify(job.PostedByID, "application_received", fiber.Map{
		"applicationId": app.ID,
		"jobId":         job.ID,
		"jobTitle":      job.Title,
		"applicant":     app.Name,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"message":     "Application submitted successfully",
		"application": app,
	})
}

// JobseekerGetAll lists the caller's applications, newest first, each
// joined with its job and the job's poster.
func (h *ApplicationHandler) JobseekerGetAll(c *fiber.Ctx) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user id")
	}

	var apps []models.Application
	if err := h.DB.
		Preload("Job").
		Preload("Job.PostedBy").
		Where("applicant_id = ?", callerID).
		Order("created_at DESC").
		Find(&apps).Error; err != nil {
		log.Errorf("fetching job seeker applications: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch applications")
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"applications": apps,
	})
}

// EmployerGetAll lists applications on the caller's own jobs only.
func (h *ApplicationHandler) EmployerGetAll(c *fiber.Ctx) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user id")
	}

	var apps []models.Application
	if err := h.DB.
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.posted_by_id = ?", callerID).
		Preload("Job").
		Preload("Job.PostedBy").
		Preload("Applicant").
		Order("applications.created_at DESC").
		Find(&apps).Error; err != nil {
		log.Errorf("fetching employer applications: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch applications")
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"applications": apps,
	})
}

// JobApplicants returns one of the caller's jobs with its applications
// populated, newest first.
func (h *ApplicationHandler) JobApplicants(c *fiber.Ctx) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user id")
	}

	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid job id")
	}

	var job models.Job
	if err := h.DB.
		Preload("Applications", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("applications.created_at DESC")
		}).
		Preload("Applications.Applicant").
		First(&job, "id = ?", jobID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, "Job not found")
	}

	if job.PostedByID != callerID {
		return fail(c, fiber.StatusForbidden, "You are not allowed to view applicants for this job")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"job":     job,
	})
}

// Delete withdraws the caller's own application. Removing the row also
// removes it from the job's application list (FK relation).
func (h *ApplicationHandler) Delete(c *fiber.Ctx) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user id")
	}

	appID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid application id")
	}

	var app models.Application
	if err := h.DB.First(&app, "id = ?", appID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, "Application not found")
	}

	if app.ApplicantID != callerID {
		return fail(c, fiber.StatusForbidden, "You are not allowed to delete this application")
	}

	if err := h.DB.Delete(&app).Error; err != nil {
		log.Errorf("deleting application: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to delete application")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Application deleted successfully",
	})
}

type UpdateStatusReq struct {
	Status string `json:"status"`
}

// setApplicationStatus writes next only while the stored status is still
// non-terminal (or already equal to next, keeping re-sends idempotent).
// Guarding the UPDATE itself instead of the earlier read means two
// concurrent finalizations cannot both win: the second one's predicate
// no longer matches the row and affects nothing.
func setApplicationStatus(tx *gorm.DB, id uuid.UUID, next models.ApplicationStatus) (bool, error) {
	res := tx.Model(&models.Application{}).
		Where("id = ? AND (status NOT IN ? OR status = ?)",
			id,
			[]models.ApplicationStatus{models.StatusAccepted, models.StatusRejected},
			next,
		).
		Update("status", next)
	return res.RowsAffected > 0, res.Error
}

// UpdateStatus lets the job's poster move an application through
// pending -> accepted | rejected. Accepted and rejected are terminal.
func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user id")
	}

	appID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid application id")
	}

	var req UpdateStatusReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	status := models.ApplicationStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if status == "" {
		return fail(c, fiber.StatusBadRequest, "Status is required")
	}
	if !status.Valid() {
		return fail(c, fiber.StatusBadRequest, "Status must be one of pending, accepted, rejected")
	}

	var app models.Application
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&app, "id = ?", appID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Application not found")
		}

		var job models.Job
		if err := tx.First(&job, "id = ?", app.JobID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Job not found")
		}
		if job.PostedByID != callerID {
			return fiber.NewError(fiber.StatusForbidden, "You are not allowed to update this application")
		}

		changed, err := setApplicationStatus(tx, app.ID, status)
		if err != nil {
			return err
		}
		if !changed {
			return fiber.NewError(fiber.StatusBadRequest, "Cannot change status of a finalized application")
		}

		app.Status = status
		return nil
	})
	if err != nil {
		if e, ok := err.(*fiber.Error); ok {
			return fail(c, e.Code, e.Message)
		}
		log.Errorf("updating application status: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to update status")
	}

	h.Notifier.Notify(app.ApplicantID, "application_status", fiber.Map{
		"applicationId": app.ID,
		"jobId":         app.JobID,
		"status":        app.Status,
	})

	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "Application status updated",
		"application": app,
	})
}
