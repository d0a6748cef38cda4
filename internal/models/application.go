package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusAccepted ApplicationStatus = "accepted"
	StatusRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusRejected
}

// Terminal reports whether the status allows no further transitions.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

type Application struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// The composite unique index enforces at most one application per
	// (job, applicant) pair at the database, even under concurrent applies.
	JobID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_applications_job_applicant" json:"jobId"`
	ApplicantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_applications_job_applicant" json:"applicantId"`

	Status ApplicationStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`

	// Applicant-supplied contact fields; fall back to the account profile.
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	CoverLetter string `gorm:"type:text" json:"coverLetter"`

	// Resume holds the stored-object descriptor ({url, fileName, size}).
	Resume datatypes.JSON `json:"resume,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Job       *Job  `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Applicant *User `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	return
}
