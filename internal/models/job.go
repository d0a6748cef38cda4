package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Job struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Category    string    `gorm:"not null" json:"category"`
	Country     string    `gorm:"not null" json:"country"`
	City        string    `gorm:"not null" json:"city"`
	Location    string    `gorm:"not null" json:"location"`

	// Exactly one salary mode is set: FixedSalary, or SalaryFrom+SalaryTo.
	FixedSalary *int64 `json:"fixedSalary,omitempty"`
	SalaryFrom  *int64 `json:"salaryFrom,omitempty"`
	SalaryTo    *int64 `json:"salaryTo,omitempty"`

	Expired bool `gorm:"default:false;index" json:"expired"`

	PostedByID uuid.UUID `gorm:"type:uuid;not null;index" json:"postedById"`
	PostedBy   *User     `gorm:"foreignKey:PostedByID" json:"postedBy,omitempty"`

	Applications []Application `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"applications,omitempty"`

	CreatedAt time.Time `json:"jobPostedOn"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) (err error) {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return
}
