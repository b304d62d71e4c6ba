package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence. List-shaped fields (documents, feedback,
// iterations, quiz scores, history) live in jsonb columns and are only ever
// rewritten under a row lock; see GormStore.
type ProfileModel struct {
	UID       string `gorm:"primaryKey"`
	Email     string `gorm:"index"`
	Name      string
	Role      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time
}

type ProjectModel struct {
	ID              string         `gorm:"primaryKey"`
	Title           string         `gorm:"not null"`
	Type            string         `gorm:"not null"`
	Stage           string         `gorm:"not null"`
	Status          string         `gorm:"not null;index"`
	EntrepreneurID  string         `gorm:"not null;index"`
	MentorID        string         `gorm:"index"`
	Forms           datatypes.JSON `gorm:"type:jsonb"`
	Documents       datatypes.JSON `gorm:"type:jsonb"`
	Feedback        datatypes.JSON `gorm:"type:jsonb"`
	Recommendations datatypes.JSON `gorm:"type:jsonb"`
	Iterations      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt       time.Time      `gorm:"not null"`
	UpdatedAt       time.Time      `gorm:"not null"`
}

type CourseModel struct {
	ID           string `gorm:"primaryKey"`
	Title        string `gorm:"not null"`
	Description  string
	Track        string `gorm:"index"`
	Level        string `gorm:"index"`
	LearningPath string
	Modules      datatypes.JSON `gorm:"type:jsonb"`
	CreatedBy    string         `gorm:"not null;index"`
	CreatedAt    time.Time      `gorm:"not null;index"`
	UpdatedAt    time.Time      `gorm:"not null"`
}

type EnrollmentModel struct {
	ID               string         `gorm:"primaryKey"`
	UserID           string         `gorm:"not null;index"`
	CourseID         string         `gorm:"not null;index"`
	ModulesCompleted datatypes.JSON `gorm:"type:jsonb"`
	Progress         int
	QuizScores       datatypes.JSON `gorm:"type:jsonb"`
	EnrolledAt       time.Time
	UpdatedAt        time.Time `gorm:"not null"`
}

type SessionModel struct {
	ID             string `gorm:"primaryKey"`
	EntrepreneurID string `gorm:"not null;index"`
	MentorID       string `gorm:"not null;index"`
	Topic          string
	StartAt        time.Time `gorm:"not null;index"`
	EndAt          time.Time `gorm:"not null"`
	MeetingLink    string
	Notes          string
	Status         string         `gorm:"not null"`
	Reminders      datatypes.JSON `gorm:"type:jsonb"`
	History        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"not null"`
	UpdatedAt      time.Time      `gorm:"not null"`
}
