package domain

import "time"

type Role string

const (
	RoleEntrepreneur    Role = "entrepreneur"
	RoleMentor          Role = "mentor"
	RoleBusinessSupport Role = "business_support"
	RoleAdmin           Role = "admin"
)

// Roles lists every role the platform accepts.
var Roles = []Role{RoleEntrepreneur, RoleMentor, RoleBusinessSupport, RoleAdmin}

// ValidRole reports whether r is one of the platform roles.
func ValidRole(r Role) bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type ProjectType string

const (
	TypeBMC               ProjectType = "BMC"
	TypeGreenBMC          ProjectType = "GREEN_BMC"
	TypeGreenBusinessPlan ProjectType = "GREEN_BUSINESS_PLAN"
)

type ProjectStage string

const (
	StageIdea     ProjectStage = "idea"
	StageCreation ProjectStage = "creation"
	StageGrowth   ProjectStage = "growth"
)

type ProjectStatus string

const (
	StatusDraft            ProjectStatus = "draft"
	StatusSubmitted        ProjectStatus = "submitted"
	StatusNeedsCorrections ProjectStatus = "needs_corrections"
	StatusValidated        ProjectStatus = "validated"
)

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// Profile is the platform-side user record. Token issuance lives with the
// external identity provider; the profile row is created lazily on first
// authenticated request and never deleted.
type Profile struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Document describes one file attached to a project.
type Document struct {
	Name       string    `json:"name"`
	StoredName string    `json:"storedName"`
	Path       string    `json:"path"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Feedback is one review entry left by mentor/admin/business support.
type Feedback struct {
	Text               string    `json:"detailedFeedback"`
	RequestCorrections bool      `json:"requestCorrections"`
	By                 string    `json:"by"`
	At                 time.Time `json:"at"`
}

// Recommendation is a free-text suggestion recorded during validation.
type Recommendation struct {
	Text string    `json:"text"`
	By   string    `json:"by"`
	At   time.Time `json:"at"`
}

// Iteration is one append-only audit entry. Every mutating project
// operation appends exactly one.
type Iteration struct {
	Action string    `json:"action"`
	By     string    `json:"by"`
	At     time.Time `json:"at"`
}

// Forms maps question id to answer value. Values are arbitrary JSON
// (strings, numbers, arrays); reserved "__" keys carry repeating-group
// counters for the dynamic questionnaire tools.
type Forms map[string]any

type Project struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Type            ProjectType      `json:"type"`
	Stage           ProjectStage     `json:"stage"`
	Status          ProjectStatus    `json:"status"`
	EntrepreneurID  string           `json:"entrepreneurId"`
	MentorID        string           `json:"mentorId,omitempty"`
	Forms           Forms            `json:"forms"`
	Documents       []Document       `json:"documents"`
	Feedback        []Feedback       `json:"feedback"`
	Recommendations []Recommendation `json:"recommendations"`
	Iterations      []Iteration      `json:"iterations"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// QuizQuestion is a single multiple-choice question inside a course module.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answerIndex"`
}

type CourseModule struct {
	Title       string         `json:"title"`
	VideoURL    string         `json:"videoUrl,omitempty"`
	DocumentURL string         `json:"documentUrl,omitempty"`
	Quiz        []QuizQuestion `json:"quiz,omitempty"`
}

type Course struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Track        string         `json:"track"`
	Level        string         `json:"level"`
	LearningPath string         `json:"learningPath"`
	Modules      []CourseModule `json:"modules"`
	CreatedBy    string         `json:"createdBy"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// QuizScore is the latest quiz result for one module; re-submission for the
// same module index replaces the prior entry.
type QuizScore struct {
	ModuleIndex int       `json:"moduleIndex"`
	Score       int       `json:"score"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Enrollment links a user to a course. Its ID is the composite
// "{userID}_{courseID}" so enroll/progress/quiz writes are idempotent upserts.
type Enrollment struct {
	ID               string      `json:"id"`
	UserID           string      `json:"userId"`
	CourseID         string      `json:"courseId"`
	ModulesCompleted []int       `json:"modulesCompleted"`
	Progress         int         `json:"progress"`
	QuizScores       []QuizScore `json:"quizScores"`
	EnrolledAt       time.Time   `json:"enrolledAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// EnrollmentID builds the deterministic composite enrollment key.
func EnrollmentID(userID, courseID string) string {
	return userID + "_" + courseID
}

// Reminder tracks whether a pre-session notification has been dispatched.
type Reminder struct {
	Type      string `json:"type"`
	Scheduled bool   `json:"scheduled"`
}

// SessionEvent is one append-only entry in a session's history log.
type SessionEvent struct {
	Action string        `json:"action"`
	By     string        `json:"by"`
	At     time.Time     `json:"at"`
	Status SessionStatus `json:"status,omitempty"`
}

type Session struct {
	ID             string         `json:"id"`
	EntrepreneurID string         `json:"entrepreneurId"`
	MentorID       string         `json:"mentorId"`
	Topic          string         `json:"topic"`
	StartAt        time.Time      `json:"startAt"`
	EndAt          time.Time      `json:"endAt"`
	MeetingLink    string         `json:"meetingLink"`
	Notes          string         `json:"notes"`
	Status         SessionStatus  `json:"status"`
	Reminders      []Reminder     `json:"reminders"`
	History        []SessionEvent `json:"history"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// IsParticipant reports whether uid is one of the two session participants.
func (s Session) IsParticipant(uid string) bool {
	return s.EntrepreneurID == uid || s.MentorID == uid
}
