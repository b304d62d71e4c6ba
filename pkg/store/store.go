package store

import (
	"errors"

	"greenlaunch/pkg/domain"
)

// ErrNotFound is returned by mutating operations when the target row is
// missing. Read operations report absence through their bool return instead.
var ErrNotFound = errors.New("record not found")

// Totals aggregates entity counts for the admin overview.
type Totals struct {
	Users    int `json:"users"`
	Courses  int `json:"courses"`
	Projects int `json:"projects"`
	Sessions int `json:"sessions"`
}

// Store defines persistence for profiles, projects, courses, enrollments,
// and sessions.
//
// The Update* methods run the mutate callback against the current row state
// and persist the result atomically (transaction + row lock in Postgres,
// mutex in memory), so append-only lists such as project iterations and
// session history cannot lose entries under concurrent writers. A mutate
// callback returning an error aborts the update and propagates the error
// unchanged.
type Store interface {
	// profiles
	SaveProfile(domain.Profile) error
	GetProfile(uid string) (domain.Profile, bool, error)
	ListProfiles() ([]domain.Profile, error)

	// projects
	CreateProject(domain.Project) error
	GetProject(id string) (domain.Project, bool, error)
	ListProjects() ([]domain.Project, error)
	ListProjectsByOwner(uid string) ([]domain.Project, error)
	ListProjectsByStatus(status domain.ProjectStatus) ([]domain.Project, error)
	UpdateProject(id string, mutate func(*domain.Project) error) (domain.Project, error)

	// courses
	SaveCourse(domain.Course) error
	GetCourse(id string) (domain.Course, bool, error)
	ListCourses(track, level string) ([]domain.Course, error)
	ListCoursesByCreator(uid string) ([]domain.Course, error)

	// enrollments
	GetEnrollment(id string) (domain.Enrollment, bool, error)
	UpsertEnrollment(id string, mutate func(*domain.Enrollment) error) (domain.Enrollment, error)
	ListEnrollmentsByUser(uid string) ([]domain.Enrollment, error)

	// sessions
	CreateSession(domain.Session) error
	GetSession(id string) (domain.Session, bool, error)
	ListSessions() ([]domain.Session, error)
	ListSessionsByEntrepreneur(uid string) ([]domain.Session, error)
	ListSessionsByMentor(uid string) ([]domain.Session, error)
	UpdateSession(id string, mutate func(*domain.Session) error) (domain.Session, error)

	// admin
	Counts() (Totals, error)
}
