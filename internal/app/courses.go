package app

import (
	"errors"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"greenlaunch/internal/util"
	"greenlaunch/pkg/domain"
	"greenlaunch/pkg/store"
)

// CourseInput carries caller-supplied course fields for create and update.
// Pointer fields distinguish "absent" from "set to empty" so partial
// updates leave omitted fields alone.
type CourseInput struct {
	Title        string
	Description  *string
	Track        *string
	Level        *string
	LearningPath *string
	Modules      []domain.CourseModule
}

const (
	defaultCourseTrack        = "general"
	defaultCourseLevel        = "beginner"
	defaultCourseLearningPath = "classic"
)

func stringOr(v *string, fallback string) string {
	if v != nil {
		return *v
	}
	return fallback
}

// ListCourses returns the catalog, optionally filtered by track and level.
func (a *App) ListCourses(track, level string) ([]domain.Course, error) {
	return a.store.ListCourses(track, level)
}

// MyCourses returns the courses the caller authored, newest first.
func (a *App) MyCourses(callerUID string) ([]domain.Course, error) {
	return a.store.ListCoursesByCreator(callerUID)
}

// CreateCourse publishes a new course authored by the caller.
func (a *App) CreateCourse(caller domain.Profile, in CourseInput) (domain.Course, error) {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Course{}, Validationf("title is required")
	}
	modules := in.Modules
	if modules == nil {
		modules = []domain.CourseModule{}
	}
	now := time.Now().UTC()
	course := domain.Course{
		ID:           util.NewID(),
		Title:        in.Title,
		Description:  stringOr(in.Description, ""),
		Track:        stringOr(in.Track, defaultCourseTrack),
		Level:        stringOr(in.Level, defaultCourseLevel),
		LearningPath: stringOr(in.LearningPath, defaultCourseLearningPath),
		Modules:      modules,
		CreatedBy:    caller.UID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveCourse(course); err != nil {
		return domain.Course{}, err
	}
	return course, nil
}

// UpdateCourse applies the provided fields to a course, leaving omitted
// ones untouched. Mentors may only edit their own courses; admins may
// edit any.
func (a *App) UpdateCourse(caller domain.Profile, courseID string, in CourseInput) (domain.Course, error) {
	course, ok, err := a.store.GetCourse(courseID)
	if err != nil {
		return domain.Course{}, err
	}
	if !ok {
		return domain.Course{}, NotFound("course not found")
	}
	if caller.Role != domain.RoleAdmin && course.CreatedBy != caller.UID {
		return domain.Course{}, Forbidden("forbidden")
	}
	if strings.TrimSpace(in.Title) != "" {
		course.Title = in.Title
	}
	if in.Description != nil {
		course.Description = *in.Description
	}
	if in.Track != nil {
		course.Track = *in.Track
	}
	if in.Level != nil {
		course.Level = *in.Level
	}
	if in.LearningPath != nil {
		course.LearningPath = *in.LearningPath
	}
	if in.Modules != nil {
		course.Modules = in.Modules
	}
	course.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveCourse(course); err != nil {
		return domain.Course{}, err
	}
	return course, nil
}

// Enroll creates the caller's enrollment in a course. Enrolling twice is a
// no-op returning the existing record; progress is never reset.
func (a *App) Enroll(callerUID, courseID string) (domain.Enrollment, error) {
	course, ok, err := a.store.GetCourse(courseID)
	if err != nil {
		return domain.Enrollment{}, err
	}
	if !ok {
		return domain.Enrollment{}, NotFound("course not found")
	}
	id := domain.EnrollmentID(callerUID, courseID)
	enrollment, err := a.store.UpsertEnrollment(id, func(e *domain.Enrollment) error {
		// The store hands the closure a zero-valued row (with the id set)
		// when none exists yet, so presence is keyed off UserID.
		if e.UserID != "" {
			return nil
		}
		now := time.Now().UTC()
		*e = domain.Enrollment{
			ID:               id,
			UserID:           callerUID,
			CourseID:         course.ID,
			Progress:         0,
			ModulesCompleted: []int{},
			QuizScores:       []domain.QuizScore{},
			EnrolledAt:       now,
			UpdatedAt:        now,
		}
		return nil
	})
	return enrollment, err
}

// SaveProgress replaces the completed-module list and recomputes the
// progress percentage from the course's module count.
func (a *App) SaveProgress(callerUID, courseID string, modulesCompleted []int) (domain.Enrollment, error) {
	course, ok, err := a.store.GetCourse(courseID)
	if err != nil {
		return domain.Enrollment{}, err
	}
	if !ok {
		return domain.Enrollment{}, NotFound("course not found")
	}
	for _, idx := range modulesCompleted {
		if idx < 0 {
			return domain.Enrollment{}, Validationf("module indexes must be >= 0")
		}
	}
	completed := append([]int{}, modulesCompleted...)
	sort.Ints(completed)
	completed = slices.Compact(completed)
	id := domain.EnrollmentID(callerUID, courseID)
	enrollment, err := a.store.UpsertEnrollment(id, func(e *domain.Enrollment) error {
		if e.UserID == "" {
			return store.ErrNotFound
		}
		e.ModulesCompleted = completed
		e.Progress = progressPercent(len(completed), len(course.Modules))
		e.UpdatedAt = time.Now().UTC()
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.Enrollment{}, NotFound("enrollment not found")
	}
	return enrollment, err
}

// QuizResult is returned to the caller after grading a module quiz.
type QuizResult struct {
	Score   int `json:"score"`
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// SubmitQuiz grades the caller's answers against the module's quiz and
// stores the score. Resubmitting a module replaces its previous score.
func (a *App) SubmitQuiz(callerUID, courseID string, moduleIndex int, answers []int) (QuizResult, error) {
	course, ok, err := a.store.GetCourse(courseID)
	if err != nil {
		return QuizResult{}, err
	}
	if !ok {
		return QuizResult{}, NotFound("course not found")
	}
	if moduleIndex < 0 || moduleIndex >= len(course.Modules) {
		return QuizResult{}, Validationf("invalid moduleIndex")
	}
	quiz := course.Modules[moduleIndex].Quiz
	if len(quiz) == 0 {
		return QuizResult{}, NotFound("module quiz not found")
	}

	correct := 0
	for i, q := range quiz {
		if i < len(answers) && answers[i] == q.AnswerIndex {
			correct++
		}
	}
	score := progressPercent(correct, len(quiz))

	id := domain.EnrollmentID(callerUID, courseID)
	_, err = a.store.UpsertEnrollment(id, func(e *domain.Enrollment) error {
		if e.UserID == "" {
			return store.ErrNotFound
		}
		scores := e.QuizScores[:0:0]
		for _, s := range e.QuizScores {
			if s.ModuleIndex != moduleIndex {
				scores = append(scores, s)
			}
		}
		scores = append(scores, domain.QuizScore{
			ModuleIndex: moduleIndex,
			Score:       score,
			SubmittedAt: time.Now().UTC(),
		})
		e.QuizScores = scores
		e.UpdatedAt = time.Now().UTC()
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return QuizResult{}, NotFound("enrollment not found")
	}
	if err != nil {
		return QuizResult{}, err
	}
	return QuizResult{Score: score, Correct: correct, Total: len(quiz)}, nil
}

// LearningEntry pairs an enrollment with its course for the caller's
// learning dashboard.
type LearningEntry struct {
	Enrollment domain.Enrollment `json:"enrollment"`
	Course     domain.Course     `json:"course"`
}

// MyLearning returns the caller's enrollments joined with their courses.
// Enrollments whose course has since been deleted are skipped.
func (a *App) MyLearning(callerUID string) ([]LearningEntry, error) {
	enrollments, err := a.store.ListEnrollmentsByUser(callerUID)
	if err != nil {
		return nil, err
	}
	entries := make([]LearningEntry, 0, len(enrollments))
	for _, e := range enrollments {
		course, ok, err := a.store.GetCourse(e.CourseID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		entries = append(entries, LearningEntry{Enrollment: e, Course: course})
	}
	return entries, nil
}

// progressPercent computes round(100*done/total) capped at 100, with a
// floor of 1 on total so empty courses do not divide by zero.
func progressPercent(done, total int) int {
	if total < 1 {
		total = 1
	}
	pct := int(math.Round(100 * float64(done) / float64(total)))
	if pct > 100 {
		pct = 100
	}
	return pct
}
