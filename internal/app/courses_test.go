package app

import (
	"testing"

	"greenlaunch/pkg/domain"
)

func strPtr(s string) *string { return &s }

func seedCourse(t *testing.T, a *App, modules int) domain.Course {
	t.Helper()
	mods := make([]domain.CourseModule, 0, modules)
	for i := 0; i < modules; i++ {
		mods = append(mods, domain.CourseModule{Title: "Module"})
	}
	course, err := a.CreateCourse(profile("mentor-1", domain.RoleMentor), CourseInput{
		Title:   "Circular economy basics",
		Track:   strPtr("green"),
		Level:   strPtr("beginner"),
		Modules: mods,
	})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	return course
}

func TestCreateCourseAppliesDefaults(t *testing.T) {
	a, _, _ := newTestApp(t)

	course, err := a.CreateCourse(profile("mentor-1", domain.RoleMentor), CourseInput{Title: "Bare"})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	if course.Track != "general" || course.Level != "beginner" || course.LearningPath != "classic" {
		t.Fatalf("defaults not applied: track=%q level=%q learningPath=%q",
			course.Track, course.Level, course.LearningPath)
	}
	if course.Description != "" {
		t.Fatalf("description = %q, want empty", course.Description)
	}
}

func TestCourseUpdatePermissions(t *testing.T) {
	a, _, _ := newTestApp(t)
	course := seedCourse(t, a, 2)

	if _, err := a.UpdateCourse(profile("mentor-2", domain.RoleMentor), course.ID,
		CourseInput{Title: "Hijack"}); HTTPStatus(err) != 403 {
		t.Fatalf("foreign mentor update expected 403, got %v", err)
	}

	updated, err := a.UpdateCourse(profile("admin-1", domain.RoleAdmin), course.ID,
		CourseInput{Title: "Renamed", Description: strPtr("Now with text")})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Title != "Renamed" || updated.Description != "Now with text" {
		t.Fatalf("title = %q description = %q", updated.Title, updated.Description)
	}
	if updated.Track != "green" || updated.Level != "beginner" || updated.LearningPath != "classic" {
		t.Fatalf("omitted fields must survive a partial update: track=%q level=%q learningPath=%q",
			updated.Track, updated.Level, updated.LearningPath)
	}
	if len(updated.Modules) != 2 {
		t.Fatalf("nil modules input must keep existing modules, got %d", len(updated.Modules))
	}
}

func TestEnrollIsIdempotent(t *testing.T) {
	a, _, _ := newTestApp(t)
	course := seedCourse(t, a, 4)

	first, err := a.Enroll("founder-1", course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if first.ID != "founder-1_"+course.ID {
		t.Fatalf("enrollment id = %q", first.ID)
	}
	if first.UserID != "founder-1" || first.CourseID != course.ID {
		t.Fatalf("first enroll must populate the row: userID=%q courseID=%q",
			first.UserID, first.CourseID)
	}
	if first.ModulesCompleted == nil || first.QuizScores == nil {
		t.Fatalf("first enroll must initialize empty lists: %+v", first)
	}

	if _, err := a.SaveProgress("founder-1", course.ID, []int{0, 1}); err != nil {
		t.Fatalf("progress: %v", err)
	}
	again, err := a.Enroll("founder-1", course.ID)
	if err != nil {
		t.Fatalf("re-enroll: %v", err)
	}
	if again.Progress != 50 {
		t.Fatalf("re-enroll reset progress to %d", again.Progress)
	}

	if _, err := a.Enroll("founder-1", "missing"); HTTPStatus(err) != 404 {
		t.Fatalf("missing course expected 404, got %v", err)
	}
}

func TestSaveProgressReplacesListAndRecomputes(t *testing.T) {
	a, _, _ := newTestApp(t)
	course := seedCourse(t, a, 3)
	if _, err := a.Enroll("founder-1", course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	e, err := a.SaveProgress("founder-1", course.ID, []int{2, 0, 0})
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(e.ModulesCompleted) != 2 || e.ModulesCompleted[0] != 0 || e.ModulesCompleted[1] != 2 {
		t.Fatalf("modulesCompleted = %v, want deduplicated sorted [0 2]", e.ModulesCompleted)
	}
	if e.Progress != 67 {
		t.Fatalf("progress = %d, want 67", e.Progress)
	}

	// The list is replaced wholesale, so progress can go down.
	e, err = a.SaveProgress("founder-1", course.ID, []int{1})
	if err != nil {
		t.Fatalf("progress shrink: %v", err)
	}
	if e.Progress != 33 {
		t.Fatalf("progress = %d, want 33", e.Progress)
	}

	if _, err := a.SaveProgress("founder-1", course.ID, []int{-1}); HTTPStatus(err) != 400 {
		t.Fatalf("negative index expected 400, got %v", err)
	}
	if _, err := a.SaveProgress("founder-2", course.ID, []int{0}); HTTPStatus(err) != 404 {
		t.Fatalf("progress without enrollment expected 404, got %v", err)
	}
	if _, ok, _ := a.Store().GetEnrollment(domain.EnrollmentID("founder-2", course.ID)); ok {
		t.Fatal("rejected progress write must not leave an enrollment row behind")
	}
}

func TestSubmitQuizScoresAndReplaces(t *testing.T) {
	a, _, _ := newTestApp(t)
	mentor := profile("mentor-1", domain.RoleMentor)
	course, err := a.CreateCourse(mentor, CourseInput{
		Title: "Quizzed",
		Modules: []domain.CourseModule{
			{Title: "M0", Quiz: []domain.QuizQuestion{
				{Question: "Q1", Options: []string{"a", "b"}, AnswerIndex: 1},
				{Question: "Q2", Options: []string{"a", "b"}, AnswerIndex: 0},
			}},
			{Title: "M1"},
		},
	})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	if _, err := a.Enroll("founder-1", course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	result, err := a.SubmitQuiz("founder-1", course.ID, 0, []int{1, 1})
	if err != nil {
		t.Fatalf("submit quiz: %v", err)
	}
	if result.Score != 50 || result.Correct != 1 || result.Total != 2 {
		t.Fatalf("result = %+v", result)
	}

	// Resubmitting the same module replaces its score rather than stacking.
	if _, err := a.SubmitQuiz("founder-1", course.ID, 0, []int{1, 0}); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	e, ok, err := a.Store().GetEnrollment(domain.EnrollmentID("founder-1", course.ID))
	if err != nil || !ok {
		t.Fatalf("get enrollment: ok=%v err=%v", ok, err)
	}
	if len(e.QuizScores) != 1 || e.QuizScores[0].Score != 100 {
		t.Fatalf("quiz scores = %+v, want single entry at 100", e.QuizScores)
	}

	if _, err := a.SubmitQuiz("founder-1", course.ID, 5, nil); HTTPStatus(err) != 400 {
		t.Fatalf("out-of-range module expected 400, got %v", err)
	}
	if _, err := a.SubmitQuiz("founder-1", course.ID, 1, nil); HTTPStatus(err) != 404 {
		t.Fatalf("module without a quiz expected 404, got %v", err)
	}
	if _, err := a.SubmitQuiz("founder-2", course.ID, 0, []int{1, 0}); HTTPStatus(err) != 404 {
		t.Fatalf("quiz without enrollment expected 404, got %v", err)
	}
}

func TestMyLearningJoinsCourses(t *testing.T) {
	a, _, _ := newTestApp(t)
	c1 := seedCourse(t, a, 2)
	c2 := seedCourse(t, a, 1)
	if _, err := a.Enroll("founder-1", c1.ID); err != nil {
		t.Fatalf("enroll c1: %v", err)
	}
	if _, err := a.Enroll("founder-1", c2.ID); err != nil {
		t.Fatalf("enroll c2: %v", err)
	}

	entries, err := a.MyLearning("founder-1")
	if err != nil {
		t.Fatalf("my learning: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	for _, entry := range entries {
		if entry.Course.ID != entry.Enrollment.CourseID {
			t.Fatalf("entry mismatch: %+v", entry)
		}
	}
}
