package app

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"greenlaunch/pkg/domain"
)

func createProject(t *testing.T, a *App, owner domain.Profile, in CreateProjectInput) domain.Project {
	t.Helper()
	p, err := a.CreateProject(owner, in)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func TestCreateProjectDefaults(t *testing.T) {
	a, _, _ := newTestApp(t)
	owner := profile("founder-1", domain.RoleEntrepreneur)

	p := createProject(t, a, owner, CreateProjectInput{Title: "Compost hub", Stage: "bogus"})
	if p.Type != domain.TypeBMC {
		t.Fatalf("default type = %q, want BMC", p.Type)
	}
	if p.Stage != domain.StageIdea {
		t.Fatalf("invalid stage should fall back to idea, got %q", p.Stage)
	}
	if p.Status != domain.StatusDraft {
		t.Fatalf("status = %q, want draft", p.Status)
	}
	if p.EntrepreneurID != "founder-1" {
		t.Fatalf("owner = %q", p.EntrepreneurID)
	}
	if p.Documents == nil || p.Feedback == nil || p.Iterations == nil {
		t.Fatalf("list fields must be initialized, got %+v", p)
	}

	if _, err := a.CreateProject(owner, CreateProjectInput{}); HTTPStatus(err) != 400 {
		t.Fatalf("missing title expected 400, got %v", err)
	}
}

func TestProjectAccessRule(t *testing.T) {
	unassigned := domain.Project{EntrepreneurID: "founder-1"}
	assigned := domain.Project{EntrepreneurID: "founder-1", MentorID: "mentor-1"}

	cases := []struct {
		role    domain.Role
		uid     string
		project domain.Project
		want    bool
	}{
		{domain.RoleEntrepreneur, "founder-1", assigned, true},
		{domain.RoleEntrepreneur, "founder-2", assigned, false},
		{domain.RoleMentor, "mentor-1", assigned, true},
		{domain.RoleMentor, "mentor-2", assigned, false},
		{domain.RoleMentor, "mentor-2", unassigned, true},
		{domain.RoleBusinessSupport, "support-1", assigned, true},
		{domain.RoleAdmin, "admin-1", assigned, true},
	}
	for _, tc := range cases {
		if got := CanAccessProject(tc.role, tc.uid, tc.project); got != tc.want {
			t.Errorf("CanAccessProject(%s, %s) = %v, want %v", tc.role, tc.uid, got, tc.want)
		}
	}
}

func TestUpdateFormsMergesAndSubmits(t *testing.T) {
	a, _, _ := newTestApp(t)
	owner := profile("founder-1", domain.RoleEntrepreneur)
	p := createProject(t, a, owner, CreateProjectInput{
		Title: "P",
		Forms: domain.Forms{"a": "1", "b": "2"},
	})

	updated, err := a.UpdateForms(p.ID, owner.UID, domain.Forms{"b": "changed", "c": "3"}, false)
	if err != nil {
		t.Fatalf("update forms: %v", err)
	}
	if updated.Forms["a"] != "1" || updated.Forms["b"] != "changed" || updated.Forms["c"] != "3" {
		t.Fatalf("merge result = %v", updated.Forms)
	}
	if updated.Status != domain.StatusDraft {
		t.Fatalf("plain save changed status to %q", updated.Status)
	}
	if len(updated.Iterations) != 1 || updated.Iterations[0].Action != "updated_forms" {
		t.Fatalf("iterations = %+v", updated.Iterations)
	}

	updated, err = a.UpdateForms(p.ID, owner.UID, domain.Forms{}, true)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if updated.Status != domain.StatusSubmitted {
		t.Fatalf("submit status = %q", updated.Status)
	}
	if updated.Iterations[len(updated.Iterations)-1].Action != "submitted" {
		t.Fatalf("iterations = %+v", updated.Iterations)
	}

	if _, err := a.UpdateForms(p.ID, "stranger", domain.Forms{"x": "y"}, false); HTTPStatus(err) != 403 {
		t.Fatalf("non-owner write expected 403, got %v", err)
	}
	if _, err := a.UpdateForms("missing", owner.UID, nil, false); HTTPStatus(err) != 404 {
		t.Fatalf("missing project expected 404, got %v", err)
	}
}

func TestCorrectionsReopenValidatedProject(t *testing.T) {
	a, _, _ := newTestApp(t)
	owner := profile("founder-1", domain.RoleEntrepreneur)
	mentor := profile("mentor-1", domain.RoleMentor)
	p := createProject(t, a, owner, CreateProjectInput{Title: "P"})

	if _, err := a.UpdateForms(p.ID, owner.UID, nil, true); err != nil {
		t.Fatalf("submit: %v", err)
	}
	validated, err := a.Validate(mentor, p.ID, domain.StatusValidated, "", "Strong pitch")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if validated.Status != domain.StatusValidated {
		t.Fatalf("status = %q", validated.Status)
	}
	if len(validated.Recommendations) != 1 || validated.Recommendations[0].Text != "Strong pitch" {
		t.Fatalf("recommendations = %+v", validated.Recommendations)
	}

	reopened, err := a.AddFeedback(mentor, p.ID, "Numbers do not add up", true)
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if reopened.Status != domain.StatusNeedsCorrections {
		t.Fatalf("requestCorrections must reopen validated projects, status = %q", reopened.Status)
	}
	if len(reopened.Feedback) != 1 || !reopened.Feedback[0].RequestCorrections {
		t.Fatalf("feedback = %+v", reopened.Feedback)
	}

	// A plain comment leaves status alone.
	commented, err := a.AddFeedback(mentor, p.ID, "Good revision", false)
	if err != nil {
		t.Fatalf("plain feedback: %v", err)
	}
	if commented.Status != domain.StatusNeedsCorrections {
		t.Fatalf("plain feedback changed status to %q", commented.Status)
	}
}

func TestValidateRejectsBadInput(t *testing.T) {
	a, _, _ := newTestApp(t)
	owner := profile("founder-1", domain.RoleEntrepreneur)
	mentor := profile("mentor-1", domain.RoleMentor)
	p := createProject(t, a, owner, CreateProjectInput{Title: "P"})

	if _, err := a.Validate(mentor, p.ID, "approved", "", ""); HTTPStatus(err) != 400 {
		t.Fatalf("invalid status expected 400, got %v", err)
	}
	if _, err := a.Validate(mentor, p.ID, domain.StatusValidated, "cosmic", ""); HTTPStatus(err) != 400 {
		t.Fatalf("invalid stage expected 400, got %v", err)
	}
	stranger := profile("founder-2", domain.RoleEntrepreneur)
	if _, err := a.Validate(stranger, p.ID, domain.StatusValidated, "", ""); HTTPStatus(err) != 403 {
		t.Fatalf("outsider validate expected 403, got %v", err)
	}
}

func TestAssignedMentorScopesVisibility(t *testing.T) {
	a, _, _ := newTestApp(t)
	owner := profile("founder-1", domain.RoleEntrepreneur)
	createProject(t, a, owner, CreateProjectInput{Title: "Mine", MentorID: "mentor-1"})
	createProject(t, a, owner, CreateProjectInput{Title: "Unassigned"})

	mine, err := a.ListMyProjects(profile("mentor-1", domain.RoleMentor))
	if err != nil {
		t.Fatalf("list mentor-1: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("mentor-1 sees %d projects, want 2 (own + unassigned)", len(mine))
	}

	other, err := a.ListMyProjects(profile("mentor-2", domain.RoleMentor))
	if err != nil {
		t.Fatalf("list mentor-2: %v", err)
	}
	if len(other) != 1 || other[0].Title != "Unassigned" {
		t.Fatalf("mentor-2 sees %+v, want only the unassigned project", other)
	}
}

func TestConcurrentFeedbackKeepsEveryEntry(t *testing.T) {
	a, _, _ := newTestApp(t)
	owner := profile("founder-1", domain.RoleEntrepreneur)
	p := createProject(t, a, owner, CreateProjectInput{Title: "P"})

	const writers = 8
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			reviewer := profile(fmt.Sprintf("mentor-%d", n), domain.RoleMentor)
			if _, err := a.AddFeedback(reviewer, p.ID, fmt.Sprintf("note %d", n), false); err != nil {
				t.Errorf("feedback %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	got, err := a.GetProject(profile("admin-1", domain.RoleAdmin), p.ID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if len(got.Feedback) != writers {
		t.Fatalf("feedback entries = %d, want %d", len(got.Feedback), writers)
	}
	if len(got.Iterations) != writers {
		t.Fatalf("iterations = %d, want %d", len(got.Iterations), writers)
	}
}

func TestAttachDocumentStoresFileAndRecordsMetadata(t *testing.T) {
	a, _, _ := newTestApp(t)
	owner := profile("founder-1", domain.RoleEntrepreneur)
	p := createProject(t, a, owner, CreateProjectInput{Title: "P"})

	doc, err := a.AttachDocument(context.Background(), p.ID, owner.UID, "business plan.pdf",
		bytes.NewReader([]byte("%PDF-1.4")), 8)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if doc.Name != "business plan.pdf" {
		t.Fatalf("name = %q", doc.Name)
	}
	if strings.ContainsAny(doc.StoredName, " \t") {
		t.Fatalf("stored name %q keeps whitespace", doc.StoredName)
	}
	if !strings.HasSuffix(doc.StoredName, "business_plan.pdf") {
		t.Fatalf("stored name = %q", doc.StoredName)
	}
	if doc.Path == "" {
		t.Fatalf("expected a retrievable path")
	}

	got, err := a.GetProject(owner, p.ID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if len(got.Documents) != 1 || got.Documents[0].StoredName != doc.StoredName {
		t.Fatalf("documents = %+v", got.Documents)
	}

	if _, err := a.AttachDocument(context.Background(), p.ID, "stranger", "x.pdf",
		bytes.NewReader(nil), 0); HTTPStatus(err) != 403 {
		t.Fatalf("non-owner upload expected 403, got %v", err)
	}
}
