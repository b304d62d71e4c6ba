package tools

import (
	"strings"
	"testing"

	"greenlaunch/pkg/domain"
)

type fakeFormsWriter struct {
	projectID string
	callerUID string
	forms     domain.Forms
	submit    bool
	calls     int
}

func (f *fakeFormsWriter) UpdateForms(projectID, callerUID string, forms domain.Forms, submit bool) (domain.Project, error) {
	f.projectID = projectID
	f.callerUID = callerUID
	f.forms = forms
	f.submit = submit
	f.calls++
	return domain.Project{ID: projectID}, nil
}

func newTestResolver(t *testing.T) (*Resolver, *fakeFormsWriter) {
	t.Helper()
	local, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}
	writer := &fakeFormsWriter{}
	return NewResolver(writer, local), writer
}

func TestResolvePrefersMatchingProject(t *testing.T) {
	r, _ := newTestResolver(t)
	projects := []domain.Project{
		{ID: "p1", Type: domain.TypeBMC, EntrepreneurID: "u1", Forms: domain.Forms{}},
		{ID: "p2", Type: domain.TypeGreenBMC, EntrepreneurID: "u1", Forms: domain.Forms{}},
	}

	res, err := r.Resolve("u1", "green-business-model", projects)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Source != SourceProject || res.ProjectID != "p2" {
		t.Fatalf("expected project source p2, got %+v", res)
	}
	if len(res.Answers) != 0 {
		t.Fatalf("expected empty answers from empty forms, got %+v", res.Answers)
	}
}

func TestPersistWritesIntoBackingProject(t *testing.T) {
	r, writer := newTestResolver(t)
	projects := []domain.Project{{ID: "p2", Type: domain.TypeGreenBMC, EntrepreneurID: "u1", Forms: domain.Forms{}}}

	source, err := r.Persist("u1", "green-business-model", projects,
		Answers{"valueProposition": Text("compostable packaging")}, RepeatCounts{})
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if source != SourceProject {
		t.Fatalf("expected project source, got %q", source)
	}
	if writer.calls != 1 || writer.projectID != "p2" || writer.callerUID != "u1" {
		t.Fatalf("unexpected forms write: %+v", writer)
	}
	if writer.submit {
		t.Fatal("questionnaire saves must never submit the project")
	}
	if writer.forms["valueProposition"] != "compostable packaging" {
		t.Fatalf("answer not written: %+v", writer.forms)
	}
}

func TestResolveFallsBackToLocalStore(t *testing.T) {
	r, writer := newTestResolver(t)

	source, err := r.Persist("u1", "green-business-model", nil,
		Answers{"valueProposition": Text("repair service")}, RepeatCounts{})
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if source != SourceLocal {
		t.Fatalf("expected local source, got %q", source)
	}
	if writer.calls != 0 {
		t.Fatal("no project should have been written")
	}

	res, err := r.Resolve("u1", "green-business-model", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Source != SourceLocal {
		t.Fatalf("expected local source, got %q", res.Source)
	}
	if !res.Answers["valueProposition"].Answered() {
		t.Fatalf("local answer lost: %+v", res.Answers)
	}
}

func TestLocalAnswersDoNotMigrateToNewProject(t *testing.T) {
	r, _ := newTestResolver(t)
	if _, err := r.Persist("u1", "green-business-model", nil,
		Answers{"valueProposition": Text("saved locally")}, RepeatCounts{}); err != nil {
		t.Fatalf("persist: %v", err)
	}

	// A matching project created afterwards starts from its own forms.
	projects := []domain.Project{{ID: "p9", Type: domain.TypeGreenBMC, EntrepreneurID: "u1", Forms: domain.Forms{}}}
	res, err := r.Resolve("u1", "green-business-model", projects)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Source != SourceProject {
		t.Fatalf("expected project source, got %q", res.Source)
	}
	if len(res.Answers) != 0 {
		t.Fatalf("local answers must not migrate, got %+v", res.Answers)
	}
}

func TestResolveToolWithoutProjectTypeAlwaysLocal(t *testing.T) {
	r, _ := newTestResolver(t)
	projects := []domain.Project{{ID: "p1", Type: domain.TypeGreenBMC, EntrepreneurID: "u1"}}

	res, err := r.Resolve("u1", "eco-design-tool", projects)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Source != SourceLocal {
		t.Fatalf("expected local source for unmapped tool, got %q", res.Source)
	}
}

func TestResolveUnknownTool(t *testing.T) {
	r, _ := newTestResolver(t)
	if _, err := r.Resolve("u1", "nope", nil); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestResolveRestrictsToToolQuestions(t *testing.T) {
	r, _ := newTestResolver(t)
	projects := []domain.Project{{
		ID:             "p2",
		Type:           domain.TypeGreenBusinessPlan,
		EntrepreneurID: "u1",
		Forms: domain.Forms{
			"executiveSummary": "short and sharp",
			"unrelatedKey":     "belongs to another workflow",
		},
	}}

	res, err := r.Resolve("u1", "green-business-plan", projects)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, ok := res.Answers["unrelatedKey"]; ok {
		t.Fatal("answers must be restricted to the tool's question ids")
	}
	if !res.Answers["executiveSummary"].Answered() {
		t.Fatalf("expected executiveSummary, got %+v", res.Answers)
	}
}

func TestExportGreenBusinessModelOnly(t *testing.T) {
	r, _ := newTestResolver(t)
	if _, err := r.Export("u1", "finance-toolkit", nil); err == nil {
		t.Fatal("expected export rejection for non-exportable tool")
	}

	if _, err := r.Persist("u1", "green-business-model", nil,
		Answers{"valueProposition": Text("refill stations")}, RepeatCounts{}); err != nil {
		t.Fatalf("persist: %v", err)
	}
	raw, err := r.Export("u1", "green-business-model", nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, want := range []string{`"toolKey": "green-business-model"`, `"generatedAt"`, `"refill stations"`} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("export missing %s:\n%s", want, raw)
		}
	}
}
