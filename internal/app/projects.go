package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"greenlaunch/internal/util"
	"greenlaunch/pkg/domain"
	"greenlaunch/pkg/store"
)

// Workflow actions recorded in the project iteration log. Every mutating
// operation appends exactly one of these.
const (
	actionUpdatedForms         = "updated_forms"
	actionSubmitted            = "submitted"
	actionFeedbackAdded        = "feedback_added"
	actionRequestedCorrections = "requested_corrections"
	actionStatusPrefix         = "status_"
)

// forcedStatus is the transition table for actions that set status as a
// rule rather than on caller request. Submit moves a project to submitted
// from any state; requesting corrections moves it to needs_corrections from
// any state, including validated. Actions absent here leave status alone.
var forcedStatus = map[string]domain.ProjectStatus{
	actionSubmitted:            domain.StatusSubmitted,
	actionRequestedCorrections: domain.StatusNeedsCorrections,
}

var (
	validTypes = map[domain.ProjectType]bool{
		domain.TypeBMC:               true,
		domain.TypeGreenBMC:          true,
		domain.TypeGreenBusinessPlan: true,
	}
	validStages = map[domain.ProjectStage]bool{
		domain.StageIdea:     true,
		domain.StageCreation: true,
		domain.StageGrowth:   true,
	}
	validStatuses = map[domain.ProjectStatus]bool{
		domain.StatusDraft:            true,
		domain.StatusSubmitted:        true,
		domain.StatusNeedsCorrections: true,
		domain.StatusValidated:        true,
	}
)

// CreateProjectInput carries the caller-supplied project fields.
type CreateProjectInput struct {
	Title    string
	Type     domain.ProjectType
	Stage    domain.ProjectStage
	MentorID string
	Forms    domain.Forms
}

// CreateProject starts a new draft owned by the calling entrepreneur. The
// owner is fixed at creation and never changes.
func (a *App) CreateProject(owner domain.Profile, in CreateProjectInput) (domain.Project, error) {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Project{}, Validationf("title is required")
	}
	projectType := in.Type
	if projectType == "" {
		projectType = domain.TypeBMC
	}
	if !validTypes[projectType] {
		return domain.Project{}, Validationf("invalid type. Allowed: %s, %s, %s",
			domain.TypeBMC, domain.TypeGreenBMC, domain.TypeGreenBusinessPlan)
	}
	stage := in.Stage
	if !validStages[stage] {
		stage = domain.StageIdea
	}
	forms := in.Forms
	if forms == nil {
		forms = domain.Forms{}
	}
	now := time.Now().UTC()
	project := domain.Project{
		ID:              util.NewID(),
		Title:           in.Title,
		Type:            projectType,
		Stage:           stage,
		Status:          domain.StatusDraft,
		EntrepreneurID:  owner.UID,
		MentorID:        in.MentorID,
		Forms:           forms,
		Documents:       []domain.Document{},
		Feedback:        []domain.Feedback{},
		Recommendations: []domain.Recommendation{},
		Iterations:      []domain.Iteration{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := a.store.CreateProject(project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// ListMyProjects returns every project the caller may see per the access rule.
func (a *App) ListMyProjects(caller domain.Profile) ([]domain.Project, error) {
	var (
		projects []domain.Project
		err      error
	)
	if caller.Role == domain.RoleEntrepreneur {
		projects, err = a.store.ListProjectsByOwner(caller.UID)
	} else {
		projects, err = a.store.ListProjects()
	}
	if err != nil {
		return nil, err
	}
	visible := make([]domain.Project, 0, len(projects))
	for _, p := range projects {
		if CanAccessProject(caller.Role, caller.UID, p) {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

// GetProject fetches one project, enforcing the access rule.
func (a *App) GetProject(caller domain.Profile, id string) (domain.Project, error) {
	project, ok, err := a.store.GetProject(id)
	if err != nil {
		return domain.Project{}, err
	}
	if !ok {
		return domain.Project{}, NotFound("project not found")
	}
	if !CanAccessProject(caller.Role, caller.UID, project) {
		return domain.Project{}, Forbidden("forbidden")
	}
	return project, nil
}

// ListProjectsByStatus serves the admin project listing; empty status means all.
func (a *App) ListProjectsByStatus(status domain.ProjectStatus) ([]domain.Project, error) {
	if status == "" {
		return a.store.ListProjects()
	}
	return a.store.ListProjectsByStatus(status)
}

// UpdateForms merges the caller's answers into the project forms. Only the
// owner may write. The merge is shallow and server-side: provided keys
// replace stored keys, everything else survives, so no caller has to
// pre-merge. submit=true moves the project to submitted from any state.
func (a *App) UpdateForms(projectID, callerUID string, forms domain.Forms, submit bool) (domain.Project, error) {
	updated, err := a.store.UpdateProject(projectID, func(p *domain.Project) error {
		if p.EntrepreneurID != callerUID {
			return Forbidden("forbidden")
		}
		if p.Forms == nil {
			p.Forms = domain.Forms{}
		}
		for k, v := range forms {
			p.Forms[k] = v
		}
		action := actionUpdatedForms
		if submit {
			action = actionSubmitted
		}
		a.applyAction(p, action, callerUID)
		return nil
	})
	return updated, mapStoreErr(err, "project not found")
}

// AttachDocument stores the file and appends its metadata record. Owner
// only; project status is untouched.
func (a *App) AttachDocument(ctx context.Context, projectID, callerUID, filename string, r io.Reader, size int64) (domain.Document, error) {
	project, ok, err := a.store.GetProject(projectID)
	if err != nil {
		return domain.Document{}, err
	}
	if !ok {
		return domain.Document{}, NotFound("project not found")
	}
	if project.EntrepreneurID != callerUID {
		return domain.Document{}, Forbidden("forbidden")
	}

	storedName := storedFilename(filename)
	key := path.Join("projects", storedName)
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := a.objects.Put(ctx, key, r, size, contentType); err != nil {
		return domain.Document{}, fmt.Errorf("save file: %w", err)
	}
	publicPath, err := a.objects.URL(ctx, key)
	if err != nil {
		return domain.Document{}, fmt.Errorf("resolve file path: %w", err)
	}

	document := domain.Document{
		Name:       filepath.Base(filename),
		StoredName: storedName,
		Path:       publicPath,
		UploadedAt: time.Now().UTC(),
	}
	_, err = a.store.UpdateProject(projectID, func(p *domain.Project) error {
		p.Documents = append(p.Documents, document)
		p.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return domain.Document{}, mapStoreErr(err, "project not found")
	}
	return document, nil
}

// AddFeedback records a review entry. requestCorrections forces the project
// into needs_corrections regardless of current status; this is the explicit
// reopen path, also out of validated.
func (a *App) AddFeedback(caller domain.Profile, projectID, text string, requestCorrections bool) (domain.Project, error) {
	updated, err := a.store.UpdateProject(projectID, func(p *domain.Project) error {
		if !CanAccessProject(caller.Role, caller.UID, *p) {
			return Forbidden("forbidden")
		}
		p.Feedback = append(p.Feedback, domain.Feedback{
			Text:               text,
			RequestCorrections: requestCorrections,
			By:                 caller.UID,
			At:                 time.Now().UTC(),
		})
		action := actionFeedbackAdded
		if requestCorrections {
			action = actionRequestedCorrections
		}
		a.applyAction(p, action, caller.UID)
		return nil
	})
	return updated, mapStoreErr(err, "project not found")
}

// Validate sets the project status (and optionally stage), recording an
// optional recommendation. Any allowed status may be set from any state;
// the workflow is deliberately open-ended, so validated projects can be
// reopened later.
func (a *App) Validate(caller domain.Profile, projectID string, status domain.ProjectStatus, stage domain.ProjectStage, recommendation string) (domain.Project, error) {
	if !validStatuses[status] {
		return domain.Project{}, Validationf("invalid status. Allowed: %s, %s, %s, %s",
			domain.StatusDraft, domain.StatusSubmitted, domain.StatusNeedsCorrections, domain.StatusValidated)
	}
	if stage != "" && !validStages[stage] {
		return domain.Project{}, Validationf("invalid stage. Allowed: %s, %s, %s",
			domain.StageIdea, domain.StageCreation, domain.StageGrowth)
	}
	updated, err := a.store.UpdateProject(projectID, func(p *domain.Project) error {
		if !CanAccessProject(caller.Role, caller.UID, *p) {
			return Forbidden("forbidden")
		}
		p.Status = status
		if stage != "" {
			p.Stage = stage
		}
		if recommendation != "" {
			p.Recommendations = append(p.Recommendations, domain.Recommendation{
				Text: recommendation,
				By:   caller.UID,
				At:   time.Now().UTC(),
			})
		}
		a.applyAction(p, actionStatusPrefix+string(status), caller.UID)
		return nil
	})
	return updated, mapStoreErr(err, "project not found")
}

// applyAction appends the audit entry and applies any forced status from
// the transition table.
func (a *App) applyAction(p *domain.Project, action, by string) {
	now := time.Now().UTC()
	if status, forced := forcedStatus[action]; forced {
		p.Status = status
	}
	p.Iterations = append(p.Iterations, domain.Iteration{Action: action, By: by, At: now})
	p.UpdatedAt = now
}

func mapStoreErr(err error, notFoundMsg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return NotFound(notFoundMsg)
	}
	return err
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// storedFilename prefixes a millisecond timestamp and collapses whitespace,
// mirroring how uploaded files are deduplicated on disk.
func storedFilename(original string) string {
	base := filepath.Base(strings.TrimSpace(original))
	if base == "" || base == "." {
		base = "document"
	}
	base = whitespaceRe.ReplaceAllString(base, "_")
	return fmt.Sprintf("%d-%s", time.Now().UTC().UnixMilli(), base)
}
