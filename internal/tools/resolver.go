package tools

import (
	"fmt"

	"greenlaunch/pkg/domain"
)

// Answer sources reported by Resolve.
const (
	SourceProject = "project"
	SourceLocal   = "local"
)

// FormsWriter persists merged answers into a project's forms map.
type FormsWriter interface {
	UpdateForms(projectID, callerUID string, forms domain.Forms, submit bool) (domain.Project, error)
}

// Resolver decides, per user and tool, whether answers live in a backing
// project's forms map or in the local fallback store.
type Resolver struct {
	forms FormsWriter
	local *LocalStore
}

func NewResolver(forms FormsWriter, local *LocalStore) *Resolver {
	return &Resolver{forms: forms, local: local}
}

// Resolution is the outcome of answer resolution for one tool.
type Resolution struct {
	Tool      Tool
	Answers   Answers
	Counts    RepeatCounts
	Source    string
	ProjectID string
}

// projectForTool picks the first of the user's projects whose type matches
// the tool. Tools without a project type never match.
func projectForTool(tool Tool, projects []domain.Project) (domain.Project, bool) {
	if tool.ProjectType == "" {
		return domain.Project{}, false
	}
	for _, p := range projects {
		if p.Type == tool.ProjectType {
			return p, true
		}
	}
	return domain.Project{}, false
}

// Resolve reads the current answers for (uid, toolKey). With a backing
// project the answers come from its forms map restricted to the tool's
// question ids; otherwise from the local store. Answers saved locally
// before a matching project existed are never migrated automatically.
func (r *Resolver) Resolve(uid, toolKey string, projects []domain.Project) (Resolution, error) {
	tool, ok := ByKey(toolKey)
	if !ok {
		return Resolution{}, fmt.Errorf("unknown tool %q", toolKey)
	}

	if project, found := projectForTool(tool, projects); found {
		answers, counts := DecodeForms(project.Forms)
		return Resolution{
			Tool:      tool,
			Answers:   restrict(tool, answers, counts),
			Counts:    counts,
			Source:    SourceProject,
			ProjectID: project.ID,
		}, nil
	}

	answers, counts := DecodeForms(r.local.Read(uid, toolKey))
	return Resolution{
		Tool:    tool,
		Answers: restrict(tool, answers, counts),
		Counts:  counts,
		Source:  SourceLocal,
	}, nil
}

// restrict drops answer keys the tool does not define at the current
// repeat counts.
func restrict(tool Tool, answers Answers, counts RepeatCounts) Answers {
	out := make(Answers, len(answers))
	for _, q := range tool.EffectiveQuestions(counts) {
		if v, ok := answers[q.ID]; ok {
			out[q.ID] = v
		}
	}
	return out
}

// Persist writes answers back to wherever Resolve would read them from: a
// backing project's forms (merged server-side, never submitting) or the
// local store (full replace). Returns the source written to.
func (r *Resolver) Persist(uid, toolKey string, projects []domain.Project, answers Answers, counts RepeatCounts) (string, error) {
	tool, ok := ByKey(toolKey)
	if !ok {
		return "", fmt.Errorf("unknown tool %q", toolKey)
	}
	forms := tool.EncodeForms(answers, counts)

	if project, found := projectForTool(tool, projects); found {
		if _, err := r.forms.UpdateForms(project.ID, uid, forms, false); err != nil {
			return "", err
		}
		return SourceProject, nil
	}
	if err := r.local.Write(uid, toolKey, forms); err != nil {
		return "", err
	}
	return SourceLocal, nil
}

// ProgressList summarizes completion across the whole catalog for a user.
func (r *Resolver) ProgressList(uid string, projects []domain.Project) ([]Summary, error) {
	summaries := make([]Summary, 0, len(catalog))
	for _, tool := range catalog {
		res, err := r.Resolve(uid, tool.Key, projects)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, tool.Progress(res.Answers, res.Counts))
	}
	return summaries, nil
}
