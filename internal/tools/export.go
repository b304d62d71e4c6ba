package tools

import (
	"encoding/json"
	"fmt"
	"time"

	"greenlaunch/pkg/domain"
)

// ExportDocument is the downloadable artifact for exportable tools.
type ExportDocument struct {
	ToolKey     string    `json:"toolKey"`
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generatedAt"`
	Answers     Answers   `json:"answers"`
}

// Export renders the current answers of an exportable tool as a JSON
// document. Non-exportable tools are rejected.
func (r *Resolver) Export(uid, toolKey string, projects []domain.Project) ([]byte, error) {
	tool, ok := ByKey(toolKey)
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", toolKey)
	}
	if !tool.Exportable {
		return nil, fmt.Errorf("tool %q is not exportable", toolKey)
	}
	res, err := r.Resolve(uid, toolKey, projects)
	if err != nil {
		return nil, err
	}
	doc := ExportDocument{
		ToolKey:     tool.Key,
		Title:       tool.Title,
		GeneratedAt: time.Now().UTC(),
		Answers:     res.Answers,
	}
	return json.MarshalIndent(doc, "", "  ")
}
