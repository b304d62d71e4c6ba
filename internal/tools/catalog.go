package tools

import (
	"strconv"

	"greenlaunch/pkg/domain"
)

// InputKind is the widget hint attached to a question.
type InputKind string

const (
	InputText     InputKind = "text"
	InputTextarea InputKind = "textarea"
	InputSelect   InputKind = "select"
)

// Question is a single prompt in a tool. ID is the key its answer is stored
// under in the answer map (and, for project-backed tools, the forms map).
type Question struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description,omitempty"`
	Input       InputKind `json:"inputType"`
	Options     []string  `json:"options,omitempty"`
}

// Field is one column of a repeating group. The generated question id is
// the group prefix, the 1-based group number, then the field suffix, e.g.
// "card1Name".
type Field struct {
	Suffix string
	Label  string
	Input  InputKind
}

// RepeatGroup describes a user-expandable block of duplicate-structured
// fields. Counter names the repeat count in RepeatCounts.
type RepeatGroup struct {
	Counter  string
	Label    string
	IDPrefix string
	Fields   []Field
}

// Page is one step of a dynamic multi-page tool.
type Page struct {
	Title  string
	Static []Question
	Groups []RepeatGroup
}

// Tool is a named questionnaire. Static tools carry Questions; the dynamic
// multi-page tool carries Pages instead. ProjectType is empty for tools
// that only ever use the local fallback store.
type Tool struct {
	Key         string
	Title       string
	Description string
	Exportable  bool
	ProjectType domain.ProjectType
	Questions   []Question
	Pages       []Page
}

// Dynamic reports whether the tool is the multi-page kind.
func (t Tool) Dynamic() bool {
	return len(t.Pages) > 0
}

// Repeat counter names used by the green business model tool.
const (
	CounterVPRows          = "vpRows"
	CounterCards           = "cards"
	CounterStages          = "stages"
	CounterStakeholderRows = "stakeholderRows"
)

var catalog = []Tool{
	{
		Key:         "green-business-model",
		Title:       "Green Business Model",
		Description: "Build and refine your sustainable business model.",
		Exportable:  true,
		ProjectType: domain.TypeGreenBMC,
		Pages: []Page{
			{
				Title: "Value & Impact",
				Static: []Question{
					{ID: "valueProposition", Label: "What is your green value proposition?", Description: "This clarifies the concrete sustainable value your customer gets.", Input: InputTextarea},
					{ID: "environmentalImpact", Label: "What environmental impact do you expect?", Description: "This measures the ecological improvements your solution creates.", Input: InputTextarea},
					{ID: "socialImpact", Label: "What social impact do you expect?", Description: "This captures community, inclusion, and social well-being outcomes.", Input: InputTextarea},
				},
				Groups: []RepeatGroup{
					{
						Counter:  CounterVPRows,
						Label:    "Value proposition detail",
						IDPrefix: "vpRow",
						Fields: []Field{
							{Suffix: "Benefit", Label: "Customer benefit", Input: InputText},
							{Suffix: "Evidence", Label: "Supporting evidence", Input: InputTextarea},
						},
					},
				},
			},
			{
				Title: "Customers & Channels",
				Static: []Question{
					{ID: "customerSegments", Label: "Who are your key customer segments?", Description: "This identifies who you serve and which users benefit most.", Input: InputTextarea},
					{ID: "channels", Label: "Which channels will you use to reach customers?", Description: "This ensures your model includes a realistic go-to-customer path.", Input: InputTextarea},
				},
				Groups: []RepeatGroup{
					{
						Counter:  CounterCards,
						Label:    "Customer card",
						IDPrefix: "card",
						Fields: []Field{
							{Suffix: "Name", Label: "Segment name", Input: InputText},
							{Suffix: "Need", Label: "Primary need", Input: InputTextarea},
							{Suffix: "Channel", Label: "Preferred channel", Input: InputText},
						},
					},
				},
			},
			{
				Title: "Viability",
				Static: []Question{
					{ID: "revenueStreams", Label: "How will the business generate revenue?", Description: "This checks if your impact model is also economically viable.", Input: InputTextarea},
					{ID: "financialPlan", Label: "What is your short-term financial plan?", Description: "This helps confirm your startup can operate and scale responsibly.", Input: InputTextarea},
				},
				Groups: []RepeatGroup{
					{
						Counter:  CounterStages,
						Label:    "Growth stage",
						IDPrefix: "stage",
						Fields: []Field{
							{Suffix: "Goal", Label: "Stage goal", Input: InputText},
							{Suffix: "Funding", Label: "Funding source", Input: InputText},
						},
					},
					{
						Counter:  CounterStakeholderRows,
						Label:    "Stakeholder",
						IDPrefix: "stakeholder",
						Fields: []Field{
							{Suffix: "Name", Label: "Stakeholder", Input: InputText},
							{Suffix: "Role", Label: "Role", Input: InputText},
							{Suffix: "Contribution", Label: "Contribution", Input: InputTextarea},
						},
					},
				},
			},
		},
	},
	{
		Key:         "green-business-plan",
		Title:       "Green Business Plan",
		Description: "Translate your model into an execution plan.",
		ProjectType: domain.TypeGreenBusinessPlan,
		Questions: []Question{
			{ID: "executiveSummary", Label: "What is your business plan summary?", Description: "This gives a concise view of strategy, impact, and ambition.", Input: InputTextarea},
			{ID: "marketAnalysis", Label: "What does your market analysis show?", Description: "This validates demand, competitors, and your positioning.", Input: InputTextarea},
			{ID: "operationsPlan", Label: "What is your operations plan?", Description: "This explains how the solution will be delivered efficiently.", Input: InputTextarea},
			{ID: "marketingStrategy", Label: "What is your marketing strategy?", Description: "This details how you will attract and retain customers.", Input: InputTextarea},
			{ID: "impactGoals", Label: "What measurable impact goals have you set?", Description: "This makes environmental and social targets auditable.", Input: InputTextarea},
			{ID: "financialForecast", Label: "What is your financial forecast?", Description: "This checks revenue, cost, and cash assumptions over time.", Input: InputTextarea},
		},
	},
	{
		Key:         "eco-design-tool",
		Title:       "Eco-design Tool",
		Description: "Improve product design through lifecycle thinking.",
		Questions: []Question{
			{ID: "materialsSelection", Label: "How do you select low-impact materials?", Description: "This identifies where resource and emissions savings start.", Input: InputTextarea},
			{ID: "lifecycleHotspots", Label: "Which lifecycle stages have the biggest impact?", Description: "This focuses your design effort on the most critical stages.", Input: InputTextarea},
			{ID: "repairability", Label: "How repairable and reusable is your solution?", Description: "This assesses circularity and product longevity.", Input: InputTextarea},
			{ID: "designPriority", Label: "Which eco-design priority is most urgent?", Description: "This helps choose the first practical action to implement.", Input: InputSelect, Options: []string{"Material reduction", "Energy efficiency", "Repairability", "End-of-life recovery"}},
		},
	},
	{
		Key:         "finance-toolkit",
		Title:       "Finance Toolkit",
		Description: "Prepare your financing strategy for growth.",
		Questions: []Question{
			{ID: "fundingNeed", Label: "What funding amount do you need for the next phase?", Description: "This anchors your capital strategy on a clear target.", Input: InputText},
			{ID: "fundingUse", Label: "How will you use the funds?", Description: "This demonstrates operational discipline to partners.", Input: InputTextarea},
			{ID: "revenueReadiness", Label: "How mature is your current revenue stream?", Description: "This signals repayment and investment readiness.", Input: InputSelect, Options: []string{"No revenue", "Early traction", "Recurring revenue", "Scaling revenue"}},
			{ID: "financialRisk", Label: "What is your main financial risk?", Description: "This helps prioritize mitigation before fundraising.", Input: InputTextarea},
		},
	},
	{
		Key:         "access-to-market",
		Title:       "Access to Market",
		Description: "Plan market entry and scale channels.",
		Questions: []Question{
			{ID: "targetMarket", Label: "What is your priority target market?", Description: "This keeps your market launch focused and testable.", Input: InputTextarea},
			{ID: "entryStrategy", Label: "What is your market entry strategy?", Description: "This defines how you convert early market opportunities.", Input: InputTextarea},
			{ID: "salesChannels", Label: "Which sales channels are your priority?", Description: "This identifies where you expect fastest traction.", Input: InputTextarea},
			{ID: "partnerships", Label: "What partnerships will accelerate access to market?", Description: "This highlights external levers for growth.", Input: InputTextarea},
		},
	},
	{
		Key:         "impact-measurement-toolkit",
		Title:       "Impact Measurement Toolkit",
		Description: "Define, track, and report your impact metrics.",
		Questions: []Question{
			{ID: "impactMetric", Label: "What is your main impact metric?", Description: "This sets a central KPI for your sustainability claims.", Input: InputText},
			{ID: "baseline", Label: "What baseline are you comparing against?", Description: "This ensures measured impact is credible and contextualized.", Input: InputTextarea},
			{ID: "dataCollection", Label: "How will you collect impact data?", Description: "This validates that tracking can be done consistently.", Input: InputTextarea},
			{ID: "reportingFrequency", Label: "How often will you report impact?", Description: "This aligns monitoring with operational cadence.", Input: InputSelect, Options: []string{"Monthly", "Quarterly", "Bi-annually", "Annually"}},
		},
	},
}

// Catalog returns all tools in display order.
func Catalog() []Tool {
	return catalog
}

// ByKey returns the tool for the key, or false if unknown.
func ByKey(key string) (Tool, bool) {
	for _, t := range catalog {
		if t.Key == key {
			return t, true
		}
	}
	return Tool{}, false
}

// questionID builds the answer key for one generated field of a repeating
// group, e.g. card 2's "Name" field is "card2Name".
func (g RepeatGroup) questionID(n int, f Field) string {
	return g.IDPrefix + strconv.Itoa(n) + f.Suffix
}
