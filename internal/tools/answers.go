package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"greenlaunch/pkg/domain"
)

// Value is one questionnaire answer: free text, a number, or a selection
// of options. The zero Value is "unanswered".
type Value struct {
	kind      string
	text      string
	number    float64
	selection []string
}

const (
	kindText      = "text"
	kindNumber    = "number"
	kindSelection = "selection"
)

func Text(s string) Value           { return Value{kind: kindText, text: s} }
func Number(n float64) Value        { return Value{kind: kindNumber, number: n} }
func Selection(opts []string) Value { return Value{kind: kindSelection, selection: opts} }

// Answered reports whether the value counts toward questionnaire progress:
// trimmed non-empty text, a finite number, or a non-empty selection.
func (v Value) Answered() bool {
	switch v.kind {
	case kindText:
		return strings.TrimSpace(v.text) != ""
	case kindNumber:
		return !math.IsNaN(v.number) && !math.IsInf(v.number, 0)
	case kindSelection:
		return len(v.selection) > 0
	default:
		return false
	}
}

// AsAny returns the plain JSON representation stored in a forms map.
func (v Value) AsAny() any {
	switch v.kind {
	case kindText:
		return v.text
	case kindNumber:
		return v.number
	case kindSelection:
		return v.selection
	default:
		return nil
	}
}

// ValueFromAny converts forms-map content back to a Value. Unknown shapes
// fall back to their string form.
func ValueFromAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Value{}
	case string:
		return Text(t)
	case float64:
		return Number(t)
	case int:
		return Number(float64(t))
	case []string:
		return Selection(t)
	case []any:
		opts := make([]string, 0, len(t))
		for _, o := range t {
			opts = append(opts, fmt.Sprint(o))
		}
		return Selection(opts)
	default:
		return Text(fmt.Sprint(t))
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.AsAny())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ValueFromAny(raw)
	return nil
}

// Answers maps question ids to their values.
type Answers map[string]Value

// RepeatCounts holds the user-controlled sizes of the dynamic tool's
// repeating groups. It is structured here and only flattened to reserved
// keys at the persistence boundary.
type RepeatCounts struct {
	VPRows          int `json:"vpRows"`
	Cards           int `json:"cards"`
	Stages          int `json:"stages"`
	StakeholderRows int `json:"stakeholderRows"`
}

// Reserved forms-map keys the repeat counters round-trip through. They are
// never question ids.
const (
	keyVPRows          = "__vpRows"
	keyCards           = "__cards"
	keyStages          = "__stages"
	keyStakeholderRows = "__stakeholderRows"
)

var reservedKeys = map[string]bool{
	keyVPRows:          true,
	keyCards:           true,
	keyStages:          true,
	keyStakeholderRows: true,
}

// Get returns the count for a named group, defaulting to 1 so every group
// renders at least one block.
func (c RepeatCounts) Get(counter string) int {
	n := 0
	switch counter {
	case CounterVPRows:
		n = c.VPRows
	case CounterCards:
		n = c.Cards
	case CounterStages:
		n = c.Stages
	case CounterStakeholderRows:
		n = c.StakeholderRows
	}
	if n < 1 {
		n = 1
	}
	return n
}

// EncodeForms flattens answers plus repeat counters into a forms map
// suitable for persistence. Counters land under reserved keys and are only
// written for the dynamic tool; static tool maps stay counter-free.
func (t Tool) EncodeForms(answers Answers, counts RepeatCounts) domain.Forms {
	forms := make(domain.Forms, len(answers)+4)
	for id, v := range answers {
		if reservedKeys[id] {
			continue
		}
		forms[id] = v.AsAny()
	}
	if t.Dynamic() {
		forms[keyVPRows] = float64(counts.Get(CounterVPRows))
		forms[keyCards] = float64(counts.Get(CounterCards))
		forms[keyStages] = float64(counts.Get(CounterStages))
		forms[keyStakeholderRows] = float64(counts.Get(CounterStakeholderRows))
	}
	return forms
}

// DecodeForms splits a stored forms map back into answers and counters,
// dropping the reserved keys from the answer set.
func DecodeForms(forms domain.Forms) (Answers, RepeatCounts) {
	answers := make(Answers, len(forms))
	var counts RepeatCounts
	for key, raw := range forms {
		switch key {
		case keyVPRows:
			counts.VPRows = intFromAny(raw)
		case keyCards:
			counts.Cards = intFromAny(raw)
		case keyStages:
			counts.Stages = intFromAny(raw)
		case keyStakeholderRows:
			counts.StakeholderRows = intFromAny(raw)
		default:
			answers[key] = ValueFromAny(raw)
		}
	}
	return answers, counts
}

func intFromAny(raw any) int {
	switch t := raw.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case string:
		var n int
		_, _ = fmt.Sscanf(t, "%d", &n)
		return n
	default:
		return 0
	}
}
