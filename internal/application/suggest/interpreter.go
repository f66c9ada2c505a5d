package suggest

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/macroplan/v1/internal/domain/nutrition"
	"github.com/macroplan/v1/internal/domain/suggestion"
)

// salvageCap bounds how many pairs the regex fallback may recover from an
// otherwise unparseable response.
const salvageCap = 4

// rawSuggestion is the loose shape accepted from providers. Models are
// inconsistent about field names, so several aliases map onto the same slot.
type rawSuggestion struct {
	FoodID       *int64  `json:"food_id"`
	ID           *int64  `json:"id"`
	CompositeID  *int64  `json:"composite_id"`
	LinkedFoodID *int64  `json:"linked_food_id"`
	IsNew        bool    `json:"is_new"`
	Name         string  `json:"name"`
	ServingSize  string  `json:"serving_size"`
	Quantity     float64 `json:"quantity"`
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Carbs        float64 `json:"carbs"`
	Fat          float64 `json:"fat"`
	Fiber        float64 `json:"fiber"`
	Reason       string  `json:"reason"`
}

type rawEnvelope struct {
	Suggestions []rawSuggestion `json:"suggestions"`
}

// Interpreter turns raw provider text into normalized suggestions.
type Interpreter struct{}

// NewInterpreter creates a response interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

var salvagePattern = regexp.MustCompile(`"food_id"\s*:\s*(\d+)\s*,\s*"quantity"\s*:\s*(\d+(?:\.\d+)?)`)

// Interpret extracts the suggestion entries from raw model output. It strips
// markdown fences, scans for the first balanced JSON object and falls back to
// regex salvage of {food_id, quantity} pairs before giving up with ErrParse.
func (in *Interpreter) Interpret(raw string) ([]rawSuggestion, error) {
	cleaned := stripFences(raw)

	if body, ok := extractObject(cleaned); ok {
		var env rawEnvelope
		if err := json.Unmarshal([]byte(body), &env); err == nil && len(env.Suggestions) > 0 {
			return env.Suggestions, nil
		}

		// Some models return a bare suggestion object instead of the envelope.
		var single rawSuggestion
		if err := json.Unmarshal([]byte(body), &single); err == nil && (single.foodID() != 0 || single.IsNew) {
			return []rawSuggestion{single}, nil
		}
	}

	if salvaged := salvage(cleaned); len(salvaged) > 0 {
		return salvaged, nil
	}

	return nil, suggestion.ErrParse
}

// Normalize validates raw entries against the catalog and converts them into
// domain suggestions. Unusable entries are dropped silently; the result may be
// empty, in which case the budget enforcer falls back to the candidate pool.
func (in *Interpreter) Normalize(entries []rawSuggestion, catalog map[int64]nutrition.FoodItem, allowNew bool) []suggestion.Suggestion {
	out := make([]suggestion.Suggestion, 0, len(entries))
	for _, e := range entries {
		qty := normalizeQuantity(e.Quantity)
		if qty < 1 {
			continue
		}

		if e.IsNew {
			if !allowNew {
				continue
			}
			if e.Name == "" || e.Calories <= 0 {
				continue
			}
			out = append(out, suggestion.Suggestion{
				Kind:        suggestion.KindNew,
				Name:        e.Name,
				ServingSize: e.ServingSize,
				PerServing: nutrition.Macros{
					Calories: e.Calories,
					Protein:  e.Protein,
					Carbs:    e.Carbs,
					Fat:      e.Fat,
					Fiber:    e.Fiber,
				},
				Quantity: qty,
				Reason:   e.Reason,
			})
			continue
		}

		id := e.foodID()
		food, ok := catalog[id]
		if !ok {
			continue
		}

		kind := suggestion.KindExisting
		if food.Origin == nutrition.OriginComposite {
			kind = suggestion.KindComposite
		}
		out = append(out, suggestion.Suggestion{
			Kind:        kind,
			FoodID:      food.ID,
			Name:        food.Name,
			ServingSize: food.ServingSize,
			PerServing:  food.PerServing,
			Quantity:    qty,
			Reason:      e.Reason,
		})
	}

	return out
}

func (r rawSuggestion) foodID() int64 {
	for _, id := range []*int64{r.FoodID, r.ID, r.CompositeID, r.LinkedFoodID} {
		if id != nil && *id > 0 {
			return *id
		}
	}
	return 0
}

// normalizeQuantity floors fractional serving counts, never below one for a
// positive quantity. Zero and negative quantities stay unusable.
func normalizeQuantity(q float64) int {
	if q <= 0 {
		return 0
	}
	n := int(math.Floor(q))
	if n < 1 {
		n = 1
	}
	return n
}

// stripFences removes markdown code fences around the payload, with or
// without a language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the fence line itself ("json", "JSON" or empty).
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// extractObject returns the first balanced top-level JSON object in s,
// ignoring braces inside string literals.
func extractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// salvage recovers {food_id, quantity} pairs from malformed JSON.
func salvage(s string) []rawSuggestion {
	matches := salvagePattern.FindAllStringSubmatch(s, salvageCap)
	out := make([]rawSuggestion, 0, len(matches))
	for _, m := range matches {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		qty, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		fid := id
		out = append(out, rawSuggestion{FoodID: &fid, Quantity: qty})
	}
	return out
}
