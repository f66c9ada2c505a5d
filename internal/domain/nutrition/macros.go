// Package nutrition defines the value types and entities the suggestion
// pipeline reads: macro amounts, goals, meals, foods and the daily ledger.
package nutrition

import "math"

// Macros holds the tracked macro-nutrients for one serving, one budget or one
// aggregate. Calories are kept as a float so scaled quantities stay exact;
// rounding happens only at the display boundary.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// Add returns the element-wise sum of two macro sets.
func (m Macros) Add(other Macros) Macros {
	return Macros{
		Calories: m.Calories + other.Calories,
		Protein:  m.Protein + other.Protein,
		Carbs:    m.Carbs + other.Carbs,
		Fat:      m.Fat + other.Fat,
		Fiber:    m.Fiber + other.Fiber,
	}
}

// Scale multiplies every macro by the given factor.
func (m Macros) Scale(factor float64) Macros {
	return Macros{
		Calories: m.Calories * factor,
		Protein:  m.Protein * factor,
		Carbs:    m.Carbs * factor,
		Fat:      m.Fat * factor,
		Fiber:    m.Fiber * factor,
	}
}

// NetCarbs returns carbohydrate grams net of fiber, floored at zero.
func (m Macros) NetCarbs() float64 {
	return math.Max(0, m.Carbs-m.Fiber)
}

// EffectiveCarbs returns the carb value used for budget accounting: net carbs
// when net-carb tracking is enabled, total carbs otherwise.
func (m Macros) EffectiveCarbs(netCarbTracking bool) float64 {
	if netCarbTracking {
		return m.NetCarbs()
	}
	return m.Carbs
}

// Remaining subtracts consumed from goal, flooring every macro at zero.
func Remaining(goal, consumed Macros) Macros {
	return Macros{
		Calories: math.Max(0, goal.Calories-consumed.Calories),
		Protein:  math.Max(0, goal.Protein-consumed.Protein),
		Carbs:    math.Max(0, goal.Carbs-consumed.Carbs),
		Fat:      math.Max(0, goal.Fat-consumed.Fat),
		Fiber:    math.Max(0, goal.Fiber-consumed.Fiber),
	}
}

// RoundForDisplay rounds calories to whole units and gram values to one
// decimal, the precision shown to users.
func (m Macros) RoundForDisplay() Macros {
	round1 := func(v float64) float64 { return math.Round(v*10) / 10 }
	return Macros{
		Calories: math.Round(m.Calories),
		Protein:  round1(m.Protein),
		Carbs:    round1(m.Carbs),
		Fat:      round1(m.Fat),
		Fiber:    round1(m.Fiber),
	}
}
