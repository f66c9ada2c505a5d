package nutrition

import "errors"

// Domain errors for nutrition context reads

var (
	ErrMissingGoal  = errors.New("no active macro goal for user")
	ErrMealNotFound = errors.New("meal not found")
	ErrFoodNotFound = errors.New("food not found")
)
