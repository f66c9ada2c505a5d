// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/macroplan/v1/internal/domain/nutrition"
	"github.com/macroplan/v1/internal/domain/suggestion"
)

// GoalRepository reads the user's active macro goal.
type GoalRepository interface {
	ActiveGoal(ctx context.Context, userID uuid.UUID) (*nutrition.Goal, error)
}

// MealRepository reads meal slot definitions. FindByID must enforce ownership
// and return nutrition.ErrMealNotFound for meals belonging to other users.
type MealRepository interface {
	FindByID(ctx context.Context, userID uuid.UUID, mealID int64) (*nutrition.MealDefinition, error)
}

// FoodRepository reads the eligible food catalog. ActiveCatalog returns the
// user's active foods plus common catalog rows, with linked-composite foods
// already collapsed to summed per-serving macros.
type FoodRepository interface {
	ActiveCatalog(ctx context.Context, userID uuid.UUID) ([]nutrition.FoodItem, error)
}

// LedgerRepository reads the day's logged serving entries.
type LedgerRepository interface {
	EntriesForDate(ctx context.Context, userID uuid.UUID, date string) ([]nutrition.LedgerEntry, error)
}

// ProviderConfig is a user's generation-provider configuration row.
type ProviderConfig struct {
	OpenAIEnabled  bool
	OpenAIKey      string
	OpenAIModel    string
	OllamaEnabled  bool
	OllamaEndpoint string
	OllamaModel    string
	// Preferred names the provider tried first: "openai" or "ollama".
	// Empty means the first enabled provider wins.
	Preferred string
}

// ProviderConfigRepository reads per-user provider configuration.
type ProviderConfigRepository interface {
	ForUser(ctx context.Context, userID uuid.UUID) (*ProviderConfig, error)
}

// ModelInfo describes one model a provider can serve.
type ModelInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// CompletionProvider is a single text-generation backend.
type CompletionProvider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// CompletionResult is the outcome of a gateway completion.
type CompletionResult struct {
	Text     string
	Provider string
	Cached   bool
}

// ProviderGateway resolves a user's provider chain and executes completions
// with ordered fallback.
type ProviderGateway interface {
	// Resolve loads the user's provider configuration and returns the ordered
	// chain. Fails with suggestion.ErrProvider when nothing is configured.
	Resolve(ctx context.Context, userID uuid.UUID) (ProviderChain, error)
	// ListModels enumerates models across the user's enabled providers.
	ListModels(ctx context.Context, userID uuid.UUID) (map[string][]ModelInfo, error)
}

// ProviderChain executes a prompt against the resolved providers, falling
// back at most one hop.
type ProviderChain interface {
	Complete(ctx context.Context, prompt string) (*CompletionResult, error)
}

// SuggestionStore is the shared registry of suggestion job records. All
// methods are safe for concurrent use; Update serializes record mutation.
type SuggestionStore interface {
	Create(ctx context.Context, req *suggestion.Request) error
	Get(ctx context.Context, id uuid.UUID) (suggestion.Request, error)
	Update(ctx context.Context, id uuid.UUID, mutate func(*suggestion.Request)) (suggestion.Request, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Sweep deletes records created before the cutoff, regardless of status,
	// and returns how many were reclaimed.
	Sweep(ctx context.Context, cutoff time.Time) int
}

// CacheRepository defines the caching operations the gateway memoizes
// completions through.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
