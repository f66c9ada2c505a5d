package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/macroplan/v1/internal/ports/outbound"
	"gorm.io/gorm"
)

// ProviderConfigRepository implements outbound.ProviderConfigRepository
// using GORM.
type ProviderConfigRepository struct {
	db *gorm.DB
}

// NewProviderConfigRepository creates a new GORM provider config repository.
func NewProviderConfigRepository(db *gorm.DB) *ProviderConfigRepository {
	return &ProviderConfigRepository{db: db}
}

// ForUser returns the user's provider settings. A user without a row gets
// the zero config, which the gateway rejects as unconfigured.
func (r *ProviderConfigRepository) ForUser(ctx context.Context, userID uuid.UUID) (*outbound.ProviderConfig, error) {
	var model AIConfigModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &outbound.ProviderConfig{}, nil
		}
		return nil, fmt.Errorf("failed to load provider config: %w", err)
	}

	return &outbound.ProviderConfig{
		OpenAIEnabled:  model.OpenAIEnabled,
		OpenAIKey:      model.OpenAIKey,
		OpenAIModel:    model.OpenAIModel,
		OllamaEnabled:  model.OllamaEnabled,
		OllamaEndpoint: model.OllamaEndpoint,
		OllamaModel:    model.OllamaModel,
		Preferred:      model.PreferredService,
	}, nil
}
