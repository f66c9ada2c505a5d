// Package ai resolves per-user provider chains and executes completions with
// ordered fallback and response caching.
package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/macroplan/v1/internal/domain/suggestion"
	"github.com/macroplan/v1/internal/infrastructure/ai/ollama"
	"github.com/macroplan/v1/internal/infrastructure/ai/openai"
	"github.com/macroplan/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

// defaultCacheTTL keeps identical prompts from hitting providers twice in
// quick succession, which happens when a user re-requests without excluding.
const defaultCacheTTL = 10 * time.Minute

// Options tunes provider construction and completion caching. Zero timeouts
// fall back to the per-client defaults.
type Options struct {
	OpenAITimeout time.Duration
	OllamaTimeout time.Duration
	EnableCache   bool
	CacheTTL      time.Duration
}

// Observer receives provider call telemetry. Implemented by the metrics
// collector.
type Observer interface {
	ProviderCall(provider string, elapsed time.Duration, err error)
	Fallback(from, to string)
}

// Gateway implements outbound.ProviderGateway. Provider clients are built per
// resolve from the user's stored configuration.
type Gateway struct {
	configs  outbound.ProviderConfigRepository
	cache    outbound.CacheRepository
	opts     Options
	observer Observer
	logger   *zap.Logger
}

// NewGateway creates a provider gateway. The cache and observer are optional;
// the cache is ignored when caching is disabled in opts.
func NewGateway(configs outbound.ProviderConfigRepository, cache outbound.CacheRepository, opts Options, observer Observer, logger *zap.Logger) *Gateway {
	if !opts.EnableCache {
		cache = nil
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	return &Gateway{
		configs:  configs,
		cache:    cache,
		opts:     opts,
		observer: observer,
		logger:   logger.Named("provider-gateway"),
	}
}

// Resolve loads the user's provider configuration and builds the ordered
// chain: preferred provider first, the other enabled one as the single
// fallback hop.
func (g *Gateway) Resolve(ctx context.Context, userID uuid.UUID) (outbound.ProviderChain, error) {
	providers, err := g.providersFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &chain{
		providers: providers,
		cache:     g.cache,
		cacheTTL:  g.opts.CacheTTL,
		observer:  g.observer,
		logger:    g.logger,
	}, nil
}

// ListModels enumerates models across the user's enabled providers. A
// provider that fails to answer contributes an empty list rather than
// failing the whole call.
func (g *Gateway) ListModels(ctx context.Context, userID uuid.UUID) (map[string][]outbound.ModelInfo, error) {
	providers, err := g.providersFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]outbound.ModelInfo, len(providers))
	for _, p := range providers {
		models, err := p.ListModels(ctx)
		if err != nil {
			g.logger.Warn("model listing failed",
				zap.String("provider", p.Name()),
				zap.Error(err))
			out[p.Name()] = []outbound.ModelInfo{}
			continue
		}
		out[p.Name()] = models
	}
	return out, nil
}

func (g *Gateway) providersFor(ctx context.Context, userID uuid.UUID) ([]outbound.CompletionProvider, error) {
	cfg, err := g.configs.ForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading provider config: %v", suggestion.ErrProvider, err)
	}

	var providers []outbound.CompletionProvider
	if cfg.OpenAIEnabled && cfg.OpenAIKey != "" {
		providers = append(providers, openai.NewClient(cfg.OpenAIKey, cfg.OpenAIModel, g.opts.OpenAITimeout, g.logger))
	}
	if cfg.OllamaEnabled {
		providers = append(providers, ollama.NewClient(cfg.OllamaEndpoint, cfg.OllamaModel, g.opts.OllamaTimeout, g.logger))
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("%w: no provider enabled", suggestion.ErrProvider)
	}

	if cfg.Preferred != "" && providers[0].Name() != cfg.Preferred {
		for i, p := range providers {
			if p.Name() == cfg.Preferred {
				providers[0], providers[i] = providers[i], providers[0]
				break
			}
		}
	}
	return providers, nil
}

// chain executes a prompt against resolved providers in order, with at most
// one fallback hop.
type chain struct {
	providers []outbound.CompletionProvider
	cache     outbound.CacheRepository
	cacheTTL  time.Duration
	observer  Observer
	logger    *zap.Logger
}

func (c *chain) Complete(ctx context.Context, prompt string) (*outbound.CompletionResult, error) {
	key := cacheKey(prompt)

	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, key); err == nil && len(cached) > 0 {
			c.logger.Debug("completion cache hit", zap.String("key", key))
			return &outbound.CompletionResult{Text: string(cached), Provider: "cache", Cached: true}, nil
		}
	}

	attempts := c.providers
	if len(attempts) > 2 {
		attempts = attempts[:2]
	}

	var lastErr error
	for i, p := range attempts {
		start := time.Now()
		text, err := p.Complete(ctx, prompt)
		if c.observer != nil {
			c.observer.ProviderCall(p.Name(), time.Since(start), err)
		}
		if err != nil {
			lastErr = err
			c.logger.Warn("provider completion failed",
				zap.String("provider", p.Name()),
				zap.Bool("fallback_available", i < len(attempts)-1),
				zap.Error(err))
			if i < len(attempts)-1 && c.observer != nil {
				c.observer.Fallback(p.Name(), attempts[i+1].Name())
			}
			continue
		}

		if c.cache != nil {
			ttl := c.cacheTTL
			if ttl <= 0 {
				ttl = defaultCacheTTL
			}
			if err := c.cache.Set(ctx, key, []byte(text), ttl); err != nil {
				c.logger.Debug("completion cache write failed", zap.Error(err))
			}
		}
		return &outbound.CompletionResult{Text: text, Provider: p.Name()}, nil
	}

	return nil, fmt.Errorf("%w: all providers failed: %v", suggestion.ErrProvider, lastErr)
}

func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return "ai:completion:" + hex.EncodeToString(sum[:])
}
