package suggest

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/macroplan/v1/internal/domain/nutrition"
	"github.com/macroplan/v1/internal/domain/suggestion"
	"github.com/macroplan/v1/internal/ports/inbound"
	"github.com/macroplan/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

// eventBuffer sizes the per-job event channel. Large enough that a slow SSE
// consumer never blocks the pipeline goroutine.
const eventBuffer = 16

// Recorder receives pipeline telemetry. Implemented by the monitoring
// adapter; a no-op implementation is used in tests.
type Recorder interface {
	JobSubmitted()
	JobFinished(status suggestion.Status)
}

// NopRecorder discards all telemetry.
type NopRecorder struct{}

func (NopRecorder) JobSubmitted()                       {}
func (NopRecorder) JobFinished(status suggestion.Status) {}

// Service orchestrates the suggestion pipeline and implements
// inbound.SuggestionService.
type Service struct {
	contexts    *ContextBuilder
	foods       outbound.FoodRepository
	selector    *Selector
	composer    *Composer
	interpreter *Interpreter
	enforcer    *Enforcer
	gateway     outbound.ProviderGateway
	store       outbound.SuggestionStore
	recorder    Recorder
	logger      *zap.Logger
	now         func() time.Time
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithCandidateLimit overrides how many candidate foods the selector hands to
// the prompt composer.
func WithCandidateLimit(limit int) ServiceOption {
	return func(s *Service) {
		if limit > 0 {
			s.selector.Limit = limit
		}
	}
}

// NewService creates the suggestion service.
func NewService(
	contexts *ContextBuilder,
	foods outbound.FoodRepository,
	gateway outbound.ProviderGateway,
	store outbound.SuggestionStore,
	recorder Recorder,
	logger *zap.Logger,
	opts ...ServiceOption,
) *Service {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	s := &Service{
		contexts:    contexts,
		foods:       foods,
		selector:    NewSelector(),
		composer:    NewComposer(),
		interpreter: NewInterpreter(),
		enforcer:    NewEnforcer(),
		gateway:     gateway,
		store:       store,
		recorder:    recorder,
		logger:      logger.Named("suggestion-service"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the command, registers the job and launches the pipeline
// goroutine. The returned channel closes after the terminal event.
func (s *Service) Submit(ctx context.Context, cmd inbound.SubmitSuggestionCommand) (uuid.UUID, <-chan suggestion.Event, error) {
	if cmd.MealID <= 0 {
		return uuid.Nil, nil, suggestion.ErrValidation
	}
	if cmd.TargetCalories <= 0 {
		return uuid.Nil, nil, suggestion.ErrValidation
	}
	if cmd.Mode == "" {
		cmd.Mode = inbound.ModeMeal
	}

	req := suggestion.NewRequest(cmd.UserID, cmd.MealID, s.now())
	if err := s.store.Create(ctx, req); err != nil {
		return uuid.Nil, nil, err
	}
	s.recorder.JobSubmitted()

	events := make(chan suggestion.Event, eventBuffer)

	// The job outlives the submitting HTTP request; a fresh context detaches
	// it from the caller's deadline.
	go s.run(context.Background(), req.ID, cmd, events)

	return req.ID, events, nil
}

// run executes the pipeline stages for one job, publishing a progress event
// per status transition and exactly one terminal event before closing.
func (s *Service) run(ctx context.Context, id uuid.UUID, cmd inbound.SubmitSuggestionCommand, events chan<- suggestion.Event) {
	defer close(events)

	log := s.logger.With(zap.String("request_id", id.String()))
	start := s.now()

	finish := func(terminal suggestion.Request) {
		s.recorder.JobFinished(terminal.Status)
		s.send(events, suggestion.TerminalEvent(terminal))
		log.Info("suggestion job finished",
			zap.String("status", string(terminal.Status)),
			zap.Duration("elapsed", s.now().Sub(start)),
		)
	}

	fail := func(err error) {
		terminal, uerr := s.store.Update(ctx, id, func(r *suggestion.Request) {
			r.Fail(userMessage(err))
		})
		if uerr != nil {
			log.Warn("failing vanished job", zap.Error(uerr))
			return
		}
		log.Warn("suggestion job failed", zap.Error(err))
		finish(terminal)
	}

	// Stage 1: nutrition context.
	nctx, err := s.contexts.Build(ctx, cmd.UserID, cmd.MealID, cmd.Date, cmd.TargetCalories)
	if err != nil {
		fail(err)
		return
	}
	if s.cancelled(ctx, id, events, finish) {
		return
	}

	// Stage 2: candidate selection.
	catalog, err := s.foods.ActiveCatalog(ctx, cmd.UserID)
	if err != nil {
		fail(err)
		return
	}
	exclude := make(map[int64]bool, len(cmd.ExcludeFoodIDs))
	for _, fid := range cmd.ExcludeFoodIDs {
		exclude[fid] = true
	}
	candidates := s.selector.Select(catalog, nctx, exclude)

	// Stage 3: prompt composition.
	prompt := s.composer.Compose(nctx, candidates, PromptOptions{
		Mode:           cmd.Mode,
		AllowNewFoods:  cmd.AllowNewFoods,
		ExcludeFoodIDs: cmd.ExcludeFoodIDs,
		Preferences:    cmd.Preferences,
	})

	if !s.advance(ctx, id, suggestion.StatusContactingProvider, events, finish, func(r *suggestion.Request) {
		r.DebugPrompt = prompt
	}) {
		return
	}

	// Stage 4: provider resolution and completion.
	chain, err := s.gateway.Resolve(ctx, cmd.UserID)
	if err != nil {
		fail(err)
		return
	}
	if !s.advance(ctx, id, suggestion.StatusWaitingForResponse, events, finish, nil) {
		return
	}

	result, err := chain.Complete(ctx, prompt)
	if err != nil {
		fail(err)
		return
	}

	if !s.advance(ctx, id, suggestion.StatusParsingResponse, events, finish, func(r *suggestion.Request) {
		r.RawResponse = result.Text
	}) {
		return
	}

	// Stage 5: interpretation.
	byID := make(map[int64]nutrition.FoodItem, len(catalog))
	for _, f := range catalog {
		byID[f.ID] = f
	}
	raw, err := s.interpreter.Interpret(result.Text)
	if err != nil {
		fail(err)
		return
	}
	// An empty set after filtering is not fatal; the enforcer's fallback
	// still gets a chance to compose something from the candidate pool.
	parsed := s.interpreter.Normalize(raw, byID, cmd.AllowNewFoods)

	// Stage 6: budget enforcement.
	final, totals, err := s.enforcer.Enforce(parsed, candidates, nctx, exclude)
	if err != nil {
		fail(err)
		return
	}

	terminal, err := s.store.Update(ctx, id, func(r *suggestion.Request) {
		r.Complete(final, *totals)
	})
	if err != nil {
		log.Warn("completing vanished job", zap.Error(err))
		return
	}
	finish(terminal)
}

// advance moves the job to the next in-flight status, applying extra record
// writes under the same lock, and emits a progress event. Returns false when
// the job turned terminal underneath (cancelled), in which case the terminal
// event has been sent.
func (s *Service) advance(
	ctx context.Context,
	id uuid.UUID,
	next suggestion.Status,
	events chan<- suggestion.Event,
	finish func(suggestion.Request),
	extra func(*suggestion.Request),
) bool {
	advanced := false
	snap, err := s.store.Update(ctx, id, func(r *suggestion.Request) {
		if extra != nil {
			extra(r)
		}
		advanced = r.Advance(next)
	})
	if err != nil {
		s.logger.Warn("advancing vanished job", zap.String("request_id", id.String()), zap.Error(err))
		return false
	}
	if !advanced {
		finish(snap)
		return false
	}
	s.send(events, suggestion.ProgressEvent(id, next))
	return true
}

// cancelled checks for a cancel between stages that have no status
// transition of their own.
func (s *Service) cancelled(ctx context.Context, id uuid.UUID, events chan<- suggestion.Event, finish func(suggestion.Request)) bool {
	snap, err := s.store.Get(ctx, id)
	if err != nil {
		return true
	}
	if snap.Status.Terminal() {
		finish(snap)
		return true
	}
	return false
}

// send never blocks the pipeline on a slow consumer; an overflowing event is
// dropped because poll recovers the state anyway.
func (s *Service) send(events chan<- suggestion.Event, e suggestion.Event) {
	select {
	case events <- e:
	default:
	}
}

// Poll returns a snapshot of the job after an ownership check. The transient
// parsing_response status is smoothed to waiting_for_response while no
// suggestion set is attached, so pollers see a monotonic progression.
func (s *Service) Poll(ctx context.Context, userID, requestID uuid.UUID) (suggestion.Request, error) {
	snap, err := s.store.Get(ctx, requestID)
	if err != nil {
		return suggestion.Request{}, err
	}
	if snap.UserID != userID {
		return suggestion.Request{}, suggestion.ErrNotOwner
	}
	if snap.Status == suggestion.StatusParsingResponse && len(snap.Suggestions) == 0 {
		snap.Status = suggestion.StatusWaitingForResponse
	}
	return snap, nil
}

// Cancel marks the job cancelled. Idempotent on terminal jobs; an in-flight
// provider call is allowed to finish and its late result keeps the cancelled
// status.
func (s *Service) Cancel(ctx context.Context, userID, requestID uuid.UUID) error {
	snap, err := s.store.Get(ctx, requestID)
	if err != nil {
		return err
	}
	if snap.UserID != userID {
		return suggestion.ErrNotOwner
	}
	_, err = s.store.Update(ctx, requestID, func(r *suggestion.Request) {
		r.Cancel()
	})
	return err
}

// userMessage maps pipeline errors to the message surfaced to the client.
func userMessage(err error) string {
	switch {
	case errors.Is(err, nutrition.ErrMissingGoal):
		return "set up your macro goals before requesting suggestions"
	case errors.Is(err, nutrition.ErrMealNotFound):
		return "meal not found"
	case errors.Is(err, suggestion.ErrProvider):
		return "no AI provider is available right now"
	case errors.Is(err, suggestion.ErrParse):
		return "the AI response could not be understood"
	case errors.Is(err, suggestion.ErrEmptyResult):
		return "no suggestion fits your remaining macros"
	default:
		return "suggestion generation failed"
	}
}
