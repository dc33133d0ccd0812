package services

import (
	"context"
	"errors"
	"time"

	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
	"github.com/rithick-11/food-recommendation-system/internal/core/ports"
)

// BackendConfig is resolved once from configuration
type BackendConfig struct {
	// Available is true when a usable backend credential is configured
	Available bool
	// MockForced routes every call to the fallback generator
	MockForced bool
}

// Mode describes which path generation calls will take
func (c BackendConfig) Mode() string {
	switch {
	case c.MockForced:
		return "mock"
	case !c.Available:
		return "unavailable"
	default:
		return "backend"
	}
}

// Orchestrator runs the generation pipeline: backend attempt when possible,
// deterministic fallback otherwise or on any backend-path failure
type Orchestrator struct {
	backend   ports.GenerationBackend
	config    BackendConfig
	validator *PlanValidator
	fallback  *FallbackGenerator
	observer  GenerationObserver
}

// NewOrchestrator creates an orchestrator. backend may be nil when cfg.Available is false.
func NewOrchestrator(backend ports.GenerationBackend, cfg BackendConfig, fallback *FallbackGenerator, observer GenerationObserver) *Orchestrator {
	if observer == nil {
		observer = NopObserver{}
	}
	if fallback == nil {
		fallback = NewFallbackGenerator()
	}
	if backend == nil {
		cfg.Available = false
	}
	return &Orchestrator{
		backend:   backend,
		config:    cfg,
		validator: NewPlanValidator(observer),
		fallback:  fallback,
		observer:  observer,
	}
}

// Config returns the backend configuration in effect
func (o *Orchestrator) Config() BackendConfig {
	return o.config
}

// GenerateMealPlan always yields a complete plan for a valid dayCount. The
// only error is domain.ErrInvalidDayCount, returned before any work is done.
func (o *Orchestrator) GenerateMealPlan(ctx context.Context, profile domain.ProfileDescriptor, dayCount int) (*domain.MealPlanResult, error) {
	if !domain.ValidDayCount(dayCount) {
		return nil, domain.ErrInvalidDayCount
	}

	if o.config.MockForced || !o.config.Available {
		logEvent("mealplan_fallback_selected", map[string]interface{}{
			"reason":    o.config.Mode(),
			"day_count": dayCount,
		})
		return o.generateFallback(profile, dayCount)
	}

	result, err := o.attempt(ctx, profile, dayCount)
	if err != nil {
		var failure *GenerationFailure
		stage := StageBackend
		if errors.As(err, &failure) {
			stage = failure.Stage
		}
		logEvent("mealplan_backend_failed", map[string]interface{}{
			"stage":     string(stage),
			"error":     err.Error(),
			"day_count": dayCount,
		})
		o.observer.GenerationFailed(stage)
		return o.generateFallback(profile, dayCount)
	}

	o.observer.PlanGenerated(domain.SourceBackend, dayCount)
	return result, nil
}

// attempt runs prompt -> backend -> parse -> validate; every error is a *GenerationFailure
func (o *Orchestrator) attempt(ctx context.Context, profile domain.ProfileDescriptor, dayCount int) (*domain.MealPlanResult, error) {
	prompt := BuildPrompt(profile, dayCount)

	start := time.Now()
	raw, err := o.backend.Invoke(ctx, prompt)
	o.observer.BackendCompleted(time.Since(start), err)
	if err != nil {
		return nil, &GenerationFailure{Stage: StageBackend, Err: err}
	}

	parsed, err := ParseResponse(raw)
	if err != nil {
		return nil, &GenerationFailure{Stage: StageParse, Err: err}
	}

	result, err := o.validator.Validate(parsed, dayCount)
	if err != nil {
		return nil, &GenerationFailure{Stage: StageValidation, Err: err}
	}
	return result, nil
}

func (o *Orchestrator) generateFallback(profile domain.ProfileDescriptor, dayCount int) (*domain.MealPlanResult, error) {
	result, err := o.fallback.Generate(profile, dayCount)
	if err != nil {
		return nil, err
	}
	o.observer.PlanGenerated(domain.SourceFallback, dayCount)
	return result, nil
}

var _ ports.MealPlanGenerator = (*Orchestrator)(nil)
