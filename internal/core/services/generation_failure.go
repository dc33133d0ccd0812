package services

import (
	"fmt"
	"time"

	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
)

// FailureStage names the step of the backend path that failed
type FailureStage string

const (
	StageBackend    FailureStage = "backend"
	StageParse      FailureStage = "parse"
	StageValidation FailureStage = "validation"
)

// GenerationFailure wraps any error raised while attempting the backend path
type GenerationFailure struct {
	Stage FailureStage
	Err   error
}

func (f *GenerationFailure) Error() string {
	return fmt.Sprintf("meal plan generation failed at %s stage: %v", f.Stage, f.Err)
}

func (f *GenerationFailure) Unwrap() error {
	return f.Err
}

// GenerationObserver receives pipeline outcomes, e.g. for metrics
type GenerationObserver interface {
	PlanGenerated(source domain.Source, dayCount int)
	GenerationFailed(stage FailureStage)
	BackendCompleted(duration time.Duration, err error)
	SummaryMismatch(mismatch SummaryMismatch)
}

// NopObserver discards all observations
type NopObserver struct{}

func (NopObserver) PlanGenerated(domain.Source, int) {}
func (NopObserver) GenerationFailed(FailureStage) {}
func (NopObserver) BackendCompleted(time.Duration, error) {}
func (NopObserver) SummaryMismatch(SummaryMismatch) {}
