package ports

import (
	"context"

	"go.trai.ch/glaze/internal/core/domain"
)

// Transformer applies one external step kind to a single asset.
// It may return several assets (a script and its sourcemap) or none
// (a stylesheet partial).
//
//go:generate mockgen -source=transformer.go -destination=mocks/mock_transformer.go -package=mocks
type Transformer interface {
	// Kind returns the step kind handled by the transformer.
	Kind() domain.StepKind
	// Transform processes asset according to step.
	Transform(ctx context.Context, step domain.Step, asset domain.Asset) ([]domain.Asset, error)
}

// TransformerSet groups the transformers available to the step runner.
type TransformerSet []Transformer
