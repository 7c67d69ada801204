package extraction

import (
	"context"

	"github.com/agenthands/distill/internal/core/model"
)

// MockExtractor returns fixed results keyed by input text, falling back
// to Default. Used by callers that only care about what gets merged.
type MockExtractor struct {
	Results map[string]*model.ExtractionResult
	Errs    map[string]error
	Default *model.ExtractionResult
}

func (m *MockExtractor) Extract(ctx context.Context, text string) (*model.ExtractionResult, error) {
	err := m.Errs[text]
	if r, ok := m.Results[text]; ok {
		return r, err
	}
	if m.Default != nil {
		return m.Default, err
	}
	return model.NewExtractionResult(), err
}
