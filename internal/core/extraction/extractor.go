package extraction

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/distill/internal/config"
	"github.com/agenthands/distill/internal/core/common"
	"github.com/agenthands/distill/internal/core/model"
	apperrors "github.com/agenthands/distill/internal/errors"
	"github.com/agenthands/distill/internal/llm"
	"github.com/agenthands/distill/internal/logger"
)

type Extractor struct {
	LLM     llm.LLMClient
	Prompts config.ExtractionPrompts
	Logger  *zap.Logger
}

func NewExtractor(llmClient llm.LLMClient, prompts config.ExtractionPrompts) *Extractor {
	return &Extractor{
		LLM:     llmClient,
		Prompts: prompts,
		Logger:  logger.Get(),
	}
}

// Extract turns conversation text into concepts and relationships with one
// model call. It always returns a usable result: when the call fails or
// the reply holds no parseable JSON, the result is empty and the error
// (transport or parse, both recoverable) says why.
func (e *Extractor) Extract(ctx context.Context, text string) (*model.ExtractionResult, error) {
	log := logger.Or(e.Logger)

	if strings.TrimSpace(text) == "" {
		return model.NewExtractionResult(), nil
	}

	req := llm.SingleTurn(e.Prompts.System, fmt.Sprintf(e.Prompts.User, text), e.Prompts.MaxTokens)
	log.Debug("Extracting knowledge", zap.Int("text_len", len(text)))

	reply, err := e.LLM.Generate(ctx, req)
	if err != nil {
		log.Error("Knowledge extraction call failed", zap.Error(err))
		if !apperrors.IsErrorType(err, apperrors.ErrorTypeTransport) {
			err = apperrors.NewTransportFailed("knowledge extraction", err)
		}
		return model.NewExtractionResult(), err
	}

	result, err := ParseResult(reply)
	if err != nil {
		log.Warn("Could not parse extracted knowledge", zap.Error(err))
		return result, err
	}

	log.Debug("Extracted knowledge",
		zap.Int("concepts", result.Concepts.Len()),
		zap.Int("relationships", len(result.Relationships)),
	)
	return result, nil
}

// ParseResult reads an extraction result out of a model reply. On failure
// it returns an empty result and an ErrParseFailed carrying the reply.
func ParseResult(reply string) (*model.ExtractionResult, error) {
	parsed, err := common.ParseJSON[model.ExtractionResult](reply)
	if err != nil {
		return model.NewExtractionResult(), apperrors.NewParseFailed(reply, err)
	}
	return parsed.Normalize(), nil
}
