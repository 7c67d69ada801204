package conversation

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/distill/internal/audio"
	"github.com/agenthands/distill/internal/config"
	"github.com/agenthands/distill/internal/core/merge"
	"github.com/agenthands/distill/internal/core/model"
	apperrors "github.com/agenthands/distill/internal/errors"
	"github.com/agenthands/distill/internal/llm"
	"github.com/agenthands/distill/internal/logger"
)

type Extractor interface {
	Extract(ctx context.Context, text string) (*model.ExtractionResult, error)
}

// Interviewer drives the assistant side of a conversation.
type Interviewer struct {
	LLM     llm.LLMClient
	Prompts config.ConversationPrompts

	Transcriber audio.Transcriber
	Synthesizer audio.Synthesizer
	AudioDir    string

	Logger *zap.Logger
}

func NewInterviewer(llmClient llm.LLMClient, prompts config.ConversationPrompts) *Interviewer {
	return &Interviewer{
		LLM:     llmClient,
		Prompts: prompts,
		Logger:  logger.Get(),
	}
}

// WithAudio enables voice turns.
func (iv *Interviewer) WithAudio(t audio.Transcriber, s audio.Synthesizer, dir string) *Interviewer {
	iv.Transcriber = t
	iv.Synthesizer = s
	iv.AudioDir = dir
	return iv
}

// Respond records the user's message and the assistant's reply. When the
// model call fails the user message stays and no reply is added.
func (iv *Interviewer) Respond(ctx context.Context, s *State, userText string) (string, error) {
	return iv.respond(ctx, s, Message{Role: llm.RoleUser, Content: userText})
}

func (iv *Interviewer) respond(ctx context.Context, s *State, user Message) (string, error) {
	if s.Ended {
		return "", apperrors.NewInvalidInput("conversation has ended")
	}
	s.Messages = append(s.Messages, user)

	reply, err := iv.LLM.Generate(ctx, llm.Request{
		System:    iv.Prompts.Interviewer,
		Messages:  s.history(),
		MaxTokens: iv.Prompts.MaxTokens,
	})
	if err != nil {
		logger.Or(iv.Logger).Error("Interviewer reply failed", zap.String("session", s.ID), zap.Error(err))
		return "", err
	}

	s.Messages = append(s.Messages, Message{Role: llm.RoleAssistant, Content: reply})
	return reply, nil
}

// GenerateUserReply has the auto-reply persona answer the assistant's
// last message. The state is not changed.
func (iv *Interviewer) GenerateUserReply(ctx context.Context, s *State) (string, error) {
	last, ok := s.LastMessage()
	if !ok {
		return "", apperrors.NewInvalidInput("conversation has no messages")
	}

	reply, err := iv.LLM.Generate(ctx, llm.SingleTurn(
		iv.Prompts.AutoReply,
		fmt.Sprintf(iv.Prompts.AutoReplyUser, last.Content),
		iv.Prompts.MaxTokens,
	))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", apperrors.NewTransportFailed("auto reply", fmt.Errorf("no response generated"))
	}
	return reply, nil
}

// AutoReply generates the user's turn and then the assistant's answer to
// it. It returns both.
func (iv *Interviewer) AutoReply(ctx context.Context, s *State) (user string, reply string, err error) {
	user, err = iv.GenerateUserReply(ctx, s)
	if err != nil {
		return "", "", err
	}
	reply, err = iv.Respond(ctx, s, user)
	return user, reply, err
}

// EndResult is what finishing an interview produced.
type EndResult struct {
	Extraction *model.ExtractionResult `json:"extraction"`
	Merged     merge.Summary           `json:"merged"`
}

// End closes the conversation, extracts knowledge from the transcript and
// merges it into target. A recoverable extraction error is returned
// alongside the (empty) result; storage errors abort.
func (iv *Interviewer) End(ctx context.Context, s *State, extractor Extractor, target merge.Target) (*EndResult, error) {
	if !s.HasUserInput() {
		return nil, apperrors.NewInvalidInput("conversation has no user input to extract from")
	}
	s.Ended = true

	result, extractErr := extractor.Extract(ctx, s.Transcript())
	if extractErr != nil && !apperrors.IsRecoverable(extractErr) {
		return nil, extractErr
	}

	summary, err := merge.Apply(ctx, result, target)
	if err != nil {
		return nil, err
	}

	logger.Or(iv.Logger).Info("Conversation ended",
		zap.String("session", s.ID),
		zap.Int("concepts", summary.Concepts),
		zap.Int("relationships", summary.Relationships),
	)
	return &EndResult{Extraction: result, Merged: summary}, extractErr
}

// RespondAudio runs a voice turn: transcribe, reply, speak the reply.
// A failed transcription leaves the state untouched. A failed synthesis
// only costs the reply its audio file.
func (iv *Interviewer) RespondAudio(ctx context.Context, s *State, recording io.Reader, name string) (string, error) {
	if iv.Transcriber == nil {
		return "", apperrors.NewBaseError(apperrors.ErrorTypeConfig, "audio is not configured", nil)
	}
	log := logger.Or(iv.Logger)

	transcript, err := iv.Transcriber.Transcribe(ctx, recording, name)
	if err != nil {
		log.Error("Transcription failed", zap.String("session", s.ID), zap.Error(err))
		return "", err
	}
	if strings.TrimSpace(transcript) == "" {
		return "", apperrors.NewTransportFailed("transcription", fmt.Errorf("empty transcript"))
	}

	reply, err := iv.respond(ctx, s, Message{Role: llm.RoleUser, Content: transcript})
	if err != nil {
		return "", err
	}

	iv.speakLast(ctx, s)
	return reply, nil
}

// SpeakGreeting voices the opening message of a fresh voice session.
func (iv *Interviewer) SpeakGreeting(ctx context.Context, s *State) {
	if len(s.Messages) == 1 {
		iv.speakLast(ctx, s)
	}
}

// speakLast synthesizes the last message to assistant_audio_{n}.mp3 where
// n is its index in the conversation.
func (iv *Interviewer) speakLast(ctx context.Context, s *State) {
	if iv.Synthesizer == nil || len(s.Messages) == 0 {
		return
	}
	idx := len(s.Messages) - 1
	path := filepath.Join(iv.AudioDir, s.ID, fmt.Sprintf("assistant_audio_%d.mp3", idx))
	if err := iv.Synthesizer.Synthesize(ctx, s.Messages[idx].Content, path); err != nil {
		logger.Or(iv.Logger).Warn("Speech synthesis failed", zap.String("session", s.ID), zap.Error(err))
		return
	}
	s.Messages[idx].AudioPath = path
}
