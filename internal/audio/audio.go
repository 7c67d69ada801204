package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sashabaranov/go-openai"

	"github.com/agenthands/distill/internal/config"
	apperrors "github.com/agenthands/distill/internal/errors"
)

// Transcriber turns recorded speech into text. name is the original file
// name; providers use its extension to detect the format.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, name string) (string, error)
}

// Synthesizer speaks text into an audio file at path.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, path string) error
}

type OpenAITranscriber struct {
	client *openai.Client
	model  string
}

type OpenAISynthesizer struct {
	client *openai.Client
	model  openai.SpeechModel
	voice  openai.SpeechVoice
}

// NewOpenAI builds both halves from one SDK client.
func NewOpenAI(client *openai.Client, cfg config.AudioConfig) (*OpenAITranscriber, *OpenAISynthesizer) {
	model := cfg.TranscriptionModel
	if model == "" {
		model = openai.Whisper1
	}
	speech := openai.SpeechModel(cfg.SpeechModel)
	if speech == "" {
		speech = openai.TTSModel1
	}
	voice := openai.SpeechVoice(cfg.Voice)
	if voice == "" {
		voice = openai.VoiceNova
	}
	return &OpenAITranscriber{client: client, model: model},
		&OpenAISynthesizer{client: client, model: speech, voice: voice}
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, audio io.Reader, name string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: name,
		Reader:   audio,
	})
	if err != nil {
		return "", apperrors.NewTransportFailed("transcription", err)
	}
	return resp.Text, nil
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string, path string) error {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: s.model,
		Voice: s.voice,
		Input: text,
	})
	if err != nil {
		return apperrors.NewTransportFailed("speech synthesis", err)
	}
	defer resp.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create audio dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}
	if _, err := io.Copy(f, resp); err != nil {
		f.Close()
		return apperrors.NewTransportFailed("speech synthesis", err)
	}
	return f.Close()
}
