package conversation

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/distill/internal/audio"
	"github.com/agenthands/distill/internal/config"
	"github.com/agenthands/distill/internal/core/extraction"
	apperrors "github.com/agenthands/distill/internal/errors"
	"github.com/agenthands/distill/internal/llm"
	"github.com/agenthands/distill/internal/store"
)

func TestNewStateGreeting(t *testing.T) {
	s := NewState("Botany")
	require.Len(t, s.Messages, 1)
	assert.Equal(t, llm.RoleAssistant, s.Messages[0].Role)
	assert.Equal(t, "I'd like to learn about your expertise in Botany. What are the key concepts in this domain?", s.Messages[0].Content)
	assert.NotEmpty(t, s.ID)

	generic := NewState("  ")
	assert.Equal(t, "Hello! I'm your AI assistant. What would you like to talk about today?", generic.Messages[0].Content)
	assert.NotEqual(t, s.ID, generic.ID)
}

func TestCommands(t *testing.T) {
	assert.True(t, IsEndCommand("end"))
	assert.True(t, IsEndCommand(" END "))
	assert.False(t, IsEndCommand("the end"))

	assert.True(t, IsAutoCommand(""))
	assert.True(t, IsAutoCommand("auto"))
	assert.False(t, IsAutoCommand("automobile"))
}

func TestRespondSendsWholeHistory(t *testing.T) {
	mock := llm.NewMockLLMClient("What converts sunlight?", "Which organisms do it?")
	iv := NewInterviewer(mock, config.Default().Conversation)
	s := NewState("Botany")

	reply, err := iv.Respond(context.Background(), s, "Photosynthesis is key.")
	require.NoError(t, err)
	assert.Equal(t, "What converts sunlight?", reply)

	_, err = iv.Respond(context.Background(), s, "Chlorophyll does.")
	require.NoError(t, err)

	req := mock.LastRequest()
	assert.Equal(t, config.Default().Conversation.Interviewer, req.System)
	assert.Equal(t, 500, req.MaxTokens)
	require.Len(t, req.Messages, 4)
	assert.Equal(t, llm.RoleAssistant, req.Messages[0].Role)
	assert.Equal(t, "Chlorophyll does.", req.Messages[3].Content)
	assert.Len(t, s.Messages, 5)

	assert.Equal(t, "I'd like to learn about your expertise in Botany. What are the key concepts in this domain?\nPhotosynthesis is key.\nWhat converts sunlight?\nChlorophyll does.\nWhich organisms do it?", s.Transcript())
}

func TestRespondTransportFailureKeepsUserMessage(t *testing.T) {
	iv := NewInterviewer(&llm.MockLLMClient{Err: apperrors.NewTransportFailed("chat completion", errors.New("refused"))}, config.Default().Conversation)
	s := NewState("")

	_, err := iv.Respond(context.Background(), s, "hello")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeTransport))
	require.Len(t, s.Messages, 2)
	assert.Equal(t, llm.RoleUser, s.Messages[1].Role)
}

func TestAutoReply(t *testing.T) {
	mock := llm.NewMockLLMClient("Leaves are where it happens.", "Tell me more about leaves.")
	iv := NewInterviewer(mock, config.Default().Conversation)
	s := NewState("Botany")

	user, reply, err := iv.AutoReply(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "Leaves are where it happens.", user)
	assert.Equal(t, "Tell me more about leaves.", reply)

	first := mock.Requests[0]
	assert.Equal(t, config.Default().Conversation.AutoReply, first.System)
	assert.Contains(t, first.Messages[0].Content, "What are the key concepts in this domain?")
	assert.Len(t, s.Messages, 3)
}

func TestAutoReplyEmptyIsError(t *testing.T) {
	iv := NewInterviewer(llm.NewMockLLMClient("   "), config.Default().Conversation)
	s := NewState("")

	_, _, err := iv.AutoReply(context.Background(), s)
	require.Error(t, err)
	assert.Len(t, s.Messages, 1)
}

func TestEnd(t *testing.T) {
	reply := `{"concepts":{"Photosynthesis":{"type":"process"}},"relationships":[{"source":"Plants","relation":"perform","target":"Photosynthesis"},{"source":"A"}]}`
	mock := llm.NewMockLLMClient(reply)
	iv := NewInterviewer(llm.NewMockLLMClient("ok"), config.Default().Conversation)
	s := NewState("Botany")
	_, err := iv.Respond(context.Background(), s, "Plants perform photosynthesis.")
	require.NoError(t, err)

	kb := store.NewMemory()
	res, err := iv.End(context.Background(), s, extraction.NewExtractor(mock, config.Default().Extraction), kb)
	require.NoError(t, err)

	assert.True(t, s.Ended)
	assert.Equal(t, 1, res.Merged.Concepts)
	assert.Equal(t, 1, res.Merged.Relationships)
	assert.Equal(t, 1, res.Merged.Skipped)
	assert.Contains(t, mock.LastRequest().Messages[0].Content, s.Transcript())

	_, err = iv.Respond(context.Background(), s, "more")
	assert.Error(t, err)
}

func TestEndWithUnparseableReply(t *testing.T) {
	iv := NewInterviewer(llm.NewMockLLMClient("ok"), config.Default().Conversation)
	s := NewState("")
	_, err := iv.Respond(context.Background(), s, "hi")
	require.NoError(t, err)

	res, err := iv.End(context.Background(), s, extraction.NewExtractor(llm.NewMockLLMClient("no json here"), config.Default().Extraction), store.NewMemory())
	require.Error(t, err)
	assert.True(t, apperrors.IsRecoverable(err))
	require.NotNil(t, res)
	assert.True(t, res.Extraction.IsEmpty())
}

func TestEndWithoutUserInput(t *testing.T) {
	iv := NewInterviewer(llm.NewMockLLMClient("ok"), config.Default().Conversation)
	_, err := iv.End(context.Background(), NewState("x"), &extraction.MockExtractor{}, store.NewMemory())
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInput))
}

func TestRespondAudio(t *testing.T) {
	dir := t.TempDir()
	transcriber := &audio.MockTranscriber{Text: "Plants perform photosynthesis."}
	synth := &audio.MockSynthesizer{}
	iv := NewInterviewer(llm.NewMockLLMClient("Which plants?"), config.Default().Conversation).
		WithAudio(transcriber, synth, dir)
	s := NewState("Botany")

	iv.SpeakGreeting(context.Background(), s)
	require.Equal(t, filepath.Join(dir, s.ID, "assistant_audio_0.mp3"), s.Messages[0].AudioPath)

	reply, err := iv.RespondAudio(context.Background(), s, bytes.NewReader([]byte("wav")), "turn.wav")
	require.NoError(t, err)
	assert.Equal(t, "Which plants?", reply)
	assert.Equal(t, []byte("wav"), transcriber.Received)

	require.Len(t, s.Messages, 3)
	assert.Equal(t, "Plants perform photosynthesis.", s.Messages[1].Content)
	want := filepath.Join(dir, s.ID, "assistant_audio_2.mp3")
	assert.Equal(t, want, s.Messages[2].AudioPath)
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "Which plants?", string(data))
}

func TestRespondAudioTranscriptionFailure(t *testing.T) {
	iv := NewInterviewer(llm.NewMockLLMClient("unused"), config.Default().Conversation).
		WithAudio(&audio.MockTranscriber{Err: apperrors.NewTransportFailed("transcription", errors.New("bad audio"))}, &audio.MockSynthesizer{}, t.TempDir())
	s := NewState("")

	_, err := iv.RespondAudio(context.Background(), s, bytes.NewReader(nil), "x.wav")
	require.Error(t, err)
	assert.Len(t, s.Messages, 1)
}

func TestRespondAudioSynthesisFailureKeepsReply(t *testing.T) {
	iv := NewInterviewer(llm.NewMockLLMClient("Go on."), config.Default().Conversation).
		WithAudio(&audio.MockTranscriber{Text: "hi"}, &audio.MockSynthesizer{Err: errors.New("tts down")}, t.TempDir())
	s := NewState("")

	reply, err := iv.RespondAudio(context.Background(), s, bytes.NewReader(nil), "x.wav")
	require.NoError(t, err)
	assert.Equal(t, "Go on.", reply)
	assert.Empty(t, s.Messages[2].AudioPath)
}

func TestRespondAudioNotConfigured(t *testing.T) {
	iv := NewInterviewer(llm.NewMockLLMClient("x"), config.Default().Conversation)
	_, err := iv.RespondAudio(context.Background(), NewState(""), bytes.NewReader(nil), "x.wav")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConfig))
}

var _ Extractor = (*extraction.MockExtractor)(nil)
