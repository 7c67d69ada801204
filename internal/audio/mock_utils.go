package audio

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

type MockTranscriber struct {
	Text string
	Err  error

	Received []byte
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audio io.Reader, name string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	data, err := io.ReadAll(audio)
	if err != nil {
		return "", err
	}
	m.Received = data
	return m.Text, nil
}

// MockSynthesizer writes the text itself as the "audio".
type MockSynthesizer struct {
	Err   error
	Paths []string
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, text string, path string) error {
	if m.Err != nil {
		return m.Err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	m.Paths = append(m.Paths, path)
	return os.WriteFile(path, []byte(text), 0o644)
}
