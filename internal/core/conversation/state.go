package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agenthands/distill/internal/llm"
)

const (
	genericGreeting = "Hello! I'm your AI assistant. What would you like to talk about today?"
	domainGreeting  = "I'd like to learn about your expertise in %s. What are the key concepts in this domain?"
)

type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	AudioPath string `json:"audio_path,omitempty"`
}

// State is one interview. It belongs to the caller; nothing here keeps a
// reference to it between calls.
type State struct {
	ID        string    `json:"id"`
	Domain    string    `json:"domain"`
	Messages  []Message `json:"messages"`
	Ended     bool      `json:"ended"`
	CreatedAt time.Time `json:"created_at"`
}

// NewState starts an interview with the assistant's opening question.
func NewState(domain string) *State {
	domain = strings.TrimSpace(domain)
	return &State{
		ID:        uuid.NewString(),
		Domain:    domain,
		Messages:  []Message{{Role: llm.RoleAssistant, Content: Greeting(domain)}},
		CreatedAt: time.Now(),
	}
}

func Greeting(domain string) string {
	if domain == "" {
		return genericGreeting
	}
	return fmt.Sprintf(domainGreeting, domain)
}

// Transcript is the text handed to the extractor: every message content,
// one per line.
func (s *State) Transcript() string {
	parts := make([]string, len(s.Messages))
	for i, m := range s.Messages {
		parts[i] = m.Content
	}
	return strings.Join(parts, "\n")
}

// HasUserInput reports whether the user has said anything yet.
func (s *State) HasUserInput() bool {
	for _, m := range s.Messages {
		if m.Role == llm.RoleUser {
			return true
		}
	}
	return false
}

func (s *State) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

func (s *State) history() []llm.Message {
	out := make([]llm.Message, len(s.Messages))
	for i, m := range s.Messages {
		out[i] = llm.Message{Role: m.Role, Content: m.Content}
	}
	return out
}

// IsEndCommand reports whether text asks to finish the interview.
func IsEndCommand(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), "end")
}

// IsAutoCommand reports whether text asks for a generated user reply.
func IsAutoCommand(text string) bool {
	t := strings.TrimSpace(text)
	return t == "" || t == "auto"
}
