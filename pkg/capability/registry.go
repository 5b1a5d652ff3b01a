// Package capability owns the process-wide generative-model
// availability state. All readers take a snapshot; mutation happens
// behind the registry's lock, driven by explicit initialization and
// download events. An absent model is a normal state here, not an
// error.
package capability

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/agents"
	"github.com/aktagon/llmkit/anthropic/types"

	"github.com/AdityaBoddepalli/HoverPeek/models"
)

// State is the generative capability lifecycle.
type State string

const (
	StateUnavailable  State = "unavailable"  // no API key configured
	StateDownloadable State = "downloadable" // key present, not yet verified
	StateDownloading  State = "downloading"  // verification in progress
	StateAvailable    State = "available"    // verified and usable
)

// Status is the immutable snapshot handed to readers.
type Status struct {
	State    State   `json:"state" yaml:"state"`
	Progress float64 `json:"progress" yaml:"progress"` // 0..1 while downloading
	Model    string  `json:"model" yaml:"model"`
}

// Registry is the single owner of capability state.
type Registry struct {
	mu       sync.Mutex
	state    State
	progress float64

	cfg    models.Config
	apiKey string
	logger *slog.Logger
}

// NewRegistry initializes the registry from the environment. This is
// the explicit initialization step: key lookup happens once, here.
func NewRegistry(cfg models.Config, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{cfg: cfg, logger: logger}
	r.apiKey = os.Getenv(cfg.APIKeyEnv)
	if r.apiKey == "" || cfg.DisablePreview {
		r.state = StateUnavailable
	} else {
		r.state = StateDownloadable
	}
	return r
}

// Snapshot returns the current status by value. Later registry
// mutations do not affect a snapshot already taken.
func (r *Registry) Snapshot() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{State: r.state, Progress: r.progress, Model: r.cfg.Model}
}

// Download verifies the capability end to end, reporting fractional
// progress through the callback. On success the state flips through
// downloading to available; on failure it returns to downloadable.
func (r *Registry) Download(progress func(float64)) error {
	r.mu.Lock()
	switch r.state {
	case StateUnavailable:
		r.mu.Unlock()
		return fmt.Errorf("capability unavailable: set %s", r.cfg.APIKeyEnv)
	case StateAvailable:
		r.mu.Unlock()
		if progress != nil {
			progress(1)
		}
		return nil
	case StateDownloading:
		r.mu.Unlock()
		return fmt.Errorf("capability download already in progress")
	}
	r.state = StateDownloading
	r.progress = 0
	r.mu.Unlock()

	if progress != nil {
		progress(0)
	}

	// A one-token round trip proves the key, model, and network path.
	settings := types.RequestSettings{Model: r.cfg.Model, MaxTokens: 1}
	_, err := anthropic.PromptWithSettings("", "ping", "", r.apiKey, settings)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.state = StateDownloadable
		r.progress = 0
		return fmt.Errorf("capability verification failed: %w", err)
	}

	r.state = StateAvailable
	r.progress = 1
	if progress != nil {
		progress(1)
	}
	r.logger.Info("generative capability verified", "model", r.cfg.Model)
	return nil
}

// MarkAvailable records that a prompt has succeeded, which is as good
// a verification as Download.
func (r *Registry) MarkAvailable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateUnavailable {
		r.state = StateAvailable
		r.progress = 1
	}
}

// NewTextSession opens a prompting session. Callers must Dispose it.
func (r *Registry) NewTextSession() (*Session, error) {
	r.mu.Lock()
	state := r.state
	r.mu.Unlock()

	if state == StateUnavailable {
		return nil, fmt.Errorf("no generative capability configured")
	}

	agent, err := agents.New(r.apiKey)
	if err != nil {
		return nil, fmt.Errorf("creating prompt session: %w", err)
	}
	return &Session{agent: agent, registry: r}, nil
}

// Session wraps one conversational agent. Prompt calls are
// independent; the session exists so disposal is explicit.
type Session struct {
	agent    *agents.ChatAgent
	registry *Registry
}

// Prompt sends a system/user prompt pair and returns the free-text
// response.
func (s *Session) Prompt(system, user string) (string, error) {
	if s.agent == nil {
		return "", fmt.Errorf("session already disposed")
	}
	response, err := s.agent.Chat(user, &agents.ChatOptions{
		SystemPrompt: system,
		MaxTokens:    s.registry.cfg.MaxTokens,
		Temperature:  s.registry.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	s.registry.MarkAvailable()
	return response.Text, nil
}

// DescribeImage uploads the image bytes and prompts against the
// attachment. The temp file exists only for the upload call.
func (s *Session) DescribeImage(prompt string, image []byte, ext string) (string, error) {
	if s.agent == nil {
		return "", fmt.Errorf("session already disposed")
	}

	tempFile, err := os.CreateTemp("", "hoverpeek-*"+ext)
	if err != nil {
		return "", fmt.Errorf("creating temporary image file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(image); err != nil {
		tempFile.Close()
		return "", fmt.Errorf("writing temporary image file: %w", err)
	}
	tempFile.Close()

	file, err := anthropic.UploadFile(tempFile.Name(), s.registry.apiKey)
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}

	settings := types.RequestSettings{
		Model:       s.registry.cfg.Model,
		MaxTokens:   s.registry.cfg.MaxTokens,
		Temperature: s.registry.cfg.Temperature,
	}
	response, err := anthropic.PromptWithSettings("", prompt, "", s.registry.apiKey, settings, types.File{ID: file.ID})
	if err != nil {
		return "", fmt.Errorf("image prompt failed: %w", err)
	}
	if len(response.Content) == 0 {
		return "", fmt.Errorf("no content in image response")
	}
	s.registry.MarkAvailable()
	return response.Content[0].Text, nil
}

// Dispose releases the session. Further prompts fail.
func (s *Session) Dispose() {
	s.agent = nil
}
