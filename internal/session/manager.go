package session

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/scribe/internal/review"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrExists   = errors.New("session already exists")
	ErrNoText   = errors.New("improved_text is required")
)

// Manager keeps one review orchestrator per document.
type Manager struct {
	extractor review.Extractor
	deduper   review.Deduper
	synth     review.Synthesizer
	language  string
	logger    *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*review.Orchestrator
	hooks    []func(*review.Orchestrator)
}

func NewManager(ext review.Extractor, dd review.Deduper, sy review.Synthesizer, defaultLanguage string, logger *slog.Logger) *Manager {
	return &Manager{
		extractor: ext,
		deduper:   dd,
		synth:     sy,
		language:  defaultLanguage,
		logger:    logger,
		sessions:  make(map[string]*review.Orchestrator),
	}
}

// OnCreate registers fn to run for every new session before it is returned.
func (m *Manager) OnCreate(fn func(*review.Orchestrator)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, fn)
}

// Create starts a review for doc. An empty id gets a generated one.
func (m *Manager) Create(doc review.Document) (*review.Orchestrator, error) {
	if doc.ImprovedText == "" {
		return nil, ErrNoText
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Language == "" {
		doc.Language = m.language
	}

	m.mu.Lock()
	if _, ok := m.sessions[doc.ID]; ok {
		m.mu.Unlock()
		return nil, ErrExists
	}
	o := review.New(doc, m.extractor, m.deduper, m.synth, m.logger)
	m.sessions[doc.ID] = o
	hooks := append(([]func(*review.Orchestrator))(nil), m.hooks...)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn(o)
	}

	m.logger.Info("review session created",
		"session_id", doc.ID,
		"language", doc.Language,
		"original_len", len(doc.OriginalText),
		"improved_len", len(doc.ImprovedText),
	)
	return o, nil
}

// Get returns the review for id.
func (m *Manager) Get(id string) (*review.Orchestrator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

// Len returns the number of active sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
