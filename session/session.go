// Package session tracks one production conversation: its project aggregate,
// turn history and any pending upload request.
package session

import (
	"time"

	"github.com/reelforge/reelforge/orchestrator"
	"github.com/reelforge/reelforge/project"
)

// Session is the unit of conversation state. The project is owned exclusively
// by the session; the orchestrator is its single writer.
type Session struct {
	ID        string                      `json:"id"`
	Project   *project.Project            `json:"project"`
	History   []project.Turn              `json:"history"`
	Pending   *orchestrator.UploadRequest `json:"pending,omitempty"`
	CreatedAt time.Time                   `json:"createdAt"`
	UpdatedAt time.Time                   `json:"updatedAt"`
}

// New creates a session with a fresh project.
func New(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Project:   project.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy safe for use outside the store's lock.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Project = s.Project.Clone()
	cp.History = append([]project.Turn(nil), s.History...)
	if s.Pending != nil {
		pending := *s.Pending
		cp.Pending = &pending
	}
	return &cp
}

// Store persists sessions between turns.
type Store interface {
	// Get returns an existing session, creating one lazily for unknown ids.
	Get(sessionID string) (*Session, error)
	// Save stores the session snapshot.
	Save(s *Session) error
}
