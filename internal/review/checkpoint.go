package review

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"arc/internal/protocol"
)

// snapshot is the restorable slice of session state, keyed by round
type snapshot struct {
	Round            int           `json:"round"`
	NextRole         protocol.Role `json:"nextRole"`
	Completed        bool          `json:"completed"`
	Converged        bool          `json:"converged,omitempty"`
	CompletionReason string        `json:"completionReason,omitempty"`
	Issues           []*Issue      `json:"issues"`
	ContextFiles     []string      `json:"contextFiles"`
}

// Checkpoint is one integrity-hashed snapshot of a session. Restoring it
// never mutates the checkpoint itself, so a checkpoint can be rolled back
// to any number of times.
type Checkpoint struct {
	ID      string    `json:"id"`
	Round   int       `json:"round"`
	Hash    string    `json:"hash"`
	TakenAt time.Time `json:"takenAt"`
	state   snapshot
}

// Ack is the result shape for checkpoint and rollback calls
type Ack struct {
	Success     bool   `json:"success"`
	RoundNumber int    `json:"roundNumber"`
	Reason      string `json:"reason,omitempty"`
}

// takeCheckpoint deep-copies the session's restorable state
func takeCheckpoint(s *Session) *Checkpoint {
	snap := snapshot{
		Round:            s.Round,
		NextRole:         s.NextRole,
		Completed:        s.Completed,
		Converged:        s.Converged,
		CompletionReason: s.CompletionReason,
		Issues:           make([]*Issue, 0, len(s.Issues)),
		ContextFiles:     append([]string(nil), s.ContextFiles...),
	}
	for _, issue := range sortedIssues(s.Issues) {
		snap.Issues = append(snap.Issues, issue.Clone())
	}

	return &Checkpoint{
		ID:      uuid.NewString(),
		Round:   s.Round,
		Hash:    snapshotHash(snap),
		TakenAt: time.Now().UTC(),
		state:   snap,
	}
}

// restore overwrites the session's state from the snapshot and truncates
// rounds recorded after it
func (c *Checkpoint) restore(s *Session) {
	s.Round = c.state.Round
	s.NextRole = c.state.NextRole
	s.Completed = c.state.Completed
	s.Converged = c.state.Converged
	s.CompletionReason = c.state.CompletionReason
	s.ContextFiles = append([]string(nil), c.state.ContextFiles...)

	s.Issues = make(map[string]*Issue, len(c.state.Issues))
	for _, issue := range c.state.Issues {
		s.Issues[issue.ID] = issue.Clone()
	}

	kept := s.Rounds[:0]
	for _, r := range s.Rounds {
		if r.Number <= c.state.Round {
			kept = append(kept, r)
		}
	}
	s.Rounds = kept
}

// MarshalState serializes the snapshot for persistence
func (c *Checkpoint) MarshalState() ([]byte, error) {
	return json.Marshal(c.state)
}

// UnmarshalState restores a persisted snapshot into the checkpoint
func (c *Checkpoint) UnmarshalState(data []byte) error {
	return json.Unmarshal(data, &c.state)
}

// snapshotHash fingerprints the canonical JSON form. Issues are sorted at
// capture time, so equal states hash equally.
func snapshotHash(snap snapshot) string {
	data, err := json.Marshal(snap)
	if err != nil {
		return ""
	}
	sum := blake2b.Sum256(data)
	return fmt.Sprintf("%x", sum[:16])
}
