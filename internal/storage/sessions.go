package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"arc/internal/review"
)

// SessionStore persists sessions and implements review.Store. Checkpoint
// snapshots are stored as zstd-compressed JSON blobs; everything else is
// plain JSON rows.
type SessionStore struct {
	db  *DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewSessionStore creates a store over an open database
func NewSessionStore(db *DB) (*SessionStore, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &SessionStore{db: db, enc: enc, dec: dec}, nil
}

// sessionHead is the session row payload: the session minus its rounds and
// issues, which live in their own tables
type sessionHead struct {
	*review.Session
	Rounds []review.Round           `json:"rounds,omitempty"`
	Issues map[string]*review.Issue `json:"issues,omitempty"`
}

// SaveSession writes the session head and synchronizes the issues table to
// the in-memory issue set in one transaction
func (st *SessionStore) SaveSession(s *review.Session) error {
	return st.db.WithTx(func(tx *sql.Tx) error {
		if err := upsertHead(tx, s); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM issues WHERE session_id = ?", s.ID); err != nil {
			return err
		}
		for _, issue := range s.IssueList() {
			if err := upsertIssue(tx, s.ID, issue); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveRound commits the session head, the round and all issues as one batch
func (st *SessionStore) SaveRound(s *review.Session, round *review.Round) error {
	return st.db.WithTx(func(tx *sql.Tx) error {
		if err := upsertHead(tx, s); err != nil {
			return err
		}

		data, err := json.Marshal(round)
		if err != nil {
			return fmt.Errorf("failed to marshal round: %w", err)
		}
		if _, err := tx.Exec(`
			INSERT INTO rounds (session_id, number, data) VALUES (?, ?, ?)
			ON CONFLICT(session_id, number) DO UPDATE SET data = excluded.data
		`, s.ID, round.Number, string(data)); err != nil {
			return err
		}

		for _, issue := range s.IssueList() {
			if err := upsertIssue(tx, s.ID, issue); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveCheckpoint writes one checkpoint with its compressed snapshot
func (st *SessionStore) SaveCheckpoint(sessionID string, cp *review.Checkpoint) error {
	state, err := cp.MarshalState()
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint state: %w", err)
	}
	blob := st.enc.EncodeAll(state, nil)

	return st.db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO checkpoints (session_id, id, round, hash, taken_at, snapshot)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(session_id, id) DO NOTHING
		`, sessionID, cp.ID, cp.Round, cp.Hash, cp.TakenAt.Format(time.RFC3339Nano), blob)
		return err
	})
}

// TruncateAfter removes rounds and checkpoints recorded after the given
// round, as one transaction
func (st *SessionStore) TruncateAfter(sessionID string, round int) error {
	return st.db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM rounds WHERE session_id = ? AND number > ?", sessionID, round); err != nil {
			return err
		}
		_, err := tx.Exec("DELETE FROM checkpoints WHERE session_id = ? AND round > ?", sessionID, round)
		return err
	})
}

// DeleteSession removes the session and all dependent rows
func (st *SessionStore) DeleteSession(sessionID string) error {
	return st.db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec("DELETE FROM sessions WHERE id = ?", sessionID)
		return err
	})
}

// LoadSession reassembles a persisted session and its checkpoints.
// An unknown id returns (nil, nil, nil).
func (st *SessionStore) LoadSession(sessionID string) (*review.Session, []*review.Checkpoint, error) {
	var headJSON string
	err := st.db.QueryRow("SELECT data FROM sessions WHERE id = ?", sessionID).Scan(&headJSON)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var s review.Session
	if err := json.Unmarshal([]byte(headJSON), &s); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	s.Issues = make(map[string]*review.Issue)

	rounds, err := st.loadRounds(sessionID)
	if err != nil {
		return nil, nil, err
	}
	s.Rounds = rounds

	if err := st.loadIssues(sessionID, s.Issues); err != nil {
		return nil, nil, err
	}

	checkpoints, err := st.loadCheckpoints(sessionID)
	if err != nil {
		return nil, nil, err
	}
	return &s, checkpoints, nil
}

func (st *SessionStore) loadRounds(sessionID string) ([]review.Round, error) {
	rows, err := st.db.Query("SELECT data FROM rounds WHERE session_id = ? ORDER BY number", sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []review.Round
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r review.Round
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal round: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (st *SessionStore) loadIssues(sessionID string, into map[string]*review.Issue) error {
	rows, err := st.db.Query("SELECT data FROM issues WHERE session_id = ?", sessionID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return err
		}
		var issue review.Issue
		if err := json.Unmarshal([]byte(data), &issue); err != nil {
			return fmt.Errorf("failed to unmarshal issue: %w", err)
		}
		into[issue.ID] = &issue
	}
	return rows.Err()
}

func (st *SessionStore) loadCheckpoints(sessionID string) ([]*review.Checkpoint, error) {
	rows, err := st.db.Query(`
		SELECT id, round, hash, taken_at, snapshot
		FROM checkpoints WHERE session_id = ? ORDER BY round
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*review.Checkpoint
	for rows.Next() {
		var (
			cp      review.Checkpoint
			takenAt string
			blob    []byte
		)
		if err := rows.Scan(&cp.ID, &cp.Round, &cp.Hash, &takenAt, &blob); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, takenAt); err == nil {
			cp.TakenAt = ts
		}
		state, err := st.dec.DecodeAll(blob, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress checkpoint: %w", err)
		}
		if err := cp.UnmarshalState(state); err != nil {
			return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
		}
		out = append(out, &cp)
	}
	return out, rows.Err()
}

func upsertHead(tx *sql.Tx, s *review.Session) error {
	data, err := json.Marshal(sessionHead{Session: s})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO sessions (id, data, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, s.ID, string(data))
	return err
}

func upsertIssue(tx *sql.Tx, sessionID string, issue *review.Issue) error {
	data, err := json.Marshal(issue)
	if err != nil {
		return fmt.Errorf("failed to marshal issue: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO issues (session_id, id, data) VALUES (?, ?, ?)
		ON CONFLICT(session_id, id) DO UPDATE SET data = excluded.data
	`, sessionID, issue.ID, string(data))
	return err
}
