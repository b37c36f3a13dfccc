// Package review owns per-session state and drives the adversarial round
// protocol: round application, issue lifecycle, convergence and
// checkpoint/rollback.
package review

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"arc/internal/config"
	"arc/internal/depgraph"
	arcerrors "arc/internal/errors"
	"arc/internal/evidence"
	"arc/internal/logging"
	"arc/internal/mediator"
	"arc/internal/paths"
	"arc/internal/protocol"
	"arc/internal/textref"
)

// IssueInput is one raised issue as submitted by a role
type IssueInput struct {
	ID       string `json:"id"`
	Category string `json:"category,omitempty"`
	Severity string `json:"severity,omitempty"`
	Summary  string `json:"summary"`
	Location string `json:"location,omitempty"`
	Evidence string `json:"evidence,omitempty"`
}

// RoundResult is returned from every round submission. A rejected round
// leaves session state untouched.
type RoundResult struct {
	SessionID           string                     `json:"sessionId"`
	RoundNumber         int                        `json:"roundNumber"`
	Rejected            bool                       `json:"rejected,omitempty"`
	RejectionReason     string                     `json:"rejectionReason,omitempty"`
	Violations          []protocol.Violation       `json:"violations,omitempty"`
	IssuesRaisedCount   int                        `json:"issuesRaisedCount"`
	IssuesResolvedCount int                        `json:"issuesResolvedCount"`
	ContextExpanded     bool                       `json:"contextExpanded"`
	NewFilesDiscovered  []string                   `json:"newFilesDiscovered,omitempty"`
	Convergence         Convergence                `json:"convergence"`
	NextRole            protocol.Role              `json:"nextRole"`
	Interventions       []mediator.Intervention    `json:"interventions,omitempty"`
	ImpactAnalyses      []*mediator.ImpactAnalysis `json:"impactAnalyses,omitempty"`
}

// SessionStatus is a read-only view for status queries
type SessionStatus struct {
	ID               string        `json:"id"`
	Target           string        `json:"target"`
	Mode             protocol.Mode `json:"mode"`
	Round            int           `json:"round"`
	NextRole         protocol.Role `json:"nextRole"`
	Completed        bool          `json:"completed"`
	CompletionReason string        `json:"completionReason,omitempty"`
	TotalIssues      int           `json:"totalIssues"`
	OpenIssues       int           `json:"openIssues"`
	ContextFiles     int           `json:"contextFiles"`
	CriticalGaps     []string      `json:"criticalGaps,omitempty"`
	Checkpoints      []int         `json:"checkpoints,omitempty"`
}

// Store persists sessions. SaveRound must commit the session head, the
// round and every issue as one batch so partial rounds are never visible.
type Store interface {
	SaveSession(s *Session) error
	SaveRound(s *Session, round *Round) error
	SaveCheckpoint(sessionID string, cp *Checkpoint) error
	TruncateAfter(sessionID string, round int) error
	DeleteSession(sessionID string) error
	// LoadSession returns (nil, nil, nil) for an unknown id
	LoadSession(sessionID string) (*Session, []*Checkpoint, error)
}

// Orchestrator owns all live sessions. Round submission, checkpoint and
// rollback are serialized per session; distinct sessions run concurrently.
type Orchestrator struct {
	cfg       *config.Config
	logger    *logging.Logger
	builder   *depgraph.Builder
	reader    depgraph.FileReader
	refs      *textref.Extractor
	validator *evidence.Validator
	checker   *protocol.Checker
	store     Store

	mu          sync.Mutex
	sessions    map[string]*Session
	mediators   map[string]*mediator.Mediator
	checkpoints map[string][]*Checkpoint
	locks       map[string]*sync.Mutex
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithStore attaches a persistence backend
func WithStore(st Store) Option {
	return func(o *Orchestrator) { o.store = st }
}

// WithFileReader injects the reader used for evidence checks
func WithFileReader(r depgraph.FileReader) Option {
	return func(o *Orchestrator) { o.reader = r }
}

// NewOrchestrator creates an orchestrator with no live sessions
func NewOrchestrator(cfg *config.Config, builder *depgraph.Builder, logger *logging.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	o := &Orchestrator{
		cfg:         cfg,
		logger:      logger,
		builder:     builder,
		reader:      depgraph.OSReader{},
		refs:        textref.New(),
		validator:   evidence.NewValidator(),
		checker:     protocol.NewChecker(),
		sessions:    make(map[string]*Session),
		mediators:   make(map[string]*mediator.Mediator),
		checkpoints: make(map[string][]*Checkpoint),
		locks:       make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// StartSession builds the initial graph over the spec's files and registers
// a new session with a baseline checkpoint at round 0.
func (o *Orchestrator) StartSession(spec *Spec, files []string) (*Session, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	mode := protocol.Mode(o.cfg.Review.Mode)
	if spec.Mode != "" {
		parsed, err := protocol.ParseMode(spec.Mode)
		if err != nil {
			return nil, arcerrors.Wrap(arcerrors.SpecInvalid, "invalid review mode", err)
		}
		mode = parsed
	}

	minRounds := o.cfg.Review.MinRounds
	if spec.MinRounds > 0 {
		minRounds = spec.MinRounds
	}
	maxRounds := o.cfg.Review.MaxRounds
	if spec.MaxRounds > 0 {
		maxRounds = spec.MaxRounds
	}
	if maxRounds < minRounds {
		minRounds = maxRounds
	}

	graph := o.builder.Build(files, o.cfg.RepoRoot)

	s := &Session{
		ID:                uuid.NewString(),
		Target:            spec.Target,
		Requirements:      append([]string(nil), spec.Requirements...),
		Mode:              mode,
		MinRounds:         minRounds,
		MaxRounds:         maxRounds,
		ConvergenceWindow: o.cfg.Review.ConvergenceWindow,
		CreatedAt:         time.Now().UTC(),
		NextRole:          protocol.RoleVerifier,
		ContextFiles:      graph.Paths(),
		Issues:            make(map[string]*Issue),
	}
	med := mediator.New(graph, o.cfg.Mediator, o.logger)
	baseline := takeCheckpoint(s)

	o.mu.Lock()
	o.sessions[s.ID] = s
	o.mediators[s.ID] = med
	o.checkpoints[s.ID] = []*Checkpoint{baseline}
	o.locks[s.ID] = &sync.Mutex{}
	o.mu.Unlock()

	if o.store != nil {
		if err := o.store.SaveSession(s); err != nil {
			return nil, arcerrors.Wrap(arcerrors.StorageFailure, "cannot persist session", err)
		}
		if err := o.store.SaveCheckpoint(s.ID, baseline); err != nil {
			return nil, arcerrors.Wrap(arcerrors.StorageFailure, "cannot persist baseline checkpoint", err)
		}
	}

	o.logger.Info("Session started", map[string]interface{}{
		"session": s.ID,
		"target":  s.Target,
		"files":   len(s.ContextFiles),
		"mode":    string(mode),
	})
	return s, nil
}

// SubmitRound applies one round. An unknown session returns (nil, nil).
// Under strict compliance a round with ERROR violations is rejected and
// state stays untouched.
func (o *Orchestrator) SubmitRound(sessionID string, role protocol.Role, output string, raised []IssueInput, resolved []string) (*RoundResult, error) {
	s, med, lock := o.lookup(sessionID)
	if s == nil {
		return nil, nil
	}
	lock.Lock()
	defer lock.Unlock()

	if s.Completed {
		return &RoundResult{
			SessionID:       s.ID,
			RoundNumber:     s.Round,
			Rejected:        true,
			RejectionReason: "session already completed: " + s.CompletionReason,
			Convergence:     Convergence{IsConverged: s.Converged, Completed: true, Reason: s.CompletionReason},
			NextRole:        s.NextRole,
		}, nil
	}

	violations := o.checker.Check(protocol.Round{
		Role:           role,
		Output:         output,
		IssuesRaised:   len(raised),
		IssuesResolved: len(resolved),
	}, s.NextRole)
	if o.cfg.Review.StrictCompliance && protocol.HasError(violations) {
		o.logger.Warn("Round rejected for role violations", map[string]interface{}{
			"session":    s.ID,
			"role":       string(role),
			"violations": len(violations),
		})
		return &RoundResult{
			SessionID:       s.ID,
			RoundNumber:     s.Round,
			Rejected:        true,
			RejectionReason: "round violates role-separation rules",
			Violations:      violations,
			NextRole:        s.NextRole,
		}, nil
	}

	roundNum := s.Round + 1

	// Snapshot the pre-round state on the checkpoint cadence, so rollback
	// can land just before this round's mutations
	if o.cfg.Review.CheckpointInterval > 0 && roundNum%o.cfg.Review.CheckpointInterval == 0 {
		if err := o.addCheckpoint(s); err != nil {
			return nil, err
		}
	}

	newFiles := o.expandContext(s, med, output)

	raisedIDs, newIDs := o.upsertIssues(s, role, roundNum, raised)
	resolvedIDs := o.applyResolutions(s, role, roundNum, resolved)
	contested, splitNew := o.applyDirectives(s, role, roundNum, output)
	newIDs = append(newIDs, splitNew...)

	interventions := mediator.AnalyzeInterventions(mediator.InterventionInput{
		History:          o.buildHistory(s, roundNum, append(raisedIDs, contested...)),
		NewFiles:         newFiles,
		ContextFileCount: len(s.ContextFiles),
	}, o.cfg.Mediator)

	impacts := o.analyzeImpacts(s, med, newIDs)

	round := Round{
		Number:         roundNum,
		Role:           role,
		Output:         output,
		IssuesRaised:   raisedIDs,
		NewIssues:      newIDs,
		IssuesResolved: resolvedIDs,
		Contested:      contested,
		NewFiles:       newFiles,
		Violations:     violations,
		SubmittedAt:    time.Now().UTC(),
	}
	s.Rounds = append(s.Rounds, round)
	s.Round = roundNum

	conv := evaluateConvergence(s)
	if conv.Completed {
		s.Completed = true
		s.Converged = conv.IsConverged
		s.CompletionReason = conv.Reason
	}
	s.NextRole = protocol.NextRole(role, s.Mode, s.OpenIssueCount())

	if o.store != nil {
		if err := o.store.SaveRound(s, &round); err != nil {
			return nil, arcerrors.Wrap(arcerrors.StorageFailure, "cannot persist round", err)
		}
	}

	o.logger.Info("Round applied", map[string]interface{}{
		"session":   s.ID,
		"round":     roundNum,
		"role":      string(role),
		"raised":    len(raisedIDs),
		"resolved":  len(resolvedIDs),
		"newFiles":  len(newFiles),
		"converged": conv.IsConverged,
	})

	return &RoundResult{
		SessionID:           s.ID,
		RoundNumber:         roundNum,
		Violations:          violations,
		IssuesRaisedCount:   len(raisedIDs),
		IssuesResolvedCount: len(resolvedIDs),
		ContextExpanded:     len(newFiles) > 0,
		NewFilesDiscovered:  newFiles,
		Convergence:         conv,
		NextRole:            s.NextRole,
		Interventions:       interventions,
		ImpactAnalyses:      impacts,
	}, nil
}

// expandContext merges resolvable file references from round output into
// the session context and rebuilds the graph when anything was new
func (o *Orchestrator) expandContext(s *Session, med *mediator.Mediator, output string) []string {
	candidates := o.refs.Extract(output)
	if len(candidates) == 0 {
		return nil
	}

	var discovered []string
	for _, c := range candidates {
		if med.Graph().HasNode(c) {
			continue
		}
		facts, err := o.builder.AnalyzeFile(c, o.cfg.RepoRoot)
		if err == nil && facts != nil {
			discovered = append(discovered, facts.Path)
		}
	}

	added := s.AddContext(discovered)
	if len(added) > 0 {
		med.SetGraph(o.builder.Build(s.ContextFiles, o.cfg.RepoRoot))
	}
	med.Coverage().MarkReferenced(candidates...)
	return added
}

// upsertIssues applies last-write-wins by id: a resubmitted id overwrites
// the issue's fields and the overwrite lands in the transition log, so
// totals never double-count
func (o *Orchestrator) upsertIssues(s *Session, role protocol.Role, round int, raised []IssueInput) (raisedIDs []string, newIDs []string) {
	for _, in := range raised {
		id := in.ID
		if id == "" {
			id = uuid.NewString()
		}
		raisedIDs = append(raisedIDs, id)

		issue, exists := s.Issues[id]
		if exists {
			issue.Category = in.Category
			issue.Severity = in.Severity
			issue.Summary = in.Summary
			issue.Location = in.Location
			issue.Evidence = in.Evidence
			issue.Transition(round, StatusRaised, "re-raised; fields overwritten", role)
		} else {
			issue = &Issue{
				ID:            id,
				Category:      in.Category,
				Severity:      in.Severity,
				Summary:       in.Summary,
				Location:      in.Location,
				Evidence:      in.Evidence,
				RaisedBy:      role,
				RaisedInRound: round,
			}
			issue.Transition(round, StatusRaised, "raised", role)
			s.Issues[id] = issue
			newIDs = append(newIDs, id)
		}
		issue.EvidenceCheck = o.checkEvidence(issue)
	}
	return raisedIDs, newIDs
}

func (o *Orchestrator) applyResolutions(s *Session, role protocol.Role, round int, resolved []string) []string {
	var out []string
	for _, id := range resolved {
		issue, ok := s.Issues[id]
		if !ok || !issue.IsOpen() {
			continue
		}
		issue.Transition(round, StatusResolved, "resolved in round output", role)
		out = append(out, id)
	}
	return out
}

// applyDirectives processes lifecycle directives from the output text.
// Returns the contested ids and any new issues created by splits.
func (o *Orchestrator) applyDirectives(s *Session, role protocol.Role, round int, output string) (contested []string, splitNew []string) {
	for _, d := range parseDirectives(output) {
		issue, ok := s.Issues[d.Issue]
		if !ok {
			continue
		}
		switch d.Kind {
		case directiveChallenge:
			issue.Transition(round, StatusChallenged, d.Reason, role)
			if role == protocol.RoleCritic && d.Reason != "" {
				issue.CriticVerdict = d.Reason
			}
			contested = append(contested, d.Issue)
		case directiveUnresolved:
			issue.Transition(round, StatusUnresolved, d.Reason, role)
			if role == protocol.RoleCritic && d.Reason != "" {
				issue.CriticVerdict = d.Reason
			}
			contested = append(contested, d.Issue)
		case directiveDismiss:
			issue.Transition(round, StatusDismissed, d.Reason, role)
			if role == protocol.RoleCritic && d.Reason != "" {
				issue.CriticVerdict = d.Reason
			}
		case directiveSeverity:
			issue.Severity = d.Severity
			issue.Annotate(round, "severity changed to "+d.Severity, role)
		case directiveMerge:
			if len(d.Into) != 1 || !s.HasIssue(d.Into[0]) || d.Into[0] == d.Issue {
				continue
			}
			issue.MergedInto = d.Into[0]
			issue.Transition(round, StatusMerged, "merged into "+d.Into[0], role)
		case directiveSplit:
			var children []string
			for _, childID := range d.Into {
				if childID == d.Issue || s.HasIssue(childID) {
					continue
				}
				child := &Issue{
					ID:            childID,
					Category:      issue.Category,
					Severity:      issue.Severity,
					Summary:       fmt.Sprintf("split from %s: %s", issue.ID, issue.Summary),
					Location:      issue.Location,
					RaisedBy:      role,
					RaisedInRound: round,
					SplitFrom:     issue.ID,
				}
				child.Transition(round, StatusRaised, "split from "+issue.ID, role)
				s.Issues[childID] = child
				children = append(children, childID)
			}
			if len(children) == 0 {
				continue
			}
			issue.SplitInto = append(issue.SplitInto, children...)
			issue.Transition(round, StatusSplit, "split into "+fmt.Sprint(children), role)
			splitNew = append(splitNew, children...)
		}
	}
	return contested, splitNew
}

// buildHistory assembles per-round issue activity including the in-flight
// round, for intervention analysis
func (o *Orchestrator) buildHistory(s *Session, currentRound int, currentIDs []string) []mediator.RoundActivity {
	past := s.activity()
	history := make([]mediator.RoundActivity, 0, len(past)+1)
	for i, ids := range past {
		history = append(history, mediator.RoundActivity{Round: s.Rounds[i].Number, IssueIDs: ids})
	}
	history = append(history, mediator.RoundActivity{Round: currentRound, IssueIDs: currentIDs})
	return history
}

// analyzeImpacts runs per-issue impact analysis in parallel. Each goroutine
// only reads the graph and writes its own result slot; attachment happens
// single-threaded afterwards.
func (o *Orchestrator) analyzeImpacts(s *Session, med *mediator.Mediator, ids []string) []*mediator.ImpactAnalysis {
	results := make([]*mediator.ImpactAnalysis, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		issue := s.Issues[id]
		if issue == nil || issue.Location == "" {
			continue
		}
		wg.Add(1)
		go func(slot int, issueID string, location string) {
			defer wg.Done()
			results[slot] = med.IssueImpact(issueID, location)
		}(i, id, issue.Location)
	}
	wg.Wait()

	var out []*mediator.ImpactAnalysis
	for i, impact := range results {
		if impact == nil {
			continue
		}
		s.Issues[ids[i]].Impact = impact
		out = append(out, impact)
	}
	return out
}

// checkEvidence annotates an issue's evidence against real file content.
// Unreadable files degrade the confidence; nothing here rejects the issue.
func (o *Orchestrator) checkEvidence(issue *Issue) *evidence.Result {
	if issue.Evidence == "" && issue.Location == "" {
		return nil
	}
	loc := mediator.ParseLocation(issue.Location)
	var content string
	if loc.File != "" {
		if data, err := o.reader.Read(paths.JoinRepo(o.cfg.RepoRoot, loc.File)); err == nil {
			content = string(data)
		}
	}
	res := o.validator.Validate(loc.Line, issue.Evidence, content)
	return &res
}

// Checkpoint snapshots the session at its current round. Unknown session
// returns (nil, nil).
func (o *Orchestrator) Checkpoint(sessionID string) (*Ack, error) {
	s, _, lock := o.lookup(sessionID)
	if s == nil {
		return nil, nil
	}
	lock.Lock()
	defer lock.Unlock()

	if err := o.addCheckpoint(s); err != nil {
		return nil, err
	}
	return &Ack{Success: true, RoundNumber: s.Round}, nil
}

// Rollback restores the latest checkpoint at or before toRound and
// truncates everything after it. All-or-nothing: with no eligible
// checkpoint the session is left untouched and the call fails.
func (o *Orchestrator) Rollback(sessionID string, toRound int) (*Ack, error) {
	s, med, lock := o.lookup(sessionID)
	if s == nil {
		return nil, nil
	}
	lock.Lock()
	defer lock.Unlock()

	target := o.findCheckpoint(sessionID, toRound)
	if target == nil {
		return &Ack{
				Success:     false,
				RoundNumber: s.Round,
				Reason:      fmt.Sprintf("no checkpoint at or before round %d", toRound),
			}, arcerrors.New(arcerrors.CheckpointMissing,
				fmt.Sprintf("no checkpoint at or before round %d", toRound))
	}

	target.restore(s)
	med.SetGraph(o.builder.Build(s.ContextFiles, o.cfg.RepoRoot))
	o.truncateCheckpoints(sessionID, target.Round)

	if o.store != nil {
		if err := o.store.TruncateAfter(sessionID, target.Round); err != nil {
			return nil, arcerrors.Wrap(arcerrors.StorageFailure, "cannot truncate persisted rounds", err)
		}
		if err := o.store.SaveSession(s); err != nil {
			return nil, arcerrors.Wrap(arcerrors.StorageFailure, "cannot persist rolled-back session", err)
		}
	}

	o.logger.Info("Session rolled back", map[string]interface{}{
		"session": sessionID,
		"round":   s.Round,
	})
	return &Ack{Success: true, RoundNumber: s.Round}, nil
}

// Status returns a read-only view of a session, or nil if unknown
func (o *Orchestrator) Status(sessionID string) *SessionStatus {
	s, med, lock := o.lookup(sessionID)
	if s == nil {
		return nil
	}
	lock.Lock()
	defer lock.Unlock()

	o.mu.Lock()
	var rounds []int
	for _, cp := range o.checkpoints[sessionID] {
		rounds = append(rounds, cp.Round)
	}
	o.mu.Unlock()

	return &SessionStatus{
		ID:               s.ID,
		Target:           s.Target,
		Mode:             s.Mode,
		Round:            s.Round,
		NextRole:         s.NextRole,
		Completed:        s.Completed,
		CompletionReason: s.CompletionReason,
		TotalIssues:      len(s.Issues),
		OpenIssues:       s.OpenIssueCount(),
		ContextFiles:     len(s.ContextFiles),
		CriticalGaps:     med.Coverage().CriticalGaps(),
		Checkpoints:      rounds,
	}
}

// Session returns the live session for inspection, or nil if unknown
func (o *Orchestrator) Session(sessionID string) *Session {
	s, _, _ := o.lookup(sessionID)
	return s
}

// EndSession evicts all session state. Returns false for unknown sessions.
func (o *Orchestrator) EndSession(sessionID string) bool {
	o.mu.Lock()
	_, ok := o.sessions[sessionID]
	delete(o.sessions, sessionID)
	delete(o.mediators, sessionID)
	delete(o.checkpoints, sessionID)
	delete(o.locks, sessionID)
	o.mu.Unlock()

	if ok && o.store != nil {
		if err := o.store.DeleteSession(sessionID); err != nil {
			o.logger.Warn("Cannot delete persisted session", map[string]interface{}{
				"session": sessionID,
				"error":   err.Error(),
			})
		}
	}
	return ok
}

func (o *Orchestrator) lookup(sessionID string) (*Session, *mediator.Mediator, *sync.Mutex) {
	o.mu.Lock()
	s := o.sessions[sessionID]
	if s != nil {
		med, lock := o.mediators[sessionID], o.locks[sessionID]
		o.mu.Unlock()
		return s, med, lock
	}
	o.mu.Unlock()

	if o.store == nil {
		return nil, nil, nil
	}
	return o.resume(sessionID)
}

// resume rehydrates a persisted session into memory, rebuilding its graph
// from the stored context. Coverage marks do not survive a restart; they
// are advisory and re-accumulate from subsequent rounds.
func (o *Orchestrator) resume(sessionID string) (*Session, *mediator.Mediator, *sync.Mutex) {
	s, cps, err := o.store.LoadSession(sessionID)
	if err != nil {
		o.logger.Warn("Cannot load persisted session", map[string]interface{}{
			"session": sessionID,
			"error":   err.Error(),
		})
		return nil, nil, nil
	}
	if s == nil {
		return nil, nil, nil
	}
	med := mediator.New(o.builder.Build(s.ContextFiles, o.cfg.RepoRoot), o.cfg.Mediator, o.logger)

	o.mu.Lock()
	defer o.mu.Unlock()
	if existing := o.sessions[sessionID]; existing != nil {
		return existing, o.mediators[sessionID], o.locks[sessionID]
	}
	o.sessions[sessionID] = s
	o.mediators[sessionID] = med
	o.checkpoints[sessionID] = cps
	o.locks[sessionID] = &sync.Mutex{}
	return s, med, o.locks[sessionID]
}

func (o *Orchestrator) addCheckpoint(s *Session) error {
	cp := takeCheckpoint(s)
	o.mu.Lock()
	o.checkpoints[s.ID] = append(o.checkpoints[s.ID], cp)
	o.mu.Unlock()

	if o.store != nil {
		if err := o.store.SaveCheckpoint(s.ID, cp); err != nil {
			return arcerrors.Wrap(arcerrors.StorageFailure, "cannot persist checkpoint", err)
		}
	}
	return nil
}

// findCheckpoint returns the latest checkpoint at or before toRound
func (o *Orchestrator) findCheckpoint(sessionID string, toRound int) *Checkpoint {
	o.mu.Lock()
	defer o.mu.Unlock()

	cps := o.checkpoints[sessionID]
	var best *Checkpoint
	for _, cp := range cps {
		if cp.Round <= toRound && (best == nil || cp.Round > best.Round) {
			best = cp
		}
	}
	return best
}

func (o *Orchestrator) truncateCheckpoints(sessionID string, round int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	kept := o.checkpoints[sessionID][:0]
	for _, cp := range o.checkpoints[sessionID] {
		if cp.Round <= round {
			kept = append(kept, cp)
		}
	}
	o.checkpoints[sessionID] = kept
}
