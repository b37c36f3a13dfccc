package review

import (
	"io/fs"
	"path/filepath"
	"testing"

	"arc/internal/config"
	"arc/internal/depgraph"
	"arc/internal/extract"
	"arc/internal/logging"
	"arc/internal/protocol"
)

type memReader map[string][]byte

func (m memReader) Read(path string) ([]byte, error) {
	content, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return content, nil
}

const repoRoot = "/repo"

var defaultFiles = map[string]string{
	"src/a.ts": "import { b } from './b';\nexport function run() {}\n",
	"src/b.ts": "export const b = 1;\n",
	"src/c.ts": "export const c = 2;\n",
}

func newTestOrchestrator(files map[string]string, mutate func(*config.Config)) *Orchestrator {
	cfg := config.Default()
	cfg.RepoRoot = repoRoot
	if mutate != nil {
		mutate(cfg)
	}

	reader := make(memReader, len(files))
	for rel, content := range files {
		reader[filepath.Join(repoRoot, filepath.FromSlash(rel))] = []byte(content)
	}

	builder := depgraph.NewBuilder(
		extract.DefaultRegistry(),
		logging.NewNop(),
		depgraph.WithReader(reader),
		depgraph.WithWorkers(2),
	)
	return NewOrchestrator(cfg, builder, logging.NewNop(), WithFileReader(reader))
}

func startSession(t *testing.T, o *Orchestrator, spec *Spec, files ...string) *Session {
	t.Helper()
	if spec == nil {
		spec = &Spec{Target: "demo"}
	}
	if len(files) == 0 {
		files = []string{"src/a.ts", "src/b.ts"}
	}
	s, err := o.StartSession(spec, files)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	return s
}

func submit(t *testing.T, o *Orchestrator, sessionID string, role protocol.Role, output string, raised []IssueInput, resolved []string) *RoundResult {
	t.Helper()
	res, err := o.SubmitRound(sessionID, role, output, raised, resolved)
	if err != nil {
		t.Fatalf("SubmitRound: %v", err)
	}
	if res == nil {
		t.Fatal("SubmitRound returned nil for a known session")
	}
	return res
}

func TestSubmitRoundUnknownSession(t *testing.T) {
	o := newTestOrchestrator(defaultFiles, nil)
	res, err := o.SubmitRound("no-such-session", protocol.RoleVerifier, "x", nil, nil)
	if res != nil || err != nil {
		t.Errorf("unknown session = (%+v, %v), want (nil, nil)", res, err)
	}
}

func TestStrictComplianceRejectsCriticRaising(t *testing.T) {
	o := newTestOrchestrator(defaultFiles, nil)
	s := startSession(t, o, nil)

	// Hand the turn to the critic first
	submit(t, o, s.ID, protocol.RoleVerifier, "opening pass over src/a.ts", nil, nil)

	res := submit(t, o, s.ID, protocol.RoleCritic, "new finding",
		[]IssueInput{{ID: "X-1", Summary: "critic overreach"}}, nil)

	if !res.Rejected {
		t.Fatalf("expected rejection, got %+v", res)
	}
	if !protocol.HasError(res.Violations) {
		t.Errorf("violations = %+v", res.Violations)
	}
	if s.Round != 1 {
		t.Errorf("rejected round advanced state to round %d", s.Round)
	}
	if s.HasIssue("X-1") {
		t.Error("rejected round recorded an issue")
	}
}

func TestIssueLifecycleTransitions(t *testing.T) {
	o := newTestOrchestrator(defaultFiles, nil)
	s := startSession(t, o, nil)

	submit(t, o, s.ID, protocol.RoleVerifier, "leak in src/a.ts:1",
		[]IssueInput{{ID: "LEAK-1", Severity: "high", Summary: "leak", Location: "src/a.ts:1", Evidence: "import { b } from './b';"}}, nil)

	issue := s.Issues["LEAK-1"]
	if issue == nil {
		t.Fatal("issue not recorded")
	}
	if issue.Status() != StatusRaised || issue.RaisedInRound != 1 || issue.RaisedBy != protocol.RoleVerifier {
		t.Errorf("issue = %+v", issue)
	}
	if issue.EvidenceCheck == nil || issue.EvidenceCheck.Confidence != 1.0 {
		t.Errorf("evidence check = %+v", issue.EvidenceCheck)
	}
	if issue.Impact == nil {
		t.Error("impact analysis missing")
	}

	submit(t, o, s.ID, protocol.RoleCritic, "CHALLENGE LEAK-1: cannot reproduce", nil, nil)
	if issue.Status() != StatusChallenged || issue.CriticVerdict != "cannot reproduce" {
		t.Errorf("after challenge: status=%s verdict=%q", issue.Status(), issue.CriticVerdict)
	}

	submit(t, o, s.ID, protocol.RoleVerifier, "reproduced and fixed", nil, []string{"LEAK-1"})
	if issue.Status() != StatusResolved {
		t.Errorf("after resolve: %s", issue.Status())
	}
	if len(issue.Transitions) != 3 {
		t.Errorf("transition log = %+v", issue.Transitions)
	}
}

func TestMergeAndSplitKeepBackReferences(t *testing.T) {
	o := newTestOrchestrator(defaultFiles, nil)
	s := startSession(t, o, nil)

	submit(t, o, s.ID, protocol.RoleVerifier, "two findings in src/a.ts",
		[]IssueInput{
			{ID: "A-1", Summary: "first", Location: "src/a.ts"},
			{ID: "A-2", Summary: "second", Location: "src/a.ts"},
		}, nil)

	submit(t, o, s.ID, protocol.RoleCritic, "MERGE A-2 INTO A-1", nil, nil)
	merged := s.Issues["A-2"]
	if merged.Status() != StatusMerged || merged.MergedInto != "A-1" {
		t.Errorf("merged issue = %+v", merged)
	}

	res := submit(t, o, s.ID, protocol.RoleVerifier, "SPLIT A-1 INTO A-1a, A-1b", nil, nil)
	parent := s.Issues["A-1"]
	if parent.Status() != StatusSplit {
		t.Errorf("parent status = %s", parent.Status())
	}
	if len(parent.SplitInto) != 2 {
		t.Errorf("splitInto = %v", parent.SplitInto)
	}
	for _, id := range []string{"A-1a", "A-1b"} {
		child := s.Issues[id]
		if child == nil || child.SplitFrom != "A-1" || child.Status() != StatusRaised {
			t.Errorf("child %s = %+v", id, child)
		}
	}
	if res.Convergence.IsConverged {
		t.Error("open split children should block convergence")
	}
	// History is never discarded
	if len(merged.Transitions) == 0 || len(parent.Transitions) < 2 {
		t.Error("transition logs were truncated")
	}
}

func TestContextExpansionFromOutput(t *testing.T) {
	o := newTestOrchestrator(defaultFiles, nil)
	s := startSession(t, o, nil, "src/a.ts", "src/b.ts")

	res := submit(t, o, s.ID, protocol.RoleVerifier, "the helper in src/c.ts is also affected", nil, nil)
	if !res.ContextExpanded {
		t.Fatalf("expected context expansion, got %+v", res)
	}
	if len(res.NewFilesDiscovered) != 1 || res.NewFilesDiscovered[0] != "src/c.ts" {
		t.Errorf("new files = %v", res.NewFilesDiscovered)
	}

	med := o.mediators[s.ID]
	if !med.Graph().HasNode("src/c.ts") {
		t.Error("graph was not rebuilt with the discovered file")
	}

	// Mentioning a file that does not exist must not expand anything
	res = submit(t, o, s.ID, protocol.RoleCritic, "what about src/ghost.ts?", nil, nil)
	if res.ContextExpanded {
		t.Errorf("phantom file expanded context: %+v", res)
	}
}

func TestRoundIdempotenceOnResubmittedIssue(t *testing.T) {
	o := newTestOrchestrator(defaultFiles, nil)
	s := startSession(t, o, nil)

	submit(t, o, s.ID, protocol.RoleVerifier, "found it",
		[]IssueInput{{ID: "DUP-1", Summary: "v1", Location: "src/a.ts"}}, nil)
	submit(t, o, s.ID, protocol.RoleCritic, "CHALLENGE DUP-1: needs detail", nil, nil)
	res := submit(t, o, s.ID, protocol.RoleVerifier, "raising again with detail",
		[]IssueInput{{ID: "DUP-1", Summary: "v2 with detail", Location: "src/a.ts"}}, nil)

	if len(s.Issues) != 1 {
		t.Fatalf("issue count = %d, want 1", len(s.Issues))
	}
	issue := s.Issues["DUP-1"]
	if issue.Summary != "v2 with detail" {
		t.Errorf("last write should win: %q", issue.Summary)
	}
	if issue.Status() != StatusRaised {
		t.Errorf("status = %s", issue.Status())
	}
	// Overwrite is audited, not silent
	if len(issue.Transitions) != 3 {
		t.Errorf("transitions = %+v", issue.Transitions)
	}
	if len(s.Rounds[2].NewIssues) != 0 {
		t.Errorf("re-raise counted as new: %v", s.Rounds[2].NewIssues)
	}
	if res.Convergence.IsConverged {
		t.Error("open issue must block convergence")
	}
}

func TestConvergenceNeverBeforeMinRounds(t *testing.T) {
	o := newTestOrchestrator(defaultFiles, func(cfg *config.Config) {
		cfg.Review.MinRounds = 2
		cfg.Review.ConvergenceWindow = 1
	})
	s := startSession(t, o, nil)

	res := submit(t, o, s.ID, protocol.RoleVerifier, "quiet first round", nil, nil)
	if res.Convergence.IsConverged {
		t.Fatal("converged before minRounds")
	}

	res = submit(t, o, s.ID, protocol.RoleCritic, "quiet second round", nil, nil)
	if !res.Convergence.IsConverged {
		t.Fatalf("expected convergence at minRounds, got %+v", res.Convergence)
	}
	if !s.Completed {
		t.Error("session should be completed after convergence")
	}

	// Submits after a true convergence are rejected but keep reporting it
	res = submit(t, o, s.ID, protocol.RoleVerifier, "late round", nil, nil)
	if !res.Rejected {
		t.Fatalf("post-convergence submit = %+v", res)
	}
	if !res.Convergence.IsConverged || !res.Convergence.Completed {
		t.Errorf("post-convergence result lost the verdict: %+v", res.Convergence)
	}
}

func TestForcedStopAtMaxRoundsWithOpenIssues(t *testing.T) {
	o := newTestOrchestrator(defaultFiles, nil)
	s := startSession(t, o, &Spec{Target: "demo", MaxRounds: 2})

	submit(t, o, s.ID, protocol.RoleVerifier, "found it",
		[]IssueInput{{ID: "STUCK-1", Summary: "unresolved forever", Location: "src/a.ts"}}, nil)
	res := submit(t, o, s.ID, protocol.RoleCritic, "CHALLENGE STUCK-1: disputed", nil, nil)

	if res.Convergence.IsConverged {
		t.Error("forced stop must not report true convergence")
	}
	if !res.Convergence.Completed {
		t.Fatalf("expected completion at round cap, got %+v", res.Convergence)
	}

	// A completed session rejects further rounds without advancing
	res = submit(t, o, s.ID, protocol.RoleVerifier, "one more", nil, nil)
	if !res.Rejected || s.Round != 2 {
		t.Errorf("post-completion submit = %+v, round = %d", res, s.Round)
	}
}

// Session with a round cap of 3 and zero issues completes at round 3 in
// every role mode.
func TestZeroIssueCompletionAcrossModes(t *testing.T) {
	for _, mode := range []string{"alternate", "single", "fast-track"} {
		t.Run(mode, func(t *testing.T) {
			o := newTestOrchestrator(defaultFiles, nil)
			s := startSession(t, o, &Spec{Target: "demo", MinRounds: 3, MaxRounds: 3, Mode: mode})

			role := protocol.RoleVerifier
			for round := 1; round <= 3; round++ {
				res := submit(t, o, s.ID, role, "nothing to flag", nil, nil)
				if round < 3 && res.Convergence.Completed {
					t.Fatalf("%s: completed early at round %d", mode, round)
				}
				if round == 3 && !res.Convergence.Completed {
					t.Fatalf("%s: not completed at round 3: %+v", mode, res.Convergence)
				}
				role = res.NextRole
			}
		})
	}
}

// Issue raised in round 1, auto-checkpoint on the round-2 cadence, rollback
// to round 1: round-2 mutations are discarded, the issue survives.
func TestRollbackDiscardsLaterMutations(t *testing.T) {
	o := newTestOrchestrator(defaultFiles, nil)
	s := startSession(t, o, nil)

	submit(t, o, s.ID, protocol.RoleVerifier, "injection at src/a.ts:10",
		[]IssueInput{{ID: "SEC-01", Severity: "critical", Summary: "injection", Location: "src/a.ts:10"}}, nil)
	submit(t, o, s.ID, protocol.RoleCritic, "CHALLENGE SEC-01: sanitized upstream", nil, nil)

	if s.Issues["SEC-01"].Status() != StatusChallenged {
		t.Fatalf("precondition: status = %s", s.Issues["SEC-01"].Status())
	}

	ack, err := o.Rollback(s.ID, 1)
	if err != nil || !ack.Success || ack.RoundNumber != 1 {
		t.Fatalf("rollback = (%+v, %v)", ack, err)
	}

	issue := s.Issues["SEC-01"]
	if issue == nil {
		t.Fatal("rollback lost the round-1 issue")
	}
	if issue.Status() != StatusRaised {
		t.Errorf("status after rollback = %s, want RAISED", issue.Status())
	}
	if issue.CriticVerdict != "" {
		t.Errorf("round-2 verdict survived rollback: %q", issue.CriticVerdict)
	}
	if len(s.Rounds) != 1 || s.Round != 1 {
		t.Errorf("rounds after rollback = %d entries, round = %d", len(s.Rounds), s.Round)
	}
}

func TestRollbackWithoutCheckpointFailsUntouched(t *testing.T) {
	o := newTestOrchestrator(defaultFiles, func(cfg *config.Config) {
		cfg.Review.CheckpointInterval = 100 // no auto checkpoints
	})
	s := startSession(t, o, nil)
	submit(t, o, s.ID, protocol.RoleVerifier, "found it",
		[]IssueInput{{ID: "K-1", Summary: "finding", Location: "src/a.ts"}}, nil)

	// Only the round-0 baseline exists; rolling back to round 0 would lose
	// K-1, and that is the caller's explicit choice. Rolling back to a
	// negative round has no checkpoint at all.
	ack, err := o.Rollback(s.ID, -1)
	if err == nil || ack.Success {
		t.Fatalf("rollback = (%+v, %v), want explicit failure", ack, err)
	}
	if s.Round != 1 || !s.HasIssue("K-1") {
		t.Error("failed rollback mutated the session")
	}
}

func TestCheckpointRollbackRoundTrip(t *testing.T) {
	o := newTestOrchestrator(defaultFiles, nil)
	s := startSession(t, o, nil)

	submit(t, o, s.ID, protocol.RoleVerifier, "state to preserve",
		[]IssueInput{{ID: "RT-1", Summary: "finding", Location: "src/b.ts"}}, nil)

	before := o.Status(s.ID)
	ack, err := o.Checkpoint(s.ID)
	if err != nil || !ack.Success || ack.RoundNumber != 1 {
		t.Fatalf("checkpoint = (%+v, %v)", ack, err)
	}

	ack, err = o.Rollback(s.ID, 1)
	if err != nil || !ack.Success {
		t.Fatalf("rollback = (%+v, %v)", ack, err)
	}

	after := o.Status(s.ID)
	if before.Round != after.Round ||
		before.NextRole != after.NextRole ||
		before.TotalIssues != after.TotalIssues ||
		before.OpenIssues != after.OpenIssues ||
		before.ContextFiles != after.ContextFiles {
		t.Errorf("round trip changed state:\nbefore %+v\nafter  %+v", before, after)
	}
	if got := s.Issues["RT-1"]; got == nil || got.Status() != StatusRaised {
		t.Errorf("issue after round trip = %+v", got)
	}
}

func TestEndSessionEvictsState(t *testing.T) {
	o := newTestOrchestrator(defaultFiles, nil)
	s := startSession(t, o, nil)

	if !o.EndSession(s.ID) {
		t.Fatal("EndSession returned false for a live session")
	}
	if o.Status(s.ID) != nil {
		t.Error("status still available after teardown")
	}
	if res, err := o.SubmitRound(s.ID, protocol.RoleVerifier, "x", nil, nil); res != nil || err != nil {
		t.Errorf("submit after teardown = (%+v, %v)", res, err)
	}
	if o.EndSession(s.ID) {
		t.Error("double teardown reported success")
	}
}

func TestLoopBreakInterventionSurfaces(t *testing.T) {
	o := newTestOrchestrator(defaultFiles, func(cfg *config.Config) {
		cfg.Review.MaxRounds = 20
	})
	s := startSession(t, o, nil)

	submit(t, o, s.ID, protocol.RoleVerifier, "found it",
		[]IssueInput{{ID: "PING-1", Summary: "contested", Location: "src/a.ts"}}, nil)
	submit(t, o, s.ID, protocol.RoleCritic, "CHALLENGE PING-1: weak evidence", nil, nil)
	res := submit(t, o, s.ID, protocol.RoleVerifier, "raising yet again",
		[]IssueInput{{ID: "PING-1", Summary: "contested", Location: "src/a.ts"}}, nil)

	found := false
	for _, iv := range res.Interventions {
		if iv.Type == "LOOP_BREAK" && iv.Subject == "PING-1" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected LOOP_BREAK for PING-1, got %+v", res.Interventions)
	}
}
