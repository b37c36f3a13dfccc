package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	arcerrors "arc/internal/errors"
	"arc/internal/protocol"
	"arc/internal/review"
	"arc/internal/storage"
)

var (
	specPath     string
	sessionFlag  string
	roleFlag     string
	outputFile   string
	issuesFile   string
	resolveFlags []string
	rollbackTo   int
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Adversarial review sessions",
}

var reviewStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a review session from a spec file",
	RunE:  runReviewStart,
}

var reviewSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit one review round",
	RunE:  runReviewSubmit,
}

var reviewStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session status",
	RunE:  runReviewStatus,
}

var reviewCheckpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Take a manual checkpoint",
	RunE:  runReviewCheckpoint,
}

var reviewRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Roll the session back to an earlier round",
	RunE:  runReviewRollback,
}

var reviewEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End a session and discard its state",
	RunE:  runReviewEnd,
}

func init() {
	reviewStartCmd.Flags().StringVar(&specPath, "spec", "review.yaml", "Review spec file")

	reviewSubmitCmd.Flags().StringVar(&sessionFlag, "session", "", "Session id")
	reviewSubmitCmd.Flags().StringVar(&roleFlag, "role", "", "Submitting role: verifier or critic")
	reviewSubmitCmd.Flags().StringVar(&outputFile, "output-file", "", "Round output text file (default: stdin)")
	reviewSubmitCmd.Flags().StringVar(&issuesFile, "issues", "", "JSON file with raised issues")
	reviewSubmitCmd.Flags().StringSliceVar(&resolveFlags, "resolve", nil, "Issue ids to mark resolved")
	_ = reviewSubmitCmd.MarkFlagRequired("session")
	_ = reviewSubmitCmd.MarkFlagRequired("role")

	for _, c := range []*cobra.Command{reviewStatusCmd, reviewCheckpointCmd, reviewRollbackCmd, reviewEndCmd} {
		c.Flags().StringVar(&sessionFlag, "session", "", "Session id")
		_ = c.MarkFlagRequired("session")
	}
	reviewRollbackCmd.Flags().IntVar(&rollbackTo, "round", 0, "Target round")

	reviewCmd.AddCommand(reviewStartCmd, reviewSubmitCmd, reviewStatusCmd,
		reviewCheckpointCmd, reviewRollbackCmd, reviewEndCmd)
	rootCmd.AddCommand(reviewCmd)
}

// newOrchestrator wires the orchestrator with sqlite persistence when
// storage is enabled. The returned closer is a no-op otherwise.
func newOrchestrator() (*review.Orchestrator, func(), error) {
	cfg, logger, err := loadSetup()
	if err != nil {
		return nil, nil, err
	}
	builder, err := newBuilder(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	closer := func() {}
	var opts []review.Option
	if cfg.Storage.Enabled {
		db, err := storage.Open(filepath.Join(cfg.RepoRoot, cfg.Storage.Path), logger)
		if err != nil {
			return nil, nil, err
		}
		store, err := storage.NewSessionStore(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		opts = append(opts, review.WithStore(store))
		closer = func() { db.Close() }
	}

	return review.NewOrchestrator(cfg, builder, logger, opts...), closer, nil
}

func runReviewStart(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadSetup()
	if err != nil {
		return err
	}
	spec, err := review.LoadSpec(specPath)
	if err != nil {
		return err
	}

	files := spec.Files
	if len(files) == 0 {
		files, err = resolveFiles(nil, cfg)
		if err != nil {
			return err
		}
	}

	orch, closer, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer closer()

	session, err := orch.StartSession(spec, files)
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{
		"sessionId":    session.ID,
		"target":       session.Target,
		"mode":         session.Mode,
		"minRounds":    session.MinRounds,
		"maxRounds":    session.MaxRounds,
		"contextFiles": len(session.ContextFiles),
		"nextRole":     session.NextRole,
	})
}

func runReviewSubmit(cmd *cobra.Command, args []string) error {
	role, err := protocol.ParseRole(roleFlag)
	if err != nil {
		return err
	}

	output, err := readOutput()
	if err != nil {
		return err
	}
	raised, err := readIssues()
	if err != nil {
		return err
	}

	orch, closer, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer closer()

	result, err := orch.SubmitRound(sessionFlag, role, output, raised, resolveFlags)
	if err != nil {
		return err
	}
	if result == nil {
		return arcerrors.New(arcerrors.SessionNotFound, fmt.Sprintf("unknown session %q", sessionFlag))
	}
	return printJSON(result)
}

func readOutput() (string, error) {
	if outputFile == "" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(outputFile)
	if err != nil {
		return "", arcerrors.Wrap(arcerrors.FileNotFound, "cannot read round output", err)
	}
	return string(data), nil
}

func readIssues() ([]review.IssueInput, error) {
	if issuesFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(issuesFile)
	if err != nil {
		return nil, arcerrors.Wrap(arcerrors.FileNotFound, "cannot read issues file", err)
	}
	var issues []review.IssueInput
	if err := json.Unmarshal(data, &issues); err != nil {
		return nil, arcerrors.Wrap(arcerrors.SpecInvalid, "cannot parse issues file", err)
	}
	return issues, nil
}

func runReviewStatus(cmd *cobra.Command, args []string) error {
	orch, closer, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer closer()

	status := orch.Status(sessionFlag)
	if status == nil {
		return arcerrors.New(arcerrors.SessionNotFound, fmt.Sprintf("unknown session %q", sessionFlag))
	}
	return printJSON(status)
}

func runReviewCheckpoint(cmd *cobra.Command, args []string) error {
	orch, closer, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer closer()

	ack, err := orch.Checkpoint(sessionFlag)
	if err != nil {
		return err
	}
	if ack == nil {
		return arcerrors.New(arcerrors.SessionNotFound, fmt.Sprintf("unknown session %q", sessionFlag))
	}
	return printJSON(ack)
}

func runReviewRollback(cmd *cobra.Command, args []string) error {
	orch, closer, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer closer()

	ack, err := orch.Rollback(sessionFlag, rollbackTo)
	if ack == nil && err == nil {
		return arcerrors.New(arcerrors.SessionNotFound, fmt.Sprintf("unknown session %q", sessionFlag))
	}
	if ack != nil {
		_ = printJSON(ack)
	}
	return err
}

func runReviewEnd(cmd *cobra.Command, args []string) error {
	orch, closer, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer closer()

	if !orch.EndSession(sessionFlag) {
		return arcerrors.New(arcerrors.SessionNotFound, fmt.Sprintf("unknown session %q", sessionFlag))
	}
	fmt.Printf("Session %s ended.\n", sessionFlag)
	return nil
}
