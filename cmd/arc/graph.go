package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"arc/internal/depgraph"
	arcerrors "arc/internal/errors"
	"arc/internal/export"
)

var (
	affectedDepth int
	exportFormat  string
	exportOut     string
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Dependency graph queries",
}

var cyclesCmd = &cobra.Command{
	Use:   "cycles [files...]",
	Short: "Detect circular dependencies",
	RunE:  runCycles,
}

var affectedCmd = &cobra.Command{
	Use:   "affected <file> [files...]",
	Short: "List files affected by a change to <file>",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAffected,
}

var pathCmd = &cobra.Command{
	Use:   "path <source> <target> [files...]",
	Short: "Find the shortest dependency path between two files",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runPath,
}

var importanceCmd = &cobra.Command{
	Use:   "importance [files...]",
	Short: "Rank files by dependency centrality",
	RunE:  runImportance,
}

var exportCmd = &cobra.Command{
	Use:   "export [files...]",
	Short: "Export the dependency graph as JSON or a SCIP index",
	RunE:  runExport,
}

func init() {
	affectedCmd.Flags().IntVar(&affectedDepth, "depth", 0, "Max transitive hops (default: config graph.affectedDepth)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format: json or scip")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: stdout)")

	graphCmd.AddCommand(cyclesCmd, affectedCmd, pathCmd, importanceCmd, exportCmd)
	rootCmd.AddCommand(graphCmd)
}

// buildGraph builds the graph over the explicit file args (past skip leading
// positional args) or over a repo walk when no files are given
func buildGraph(args []string, skip int) (*depgraph.Graph, error) {
	cfg, logger, err := loadSetup()
	if err != nil {
		return nil, err
	}
	builder, err := newBuilder(cfg, logger)
	if err != nil {
		return nil, err
	}
	files, err := resolveFiles(args[skip:], cfg)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, arcerrors.New(arcerrors.FileNotFound, "no source files found")
	}
	return builder.Build(files, cfg.RepoRoot), nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runCycles(cmd *cobra.Command, args []string) error {
	g, err := buildGraph(args, 0)
	if err != nil {
		return err
	}
	cycles := depgraph.DetectCycles(g)
	if len(cycles) == 0 {
		fmt.Println("No circular dependencies.")
		return nil
	}
	return printJSON(map[string]interface{}{
		"count":  len(cycles),
		"cycles": cycles,
	})
}

func runAffected(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadSetup()
	if err != nil {
		return err
	}
	depth := affectedDepth
	if depth <= 0 {
		depth = cfg.Graph.AffectedDepth
	}

	g, err := buildGraph(args, 1)
	if err != nil {
		return err
	}
	start := args[0]
	if !g.HasNode(start) {
		return arcerrors.New(arcerrors.FileNotFound, fmt.Sprintf("unknown file %q", start))
	}
	return printJSON(map[string]interface{}{
		"file":     start,
		"depth":    depth,
		"affected": depgraph.AffectedFiles(g, start, depth),
	})
}

func runPath(cmd *cobra.Command, args []string) error {
	g, err := buildGraph(args, 2)
	if err != nil {
		return err
	}
	path := depgraph.FindPath(g, args[0], args[1])
	if path == nil {
		fmt.Printf("No dependency path from %s to %s.\n", args[0], args[1])
		return nil
	}
	return printJSON(map[string]interface{}{
		"source": args[0],
		"target": args[1],
		"path":   path,
		"length": len(path) - 1,
	})
}

func runImportance(cmd *cobra.Command, args []string) error {
	g, err := buildGraph(args, 0)
	if err != nil {
		return err
	}

	type entry struct {
		File  string `json:"file"`
		Score int    `json:"score"`
	}
	entries := make([]entry, 0, len(g.Nodes))
	for _, p := range g.Paths() {
		entries = append(entries, entry{File: p, Score: depgraph.ImportanceScore(g, p)})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	return printJSON(entries)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadSetup()
	if err != nil {
		return err
	}
	g, err := buildGraph(args, 0)
	if err != nil {
		return err
	}

	var data []byte
	switch exportFormat {
	case "json":
		data, err = export.JSON(g)
	case "scip":
		data, err = export.SCIP(g, cfg.RepoRoot)
	default:
		return arcerrors.New(arcerrors.InternalError, fmt.Sprintf("unknown export format %q", exportFormat))
	}
	if err != nil {
		return err
	}

	if exportOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(exportOut, data, 0644)
}
