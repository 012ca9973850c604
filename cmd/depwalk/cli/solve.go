// cmd/depwalk/cli/solve.go
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evanlloyd/depwalk/core/graph"
	"github.com/evanlloyd/depwalk/core/markers"
	"github.com/evanlloyd/depwalk/provider/httpprovider"
	"github.com/evanlloyd/depwalk/solve"
)

// parseMarkerOrDefault parses raw as an environment marker, treating an
// empty string as the always-true marker.
func parseMarkerOrDefault(raw string) (markers.Marker, error) {
	return markers.Parse(raw)
}

// rootManifest is the minimal project-file shape the solve command
// reads: a root package name/version plus its direct dependencies.
// Reading the project's actual TOML manifest is out of this repo's
// scope (the project-file reader is an external collaborator), so this
// command takes the already-parsed shape as JSON instead.
type rootManifest struct {
	Name     string             `json:"name"`
	Version  string             `json:"version"`
	Requires []manifestRequires `json:"requires"`
}

type manifestRequires struct {
	Target     string   `json:"target"`
	Constraint string   `json:"constraint"`
	Marker     string   `json:"marker"`
	Groups     []string `json:"groups"`
	Optional   bool     `json:"optional"`
}

var solveCmd = &cobra.Command{
	Use:   "solve [manifest.json]",
	Short: "Resolve a project's transitive dependency closure",
	Long: `solve reads a project manifest and a package feed, resolves the full
transitive dependency closure, and prints each package's depth, groups, and
per-group environment markers.`,
	Args: cobra.ExactArgs(1),
	RunE: runSolve,
}

var (
	solveFeedURL          string
	solvePythonConstraint string
	solveJSON             bool
)

func init() {
	solveCmd.Flags().StringVar(&solveFeedURL, "feed", "", "base URL of the package feed to resolve against")
	solveCmd.Flags().StringVar(&solvePythonConstraint, "python", ">=3.8,<4.0", "project interpreter constraint markers are reduced against")
	solveCmd.Flags().BoolVar(&solveJSON, "json", false, "emit machine-readable JSON instead of a table")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	var manifest rootManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}
	if solveFeedURL == "" {
		return fmt.Errorf("--feed is required")
	}

	root, err := manifestToPackage(manifest)
	if err != nil {
		return err
	}

	provider, err := httpprovider.New(httpprovider.Config{
		BaseURL:          solveFeedURL,
		PythonConstraint: solvePythonConstraint,
	})
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}

	solver := solve.NewSolver(nil)
	txn, err := solver.Solve(context.Background(), root, provider)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}

	if solveJSON {
		return printSolveJSON(txn)
	}
	printSolveTable(txn)
	return nil
}

func manifestToPackage(m rootManifest) (*graph.Package, error) {
	deps := make([]graph.Dependency, 0, len(m.Requires))
	for _, r := range m.Requires {
		groups := r.Groups
		if len(groups) == 0 {
			groups = []string{"main"}
		}
		mk, err := parseMarkerOrDefault(r.Marker)
		if err != nil {
			return nil, fmt.Errorf("dependency on %s: %w", r.Target, err)
		}
		deps = append(deps, graph.Dependency{
			TargetName: r.Target,
			Constraint: r.Constraint,
			Marker:     mk,
			Groups:     groups,
			Optional:   r.Optional,
		})
	}
	return &graph.Package{
		ID:       graph.PackageID{Name: m.Name, Version: m.Version},
		Requires: deps,
	}, nil
}

func printSolveTable(txn *solve.Transaction) {
	Console.Println(fmt.Sprintf("Resolved %d package(s) for %s %s:", len(txn.Solved), txn.Root.ID.Name, txn.Root.ID.Version))
	for _, pkg := range txn.Solved {
		info, _ := txn.Info(pkg.ID.Name, pkg.ID.Version)
		if info == nil {
			continue
		}
		Console.Println(fmt.Sprintf("  %s %s  depth=%d groups=%v", pkg.ID.Name, pkg.ID.Version, info.Depth, info.Groups))
		for _, group := range info.Groups {
			Console.Println(fmt.Sprintf("    %s: %s", group, markerDisplay(info.Markers[group])))
		}
	}
}

func markerDisplay(m interface{ String() string }) string {
	s := m.String()
	if s == "" {
		return "(always)"
	}
	return s
}

func printSolveJSON(txn *solve.Transaction) error {
	type entry struct {
		Name    string            `json:"name"`
		Version string            `json:"version"`
		Depth   int               `json:"depth"`
		Groups  []string          `json:"groups"`
		Markers map[string]string `json:"markers"`
	}
	out := make([]entry, 0, len(txn.Solved))
	for _, pkg := range txn.Solved {
		info, ok := txn.Info(pkg.ID.Name, pkg.ID.Version)
		if !ok {
			continue
		}
		markerStrings := make(map[string]string, len(info.Markers))
		for g, m := range info.Markers {
			markerStrings[g] = m.String()
		}
		out = append(out, entry{
			Name:    pkg.ID.Name,
			Version: pkg.ID.Version,
			Depth:   info.Depth,
			Groups:  info.Groups,
			Markers: markerStrings,
		})
	}
	enc := json.NewEncoder(Console.Output())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
