package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/simquery/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update    bool   // rewrite golden snapshots
	Filter    string // glob on the scenario file name, without extension
	GoldenDir string // snapshot directory; <scenario dir>/golden when empty
}

// ScenarioReport is the outcome of one scenario file.
type ScenarioReport struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestReport is the JSON payload of the test command.
type TestReport struct {
	Scenarios []ScenarioReport `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

func (r *TestReport) add(s ScenarioReport) {
	r.Scenarios = append(r.Scenarios, s)
	r.Total++
	if s.Pass {
		r.Passed++
	} else {
		r.Failed++
	}
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario-file-or-dir>...",
		Short: "Run query scenarios",
		Long: `Run YAML query scenarios: each names a world and the ids (or error
kind) every query must produce. Directories are searched recursively for
.yaml and .yml files.

When a golden file exists for a scenario its snapshot must match as well.
--update rewrites golden files from the current results.

Exit codes:
  0 - All scenarios passed
  1 - A scenario failed
  2 - Command error (missing path, bad filter)

Examples:
  simquery test ./scenarios
  simquery test ./scenarios --filter "mech*"
  simquery test ./scenarios/chain.yaml --update
  simquery test ./scenarios --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden files from current results")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose file name matches this glob")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden-dir", "", "directory of golden files (default <scenario dir>/golden)")

	return cmd
}

func runTests(opts *TestOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	var files []string
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			return NewExitError(ExitCommandError, fmt.Sprintf("scenario path not found: %s", p))
		}
		found, err := findScenarioFiles(p, opts.Filter)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to find scenarios", err)
		}
		files = append(files, found...)
	}

	report := TestReport{Scenarios: make([]ScenarioReport, 0, len(files))}
	if len(files) == 0 && opts.Format != "json" {
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	r := scenarioRunner{opts: opts, out: formatter, logger: opts.logger()}
	for _, file := range files {
		s := r.run(file)
		r.print(s)
		report.add(s)
	}

	if opts.Format == "json" {
		return writeTestReportJSON(formatter, report)
	}
	return writeTestReportText(formatter, report)
}

// findScenarioFiles returns path itself if it is a file, otherwise the
// sorted YAML files below it. golden directories are skipped.
func findScenarioFiles(path string, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path && d.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			ok, err := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext))
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !ok {
				return nil
			}
		}
		files = append(files, p)
		return nil
	})
	slices.Sort(files)
	return files, err
}

// scenarioRunner runs scenario files and compares their snapshots.
type scenarioRunner struct {
	opts   *TestOptions
	out    *OutputFormatter
	logger *zap.Logger
}

func (r scenarioRunner) run(file string) ScenarioReport {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return failed(filepath.Base(file), fmt.Sprintf("failed to load scenario: %v", err))
	}

	result, err := harness.Run(scenario, harness.WithLogger(r.logger.With(zap.String("file", file))))
	if err != nil {
		return failed(scenario.Name, fmt.Sprintf("execution failed: %v", err))
	}
	r.out.VerboseLog("%s: %d queries", scenario.Name, len(result.Queries))

	snapshot, err := harness.MarshalSnapshot(scenario.Name, result)
	if err != nil {
		return failed(scenario.Name, fmt.Sprintf("failed to marshal snapshot: %v", err))
	}

	errs := slices.Clone(result.Errors)
	goldenPath := goldenFilePath(r.opts.GoldenDir, file, scenario.Name)
	if r.opts.Update {
		if err := writeGolden(goldenPath, snapshot); err != nil {
			errs = append(errs, err.Error())
		}
	} else if err := compareGolden(goldenPath, snapshot); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return failed(scenario.Name, errs...)
	}
	return ScenarioReport{Name: scenario.Name, Pass: true}
}

// print writes one scenario line in text mode.
func (r scenarioRunner) print(s ScenarioReport) {
	if r.opts.Format == "json" {
		return
	}
	w := r.out.Writer
	if !s.Pass {
		fmt.Fprintf(w, "✗ %s\n", s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		return
	}
	if r.opts.Update {
		fmt.Fprintf(w, "✓ %s (golden updated)\n", s.Name)
		return
	}
	fmt.Fprintf(w, "✓ %s\n", s.Name)
}

func failed(name string, errs ...string) ScenarioReport {
	return ScenarioReport{Name: name, Errors: errs}
}

func writeGolden(path string, snapshot []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, snapshot, 0o644); err != nil {
		return fmt.Errorf("failed to update golden file: %w", err)
	}
	return nil
}

// compareGolden checks snapshot against the golden file at path. A missing
// golden file is not an error.
func compareGolden(path string, snapshot []byte) error {
	golden, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("failed to read golden file: %w", err)
	case !bytes.Equal(golden, snapshot):
		return errors.New("results do not match golden file (run with --update to regenerate)")
	}
	return nil
}

// goldenFilePath returns where the snapshot of scenario name lives.
func goldenFilePath(goldenDir, scenarioFile, name string) string {
	if goldenDir == "" {
		goldenDir = filepath.Join(filepath.Dir(scenarioFile), "golden")
	}
	return filepath.Join(goldenDir, name+".golden")
}

func scenarioFailure(report TestReport) error {
	if report.Failed == 0 {
		return nil
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", report.Failed))
}

func writeTestReportJSON(f *OutputFormatter, report TestReport) error {
	resp := CLIResponse{Status: "ok", Data: report}
	failure := scenarioFailure(report)
	if failure != nil {
		resp.Status = "error"
		resp.Error = &CLIError{Code: ErrCodeTestFailed, Message: failure.Error()}
	}
	if err := f.encode(resp); err != nil {
		return err
	}
	return failure
}

func writeTestReportText(f *OutputFormatter, report TestReport) error {
	fmt.Fprintf(f.Writer, "\nTest Summary: %d passed, %d failed, %d total\n", report.Passed, report.Failed, report.Total)
	if err := scenarioFailure(report); err != nil {
		return err
	}
	fmt.Fprintln(f.Writer, "✓ All scenarios passed")
	return nil
}
