package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/gooracle/pkg/config"
	"github.com/ccollicutt/gooracle/pkg/oracle"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
	WorkDir string
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand(g *GlobalOptions) *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose [config-file]",
		Short: "Diagnose common setup issues",
		Long: `Diagnose common setup issues.

This command checks everything a query depends on:
- Config file syntax and structure
- Oracle tool discovery
- Work directory and Go module
- Analysis scope
- Mode definitions and link template

Example:
  gooracle diagnose
  gooracle diagnose -v .gooracle.yaml  # verbose output`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := g.ConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runDiagnose(ctx, cmd.OutOrStdout(), path, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")
	cmd.Flags().StringVarP(&opts.WorkDir, "work-dir", "C", "", "Work directory to check")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, configPath string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	// 1. Find the config file
	configPath, result := checkConfigExists(configPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 2. Parse it (or load defaults)
	cfg, result := checkConfigParseable(ctx, configPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 3. Locate the oracle
	results = append(results, checkOracleTool(cfg, os.Getenv))

	// 4. Work directory
	dir := opts.WorkDir
	if dir == "" {
		dir = cfg.Oracle.WorkDir
	}
	results = append(results, checkWorkDir(dir))

	// 5. Scope
	results = append(results, checkScope(cfg))

	// 6. Modes and output
	results = append(results, checkModes(cfg, opts)...)
	results = append(results, checkOutput(cfg, opts))

	printDiagnostics(w, results, opts)
	return nil
}

// checkConfigExists reports on the config file and returns the path to load,
// empty when defaults are in effect.
func checkConfigExists(path string) (string, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config File",
	}

	if path == "" {
		for _, candidate := range config.SearchPaths() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			result.Status = "ok"
			result.Message = "No config file found, using defaults"
			result.Details = append([]string{"Searched:"}, config.SearchPaths()...)
			return "", result
		}
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{
			"Check the file path is correct",
			fmt.Sprintf("Omit the path to use %s or the defaults", config.LocalFileName),
		}
		return path, result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return path, result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return path, result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return path, result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config Syntax",
	}

	cfg, err := config.Find(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		return nil, result
	}

	result.Status = "ok"
	if path == "" {
		result.Message = "Defaults and environment parsed successfully"
	} else {
		result.Message = "Config file parsed successfully"
	}
	result.Details = []string{
		fmt.Sprintf("Output: %s", cfg.Output.Format),
		fmt.Sprintf("Modes defined: %d", len(cfg.Modes)),
	}
	return cfg, result
}

func checkOracleTool(cfg *config.Config, getenv oracle.Env) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Oracle Tool",
	}

	path, err := oracle.LocateTool(cfg.Oracle.Path, getenv)
	if err != nil {
		result.Status = "error"
		result.Message = err.Error()
		result.Suggests = []string{
			"Set oracle.path in the config file, GOORACLE_PATH, or pass --oracle",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s", path)
	return result
}

func checkWorkDir(dir string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Work Directory",
	}

	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			result.Status = "error"
			result.Message = fmt.Sprintf("Cannot determine current directory: %v", err)
			return result
		}
		dir = wd
	}

	info, err := os.Stat(dir)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access %s: %v", dir, err)
		result.Suggests = []string{"Set oracle.work_dir or pass --work-dir"}
		return result
	}
	if !info.IsDir() {
		result.Status = "error"
		result.Message = fmt.Sprintf("%s is not a directory", dir)
		return result
	}

	if mod := findGoMod(dir); mod != "" {
		result.Status = "ok"
		result.Message = dir
		result.Details = []string{fmt.Sprintf("Go module: %s", mod)}
		return result
	}

	result.Status = "warning"
	result.Message = fmt.Sprintf("%s is not inside a Go module", dir)
	result.Suggests = []string{"Run gooracle from your module root or set oracle.work_dir"}
	return result
}

// findGoMod returns the go.mod governing dir, or "" if there is none.
func findGoMod(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func checkScope(cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Scope",
	}

	if len(cfg.Oracle.Scope) == 0 {
		result.Status = "warning"
		result.Message = "No default scope configured"
		result.Suggests = []string{
			"Pointer analysis modes (callers, callees, pointsto, peers, ...) need a scope",
			"Set oracle.scope or GOORACLE_SCOPE, or pass packages after the position",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("%d package pattern(s)", len(cfg.Oracle.Scope))
	result.Details = cfg.Oracle.Scope
	return result
}

func checkModes(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	modes, err := cfg.ModeSet()
	if err != nil {
		return append(results, DiagnosticResult{
			Check:   "Modes",
			Status:  "error",
			Message: err.Error(),
		})
	}

	if len(cfg.Modes) == 0 {
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Modes",
				Status:  "ok",
				Message: fmt.Sprintf("Using the %d built-in modes", modes.Len()),
			})
		}
		return results
	}

	for _, mc := range cfg.Modes {
		m, _ := modes.Lookup(mc.Name)
		result := DiagnosticResult{
			Check:   fmt.Sprintf("Mode: %s", mc.Name),
			Status:  "ok",
			Message: fmt.Sprintf("Runs: %s", m.Subcommand()),
		}

		if oracle.IsBuiltin(mc.Name) {
			result.Details = append(result.Details, "Overrides a built-in mode")
		} else if !oracle.IsBuiltin(m.Subcommand()) {
			result.Status = "warning"
			result.Message = fmt.Sprintf("Runs %q, which is not a known oracle mode", m.Subcommand())
			result.Suggests = []string{"Check that your oracle build supports this subcommand"}
		}
		if !m.Annotate {
			result.Details = append(result.Details, "Output is not annotated")
		}
		if opts.Verbose && len(m.Args) > 0 {
			result.Details = append(result.Details, fmt.Sprintf("Args: %s", strings.Join(m.Args, " ")))
		}

		results = append(results, result)
	}

	return results
}

func checkOutput(cfg *config.Config, opts *DiagnoseOptions) DiagnosticResult {
	result := DiagnosticResult{
		Check:   "Output",
		Status:  "ok",
		Message: fmt.Sprintf("Format: %s, links: %s", cfg.Output.Format, cfg.Output.Links),
	}
	if opts.Verbose {
		result.Details = []string{fmt.Sprintf("Link template: %s", cfg.Output.LinkTemplate)}
	}
	if cfg.Output.Links == config.LinksAlways && cfg.Output.Format == config.OutputJSON {
		result.Status = "warning"
		result.Message = "links: always has no effect on JSON output"
	}
	return result
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== gooracle Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nFix the errors above before running queries.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nSetup is usable but has warnings.")
	} else {
		fmt.Fprintln(w, "\nSetup looks good!")
	}
}
