package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tessera-io/tessera/internal/cli"
	"github.com/tessera-io/tessera/internal/presentation/report"
	"github.com/tessera-io/tessera/internal/presentation/tui"
	"github.com/tessera-io/tessera/internal/runtime"
	"github.com/tessera-io/tessera/pkg/runbook"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the runbook from the beginning",
	Long: `Runs every step of the runbook in order, capturing output and scanning it
for failure patterns. State is persisted after each step, so an interrupted
run can be continued with 'tessera resume'.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRun(cmd, ""); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume <run-id>",
	Short: "Continue an interrupted run from its next step",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRun(cmd, args[0]); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resumeCmd)

	for _, c := range []*cobra.Command{runCmd, resumeCmd} {
		c.Flags().Bool("dry-run", false, "Record command steps as skipped instead of executing them")
		c.Flags().StringArray("var", nil, "Variable override as key=value (repeatable)")
		c.Flags().String("workdir", "", "Directory steps run in (default current directory)")
		c.Flags().Bool("no-report", false, "Skip the markdown summary at the end")
	}
}

func runRun(cmd *cobra.Command, resumeID string) error {
	tui.PrintBanner()
	logger := newLogger(cmd)

	rb, err := loadRunbook(cmd)
	if err != nil {
		return err
	}
	store, closeStore, err := newStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	vars, err := parseVarFlags(cmd)
	if err != nil {
		return err
	}
	workDir, _ := cmd.Flags().GetString("workdir")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	engine, err := runtime.New(rb,
		runtime.WithLogger(logger),
		runtime.WithStore(store),
		runtime.WithWorkDir(workDir),
		runtime.WithDryRun(dryRun),
		runtime.WithVars(vars),
	)
	if err != nil {
		return err
	}

	sc := cli.NewSignalContext(cmd.Context())
	defer sc.Cancel()

	var state *runbook.RunState
	var runErr error
	if resumeID == "" {
		state, runErr = engine.Run(sc)
	} else {
		state, runErr = engine.Resume(sc, resumeID)
	}

	if sig := sc.Signal(); sig != nil && state != nil {
		fmt.Printf("\nInterrupted by %v. Resume with: tessera resume %s\n", sig, state.ID)
	}

	if noReport, _ := cmd.Flags().GetBool("no-report"); !noReport && state != nil {
		render := tui.NewRenderer()
		out, rerr := render(report.Markdown(state))
		if rerr != nil {
			out = report.Markdown(state)
		}
		fmt.Println(out)
	}

	if runErr != nil {
		if runtime.IsRunFailed(runErr) {
			// The report above already tells the story.
			os.Exit(1)
		}
		return runErr
	}
	return nil
}

func parseVarFlags(cmd *cobra.Command) (map[string]string, error) {
	raw, _ := cmd.Flags().GetStringArray("var")
	vars := map[string]string{}
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --var %q, expected key=value", kv)
		}
		vars[k] = v
	}
	return vars, nil
}
