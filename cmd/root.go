// Package cmd provides the root command and CLI setup for mendc.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"mendc.dev/pkg/mendc/internal/adapter"
	"mendc.dev/pkg/mendc/internal/controller"
	"mendc.dev/pkg/mendc/internal/domain"
	m "mendc.dev/pkg/mendc/internal/model"
)

var stemAdapter adapter.StemAdapter
var workdirAdapter adapter.WorkdirAdapter
var compilerAdapter adapter.CompilerAdapter
var harnessAdapter adapter.HarnessAdapter
var diffAdapter adapter.DiffAdapter
var cFileAdapter adapter.CFileAdapter

// tuiFlag switches the repair command to the live TUI.
var tuiFlag bool

// verboseFlag raises the debug log to slog debug level.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	stemAdapter = adapter.NewLocalStemAdapter()
	workdirAdapter = adapter.NewLocalWorkdirAdapter()
	compilerAdapter = adapter.NewLocalCompilerAdapter()
	harnessAdapter = adapter.NewLocalHarnessAdapter()
	diffAdapter = adapter.NewLocalDiffAdapter()
	cFileAdapter = adapter.NewTreeSitterCAdapter()
}

const stemHelp = `A stem F names the input files of one repair problem:
  F.ast       serialised original AST (written by 'mendc extract')
  F.ht        serialised statement index
  F.path      fault-localised execution path, one sid per line
  F.goodpath  optional sids on the passing execution path`

const rootLongDescription = `mendc repairs a faulty C program by genetic search: candidate patches are
expressed as edit histories over the original AST, rendered to source,
compiled, and scored against external good/bad test harnesses.

` + stemHelp

const repairLongDescription = `Run the genetic search for the given stem (default settings: 10
generations, population 40).

` + stemHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mendc",
		Short: "Automatic C program repair by genetic search",
		Long:  rootLongDescription,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&tuiFlag, tuiFlagName, false, "show live progress in a terminal UI")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "log at debug level")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// newUI picks the controller for the current invocation.
func newUI(cmd *cobra.Command) controller.UI {
	if tuiFlag && controller.IsTTY(os.Stdout) {
		return controller.NewTUI()
	}

	return controller.NewSimpleUI(cmd, controller.IsTTY(os.Stdout))
}

// newWorkflow wires the use-case layer for a command invocation.
func newWorkflow(cmd *cobra.Command) domain.Workflow {
	return domain.NewWorkflow(
		stemAdapter,
		workdirAdapter,
		compilerAdapter,
		harnessAdapter,
		diffAdapter,
		cFileAdapter,
		newUI(cmd),
	)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
