package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	m "mendc.dev/pkg/mendc/internal/model"
	"mendc.dev/pkg/mendc/pkg"
)

var viewEvalsFlag bool

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view STEM",
		Short: "Inspect the results of a finished repair run",
		Long: `Print the run summary of a finished repair run and, when a repair was
found, the unified diff between the baseline and the best variant.
With --evals the per-evaluation journal is listed as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, m.Stem(args[0]))
		},
	}

	cmd.Flags().BoolVar(&viewEvalsFlag, "evals", false, "list every recorded evaluation")

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, stem m.Stem) error {
	data, err := os.ReadFile(stem.Report())
	if err != nil {
		return fmt.Errorf("no run summary for stem %s (did the repair run finish?): %w", stem, err)
	}

	var summary m.RunSummary
	if err := yaml.Unmarshal(data, &summary); err != nil {
		return fmt.Errorf("failed to parse run summary: %w", err)
	}

	printSummary(cmd, summary)

	if viewEvalsFlag {
		if err := printEvals(cmd, stem); err != nil {
			return err
		}
	}

	if !summary.RepairFound {
		return nil
	}

	return printRepairDiff(cmd, stem)
}

func printSummary(cmd *cobra.Command, summary m.RunSummary) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"", ""})
	table.SetAutoWrapText(false)

	table.Append([]string{"stem", summary.Stem})
	table.Append([]string{"seed", fmt.Sprintf("%d", summary.Seed)})
	table.Append([]string{"generations", fmt.Sprintf("%d", summary.Generations)})
	table.Append([]string{"evaluations", fmt.Sprintf("%d", summary.Evaluations)})
	table.Append([]string{"cache hits", fmt.Sprintf("%d", summary.CacheHits)})
	table.Append([]string{"compile failures", fmt.Sprintf("%d", summary.CompileFailures)})
	table.Append([]string{"repair found", fmt.Sprintf("%t", summary.RepairFound)})

	if summary.RepairFound {
		table.Append([]string{"best fitness", fmt.Sprintf("%.1f", summary.BestFitness)})
		table.Append([]string{"best diff size", fmt.Sprintf("%d", summary.BestDiffSize)})
		table.Append([]string{"first solution", summary.FirstSolution.String()})
	}

	table.Append([]string{"elapsed", summary.Elapsed.String()})
	table.Render()
}

func printEvals(cmd *cobra.Command, stem m.Stem) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"SERIAL", "FITNESS", "DIFF", "CACHED", "COMPILED"})

	err := pkg.RangeSpool(stem.Evals(), func(_ uint64, rec m.EvalRecord) error {
		table.Append([]string{
			fmt.Sprintf("%05d", rec.Serial),
			fmt.Sprintf("%.1f", rec.Fitness),
			fmt.Sprintf("%d", rec.DiffSize),
			fmt.Sprintf("%t", rec.Cached),
			fmt.Sprintf("%t", rec.Compiled),
		})

		return nil
	})
	if err != nil {
		return err
	}

	table.Render()

	return nil
}

func printRepairDiff(cmd *cobra.Command, stem m.Stem) error {
	baseline, err := os.ReadFile(stem.Baseline())
	if err != nil {
		return fmt.Errorf("failed to read baseline: %w", err)
	}

	best, err := os.ReadFile(stem.Best())
	if err != nil {
		return fmt.Errorf("failed to read best variant: %w", err)
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(baseline)),
		B:        difflib.SplitLines(string(best)),
		FromFile: stem.Baseline(),
		ToFile:   stem.Best(),
		Context:  3,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Errorf("failed to diff repair: %w", err)
	}

	cmd.Print(text)

	return nil
}
