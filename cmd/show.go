package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"mendc.dev/pkg/mendc/internal/cast"
	"mendc.dev/pkg/mendc/internal/domain"
	m "mendc.dev/pkg/mendc/internal/model"
)

var showSourceFlag bool

// showCmd represents the show command.
var showCmd = newShowCmd()

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show STEM",
		Short: "List the numbered statements of a stem",
		Long: `Load a stem and print its statement index: one row per statement with
its sid, file and statement form. With --source the reconstructed
baseline source is printed instead.

` + stemHelp,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, m.Stem(args[0]))
		},
	}

	cmd.Flags().BoolVar(&showSourceFlag, "source", false, "print the baseline source instead of the statement table")

	return cmd
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, stem m.Stem) error {
	files, err := stemAdapter.LoadBank(stem)
	if err != nil {
		return err
	}

	bank, err := domain.NewCodeBank(files)
	if err != nil {
		return err
	}

	if showSourceFlag {
		printer := cast.NewPrinter()

		for _, name := range bank.Names() {
			file, _ := bank.File(name)

			source, err := printer.Print(file, nil)
			if err != nil {
				return err
			}

			cmd.Print(source)
		}

		return nil
	}

	index, err := domain.BuildStatementIndex(bank)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"SID", "FILE", "STATEMENT"})
	table.SetAutoWrapText(false)

	for sid := 1; sid <= index.Count(); sid++ {
		file, kind, err := index.GetStmt(m.Sid(sid))
		if err != nil {
			return err
		}

		table.Append([]string{fmt.Sprintf("%d", sid), file, cast.Summary(kind)})
	}

	table.Render()
	cmd.Printf("%d statements\n", index.Count())

	return nil
}
