package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"mendc.dev/pkg/mendc/internal/domain"
	m "mendc.dev/pkg/mendc/internal/model"
)

var extractStemFlag string

// extractCmd represents the extract command.
var extractCmd = newExtractCmd()

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract FILE.c [FILE.c...]",
		Short: "Parse C sources into a repair stem",
		Long: `Parse the given C source files, number their statements and write the
stem files (.ast, .ht and a uniform .path covering every statement) that
'mendc repair' starts from.

` + stemHelp,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stem := extractStemFlag
			if stem == "" {
				stem = strings.TrimSuffix(args[0], ".c")
			}

			configureLogger(m.Stem(stem).DebugLog(), verboseFlag)

			return newWorkflow(cmd).Extract(cmd.Context(), domain.ExtractArgs{
				Sources: parsePaths(args),
				Stem:    m.Stem(stem),
			})
		},
	}

	cmd.Flags().StringVarP(&extractStemFlag, "stem", "s", "", "output stem (default: first source without .c)")

	return cmd
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
