package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mendc.dev/pkg/mendc/internal/domain"
	m "mendc.dev/pkg/mendc/internal/model"
)

var repairSeedFlag int64
var repairGccFlag string
var repairLdflagsFlag string
var repairGoodFlag string
var repairBadFlag string
var repairGenFlag int
var repairPopFlag int
var repairMaxFlag float64
var repairMutFlag float64
var repairInsFlag float64
var repairDelFlag float64
var repairSwapFlag float64
var repairBadFactorFlag float64
var repairGoodPathFactorFlag float64
var repairJobsFlag int
var repairLabelsFlag bool

// repairCmd represents the repair command.
var repairCmd = newRepairCmd()

func newRepairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair STEM",
		Short: "Search for a repair of the program named by STEM",
		Long:  repairLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stem := m.Stem(args[0])
			configureLogger(stem.DebugLog(), verboseFlag)

			return newWorkflow(cmd).Repair(cmd.Context(), domain.RepairArgs{
				Stem:           stem,
				Seed:           viper.GetInt64(seedConfigKey),
				Compiler:       viper.GetString(gccConfigKey),
				Ldflags:        viper.GetString(ldflagsConfigKey),
				GoodCommand:    viper.GetString(goodConfigKey),
				BadCommand:     viper.GetString(badConfigKey),
				Generations:    viper.GetInt(genConfigKey),
				Population:     viper.GetInt(popConfigKey),
				MaxFitness:     viper.GetFloat64(maxConfigKey),
				MutationChance: viper.GetFloat64(mutConfigKey),
				InsChance:      viper.GetFloat64(insConfigKey),
				DelChance:      viper.GetFloat64(delConfigKey),
				SwapChance:     viper.GetFloat64(swapConfigKey),
				BadFactor:      viper.GetFloat64(badFactorConfigKey),
				GoodPathFactor: viper.GetFloat64(goodPathFactorConfigKey),
				Jobs:           viper.GetInt(jobsConfigKey),
				Labels:         viper.GetBool(labelsConfigKey),
			})
		},
	}

	configureRepairFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(repairCmd)
}

func configureRepairFlags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&repairSeedFlag, seedFlagName, viper.GetInt64(seedConfigKey), "random seed")
	bindFlagToConfig(cmd.Flags().Lookup(seedFlagName), seedConfigKey)

	cmd.Flags().StringVar(&repairGccFlag, gccFlagName, viper.GetString(gccConfigKey), "compiler command")
	bindFlagToConfig(cmd.Flags().Lookup(gccFlagName), gccConfigKey)

	cmd.Flags().StringVar(&repairLdflagsFlag, ldflagsFlagName, viper.GetString(ldflagsConfigKey), "linker flags appended to the compile line")
	bindFlagToConfig(cmd.Flags().Lookup(ldflagsFlagName), ldflagsConfigKey)

	cmd.Flags().StringVar(&repairGoodFlag, goodFlagName, viper.GetString(goodConfigKey), "positive test harness command")
	bindFlagToConfig(cmd.Flags().Lookup(goodFlagName), goodConfigKey)

	cmd.Flags().StringVar(&repairBadFlag, badFlagName, viper.GetString(badConfigKey), "negative (regression) test harness command")
	bindFlagToConfig(cmd.Flags().Lookup(badFlagName), badConfigKey)

	cmd.Flags().IntVar(&repairGenFlag, genFlagName, viper.GetInt(genConfigKey), "number of generations")
	bindFlagToConfig(cmd.Flags().Lookup(genFlagName), genConfigKey)

	cmd.Flags().IntVar(&repairPopFlag, popFlagName, viper.GetInt(popConfigKey), "population size")
	bindFlagToConfig(cmd.Flags().Lookup(popFlagName), popConfigKey)

	cmd.Flags().Float64Var(&repairMaxFlag, maxFlagName, viper.GetFloat64(maxConfigKey), "fitness at which a candidate counts as a repair")
	bindFlagToConfig(cmd.Flags().Lookup(maxFlagName), maxConfigKey)

	cmd.Flags().Float64Var(&repairMutFlag, mutFlagName, viper.GetFloat64(mutConfigKey), "per-step mutation chance")
	bindFlagToConfig(cmd.Flags().Lookup(mutFlagName), mutConfigKey)

	cmd.Flags().Float64Var(&repairInsFlag, insFlagName, viper.GetFloat64(insConfigKey), "relative weight of append mutations")
	bindFlagToConfig(cmd.Flags().Lookup(insFlagName), insConfigKey)

	cmd.Flags().Float64Var(&repairDelFlag, delFlagName, viper.GetFloat64(delConfigKey), "relative weight of delete mutations")
	bindFlagToConfig(cmd.Flags().Lookup(delFlagName), delConfigKey)

	cmd.Flags().Float64Var(&repairSwapFlag, swapFlagName, viper.GetFloat64(swapConfigKey), "relative weight of swap mutations")
	bindFlagToConfig(cmd.Flags().Lookup(swapFlagName), swapConfigKey)

	cmd.Flags().Float64Var(&repairBadFactorFlag, badFactorFlagName, viper.GetFloat64(badFactorConfigKey), "fitness weight of negative test lines")
	bindFlagToConfig(cmd.Flags().Lookup(badFactorFlagName), badFactorConfigKey)

	cmd.Flags().Float64Var(&repairGoodPathFactorFlag, goodPathFactorFlagName, viper.GetFloat64(goodPathFactorConfigKey), "mutation weight for statements also on the passing path")
	bindFlagToConfig(cmd.Flags().Lookup(goodPathFactorFlagName), goodPathFactorConfigKey)

	cmd.Flags().IntVarP(&repairJobsFlag, jobsFlagName, "j", viper.GetInt(jobsConfigKey), "parallel fitness evaluations")
	bindFlagToConfig(cmd.Flags().Lookup(jobsFlagName), jobsConfigKey)

	cmd.Flags().BoolVar(&repairLabelsFlag, labelsFlagName, viper.GetBool(labelsConfigKey), "label edited statements in emitted source (diagnostics)")
	bindFlagToConfig(cmd.Flags().Lookup(labelsFlagName), labelsConfigKey)
}
