package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gfbarbieri/coffer/internal/fund/allocation"
	"github.com/gfbarbieri/coffer/internal/fund/scheduling"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List available allocation and scheduling strategies",
	Long:  `Display all registered allocation strategies, proportional weighting methods, and contribution schedulers.`,
	RunE:  runStrategies,
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}

var strategyDescriptions = map[string]string{
	allocation.Sorted:             "fund bills fully in due date order until the balance runs out",
	"none":                        "no up-front allocation; bills are funded by contributions alone",
	allocation.MethodProportional: "weight by amount due",
	allocation.MethodUrgency:      "weight by closeness of the due date",
	allocation.MethodEqual:        "equal share per bill",
	allocation.MethodZero:         "zero initial allocation per bill",
	scheduling.Independent:        "plan each envelope's contributions in isolation",
}

func runStrategies(cmd *cobra.Command, args []string) error {
	printStrategySection("Allocation Strategies:", append(allocation.Names(), "none"))
	fmt.Println()
	printStrategySection("Proportional Methods:", allocation.Methods())
	fmt.Println()
	printStrategySection("Schedulers:", scheduling.Names())
	return nil
}

func printStrategySection(title string, names []string) {
	fmt.Println(title)
	if len(names) == 0 {
		fmt.Println("  (none)")
		return
	}
	maxLen := maxNameLen(names)
	for _, name := range names {
		fmt.Printf("  %-*s  %s\n", maxLen, name, strategyDescriptions[name])
	}
}

// maxNameLen returns the length of the longest name in the slice.
func maxNameLen(names []string) int {
	maxLen := 0
	for _, name := range names {
		if len(name) > maxLen {
			maxLen = len(name)
		}
	}
	return maxLen
}
