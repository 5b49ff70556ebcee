package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-search/internal/observability"
)

var areasCmd = &cobra.Command{
	Use:   "areas",
	Short: "List the regions of the configured country",
	RunE:  runAreas,
}

func init() {
	rootCmd.AddCommand(areasCmd)
}

func runAreas(cmd *cobra.Command, _ []string) error {
	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.close()

	list, err := a.areaDirectory().Get(commandContext(cmd))
	if err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v (showing the built-in list)\n", err)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintAreas(list)
	return nil
}
