package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-search/internal/keywords"
	"github.com/jonathan/talent-search/internal/observability"
	"github.com/jonathan/talent-search/internal/types"
)

var (
	vacanciesEmployer string
)

var vacanciesCmd = &cobra.Command{
	Use:   "vacancies [id]",
	Short: "List the employer's active vacancies, or show one vacancy",
	Long: `Without arguments, list the employer's active vacancies split into those managed by the
current user and the rest. With an id, print that vacancy and its plain-text description.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVacancies,
}

func init() {
	vacanciesCmd.Flags().StringVar(&vacanciesEmployer, "employer", "", "Employer id (default from config)")
	rootCmd.AddCommand(vacanciesCmd)
}

func runVacancies(cmd *cobra.Command, args []string) error {
	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := commandContext(cmd)
	printer := observability.NewPrinter(cmd.OutOrStdout())

	if len(args) == 1 {
		v, _, err := a.fetchVacancy(ctx, args[0])
		if err != nil {
			return err
		}
		printer.PrintVacancy(v, keywords.DescriptionText(v.Description))
		return nil
	}

	employerID := vacanciesEmployer
	if employerID == "" {
		employerID = a.cfg.EmployerID
	}
	if employerID == "" {
		return errors.New("employer id is required (--employer or HH_EMPLOYER_ID)")
	}

	me, err := a.hh.Me(ctx)
	if err != nil {
		return fmt.Errorf("failed to load current user: %w", err)
	}
	all, err := a.hh.ActiveVacancies(ctx, employerID)
	if err != nil {
		return fmt.Errorf("failed to list vacancies: %w", err)
	}
	printer.PrintVacancies(types.PartitionVacancies(all, me.ID))
	return nil
}
