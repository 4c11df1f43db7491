package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the baseline categories and countries",
	Long: `Insert a baseline set of dance categories and countries.

Safe to run repeatedly; rows that already exist are left alone.`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Seed(ctx); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	categories, err := st.CountRows(ctx, "categories")
	if err != nil {
		return err
	}
	countries, err := st.CountRows(ctx, "countries")
	if err != nil {
		return err
	}
	fmt.Printf("Seeded: %d categories, %d countries.\n", categories, countries)
	return nil
}
