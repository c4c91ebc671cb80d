package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"agriprice/internal/model"
)

var (
	seedEnd   string
	seedValue uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Regenerate the synthetic dataset in the API database",
	RunE: func(cmd *cobra.Command, args []string) error {
		end := time.Now()
		if seedEnd != "" {
			t, err := time.Parse(model.DateLayout, seedEnd)
			if err != nil {
				return fmt.Errorf("parse --end: %w", err)
			}
			end = t
		}
		seed := seedValue
		if seed == 0 {
			seed = cfg.API.Seed
		}

		st, err := openStore(cfg.API.SQLitePath)
		if err != nil {
			return err
		}
		defer st.Close()
		return seedStore(cmd.Context(), st, end, seed)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedEnd, "end", "", "Last date covered by the dataset, YYYY-MM-DD (default: today)")
	seedCmd.Flags().Uint64Var(&seedValue, "seed", 0, "Random seed (default: api.seed, or time based)")
}
