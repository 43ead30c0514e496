package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grazbites/scraper/internal/config"
)

var (
	discoverName    string
	discoverAddress string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find the official website of one restaurant",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(config.ModeDiscover); err != nil {
			return err
		}
		matcher, err := newMatcher(newJinaClient())
		if err != nil {
			return err
		}

		site, ok := matcher.Match(cmd.Context(), discoverName, discoverAddress)
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "no match")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), site)
		return nil
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverName, "name", "", "restaurant name")
	discoverCmd.Flags().StringVar(&discoverAddress, "address", "", "restaurant address")
	_ = discoverCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(discoverCmd)
}
