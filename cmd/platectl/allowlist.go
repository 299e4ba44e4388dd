package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-plate-inspector/internal/plate"
	"go-plate-inspector/internal/repository"
)

var allowlistCmd = &cobra.Command{
	Use:   "allowlist",
	Short: "Print the allow-list or check a plate against it",
	Example: `  # Print the entries of ALLOWLIST_PATH
  platectl allowlist

  # Check text the way the pipeline would
  platectl allowlist --check "MH 12 AB 1234"`,
	Args: cobra.NoArgs,
	RunE: runAllowlist,
}

func init() {
	rootCmd.AddCommand(allowlistCmd)

	allowlistCmd.Flags().StringP("file", "f", "", "Allow-list file (default: ALLOWLIST_PATH)")
	allowlistCmd.Flags().String("check", "", "Normalize this text and match it against the allow-list")
}

func runAllowlist(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	check, _ := cmd.Flags().GetString("check")

	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.AllowListPath
	}

	entries, err := repository.LoadAllowList(path)
	if err != nil {
		return err
	}
	allowList := plate.NewAllowList(entries)
	out := cmd.OutOrStdout()

	if !cmd.Flags().Changed("check") {
		for _, e := range allowList.Entries() {
			fmt.Fprintln(out, e)
		}
		return nil
	}

	text := plate.Normalize(check)
	status := allowList.Evaluate(text)
	fmt.Fprintf(out, "%s: %s\n", text, status.Label())
	if nearest, ok := allowList.Closest(text); ok && !allowList.Contains(text) {
		fmt.Fprintf(out, "closest: %s (distance %d)\n", nearest.Entry, nearest.Distance)
	}
	return nil
}
