package main

import (
	"encoding/json"
	"fmt"

	"github.com/Veraticus/grantflow/internal/cli"
	"github.com/Veraticus/grantflow/internal/config"
	"github.com/Veraticus/grantflow/internal/network"
	"github.com/spf13/cobra"
)

func orgCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org EIN",
		Short: "Show an organization's profile",
		Long: `Show whether an organization is in the registry, how many grants it gave and
received, its reported receipts, government funding and contributions, and
the tax years in which it was active.`,
		Args: cobra.ExactArgs(1),
		RunE: runOrg,
	}

	cmd.Flags().Bool("json", false, "Print the profile as JSON")

	return cmd
}

func runOrg(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	idx, err := buildIndex(cmd.Context(), settings)
	if err != nil {
		return err
	}

	profile := network.ProfileOf(idx, args[0])
	out := cmd.OutOrStdout()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	}

	fmt.Fprint(out, cli.RenderProfile(profile))
	return nil
}
