package main

import (
	"fmt"

	"github.com/Veraticus/grantflow/internal/common"
	"github.com/Veraticus/grantflow/internal/config"
	"github.com/Veraticus/grantflow/internal/tui"
	"github.com/Veraticus/grantflow/internal/tui/themes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func exploreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore grant networks interactively",
		Long: `Open an interactive explorer. Type an EIN and press enter to see its network;
tab switches between the network, direct connections and the organization
profile, and [ / ] change the expansion depth.`,
		Args: cobra.NoArgs,
		RunE: runExplore,
	}

	addFilterFlags(cmd)
	cmd.Flags().IntP("depth", "d", 1, "Starting expansion depth")
	cmd.Flags().Int("max-orgs", 0, "Keep only the root and the N organizations with the most grant volume (0 = all)")
	cmd.Flags().String("theme", "dark", "Color theme (dark, light)")

	return cmd
}

func runExplore(cmd *cobra.Command, _ []string) error {
	bindFilterFlags(cmd)
	_ = viper.BindPFlag("query.depth", cmd.Flags().Lookup("depth"))
	_ = viper.BindPFlag("query.max_orgs", cmd.Flags().Lookup("max-orgs"))

	themeName, _ := cmd.Flags().GetString("theme")
	theme, ok := themes.ByName(themeName)
	if !ok {
		return fmt.Errorf("%w: unknown theme %q", common.ErrInvalidConfig, themeName)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	idx, err := buildIndex(ctx, settings)
	if err != nil {
		return err
	}

	return tui.Run(ctx,
		tui.WithLookup(idx),
		tui.WithQueryDefaults(settings.Depth, settings.MinAmount, settings.Years),
		tui.WithMaxOrgs(settings.MaxOrgs),
		tui.WithTheme(theme),
	)
}
