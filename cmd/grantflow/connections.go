package main

import (
	"fmt"

	"github.com/Veraticus/grantflow/internal/cli"
	"github.com/Veraticus/grantflow/internal/config"
	"github.com/Veraticus/grantflow/internal/network"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func connectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connections EIN",
		Short: "Show the grants an organization gave and received",
		Long: `Show the direct funding relationships of one organization: every grant it
gave, paired with the recipient, and every grant it received, paired with
the funder. Use --min-amount and --year to narrow the list.`,
		Args: cobra.ExactArgs(1),
		RunE: runConnections,
	}

	addFilterFlags(cmd)

	return cmd
}

// addFilterFlags registers the per-grant filters shared by query commands.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("min-amount", 0, "Ignore grants below this amount")
	cmd.Flags().IntSlice("year", nil, "Only include grants from these tax years (repeatable)")
}

// bindFilterFlags binds the filter flags of the running command. Binding
// happens at run time because several commands share the same keys.
func bindFilterFlags(cmd *cobra.Command) {
	_ = viper.BindPFlag("query.min_amount", cmd.Flags().Lookup("min-amount"))
	_ = viper.BindPFlag("query.years", cmd.Flags().Lookup("year"))
}

func runConnections(cmd *cobra.Command, args []string) error {
	bindFilterFlags(cmd)
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	idx, err := buildIndex(ctx, settings)
	if err != nil {
		return err
	}

	q := queryFor(args[0], settings)
	q.MaxDepth = 1
	if err := network.ValidateQuery(q, idx.HasYears()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	root, ok := network.Root(idx, args[0])
	if !ok {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("No organization found for %q", args[0])))
		return nil
	}

	hop := network.ResolveOneHop(idx, root.ID, network.Filter{MinAmount: q.MinAmount, Years: q.YearSet()})
	fmt.Fprint(out, cli.RenderConnections(root, hop))
	return nil
}
