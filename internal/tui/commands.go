package tui

import (
	"fmt"

	"github.com/Veraticus/grantflow/internal/cli"
	"github.com/Veraticus/grantflow/internal/ein"
	"github.com/Veraticus/grantflow/internal/model"
	"github.com/Veraticus/grantflow/internal/network"
	tea "github.com/charmbracelet/bubbletea"
)

// query captures everything a submission needs so the command never reads
// the model after it has moved on.
type query struct {
	lookup    network.Lookup
	id        string
	years     []int
	minAmount float64
	depth     int
	maxOrgs   int
	mode      Mode
	seq       int
}

func (m Model) newQuery(id string) query {
	return query{
		lookup:    m.config.Lookup,
		id:        id,
		years:     m.config.Years,
		minAmount: m.config.MinAmount,
		depth:     m.depth,
		maxOrgs:   m.config.MaxOrgs,
		mode:      m.mode,
		seq:       m.seq,
	}
}

// runQuery answers q off the update loop.
func runQuery(q query) tea.Cmd {
	return func() tea.Msg {
		msg := queryResultMsg{id: q.id, mode: q.mode, seq: q.seq}

		switch q.mode {
		case ModeNetwork:
			mq := model.Query{
				RootIdentifier: q.id,
				MaxDepth:       q.depth,
				MinAmount:      q.minAmount,
				AllowedYears:   q.years,
			}
			g, err := network.Expand(q.lookup, mq)
			if err != nil {
				msg.err = err
				return msg
			}
			g = network.LimitOrganizations(g, q.maxOrgs)
			stats := network.Summarize(g)
			msg.content = cli.RenderNetwork(g, stats, network.TaxpayerImpact(q.lookup, g))
			if g.Status == model.StatusNotFound {
				msg.summary = fmt.Sprintf("%s not found", q.id)
			} else {
				msg.summary = fmt.Sprintf("%d organizations, %d grants", stats.Organizations, stats.Grants)
			}

		case ModeConnections:
			mq := model.Query{RootIdentifier: q.id, MaxDepth: 1, MinAmount: q.minAmount, AllowedYears: q.years}
			if err := network.ValidateQuery(mq, q.lookup.HasYears()); err != nil {
				msg.err = err
				return msg
			}
			root, ok := network.Root(q.lookup, q.id)
			if !ok {
				msg.content = cli.FormatWarning(fmt.Sprintf("No organization found for %q", q.id))
				msg.summary = fmt.Sprintf("%s not found", q.id)
				return msg
			}
			hop := network.ResolveOneHop(q.lookup, root.ID, network.Filter{MinAmount: q.minAmount, Years: mq.YearSet()})
			msg.content = cli.RenderConnections(root, hop)
			msg.summary = fmt.Sprintf("%d given, %d received", len(hop.Outgoing), len(hop.Incoming))

		case ModeProfile:
			p := network.ProfileOf(q.lookup, q.id)
			msg.content = cli.RenderProfile(p)
			if p.Found() {
				msg.summary = "profile for " + ein.Format(p.ID)
			} else {
				msg.summary = fmt.Sprintf("%s not found", q.id)
			}
		}
		return msg
	}
}
