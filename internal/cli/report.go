package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/grantflow/internal/ein"
	"github.com/Veraticus/grantflow/internal/model"
	"github.com/Veraticus/grantflow/internal/network"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatAmount renders a dollar amount with thousands separators.
func FormatAmount(v float64) string {
	if v < 0 {
		return printer.Sprintf("-$%.2f", -v)
	}
	return printer.Sprintf("$%.2f", v)
}

// FormatYear renders a tax year, blank when unknown.
func FormatYear(y int) string {
	if y == 0 {
		return "-"
	}
	return strconv.Itoa(y)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

func orgLabel(org model.Organization) string {
	return fmt.Sprintf("%s (%s)", org.Name, ein.Format(org.ID))
}

// RenderConnections renders the grants given and received by root.
func RenderConnections(root model.Organization, hop network.OneHop) string {
	var b strings.Builder
	b.WriteString(FormatTitle("Connections for "+orgLabel(root)) + "\n")

	section := func(title, counterpartyHeader string, rels []network.Relationship) {
		var total float64
		for _, r := range rels {
			total += r.Grant.Amount
		}
		b.WriteString(BoldStyle.Render(fmt.Sprintf("%s: %d totaling %s", title, len(rels), FormatAmount(total))) + "\n")
		if len(rels) == 0 {
			b.WriteString(SubtleStyle.Render("  none") + "\n\n")
			return
		}
		t := newTable(counterpartyHeader, "EIN", "Amount", "Year")
		for _, r := range rels {
			t.Row(r.Counterparty.Name, ein.Format(r.Counterparty.ID), FormatAmount(r.Grant.Amount), FormatYear(r.Grant.Year))
		}
		b.WriteString(t.String() + "\n\n")
	}

	section("Grants given", "Recipient", hop.Outgoing)
	section("Grants received", "Funder", hop.Incoming)
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// RenderNetwork renders a result graph with its statistics. impact is the
// government funding total of the graph's registered organizations.
func RenderNetwork(graph *model.ResultGraph, stats network.GraphStats, impact float64) string {
	var b strings.Builder
	q := graph.Query

	if graph.Status == model.StatusNotFound {
		return FormatWarning(fmt.Sprintf("Organization %q was not found in the registry or the ledger", q.RootIdentifier)) + "\n"
	}

	summary := strings.Join([]string{
		fmt.Sprintf("Root:            %s", q.RootIdentifier),
		fmt.Sprintf("Depth:           %d", q.MaxDepth),
		fmt.Sprintf("Min amount:      %s", FormatAmount(q.MinAmount)),
		fmt.Sprintf("Years:           %s", yearsText(q.AllowedYears)),
		"",
		fmt.Sprintf("Organizations:   %d (%d registered)", stats.Organizations, stats.KnownOrganizations),
		fmt.Sprintf("Grants:          %d", stats.Grants),
		fmt.Sprintf("Total:           %s", MoneyStyle.Render(FormatAmount(stats.TotalAmount))),
		fmt.Sprintf("Average:         %s", FormatAmount(stats.AverageAmount)),
		fmt.Sprintf("Std deviation:   %s", FormatAmount(stats.StandardDeviation)),
		fmt.Sprintf("Taxpayer impact: %s", FormatAmount(impact)),
	}, "\n")
	b.WriteString(RenderBox(ChartIcon+" Grant network", summary) + "\n\n")

	orgs := newTable("Depth", "Organization", "EIN", "Volume")
	for _, n := range graph.Nodes {
		name := n.Name
		if !n.Known {
			name = SubtleStyle.Render(name)
		}
		orgs.Row(strconv.Itoa(n.Depth), name, ein.Format(n.ID), FormatAmount(stats.Volume[n.ID]))
	}
	b.WriteString(orgs.String() + "\n")

	if len(graph.Edges) == 0 {
		b.WriteString(SubtleStyle.Render("No grants match the query.") + "\n")
		return b.String()
	}

	names := make(map[string]string, len(graph.Nodes))
	for _, n := range graph.Nodes {
		names[n.ID] = n.Name
	}
	grants := newTable("Funder", "Recipient", "Amount", "Year")
	for _, e := range graph.Edges {
		grants.Row(names[e.From], names[e.To], FormatAmount(e.Amount), FormatYear(e.Year))
	}
	b.WriteString("\n" + grants.String() + "\n")
	return b.String()
}

// RenderProfile renders an organization profile.
func RenderProfile(p network.Profile) string {
	if !p.Found() {
		return FormatWarning(fmt.Sprintf("Organization %s was not found", ein.Format(p.ID))) + "\n"
	}

	registry := SuccessStyle.Render("registered")
	if !p.InRegistry {
		registry = WarningStyle.Render("not in registry (ledger only)")
	}

	lines := []string{
		fmt.Sprintf("EIN:             %s", ein.Format(p.ID)),
		fmt.Sprintf("Status:          %s", registry),
		fmt.Sprintf("Grants given:    %d totaling %s", p.GrantsGiven, FormatAmount(p.AmountGiven)),
		fmt.Sprintf("Grants received: %d totaling %s", p.GrantsReceived, FormatAmount(p.AmountReceived)),
	}
	if p.InRegistry {
		lines = append(lines,
			fmt.Sprintf("Receipts:        %s", FormatAmount(p.Receipts)),
			fmt.Sprintf("Government:      %s", FormatAmount(p.Government)),
			fmt.Sprintf("Contributions:   %s", FormatAmount(p.Contributions)),
		)
	}
	years := "none recorded"
	if len(p.Years) > 0 {
		years = yearsText(p.Years)
	}
	lines = append(lines, fmt.Sprintf("Tax years:       %s", years))

	return RenderBox(p.Name, strings.Join(lines, "\n")) + "\n"
}

func yearsText(years []int) string {
	if len(years) == 0 {
		return "all"
	}
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ", ")
}
