package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/grantflow/internal/cli"
	"github.com/charmbracelet/lipgloss"
)

// View renders the explorer.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderHeader(),
		m.input.View(),
		m.renderFilters(),
		m.renderBody(),
		m.renderStatusBar(),
		m.help.View(m.keymap),
	}
	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	tabs := make([]string, 0, int(modeCount))
	for mode := ModeNetwork; mode < modeCount; mode++ {
		style := m.theme.InactiveMode
		if mode == m.mode {
			style = m.theme.ActiveMode
		}
		tabs = append(tabs, style.Render(mode.String()))
	}
	title := m.theme.Title.Render(cli.GrantIcon + " Grant Network Explorer")
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", strings.Join(tabs, " "))
}

func (m Model) renderFilters() string {
	years := "all"
	if len(m.config.Years) > 0 {
		parts := make([]string, len(m.config.Years))
		for i, y := range m.config.Years {
			parts[i] = strconv.Itoa(y)
		}
		years = strings.Join(parts, ", ")
	}
	limit := "none"
	if m.config.MaxOrgs > 0 {
		limit = strconv.Itoa(m.config.MaxOrgs)
	}
	text := fmt.Sprintf("depth %d · min %s · years %s · max orgs %s",
		m.depth, cli.FormatAmount(m.config.MinAmount), years, limit)
	return lipgloss.NewStyle().Foreground(m.theme.Muted).Render(text)
}

func (m Model) renderBody() string {
	if m.loading {
		return m.spinner.View() + " " + m.status
	}
	return m.theme.BorderedBox.
		Width(max(m.width-2, 0)).
		Render(m.results.View())
}

func (m Model) renderStatusBar() string {
	if m.lastError != nil {
		return m.theme.StatusError.Render("✗ " + m.lastError.Error())
	}
	if m.loading {
		return ""
	}
	return m.theme.StatusSuccess.Render(m.status)
}
