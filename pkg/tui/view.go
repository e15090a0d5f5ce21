package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"seedwatch/pkg/models"
	"seedwatch/pkg/utils"
)

const outOfSync = "(out of sync)"

func (m model) View() string {
	if m.confirmRestore {
		return lipgloss.Place(
			m.width,
			m.height,
			lipgloss.Center,
			lipgloss.Center,
			boxStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
				titleStyle.Render("Confirm Restore"),
				"\n",
				"Restore the last configuration backup?",
				"Current configuration will be overwritten.",
				"\n",
				subtleStyle.Render("(y) Yes • (n) No"),
			)),
		)
	}

	if m.showHelp {
		return m.viewHelp()
	}

	w, ok := m.activeWallet()
	if !ok {
		return "No wallets to monitor."
	}

	if m.showGraph {
		return m.viewGraph(w)
	}

	var content string
	if m.loading && w.UpdatedAt.IsZero() && w.Err == "" {
		content = boxStyle.Render(fmt.Sprintf("%s Connecting to %s...", m.spinner.View(), m.node.Name))
	} else {
		targetWidth := m.width - 4
		if targetWidth < 0 {
			targetWidth = 0
		}

		title := fmt.Sprintf("Seedwatch - %s", m.node.Name)
		if len(m.wallets) > 1 {
			title = fmt.Sprintf("Seedwatch - %s (%d/%d)", m.node.Name, m.activeIdx+1, len(m.wallets))
		}
		header := titleStyle.Render(title)

		addrStr := w.Address
		if m.privacyMode {
			addrStr = "0x**...**"
		} else if w.Name != "" {
			addrStr = utils.ShortAddress(w.Address)
		}
		if w.Name != "" {
			addrStr = fmt.Sprintf("%s (%s)", addrStr, w.Name)
		}
		addr := fmt.Sprintf("Address: %s", addrStr)

		sections := []string{
			header,
			addr,
			"",
			m.viewBalances(w),
			"",
			m.viewStrength(w),
			"",
			m.viewTransactions(w),
		}
		if w.Err != "" {
			sections = append(sections, "", errStyle.Render("Last error: "+utils.TruncateString(w.Err, 60)))
		}

		content = boxStyle.Width(targetWidth).Align(lipgloss.Center).Render(lipgloss.JoinVertical(lipgloss.Center, sections...))
	}

	// Footer
	line1 := "r:ref • u:unit • g:graph • P:prv • c:cpy • o:exp • s:save • B:rst • ?:hlp • q:quit"
	if len(m.wallets) > 1 {
		line1 = "Tab:cycle • " + line1
	}
	line2 := fmt.Sprintf("unit %s • v%s", m.unit.Symbol(m.node.Symbol), Version)

	var footer string
	if m.width > 0 {
		l1 := subtleStyle.Width(m.width).Align(lipgloss.Center).Render(line1)
		l2 := subtleStyle.Width(m.width).Align(lipgloss.Center).Render(line2)
		footer = lipgloss.JoinVertical(lipgloss.Center, l1, l2)
	} else {
		footer = subtleStyle.Render(line1 + "\n" + line2)
	}

	if m.statusMessage != "" {
		footer = lipgloss.JoinVertical(lipgloss.Center, infoStyle.Render(m.statusMessage), footer)
	}

	h := m.height - 1
	if h < 0 {
		h = 0
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewTopBar(),
		lipgloss.Place(
			m.width,
			h,
			lipgloss.Center,
			lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center, content, "\n", footer),
		),
	)
}

func (m model) viewTopBar() string {
	nodeDisplay := fmt.Sprintf(" %s", m.node.Name)
	syncDisplay := infoStyle.Render("synced")
	switch {
	case m.syncStatus.Err != nil:
		syncDisplay = errStyle.Render("node unreachable")
	case m.syncStatus.Syncing:
		syncDisplay = warnStyle.Render(fmt.Sprintf("syncing %d/%d", m.syncStatus.CurrentBlock, m.syncStatus.HighestBlock))
	}
	leftBlock := lipgloss.JoinHorizontal(lipgloss.Top, subtleStyle.Render(nodeDisplay), subtleStyle.Render(" • "), syncDisplay)

	spinnerView := ""
	if m.loading {
		spinnerView = m.spinner.View() + " "
	}
	lastUpd := "never"
	if !m.lastUpdate.IsZero() {
		lastUpd = m.lastUpdate.Format("15:04:05")
	}
	privacyIndicator := ""
	if m.privacyMode {
		privacyIndicator = "🔒 "
	}
	rightBlock := subtleStyle.Render(fmt.Sprintf("%s%sLast updated: %s ", privacyIndicator, spinnerView, lastUpd))

	gap := m.width - lipgloss.Width(leftBlock) - lipgloss.Width(rightBlock)
	if gap < 0 {
		gap = 0
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, leftBlock, strings.Repeat(" ", gap), rightBlock)
}

func (m model) sectionHeader(title string) string {
	s := tableHeaderStyle.Render(title)
	if m.syncStatus.Syncing {
		s += warnStyle.Render(outOfSync)
	}
	return s
}

func (m model) viewBalances(w models.WalletState) string {
	var lines []string
	for _, row := range m.balanceRows(w) {
		lines = append(lines, labelStyle.Render(row.label)+row.value)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.sectionHeader("Balances"), strings.Join(lines, "\n"))
}

func (m model) viewStrength(w models.WalletState) string {
	res := m.strengthResult(w)
	bar := m.strengthBar.ViewAs(float64(res.GaugeValue) / 100)
	label := levelStyle.Render(res.LevelName)
	return lipgloss.JoinVertical(lipgloss.Center,
		tableHeaderStyle.Render("Proof of Seeding"),
		label,
		bar,
		subtleStyle.Render(m.strengthTooltip(res)),
	)
}

func (m model) viewTransactions(w models.WalletState) string {
	txs := m.recentTransactions(w)
	if len(txs) == 0 {
		return lipgloss.JoinVertical(lipgloss.Center, m.sectionHeader("Recent transactions"), subtleStyle.Render("No recent transactions found"))
	}

	headers := tableHeaderStyle.Render(fmt.Sprintf("%-16s %-14s %22s", "DATE", "ADDRESS", "AMOUNT"))
	var rows []string
	for _, tx := range txs {
		amount := fmt.Sprintf("%22s", m.txAmount(tx))
		if tx.Outgoing() {
			amount = errStyle.Render(amount)
		} else {
			amount = infoStyle.Render(amount)
		}
		rows = append(rows, fmt.Sprintf("%-16s %-14s %s",
			tx.Time.Format("2006-01-02 15:04"),
			m.txCounterparty(tx),
			amount,
		))
	}
	return lipgloss.JoinVertical(lipgloss.Center, m.sectionHeader("Recent transactions"), headers, strings.Join(rows, "\n"))
}

func (m model) viewGraph(w models.WalletState) string {
	header := titleStyle.Render(fmt.Sprintf("Strength History: %s", m.maskAddress(utils.ShortAddress(w.Address))))

	var graph string
	if len(m.history) > 1 {
		percent := make([]float64, len(m.history))
		for i, v := range m.history {
			percent[i] = v * 100
		}
		width := m.width - 14
		if width < 10 {
			width = 10
		}
		height := m.height - 12
		if height < 1 {
			height = 1
		}
		current := utils.FormatFloat(percent[len(percent)-1], 4)
		graph = asciigraph.Plot(percent,
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Precision(4),
			asciigraph.Caption(fmt.Sprintf("Share of network weight (%%), now %s%%", current)),
		)
	} else {
		graph = "Not enough data to draw graph."
	}

	content := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Center, header, "\n", graph))
	footer := subtleStyle.Render("g/q/esc: back")

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, lipgloss.JoinVertical(lipgloss.Center, content, "\n", footer))
}

func (m model) viewHelp() string {
	shortcuts := []string{
		"r: Refresh Data",
		"u: Cycle Display Unit",
		"g: Strength History Graph",
		"P: Toggle Privacy",
		"c: Copy Address",
		"o: Open in Explorer",
		"s: Save Unit and Wallet Selection",
		"B: Restore Last Config Backup",
		"Tab/l/Right: Next Wallet",
		"S-Tab/h/Left: Prev Wallet",
		"q/ctrl+c: Quit",
		"?: Toggle Help",
	}

	header := titleStyle.Render("Help: Overview")
	content := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "\n", strings.Join(shortcuts, "\n")))
	footer := subtleStyle.Render("Press '?' or 'esc' to close")

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, content, "\n", footer),
	)
}
