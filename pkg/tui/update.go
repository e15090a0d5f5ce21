package tui

import (
	"fmt"
	"time"

	"seedwatch/pkg/config"
	"seedwatch/pkg/watcher"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		barWidth := msg.Width - 16
		if barWidth > 60 {
			barWidth = 60
		}
		if barWidth < 10 {
			barWidth = 10
		}
		m.strengthBar.Width = barWidth

	case watcher.Event:
		cmds = append(cmds, listenForWatcher(m.sub))

		switch msg.Type {
		case watcher.EventFetchFailed:
			if fe, ok := msg.Data.(watcher.FetchError); ok {
				m.statusMessage = fmt.Sprintf("%s fetch failed: %s", fe.Kind, fe.Error)
				cmds = append(cmds, clearStatusAfter(3*time.Second))
			}
		case watcher.EventStrengthUpdated, watcher.EventBalancesUpdated:
			m.loading = false
		}
		m.refreshFromWatcher()
		m.lastUpdate = time.Now()

	case privacyTimeoutMsg:
		if m.config.PrivacyTimeoutSeconds <= 0 {
			break
		}
		timeoutDuration := time.Duration(m.config.PrivacyTimeoutSeconds) * time.Second
		if !m.privacyMode {
			if time.Since(m.lastInteraction) >= timeoutDuration {
				m.privacyMode = true
				m.statusMessage = "Privacy Mode enabled due to inactivity"
				cmds = append(cmds, clearStatusAfter(2*time.Second))
			} else {
				remaining := timeoutDuration - time.Since(m.lastInteraction)
				cmds = append(cmds, tea.Tick(remaining, func(t time.Time) tea.Msg {
					return privacyTimeoutMsg{}
				}))
			}
		}

	case tea.KeyMsg:
		m.lastInteraction = time.Now()
		if msg.String() == "?" {
			m.showHelp = !m.showHelp
			return m, nil
		}
		if m.confirmRestore {
			m.confirmRestore = false
			if msg.String() == "y" || msg.String() == "Y" {
				m.restoreBackup()
				cmds = append(cmds, clearStatusAfter(3*time.Second))
			}
			return m, tea.Batch(cmds...)
		}
		if m.showHelp {
			if msg.String() == "q" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c":
			if m.showGraph && msg.String() == "q" {
				m.showGraph = false
				return m, nil
			}
			return m, tea.Quit
		case "esc":
			m.showGraph = false

		case "P":
			m.privacyMode = !m.privacyMode
			if !m.privacyMode && m.config.PrivacyTimeoutSeconds > 0 {
				cmds = append(cmds, tea.Tick(time.Duration(m.config.PrivacyTimeoutSeconds)*time.Second, func(t time.Time) tea.Msg {
					return privacyTimeoutMsg{}
				}))
			}

		case "u":
			m.unit = m.unit.Next()
			m.statusMessage = fmt.Sprintf("Display unit: %s", m.unit.Symbol(m.node.Symbol))
			cmds = append(cmds, clearStatusAfter(2*time.Second))

		case "g":
			m.showGraph = !m.showGraph

		case "r":
			if m.watcher != nil {
				if !m.loading {
					// the spinner stopped ticking when the last load finished
					cmds = append(cmds, m.spinner.Tick)
				}
				m.loading = true
				m.watcher.Refresh()
				m.statusMessage = "Refreshing data..."
				cmds = append(cmds, clearStatusAfter(2*time.Second))
			}

		case "s":
			if m.configPath == "" {
				break
			}
			if err := config.SaveConfig(m.preferences(), m.configPath); err != nil {
				m.statusMessage = fmt.Sprintf("Failed to save preferences: %v", err)
			} else {
				m.saved = m.preferences()
				m.statusMessage = "Preferences saved"
			}
			cmds = append(cmds, clearStatusAfter(2*time.Second))

		case "B":
			if m.configPath != "" {
				m.confirmRestore = true
			}

		case "c":
			if w, ok := m.activeWallet(); ok {
				err := clipboard.WriteAll(w.Address)
				if err != nil {
					m.statusMessage = "Failed to copy to clipboard"
				} else {
					if m.privacyMode {
						m.statusMessage = "Full address copied (Privacy Mode active)!"
					} else {
						m.statusMessage = "Full address copied to clipboard!"
					}
				}
				cmds = append(cmds, clearStatusAfter(2*time.Second))
			}

		case "o":
			if w, ok := m.activeWallet(); ok {
				url := m.explorerURL(w.Address)
				if url == "" {
					m.statusMessage = "Explorer URL not configured for this node"
				} else if err := openBrowser(url); err != nil {
					m.statusMessage = fmt.Sprintf("Failed to open browser: %v", err)
				} else {
					m.statusMessage = "Opened in browser"
				}
				cmds = append(cmds, clearStatusAfter(2*time.Second))
			}

		case "tab", "right", "l":
			if len(m.wallets) > 0 {
				m.activeIdx = (m.activeIdx + 1) % len(m.wallets)
				m.refreshFromWatcher()
			}
		case "shift+tab", "left", "h":
			if len(m.wallets) > 0 {
				m.activeIdx--
				if m.activeIdx < 0 {
					m.activeIdx = len(m.wallets) - 1
				}
				m.refreshFromWatcher()
			}
		}

	case uiTickMsg:
		cmds = append(cmds, tea.Tick(time.Second, func(t time.Time) tea.Msg { return uiTickMsg(t) }))

	case clearStatusMsg:
		m.statusMessage = ""
	}

	if m.loading {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}
