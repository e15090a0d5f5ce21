package tui

import (
	"fmt"
	"os"

	"seedwatch/pkg/config"
	"seedwatch/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
)

func Start(w *watcher.Watcher, cfg config.Config, configPath, version string) {
	Version = version
	m := initialModel(w, cfg, configPath)
	m.sub = w.Subscribe()
	defer w.Unsubscribe(m.sub)

	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
