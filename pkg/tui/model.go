package tui

import (
	"time"

	"seedwatch/pkg/config"
	"seedwatch/pkg/models"
	"seedwatch/pkg/units"
	"seedwatch/pkg/watcher"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Version is set by Start()
var Version = "dev"

// --- Messages ---

type clearStatusMsg struct{}
type uiTickMsg time.Time
type privacyTimeoutMsg struct{}

// --- Model ---

type model struct {
	saved           config.Config
	node            config.NodeConfig
	config          config.GlobalConfig
	configPath      string
	wallets         []models.WalletState
	syncStatus      models.SyncStatus
	history         []float64
	activeIdx       int
	width           int
	height          int
	loading         bool
	lastUpdate      time.Time
	spinner         spinner.Model
	strengthBar     progress.Model
	statusMessage   string
	unit            units.Unit
	privacyMode     bool
	lastInteraction time.Time
	showHelp        bool
	showGraph       bool
	confirmRestore  bool
	watcher         *watcher.Watcher
	sub             watcher.Subscriber
}

func initialModel(w *watcher.Watcher, cfg config.Config, configPath string) model {
	var wallets []models.WalletState
	for _, wc := range cfg.Wallets {
		wallets = append(wallets, models.WalletState{Address: wc.Address, Name: wc.Name})
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bar := progress.New(
		progress.WithGradient("#874BFD", "#04B575"),
		progress.WithoutPercentage(),
		progress.WithWidth(40),
	)

	// An unknown unit in the file falls back to the base coin.
	unit, _ := units.Parse(cfg.Node.Symbol, cfg.Global.DisplayUnit)

	activeIdx := cfg.SelectedWallet
	if activeIdx < 0 || activeIdx >= len(wallets) {
		activeIdx = 0
	}

	return model{
		saved:           cfg,
		node:            cfg.Node,
		config:          cfg.Global,
		configPath:      configPath,
		wallets:         wallets,
		activeIdx:       activeIdx,
		loading:         true,
		spinner:         s,
		strengthBar:     bar,
		unit:            unit,
		lastInteraction: time.Now(),
		watcher:         w,
	}
}

func (m model) Init() tea.Cmd {
	var cmds []tea.Cmd

	cmds = append(cmds, listenForWatcher(m.sub))
	cmds = append(cmds, m.spinner.Tick)

	if !m.privacyMode && m.config.PrivacyTimeoutSeconds > 0 {
		cmds = append(cmds, tea.Tick(time.Duration(m.config.PrivacyTimeoutSeconds)*time.Second, func(t time.Time) tea.Msg {
			return privacyTimeoutMsg{}
		}))
	}
	cmds = append(cmds, tea.Tick(time.Second, func(t time.Time) tea.Msg { return uiTickMsg(t) }))
	return tea.Batch(cmds...)
}
