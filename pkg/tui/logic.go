package tui

import (
	"fmt"
	"strings"

	"seedwatch/pkg/config"
	"seedwatch/pkg/models"
	"seedwatch/pkg/strength"
	"seedwatch/pkg/units"
	"seedwatch/pkg/utils"
	"seedwatch/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
)

// balanceRow is one labelled amount of the balance panel.
type balanceRow struct {
	label string
	value string
}

func (m model) activeWallet() (models.WalletState, bool) {
	if len(m.wallets) == 0 || m.activeIdx < 0 || m.activeIdx >= len(m.wallets) {
		return models.WalletState{}, false
	}
	return m.wallets[m.activeIdx], true
}

// balanceRows lists the balance buckets of a wallet. Immature coins are only
// listed when there are any.
func (m model) balanceRows(w models.WalletState) []balanceRow {
	b := w.Balances
	rows := []balanceRow{
		{"Balance:", m.displayAmount(b.Balance)},
		{"Stake:", m.displayAmount(b.Stake)},
		{"Unconfirmed:", m.displayAmount(b.Unconfirmed)},
	}
	if b.HasImmature() {
		rows = append(rows, balanceRow{"Immature:", m.displayAmount(b.Immature)})
	}
	rows = append(rows, balanceRow{"Total:", m.displayAmount(b.Total())})
	return rows
}

// strengthResult evaluates the wallet's weights so the advisory amount reads
// in the active display unit. The ratio and level do not depend on the unit.
func (m model) strengthResult(w models.WalletState) strength.Result {
	f := m.unit.Factor()
	return strength.DefaultLevels.PresentWithUnit(w.Weight*f, w.NetworkWeight*f, m.unit.Symbol(m.coin()))
}

// strengthTooltip is the advisory line under the bar. In privacy mode the
// estimated amount is withheld.
func (m model) strengthTooltip(res strength.Result) string {
	if !m.privacyMode {
		return res.Advisory
	}
	if res.NextLevel == "" {
		return strength.BarTooltip
	}
	return fmt.Sprintf("%s Next level: %s.", strength.BarTooltip, res.NextLevel)
}

func (m model) coin() string {
	if m.node.Symbol == "" {
		return strength.DefaultUnit
	}
	return m.node.Symbol
}

// recentTransactions returns at most the configured number of transactions, newest first.
func (m model) recentTransactions(w models.WalletState) []models.Transaction {
	limit := m.config.RecentTxCount
	if limit <= 0 {
		limit = config.DefaultGlobalConfig().RecentTxCount
	}
	txs := w.Transactions
	if len(txs) > limit {
		txs = txs[:limit]
	}
	return txs
}

// txAmount renders a signed transaction amount. Unconfirmed amounts are
// wrapped in brackets.
func (m model) txAmount(tx models.Transaction) string {
	if m.privacyMode {
		return masked
	}
	s := units.FormatWithUnit(m.unit, m.node.Symbol, tx.Amount, m.config.AmountDecimals, true)
	if !tx.Confirmed() {
		s = "[" + s + "]"
	}
	return s
}

// txCounterparty is the other side of the transfer from the wallet's view.
func (m model) txCounterparty(tx models.Transaction) string {
	addr := tx.From
	if tx.Outgoing() {
		addr = tx.To
	}
	return m.maskAddress(utils.ShortAddress(addr))
}

func (m model) explorerURL(address string) string {
	if m.node.ExplorerURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/address/%s", strings.TrimRight(m.node.ExplorerURL, "/"), address)
}

// preferences returns the on-disk config with the session's unit and wallet selection.
func (m model) preferences() config.Config {
	cfg := m.saved
	cfg.Global.DisplayUnit = m.unit.Symbol(m.node.Symbol)
	cfg.SelectedWallet = m.activeIdx
	return cfg
}

func (m *model) refreshFromWatcher() {
	if m.watcher == nil {
		return
	}
	m.wallets = m.watcher.GetWallets()
	if m.activeIdx >= len(m.wallets) {
		m.activeIdx = 0
	}
	m.syncStatus = m.watcher.GetSyncStatus()
	if w, ok := m.activeWallet(); ok {
		m.history = m.watcher.GetHistory(w.Address)
	}
}

func listenForWatcher(sub watcher.Subscriber) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-sub
		if !ok {
			return nil
		}
		return ev
	}
}

// restoreBackup puts the newest config backup in place and reloads the
// display preferences from it. Node and wallet changes apply on restart.
func (m *model) restoreBackup() {
	if err := config.RestoreLastBackup(m.configPath); err != nil {
		m.statusMessage = fmt.Sprintf("Restore failed: %v", err)
		return
	}
	cfg, err := config.LoadConfigFromFile(m.configPath)
	if err != nil {
		m.statusMessage = fmt.Sprintf("Restored backup is unreadable: %v", err)
		return
	}
	m.saved = cfg
	m.config = cfg.Global
	m.unit, _ = units.Parse(m.node.Symbol, cfg.Global.DisplayUnit)
	if cfg.SelectedWallet >= 0 && cfg.SelectedWallet < len(m.wallets) {
		m.activeIdx = cfg.SelectedWallet
		m.refreshFromWatcher()
	}
	m.statusMessage = "Backup restored"
}
