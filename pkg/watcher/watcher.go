package watcher

import (
	"context"
	"strings"
	"sync"
	"time"

	"seedwatch/pkg/config"
	"seedwatch/pkg/metrics"
	"seedwatch/pkg/models"
	"seedwatch/pkg/rpc"
	"seedwatch/pkg/strength"
)

// HistorySize is the number of strength samples kept per wallet.
const HistorySize = 60

// DataSource defines the interface for fetching data.
type DataSource interface {
	FetchBalances(node config.NodeConfig, address string) (models.BalanceData, error)
	FetchStakingData(node config.NodeConfig, address string) (models.StakingData, error)
	FetchTransactions(node config.NodeConfig, address string, limit int) (models.TransactionData, error)
	FetchSyncStatus(node config.NodeConfig) (models.SyncStatus, error)
}

// RealDataSource implements DataSource using the rpc package.
type RealDataSource struct{}

func (d *RealDataSource) FetchBalances(node config.NodeConfig, address string) (models.BalanceData, error) {
	return rpc.FetchBalances(node, address)
}

func (d *RealDataSource) FetchStakingData(node config.NodeConfig, address string) (models.StakingData, error) {
	return rpc.FetchStakingData(node, address)
}

func (d *RealDataSource) FetchTransactions(node config.NodeConfig, address string, limit int) (models.TransactionData, error) {
	return rpc.FetchTransactions(node, address, limit)
}

func (d *RealDataSource) FetchSyncStatus(node config.NodeConfig) (models.SyncStatus, error) {
	return rpc.FetchSyncStatus(node)
}

type wallet struct {
	state    models.WalletState
	strength *strength.State
	history  []float64
}

// Watcher manages background monitoring and state.
type Watcher struct {
	config config.GlobalConfig
	node   config.NodeConfig

	wallets []*wallet
	sync    models.SyncStatus

	subscribers []Subscriber
	mu          sync.RWMutex
	stopChan    chan struct{}
	stopOnce    sync.Once
	refreshChan chan struct{}
	dataSource  DataSource
	metrics     *metrics.Manager
}

// NewWatcher creates a new Watcher instance.
func NewWatcher(cfg config.Config) *Watcher {
	unit := cfg.Node.Symbol
	var wallets []*wallet
	for _, wc := range cfg.Wallets {
		// DefaultLevels always validates.
		st, _ := strength.NewState(strength.DefaultLevels, unit)
		wallets = append(wallets, &wallet{
			state:    models.WalletState{Address: wc.Address, Name: wc.Name},
			strength: st,
		})
	}

	return &Watcher{
		config:      cfg.Global,
		node:        cfg.Node,
		wallets:     wallets,
		stopChan:    make(chan struct{}),
		refreshChan: make(chan struct{}, 1),
		dataSource:  &RealDataSource{},
	}
}

// SetDataSource allows overriding the data source (useful for testing).
func (w *Watcher) SetDataSource(ds DataSource) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dataSource = ds
}

// SetMetrics attaches a metrics manager that is updated on every fetch.
func (w *Watcher) SetMetrics(m *metrics.Manager) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.metrics = m
}

// Subscribe adds a new subscriber and returns a channel to receive events.
func (w *Watcher) Subscribe() Subscriber {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(Subscriber, 100)
	w.subscribers = append(w.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber.
func (w *Watcher) Unsubscribe(ch Subscriber) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, sub := range w.subscribers {
		if sub == ch {
			w.subscribers = append(w.subscribers[:i], w.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

func (w *Watcher) notify(event Event) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, sub := range w.subscribers {
		select {
		case sub <- event:
		default:
			// slow subscriber, drop
		}
	}
}

// Start begins the monitoring loops.
func (w *Watcher) Start(ctx context.Context) {
	go w.pollingLoop(ctx)
}

// Stop stops the monitoring loops. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
}

// Refresh asks the polling loop to fetch immediately. Requests made while one
// is already queued are coalesced.
func (w *Watcher) Refresh() {
	select {
	case w.refreshChan <- struct{}{}:
	default:
	}
}

func (w *Watcher) pollingLoop(ctx context.Context) {
	// Initial fetch
	w.fetchAll()

	ticker := time.NewTicker(w.config.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.fetchAll()
		case <-w.refreshChan:
			w.fetchAll()
			ticker.Reset(w.config.RefreshInterval())
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) fetchAll() {
	w.mu.RLock()
	ds := w.dataSource
	m := w.metrics
	addresses := make([]string, len(w.wallets))
	for i, wl := range w.wallets {
		addresses[i] = wl.state.Address
	}
	w.mu.RUnlock()

	limit := w.config.RecentTxCount
	if limit <= 0 {
		limit = config.DefaultGlobalConfig().RecentTxCount
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		status, err := ds.FetchSyncStatus(w.node)
		if err != nil {
			w.fail(m, "sync", "", err)
			return
		}
		w.mu.Lock()
		w.sync = status
		w.mu.Unlock()
		w.notify(Event{Type: EventSyncUpdated, Data: status})
	}()

	for _, address := range addresses {
		wg.Add(3)
		go func(address string) {
			defer wg.Done()
			data, err := ds.FetchBalances(w.node, address)
			if err != nil {
				w.fail(m, "balances", address, err)
				return
			}
			w.update(address, func(wl *wallet) {
				wl.state.Balances = data.Balances
			})
			w.notify(Event{Type: EventBalancesUpdated, Data: data})
		}(address)

		go func(address string) {
			defer wg.Done()
			data, err := ds.FetchStakingData(w.node, address)
			if err != nil {
				w.fail(m, "staking", address, err)
				return
			}
			var result strength.Result
			w.update(address, func(wl *wallet) {
				result = wl.strength.Update(data.Weight, data.NetworkWeight)
				wl.state.Weight = data.Weight
				wl.state.NetworkWeight = data.NetworkWeight
				wl.state.Strength = result
				wl.history = append(wl.history, result.Strength)
				if len(wl.history) > HistorySize {
					wl.history = wl.history[len(wl.history)-HistorySize:]
				}
			})
			m.ObserveStrength(address, data.Weight, data.NetworkWeight, result)
			w.notify(Event{Type: EventStakingUpdated, Data: data})
			w.notify(Event{Type: EventStrengthUpdated, Data: models.StrengthData{Address: address, Result: result}})
		}(address)

		go func(address string) {
			defer wg.Done()
			data, err := ds.FetchTransactions(w.node, address, limit)
			if err != nil {
				w.fail(m, "transactions", address, err)
				return
			}
			w.update(address, func(wl *wallet) {
				wl.state.Transactions = data.Transactions
			})
			w.notify(Event{Type: EventTransactionsUpdated, Data: data})
		}(address)
	}

	wg.Wait()
	m.RecordRefresh(time.Now())
}

// update applies fn to the wallet with the given address under the write lock.
func (w *Watcher) update(address string, fn func(*wallet)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, wl := range w.wallets {
		if strings.EqualFold(wl.state.Address, address) {
			fn(wl)
			wl.state.Err = ""
			wl.state.UpdatedAt = time.Now()
			return
		}
	}
}

func (w *Watcher) fail(m *metrics.Manager, kind, address string, err error) {
	m.RecordFetchError(kind)
	if address != "" {
		w.mu.Lock()
		for _, wl := range w.wallets {
			if strings.EqualFold(wl.state.Address, address) {
				wl.state.Err = err.Error()
				break
			}
		}
		w.mu.Unlock()
	}
	w.notify(Event{Type: EventFetchFailed, Data: FetchError{Kind: kind, Address: address, Error: err.Error()}})
}

// GetWallets returns a copy of the current wallet states.
func (w *Watcher) GetWallets() []models.WalletState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]models.WalletState, len(w.wallets))
	for i, wl := range w.wallets {
		st := wl.state
		st.Transactions = append([]models.Transaction(nil), wl.state.Transactions...)
		out[i] = st
	}
	return out
}

// GetSyncStatus returns the last known sync status of the node.
func (w *Watcher) GetSyncStatus() models.SyncStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.sync
}

// GetHistory returns the recorded strength samples of a wallet, oldest first.
func (w *Watcher) GetHistory(address string) []float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, wl := range w.wallets {
		if strings.EqualFold(wl.state.Address, address) {
			out := make([]float64, len(wl.history))
			copy(out, wl.history)
			return out
		}
	}
	return nil
}

// Node returns the node configuration the watcher polls.
func (w *Watcher) Node() config.NodeConfig {
	return w.node
}
