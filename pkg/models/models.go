package models

import (
	"math/big"
	"time"

	"seedwatch/pkg/strength"
)

// Balances holds the four balance buckets shown on the overview screen, in whole coins.
type Balances struct {
	Balance     *big.Float `json:"balance"`
	Stake       *big.Float `json:"stake"`
	Unconfirmed *big.Float `json:"unconfirmed"`
	Immature    *big.Float `json:"immature"`
}

// Total sums all buckets; nil buckets count as zero.
func (b Balances) Total() *big.Float {
	total := new(big.Float)
	for _, v := range []*big.Float{b.Balance, b.Stake, b.Unconfirmed, b.Immature} {
		if v != nil {
			total.Add(total, v)
		}
	}
	return total
}

// HasImmature reports whether there is a non-zero immature balance worth showing.
func (b Balances) HasImmature() bool {
	return b.Immature != nil && b.Immature.Sign() != 0
}

// BalanceData is the result of a balance fetch for one wallet.
type BalanceData struct {
	Address    string
	Balances   Balances
	FailedRPCs []string
	Err        error
}

// StakingData carries the seeding weights of one wallet, in whole coins.
type StakingData struct {
	Address       string
	Weight        float64
	NetworkWeight float64
	FailedRPCs    []string
	Err           error
}

// StrengthData is emitted whenever a wallet's strength is recomputed.
type StrengthData struct {
	Address string
	Result  strength.Result
}

// Transaction holds the wallet-relevant details of a transaction.
type Transaction struct {
	Hash          string     `json:"hash"`
	From          string     `json:"from"`
	To            string     `json:"to"`
	Amount        *big.Float `json:"amount"` // negative when sent by the wallet
	BlockNumber   uint64     `json:"block_number"`
	Confirmations uint64     `json:"confirmations"`
	Time          time.Time  `json:"time"`
}

// MinConfirmations is the depth at which a transaction stops being shown as pending.
const MinConfirmations = 6

// Confirmed reports whether the transaction is buried deep enough.
func (t Transaction) Confirmed() bool {
	return t.Confirmations >= MinConfirmations
}

// Outgoing reports whether the wallet sent the funds.
func (t Transaction) Outgoing() bool {
	return t.Amount != nil && t.Amount.Sign() < 0
}

// TransactionData is the result of a transaction fetch for one wallet.
type TransactionData struct {
	Address      string
	Transactions []Transaction
	FailedRPCs   []string
	Err          error
}

// SyncStatus reports whether the node is still catching up.
type SyncStatus struct {
	Syncing      bool   `json:"syncing"`
	CurrentBlock uint64 `json:"current_block"`
	HighestBlock uint64 `json:"highest_block"`
	Err          error  `json:"-"`
}

// WalletState is the snapshot of everything known about a wallet.
type WalletState struct {
	Address       string          `json:"address"`
	Name          string          `json:"name,omitempty"`
	Balances      Balances        `json:"balances"`
	Weight        float64         `json:"weight"`
	NetworkWeight float64         `json:"network_weight"`
	Strength      strength.Result `json:"strength"`
	Transactions  []Transaction   `json:"transactions"`
	Err           string          `json:"error,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// RPCResult holds test results for a specific RPC URL.
type RPCResult struct {
	URL     string `json:"url"`
	Status  string `json:"status"` // "ok" or "error"
	ChainID int64  `json:"chain_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TestReport holds the results of the configuration test.
type TestReport struct {
	ConfigPath      string      `json:"config_path"`
	ValidStructure  bool        `json:"valid_structure"`
	StructureErrors []string    `json:"structure_errors,omitempty"`
	WalletCount     int         `json:"wallet_count"`
	Node            string      `json:"node"`
	ConfigChainID   int64       `json:"config_chain_id"`
	ObservedChainID int64       `json:"observed_chain_id,omitempty"`
	RPCs            []RPCResult `json:"rpcs"`
	Inconsistent    bool        `json:"inconsistent"`
	ConfigUpdated   bool        `json:"config_updated"`
	SaveError       string      `json:"save_error,omitempty"`
	DryRun          bool        `json:"dry_run"`
}
