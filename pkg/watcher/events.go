package watcher

// EventType defines the type of event being broadcast.
type EventType string

const (
	EventBalancesUpdated     EventType = "balances_updated"
	EventStakingUpdated      EventType = "staking_updated"
	EventStrengthUpdated     EventType = "strength_updated"
	EventTransactionsUpdated EventType = "transactions_updated"
	EventSyncUpdated         EventType = "sync_updated"
	EventFetchFailed         EventType = "fetch_failed"
)

// Event represents a monitoring event.
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data"`
}

// FetchError describes a failed fetch for a wallet. Address is empty for
// node-wide fetches such as the sync status.
type FetchError struct {
	Kind    string `json:"kind"`
	Address string `json:"address,omitempty"`
	Error   string `json:"error"`
}

// Subscriber is a channel that receives events.
type Subscriber chan Event
