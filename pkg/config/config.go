package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const ConfigFileName = ".seedwatch.json"

// WalletConfig holds configuration for a watched staking wallet.
type WalletConfig struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

// NodeConfig describes the EVM node and the staking contract that tracks seeding weight.
type NodeConfig struct {
	Name            string   `json:"name"`
	RPCURLs         []string `json:"rpc_urls"`
	Symbol          string   `json:"symbol"`
	Decimals        int      `json:"decimals"`
	StakingContract string   `json:"staking_contract"`
	ChainID         int64    `json:"chain_id,omitempty"`
	ExplorerURL     string   `json:"explorer_url,omitempty"`
}

// GlobalConfig holds application-wide settings.
type GlobalConfig struct {
	PrivacyTimeoutSeconds  int    `json:"privacy_timeout_seconds"`
	DisplayUnit            string `json:"display_unit"`
	AmountDecimals         int    `json:"amount_decimals"`
	RecentTxCount          int    `json:"recent_tx_count"`
	RefreshIntervalSeconds int    `json:"refresh_interval_seconds"`
}

// Config is the full on-disk configuration.
type Config struct {
	Wallets        []WalletConfig
	Node           NodeConfig
	SelectedWallet int
	Global         GlobalConfig
}

// DefaultGlobalConfig returns the settings used when the file omits them.
func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		PrivacyTimeoutSeconds:  60,
		AmountDecimals:         2,
		RecentTxCount:          3,
		RefreshIntervalSeconds: 30,
	}
}

// RefreshInterval returns the polling interval, never below one second.
func (g GlobalConfig) RefreshInterval() time.Duration {
	if g.RefreshIntervalSeconds < 1 {
		return time.Second
	}
	return time.Duration(g.RefreshIntervalSeconds) * time.Second
}

func GetConfigPath(customPath string) (string, error) {
	if customPath != "" {
		return customPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

func LoadConfigFromFile(path string) (Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Config{Wallets: []WalletConfig{}, Global: DefaultGlobalConfig()}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadConfig(f)
}

func LoadConfig(r io.Reader) (Config, error) {
	var raw struct {
		Wallets   json.RawMessage `json:"wallets"`
		Addresses []string        `json:"addresses"` // Legacy
		Node      struct {
			NodeConfig
			Decimals *int `json:"decimals"`
		} `json:"node"`
		SelectedWallet         string  `json:"selected_wallet"`
		PrivacyTimeoutSeconds  *int    `json:"privacy_timeout_seconds"`
		DisplayUnit            *string `json:"display_unit"`
		AmountDecimals         *int    `json:"amount_decimals"`
		RecentTxCount          *int    `json:"recent_tx_count"`
		RefreshIntervalSeconds *int    `json:"refresh_interval_seconds"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	var wallets []WalletConfig
	if len(raw.Wallets) > 0 {
		if err := json.Unmarshal(raw.Wallets, &wallets); err != nil {
			// Wallets given as bare address strings
			var strAddrs []string
			if err2 := json.Unmarshal(raw.Wallets, &strAddrs); err2 != nil {
				return Config{}, fmt.Errorf("invalid wallets: %w", err)
			}
			wallets = nil
			for _, a := range strAddrs {
				wallets = append(wallets, WalletConfig{Address: a})
			}
		}
	}
	// Migration for legacy config
	if len(wallets) == 0 {
		for _, a := range raw.Addresses {
			wallets = append(wallets, WalletConfig{Address: a})
		}
	}
	for i := range wallets {
		wallets[i].Address = strings.TrimSpace(wallets[i].Address)
	}

	node := raw.Node.NodeConfig
	node.Decimals = 18
	if raw.Node.Decimals != nil {
		node.Decimals = *raw.Node.Decimals
	}

	selectedIdx := 0
	for i, w := range wallets {
		if raw.SelectedWallet != "" && (w.Name == raw.SelectedWallet || strings.EqualFold(w.Address, raw.SelectedWallet)) {
			selectedIdx = i
			break
		}
	}

	globalCfg := DefaultGlobalConfig()
	if raw.PrivacyTimeoutSeconds != nil {
		globalCfg.PrivacyTimeoutSeconds = *raw.PrivacyTimeoutSeconds
	}
	if raw.DisplayUnit != nil {
		globalCfg.DisplayUnit = *raw.DisplayUnit
	}
	if raw.AmountDecimals != nil {
		globalCfg.AmountDecimals = *raw.AmountDecimals
	}
	if raw.RecentTxCount != nil {
		globalCfg.RecentTxCount = *raw.RecentTxCount
	}
	if raw.RefreshIntervalSeconds != nil {
		globalCfg.RefreshIntervalSeconds = *raw.RefreshIntervalSeconds
	}

	return Config{
		Wallets:        wallets,
		Node:           node,
		SelectedWallet: selectedIdx,
		Global:         globalCfg,
	}, nil
}

// Validate checks what the watcher needs to run.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Node.Name) == "" {
		return fmt.Errorf("validation failed: node has no name")
	}
	if len(c.Node.RPCURLs) == 0 {
		return fmt.Errorf("validation failed: node %s has no RPC URLs", c.Node.Name)
	}
	for i, w := range c.Wallets {
		if strings.TrimSpace(w.Address) == "" {
			return fmt.Errorf("validation failed: wallet at index %d has no address", i)
		}
	}
	return nil
}

func SaveConfig(cfg Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	selectedName := ""
	if cfg.SelectedWallet >= 0 && cfg.SelectedWallet < len(cfg.Wallets) {
		selectedName = cfg.Wallets[cfg.SelectedWallet].Name
		if selectedName == "" {
			selectedName = cfg.Wallets[cfg.SelectedWallet].Address
		}
	}
	out := struct {
		Wallets                []WalletConfig `json:"wallets"`
		Node                   NodeConfig     `json:"node"`
		SelectedWallet         string         `json:"selected_wallet"`
		PrivacyTimeoutSeconds  int            `json:"privacy_timeout_seconds"`
		DisplayUnit            string         `json:"display_unit"`
		AmountDecimals         int            `json:"amount_decimals"`
		RecentTxCount          int            `json:"recent_tx_count"`
		RefreshIntervalSeconds int            `json:"refresh_interval_seconds"`
	}{
		Wallets:                cfg.Wallets,
		Node:                   cfg.Node,
		SelectedWallet:         selectedName,
		PrivacyTimeoutSeconds:  cfg.Global.PrivacyTimeoutSeconds,
		DisplayUnit:            cfg.Global.DisplayUnit,
		AmountDecimals:         cfg.Global.AmountDecimals,
		RecentTxCount:          cfg.Global.RecentTxCount,
		RefreshIntervalSeconds: cfg.Global.RefreshIntervalSeconds,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	// Create a backup of the existing file
	if _, err := os.Stat(path); err == nil {
		backupPath := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405"))
		input, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read existing config for backup: %w", err)
		}
		if err := os.WriteFile(backupPath, input, 0644); err != nil {
			return fmt.Errorf("failed to write backup config: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return os.Rename(tmpPath, path)
}

func RestoreLastBackup(configPath string) error {
	matches, err := filepath.Glob(configPath + ".*.bak")
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no backup files found")
	}
	sort.Strings(matches)
	lastBackup := matches[len(matches)-1]

	data, err := os.ReadFile(lastBackup)
	if err != nil {
		return fmt.Errorf("failed to read backup %s: %w", lastBackup, err)
	}
	return os.WriteFile(configPath, data, 0644)
}
