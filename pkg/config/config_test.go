package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		Wallets: []WalletConfig{{Address: "0x123", Name: "Test"}},
		Node: NodeConfig{
			Name:            "Seednet",
			RPCURLs:         []string{"http://localhost:8545"},
			Symbol:          "SEED",
			Decimals:        18,
			StakingContract: "0x1234567890123456789012345678901234567890",
		},
		Global: GlobalConfig{PrivacyTimeoutSeconds: 120, RecentTxCount: 3},
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	reader := strings.NewReader(`{ "wallets": [`)
	_, err := LoadConfig(reader)
	if err == nil {
		t.Error("Expected error loading malformed config, got nil")
	}
}

func TestLoadConfigFromFile_Missing(t *testing.T) {
	cfg, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(cfg.Wallets) != 0 {
		t.Errorf("Expected no wallets, got %d", len(cfg.Wallets))
	}
	if cfg.Global != DefaultGlobalConfig() {
		t.Errorf("Expected default global config, got %+v", cfg.Global)
	}
}

func TestSaveConfig(t *testing.T) {
	tmpPath := filepath.Join(t.TempDir(), "config.json")

	cfg := testConfig()
	if err := SaveConfig(cfg, tmpPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfigFromFile(tmpPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if len(loaded.Wallets) != 1 || loaded.Wallets[0].Address != "0x123" {
		t.Errorf("Wallet mismatch")
	}
	if loaded.Node.Name != "Seednet" || loaded.Node.StakingContract != cfg.Node.StakingContract {
		t.Errorf("Node mismatch")
	}
	if loaded.SelectedWallet != 0 {
		t.Errorf("Selected index mismatch")
	}
	if loaded.Global.PrivacyTimeoutSeconds != 120 {
		t.Errorf("Global config mismatch")
	}
}

func TestSaveConfig_BackupAndRestore(t *testing.T) {
	tmpPath := filepath.Join(t.TempDir(), "config.json")

	cfg := testConfig()
	if err := SaveConfig(cfg, tmpPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	cfg.Node.Name = "Renamed"
	if err := SaveConfig(cfg, tmpPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	backups, _ := filepath.Glob(tmpPath + ".*.bak")
	if len(backups) == 0 {
		t.Fatal("Expected a backup file after the second save")
	}

	if err := RestoreLastBackup(tmpPath); err != nil {
		t.Fatalf("RestoreLastBackup failed: %v", err)
	}
	restored, err := LoadConfigFromFile(tmpPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if restored.Node.Name != "Seednet" {
		t.Errorf("Expected restored node name Seednet, got %s", restored.Node.Name)
	}
}

func TestRestoreLastBackup_None(t *testing.T) {
	if err := RestoreLastBackup(filepath.Join(t.TempDir(), "config.json")); err == nil {
		t.Error("Expected error when no backups exist")
	}
}

func TestSaveConfig_Validation(t *testing.T) {
	tmpPath := filepath.Join(t.TempDir(), "config.json")

	cfg := testConfig()
	cfg.Node.RPCURLs = nil
	if err := SaveConfig(cfg, tmpPath); err == nil {
		t.Error("Expected validation error for node without RPC URLs")
	}

	cfg = testConfig()
	cfg.Node.Name = " "
	if err := SaveConfig(cfg, tmpPath); err == nil {
		t.Error("Expected validation error for node without name")
	}

	cfg = testConfig()
	cfg.Wallets = append(cfg.Wallets, WalletConfig{Address: ""})
	if err := SaveConfig(cfg, tmpPath); err == nil {
		t.Error("Expected validation error for empty wallet address")
	}

	if _, err := os.Stat(tmpPath); !os.IsNotExist(err) {
		t.Error("Invalid configs must not be written")
	}
}

func TestLoadConfig_TableDriven(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		jsonContent string
		expectError bool
		validate    func(*testing.T, Config)
	}{
		{
			name: "Valid Modern Config",
			jsonContent: `{
				"wallets": [{"address": "0x123", "name": "Main"}, {"address": "0x456", "name": "Cold"}],
				"node": {"name": "Seednet", "rpc_urls": ["http://seed"], "symbol": "SEED", "decimals": 8},
				"selected_wallet": "Cold",
				"privacy_timeout_seconds": 100,
				"display_unit": "mSEED"
			}`,
			validate: func(t *testing.T, c Config) {
				if len(c.Wallets) != 2 || c.Wallets[0].Address != "0x123" {
					t.Errorf("Wallet mismatch")
				}
				if c.Node.Name != "Seednet" || c.Node.Decimals != 8 {
					t.Errorf("Node mismatch")
				}
				if c.SelectedWallet != 1 {
					t.Errorf("Expected selected wallet 1, got %d", c.SelectedWallet)
				}
				if c.Global.PrivacyTimeoutSeconds != 100 || c.Global.DisplayUnit != "mSEED" {
					t.Errorf("Global config mismatch")
				}
			},
		},
		{
			name: "Wallets As Strings",
			jsonContent: `{
				"wallets": [" 0x123 ", "0x456"],
				"node": {"name": "Seednet", "rpc_urls": ["http://seed"]}
			}`,
			validate: func(t *testing.T, c Config) {
				if len(c.Wallets) != 2 {
					t.Fatalf("Expected 2 wallets, got %d", len(c.Wallets))
				}
				if c.Wallets[0].Address != "0x123" || c.Wallets[1].Address != "0x456" {
					t.Errorf("Wallet content mismatch")
				}
			},
		},
		{
			name: "Legacy Addresses",
			jsonContent: `{
				"addresses": ["0xabc"],
				"node": {"name": "Seednet", "rpc_urls": ["http://seed"]}
			}`,
			validate: func(t *testing.T, c Config) {
				if len(c.Wallets) != 1 || c.Wallets[0].Address != "0xabc" {
					t.Errorf("Expected legacy address migration, got %+v", c.Wallets)
				}
			},
		},
		{
			name:        "Malformed JSON",
			jsonContent: `{ "wallets": [ unclosed_array`,
			expectError: true,
		},
		{
			name:        "Wallets Wrong Type",
			jsonContent: `{ "wallets": 42 }`,
			expectError: true,
		},
		{
			name: "Partial Config (Defaults)",
			jsonContent: `{
				"wallets": [{"address": "0x123"}],
				"node": {"name": "Seednet", "rpc_urls": ["http://seed"]}
			}`,
			validate: func(t *testing.T, c Config) {
				if c.Global.PrivacyTimeoutSeconds != 60 {
					t.Errorf("Expected default privacy timeout 60, got %d", c.Global.PrivacyTimeoutSeconds)
				}
				if c.Global.RecentTxCount != 3 {
					t.Errorf("Expected default recent tx count 3, got %d", c.Global.RecentTxCount)
				}
				if c.Node.Decimals != 18 {
					t.Errorf("Expected default decimals 18, got %d", c.Node.Decimals)
				}
				if c.Global.RefreshInterval() != 30*time.Second {
					t.Errorf("Expected 30s refresh, got %s", c.Global.RefreshInterval())
				}
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := LoadConfig(strings.NewReader(tt.jsonContent))

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				if tt.validate != nil {
					tt.validate(t, cfg)
				}
			}
		})
	}
}

func TestLoadConfig_ZeroDecimals(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`{"node":{"name":"Seednet","rpc_urls":["http://seed"],"decimals":0}}`))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Node.Decimals != 0 {
		t.Fatalf("Expected explicit 0 decimals to be kept, got %d", cfg.Node.Decimals)
	}

	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	reloaded, err := LoadConfigFromFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFromFile failed: %v", err)
	}
	if reloaded.Node.Decimals != 0 {
		t.Errorf("Expected 0 decimals after save, got %d", reloaded.Node.Decimals)
	}
}

func TestRefreshInterval_Floor(t *testing.T) {
	g := GlobalConfig{RefreshIntervalSeconds: 0}
	if g.RefreshInterval() != time.Second {
		t.Errorf("Expected 1s floor, got %s", g.RefreshInterval())
	}
}

func TestSaveConfig_PermissionError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	tmpDir := t.TempDir()
	if err := os.Chmod(tmpDir, 0500); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chmod(tmpDir, 0700) }()

	configPath := filepath.Join(tmpDir, "config.json")
	if err := SaveConfig(testConfig(), configPath); err == nil {
		t.Error("Expected permission error, got nil")
	}
}
