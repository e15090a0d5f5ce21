package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"

	"seedwatch/pkg/config"
	"seedwatch/pkg/models"
	"seedwatch/pkg/rpc"
)

type testOptions struct {
	JSON   bool
	DryRun bool
}

// runConfigTest checks the configuration structure and every RPC URL of the
// node, and records the observed chain ID in the config file when it was
// unset. It returns the report and whether the configuration is usable.
func runConfigTest(cfg config.Config, path string, opts testOptions, out io.Writer) (models.TestReport, bool) {
	report := models.TestReport{
		ConfigPath:     path,
		ValidStructure: true,
		DryRun:         opts.DryRun,
		Node:           cfg.Node.Name,
		ConfigChainID:  cfg.Node.ChainID,
		WalletCount:    len(cfg.Wallets),
	}
	say := func(format string, args ...interface{}) {
		if !opts.JSON {
			fmt.Fprintf(out, format, args...)
		}
	}
	finish := func(ok bool) (models.TestReport, bool) {
		if opts.JSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			_ = enc.Encode(report)
		}
		return report, ok
	}

	say("Testing configuration at: %s\n", path)

	if err := cfg.Validate(); err != nil {
		report.ValidStructure = false
		report.StructureErrors = append(report.StructureErrors, err.Error())
		say("Error: %v\n", err)
	}
	if cfg.Node.StakingContract == "" {
		report.StructureErrors = append(report.StructureErrors, "node has no staking contract; seeding strength will not be available")
		say("Warning: node has no staking contract; seeding strength will not be available\n")
	}
	if !report.ValidStructure {
		return finish(false)
	}

	say("Found %d wallets on node %s (%s).\n", len(cfg.Wallets), cfg.Node.Name, cfg.Node.Symbol)

	var observed *big.Int
	for _, url := range cfg.Node.RPCURLs {
		result := models.RPCResult{URL: url}
		say("  RPC: %s ... ", url)

		id, err := rpc.FetchChainID(url)
		if err != nil {
			result.Status = "error"
			result.Error = err.Error()
			say("Failed: %v\n", err)
			report.RPCs = append(report.RPCs, result)
			continue
		}

		result.Status = "ok"
		result.ChainID = id.Int64()
		say("OK (ChainID: %s)", id.String())
		if observed == nil {
			observed = id
			report.ObservedChainID = id.Int64()
		} else if observed.Cmp(id) != 0 {
			say(" - WARNING: ChainID mismatch with previous RPC (%s)", observed.String())
			report.Inconsistent = true
		}

		if cfg.Node.ChainID != 0 {
			if id.Cmp(big.NewInt(cfg.Node.ChainID)) != 0 {
				result.Error = fmt.Sprintf("Mismatch! Expected %d", cfg.Node.ChainID)
				say(" - MISMATCH! Expected %d", cfg.Node.ChainID)
			} else {
				say(" - Verified")
			}
		} else if !report.ConfigUpdated {
			cfg.Node.ChainID = id.Int64()
			report.ConfigUpdated = true
			say(" - UPDATED CONFIG")
			if opts.DryRun {
				say(" (DRY RUN)")
			}
		}
		say("\n")
		report.RPCs = append(report.RPCs, result)
	}

	if report.Inconsistent {
		say("\nWARNING: Inconsistent RPCs detected!\n")
		say("The RPCs of %s return conflicting Chain IDs.\n", cfg.Node.Name)
	}

	if report.ConfigUpdated {
		say("\nUpdating configuration with fetched Chain ID...\n")
		if opts.DryRun {
			say("Dry run enabled: Configuration NOT saved.\n")
		} else if err := config.SaveConfig(cfg, path); err != nil {
			report.SaveError = err.Error()
			say("Failed to save config: %v\n", err)
		} else {
			say("Configuration saved successfully.\n")
		}
	}

	return finish(true)
}
