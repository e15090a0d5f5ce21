package rpc

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"seedwatch/pkg/config"
	"seedwatch/pkg/models"
	"seedwatch/pkg/utils"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

var RequestTimeout = 10 * time.Second

// BlockScanDepth is how many of the latest blocks are scanned for wallet transactions.
var BlockScanDepth = 20

// Staking contract selectors.
var (
	selectorBalanceOf   = []byte{0x70, 0xa0, 0x82, 0x31} // balanceOf(address)
	selectorTotalSupply = []byte{0x18, 0x16, 0x0d, 0xdd} // totalSupply()
	selectorEarned      = []byte{0x00, 0x8c, 0xc2, 0x62} // earned(address)
)

// withClient runs fn against each RPC URL in turn until one succeeds.
// It returns the URLs that failed along the way.
func withClient(rpcURLs []string, fn func(ctx context.Context, client *ethclient.Client) error) ([]string, error) {
	var failed []string
	lastErr := fmt.Errorf("no RPC URLs configured")
	for _, rpcURL := range rpcURLs {
		ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
		client, err := ethclient.DialContext(ctx, rpcURL)
		if err != nil {
			cancel()
			failed = append(failed, rpcURL)
			lastErr = err
			continue
		}
		err = fn(ctx, client)
		client.Close()
		cancel()
		if err != nil {
			failed = append(failed, rpcURL)
			lastErr = fmt.Errorf("%s: %w", rpcURL, err)
			continue
		}
		return failed, nil
	}
	return failed, lastErr
}

// callUint calls a view function returning a single uint256. A non-nil account
// is ABI-encoded as the only argument.
func callUint(ctx context.Context, client *ethclient.Client, contract common.Address, selector []byte, account *common.Address) (*big.Int, error) {
	data := make([]byte, 4, 4+32)
	copy(data, selector)
	if account != nil {
		arg := make([]byte, 32)
		copy(arg[12:], account.Bytes())
		data = append(data, arg...)
	}
	msg := ethereum.CallMsg{To: &contract, Data: data}
	result, err := client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(result), nil
}

// FetchBalances fetches the balance buckets of a wallet.
func FetchBalances(node config.NodeConfig, address string) (models.BalanceData, error) {
	account := common.HexToAddress(address)
	var bal models.Balances

	failed, err := withClient(node.RPCURLs, func(ctx context.Context, client *ethclient.Client) error {
		confirmed, err := client.BalanceAt(ctx, account, nil)
		if err != nil {
			return err
		}
		pending, err := client.PendingBalanceAt(ctx, account)
		if err != nil {
			return err
		}
		unconfirmed := new(big.Int).Sub(pending, confirmed)
		if unconfirmed.Sign() < 0 {
			unconfirmed.SetInt64(0)
		}

		stake, immature := new(big.Int), new(big.Int)
		if node.StakingContract != "" {
			contract := common.HexToAddress(node.StakingContract)
			stake, err = callUint(ctx, client, contract, selectorBalanceOf, &account)
			if err != nil {
				return fmt.Errorf("staking balanceOf: %w", err)
			}
			// Not every staking contract exposes earned(); treat a failed call as no rewards.
			if earned, err := callUint(ctx, client, contract, selectorEarned, &account); err == nil {
				immature = earned
			}
		}

		bal = models.Balances{
			Balance:     utils.ScaleInt(confirmed, node.Decimals),
			Stake:       utils.ScaleInt(stake, node.Decimals),
			Unconfirmed: utils.ScaleInt(unconfirmed, node.Decimals),
			Immature:    utils.ScaleInt(immature, node.Decimals),
		}
		return nil
	})
	if err != nil {
		return models.BalanceData{Address: address, FailedRPCs: failed, Err: err}, err
	}
	return models.BalanceData{Address: address, Balances: bal, FailedRPCs: failed}, nil
}

// FetchStakingData fetches the wallet's own weight and the total network weight
// from the staking contract. The network weight includes the wallet's own stake.
func FetchStakingData(node config.NodeConfig, address string) (models.StakingData, error) {
	if node.StakingContract == "" {
		err := fmt.Errorf("node %s has no staking contract configured", node.Name)
		return models.StakingData{Address: address, Err: err}, err
	}
	account := common.HexToAddress(address)
	contract := common.HexToAddress(node.StakingContract)
	var weight, network float64

	failed, err := withClient(node.RPCURLs, func(ctx context.Context, client *ethclient.Client) error {
		own, err := callUint(ctx, client, contract, selectorBalanceOf, &account)
		if err != nil {
			return fmt.Errorf("balanceOf: %w", err)
		}
		total, err := callUint(ctx, client, contract, selectorTotalSupply, nil)
		if err != nil {
			return fmt.Errorf("totalSupply: %w", err)
		}
		weight = utils.BigFloatToFloat64(utils.ScaleInt(own, node.Decimals))
		network = utils.BigFloatToFloat64(utils.ScaleInt(total, node.Decimals))
		return nil
	})
	if err != nil {
		return models.StakingData{Address: address, FailedRPCs: failed, Err: err}, err
	}
	return models.StakingData{Address: address, Weight: weight, NetworkWeight: network, FailedRPCs: failed}, nil
}

// FetchTransactions scans the latest blocks for transactions touching the
// wallet and returns at most limit of them, newest first.
func FetchTransactions(node config.NodeConfig, address string, limit int) (models.TransactionData, error) {
	targetAddr := common.HexToAddress(address)
	var txs []models.Transaction

	failed, err := withClient(node.RPCURLs, func(ctx context.Context, client *ethclient.Client) error {
		txs = []models.Transaction{} // reset
		header, err := client.HeaderByNumber(ctx, nil)
		if err != nil {
			return err
		}
		chainID, err := client.ChainID(ctx)
		if err != nil {
			return err
		}
		signer := types.NewLondonSigner(chainID)
		head := header.Number.Uint64()

		var blockErr error
		for i := 0; i < BlockScanDepth && uint64(i) <= head; i++ {
			if len(txs) >= limit {
				break
			}
			blockNum := head - uint64(i)
			block, err := client.BlockByNumber(ctx, new(big.Int).SetUint64(blockNum))
			if err != nil {
				blockErr = err
				continue
			}

			for _, tx := range block.Transactions() {
				if len(txs) >= limit {
					break
				}
				from, err := types.Sender(signer, tx)
				if err != nil {
					continue
				}
				isTo := tx.To() != nil && *tx.To() == targetAddr
				isFrom := from == targetAddr
				if !isTo && !isFrom {
					continue
				}

				amount := utils.ScaleInt(tx.Value(), node.Decimals)
				if isFrom {
					amount.Neg(amount)
				}
				t := models.Transaction{
					Hash:          tx.Hash().Hex(),
					From:          from.Hex(),
					To:            "Contract",
					Amount:        amount,
					BlockNumber:   blockNum,
					Confirmations: head - blockNum + 1,
					Time:          time.Unix(int64(block.Time()), 0),
				}
				if tx.To() != nil {
					t.To = tx.To().Hex()
				}
				txs = append(txs, t)
			}
		}
		if blockErr != nil && len(txs) == 0 {
			return blockErr
		}
		return nil
	})
	if err != nil {
		return models.TransactionData{Address: address, FailedRPCs: failed, Err: err}, err
	}
	return models.TransactionData{Address: address, Transactions: txs, FailedRPCs: failed}, nil
}

// FetchSyncStatus reports whether the node is still syncing.
func FetchSyncStatus(node config.NodeConfig) (models.SyncStatus, error) {
	var status models.SyncStatus
	_, err := withClient(node.RPCURLs, func(ctx context.Context, client *ethclient.Client) error {
		progress, err := client.SyncProgress(ctx)
		if err != nil {
			return err
		}
		if progress == nil {
			status = models.SyncStatus{}
			return nil
		}
		status = models.SyncStatus{
			Syncing:      !progress.Done(),
			CurrentBlock: progress.CurrentBlock,
			HighestBlock: progress.HighestBlock,
		}
		return nil
	})
	if err != nil {
		return models.SyncStatus{Err: err}, err
	}
	return status, nil
}

// FetchChainID asks a single RPC URL for its chain ID.
func FetchChainID(rpcURL string) (*big.Int, error) {
	var id *big.Int
	_, err := withClient([]string{rpcURL}, func(ctx context.Context, client *ethclient.Client) error {
		var err error
		id, err = client.ChainID(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	return id, nil
}
