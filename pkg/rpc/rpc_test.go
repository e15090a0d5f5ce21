package rpc

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"seedwatch/pkg/config"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWallet  = "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"
	testStaking = "0x1234567890123456789012345678901234567890"
)

func coins(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func word(v *big.Int) string {
	return fmt.Sprintf("0x%064x", v)
}

type rpcRequest struct {
	ID     int           `json:"id"`
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

// fakeNode answers the JSON-RPC calls the package makes.
type fakeNode struct {
	balance     *big.Int
	pending     *big.Int
	stake       *big.Int
	totalSupply *big.Int
	earned      *big.Int // nil makes earned() revert
	syncing     interface{}
	blockTxs    []map[string]interface{}
}

func (f *fakeNode) callData(params []interface{}) string {
	if len(params) == 0 {
		return ""
	}
	arg, _ := params[0].(map[string]interface{})
	if s, ok := arg["input"].(string); ok {
		return s
	}
	s, _ := arg["data"].(string)
	return s
}

func (f *fakeNode) block(number string, full bool) map[string]interface{} {
	block := map[string]interface{}{
		"number":           "0x1000",
		"hash":             "0x0000000000000000000000000000000000000000000000000000000000000001",
		"parentHash":       "0x0000000000000000000000000000000000000000000000000000000000000002",
		"sha3Uncles":       "0x1dcc4de8dec75d7aab85b567b6ccd41ad312451b948a7413f0a142fd40d49347",
		"timestamp":        "0x5f5e1000",
		"miner":            "0x0000000000000000000000000000000000000000",
		"gasLimit":         "0x1",
		"gasUsed":          "0x0",
		"difficulty":       "0x0",
		"extraData":        "0x",
		"mixHash":          "0x0000000000000000000000000000000000000000000000000000000000000000",
		"nonce":            "0x0000000000000000",
		"stateRoot":        "0x0000000000000000000000000000000000000000000000000000000000000000",
		"receiptsRoot":     "0x0000000000000000000000000000000000000000000000000000000000000000",
		"transactionsRoot": "0x56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421",
		"logsBloom":        "0x" + strings.Repeat("00", 256),
		"transactions":     []interface{}{},
	}
	if number == "0x1000" && full && len(f.blockTxs) > 0 {
		block["transactionsRoot"] = "0x0000000000000000000000000000000000000000000000000000000000000001"
		block["transactions"] = f.blockTxs
	}
	return block
}

func (f *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	switch req.Method {
	case "eth_chainId":
		resp["result"] = "0x1"
	case "eth_getBalance":
		tag, _ := req.Params[1].(string)
		if tag == "pending" {
			resp["result"] = fmt.Sprintf("0x%x", f.pending)
		} else {
			resp["result"] = fmt.Sprintf("0x%x", f.balance)
		}
	case "eth_call":
		data := f.callData(req.Params)
		switch {
		case strings.HasPrefix(data, "0x70a08231"):
			resp["result"] = word(f.stake)
		case strings.HasPrefix(data, "0x18160ddd"):
			resp["result"] = word(f.totalSupply)
		case strings.HasPrefix(data, "0x008cc262") && f.earned != nil:
			resp["result"] = word(f.earned)
		default:
			delete(resp, "result")
			resp["error"] = map[string]interface{}{"code": 3, "message": "execution reverted"}
		}
	case "eth_syncing":
		resp["result"] = f.syncing
	case "eth_getBlockByNumber":
		number, _ := req.Params[0].(string)
		full, _ := req.Params[1].(bool)
		resp["result"] = f.block(number, full)
	default:
		resp["result"] = "0x0"
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		balance:     coins(25),
		pending:     coins(27),
		stake:       coins(100000),
		totalSupply: coins(1000000),
		earned:      coins(3),
		syncing:     false,
	}
}

func testNode(urls ...string) config.NodeConfig {
	return config.NodeConfig{
		Name:            "Seednet",
		RPCURLs:         urls,
		Symbol:          "SEED",
		Decimals:        18,
		StakingContract: testStaking,
	}
}

func asFloat(t *testing.T, f *big.Float) float64 {
	t.Helper()
	require.NotNil(t, f)
	v, _ := f.Float64()
	return v
}

func TestFetchBalances(t *testing.T) {
	server := httptest.NewServer(newFakeNode())
	defer server.Close()

	data, err := FetchBalances(testNode(server.URL), testWallet)
	require.NoError(t, err)
	assert.Equal(t, 25.0, asFloat(t, data.Balances.Balance))
	assert.Equal(t, 2.0, asFloat(t, data.Balances.Unconfirmed))
	assert.Equal(t, 100000.0, asFloat(t, data.Balances.Stake))
	assert.Equal(t, 3.0, asFloat(t, data.Balances.Immature))
	assert.Empty(t, data.FailedRPCs)
}

func TestFetchBalances_NoRewardsFunction(t *testing.T) {
	node := newFakeNode()
	node.earned = nil
	node.pending = coins(20) // pending below confirmed never shows as negative
	server := httptest.NewServer(node)
	defer server.Close()

	data, err := FetchBalances(testNode(server.URL), testWallet)
	require.NoError(t, err)
	assert.Equal(t, 0.0, asFloat(t, data.Balances.Immature))
	assert.Equal(t, 0.0, asFloat(t, data.Balances.Unconfirmed))
	assert.False(t, data.Balances.HasImmature())
}

func TestFetchBalances_Failover(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer broken.Close()
	good := httptest.NewServer(newFakeNode())
	defer good.Close()

	data, err := FetchBalances(testNode(broken.URL, good.URL), testWallet)
	require.NoError(t, err)
	assert.Equal(t, []string{broken.URL}, data.FailedRPCs)
	assert.Equal(t, 25.0, asFloat(t, data.Balances.Balance))
}

func TestFetchBalances_AllFail(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer broken.Close()

	data, err := FetchBalances(testNode(broken.URL), testWallet)
	assert.Error(t, err)
	assert.Equal(t, err, data.Err)
	assert.Equal(t, []string{broken.URL}, data.FailedRPCs)

	_, err = FetchBalances(testNode(), testWallet)
	assert.Error(t, err)
}

func TestFetchStakingData(t *testing.T) {
	server := httptest.NewServer(newFakeNode())
	defer server.Close()

	data, err := FetchStakingData(testNode(server.URL), testWallet)
	require.NoError(t, err)
	assert.Equal(t, 100000.0, data.Weight)
	assert.Equal(t, 1000000.0, data.NetworkWeight)

	node := testNode(server.URL)
	node.StakingContract = ""
	data, err = FetchStakingData(node, testWallet)
	assert.Error(t, err)
	assert.Error(t, data.Err)
}

func TestFetchSyncStatus(t *testing.T) {
	node := newFakeNode()
	server := httptest.NewServer(node)
	defer server.Close()

	status, err := FetchSyncStatus(testNode(server.URL))
	require.NoError(t, err)
	assert.False(t, status.Syncing)

	node.syncing = map[string]interface{}{
		"startingBlock": "0x0",
		"currentBlock":  "0x10",
		"highestBlock":  "0x20",
	}
	status, err = FetchSyncStatus(testNode(server.URL))
	require.NoError(t, err)
	assert.True(t, status.Syncing)
	assert.Equal(t, uint64(0x10), status.CurrentBlock)
	assert.Equal(t, uint64(0x20), status.HighestBlock)
}

func TestFetchChainID(t *testing.T) {
	server := httptest.NewServer(newFakeNode())
	defer server.Close()

	id, err := FetchChainID(server.URL)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.Int64())
}

func signedTx(t *testing.T, key *ecdsa.PrivateKey, nonce uint64, to common.Address, value *big.Int) (*types.Transaction, map[string]interface{}) {
	t.Helper()
	tx := types.NewTransaction(nonce, to, value, 21000, big.NewInt(20000000000), nil)
	signed, err := types.SignTx(tx, types.NewLondonSigner(big.NewInt(1)), key)
	require.NoError(t, err)

	v, r, s := signed.RawSignatureValues()
	return signed, map[string]interface{}{
		"from":        crypto.PubkeyToAddress(key.PublicKey).Hex(),
		"to":          to.Hex(),
		"hash":        signed.Hash().Hex(),
		"value":       fmt.Sprintf("0x%x", value),
		"gas":         "0x5208",
		"gasPrice":    "0x4a817c800",
		"nonce":       fmt.Sprintf("0x%x", nonce),
		"blockNumber": "0x1000",
		"input":       "0x",
		"v":           "0x" + v.Text(16),
		"r":           "0x" + r.Text(16),
		"s":           "0x" + s.Text(16),
		"type":        "0x0",
	}
}

func TestFetchTransactions(t *testing.T) {
	walletKey, _ := crypto.GenerateKey()
	wallet := crypto.PubkeyToAddress(walletKey.PublicKey)
	otherKey, _ := crypto.GenerateKey()
	other := crypto.PubkeyToAddress(otherKey.PublicKey)
	stranger, _ := crypto.GenerateKey()

	incoming, incomingJSON := signedTx(t, otherKey, 1, wallet, coins(5))
	outgoing, outgoingJSON := signedTx(t, walletKey, 7, other, coins(2))
	_, unrelatedJSON := signedTx(t, stranger, 3, other, coins(9))

	node := newFakeNode()
	node.blockTxs = []map[string]interface{}{incomingJSON, unrelatedJSON, outgoingJSON}
	server := httptest.NewServer(node)
	defer server.Close()

	data, err := FetchTransactions(testNode(server.URL), wallet.Hex(), 3)
	require.NoError(t, err)
	require.Len(t, data.Transactions, 2)

	in := data.Transactions[0]
	assert.Equal(t, incoming.Hash().Hex(), in.Hash)
	assert.True(t, strings.EqualFold(other.Hex(), in.From))
	assert.Equal(t, 5.0, asFloat(t, in.Amount))
	assert.Equal(t, uint64(0x1000), in.BlockNumber)
	assert.Equal(t, uint64(1), in.Confirmations)
	assert.False(t, in.Confirmed())

	out := data.Transactions[1]
	assert.Equal(t, outgoing.Hash().Hex(), out.Hash)
	assert.Equal(t, -2.0, asFloat(t, out.Amount))
	assert.True(t, out.Outgoing())

	limited, err := FetchTransactions(testNode(server.URL), wallet.Hex(), 1)
	require.NoError(t, err)
	assert.Len(t, limited.Transactions, 1)
}

func TestFetchTransactions_Empty(t *testing.T) {
	server := httptest.NewServer(newFakeNode())
	defer server.Close()

	data, err := FetchTransactions(testNode(server.URL), testWallet, 3)
	require.NoError(t, err)
	assert.Empty(t, data.Transactions)
}
