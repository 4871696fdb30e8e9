package lotterycontract

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ABI of the God's Hand contract, reduced to the lottery surface.
const lotteryABI = `[
	{"inputs":[{"internalType":"bytes32","name":"_disasterHash","type":"bytes32"}],"name":"lottery","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"nonpayable","type":"function"},
	{"anonymous":false,"inputs":[{"indexed":true,"internalType":"bytes32","name":"disasterHash","type":"bytes32"},{"indexed":true,"internalType":"address","name":"winner","type":"address"},{"indexed":false,"internalType":"uint256","name":"participantCount","type":"uint256"}],"name":"LotteryWinner","type":"event"}
]`

const (
	receiptPollInterval = 2 * time.Second

	// receiptWaitTimeout bounds the mining wait. A transaction dropped from
	// the mempool would otherwise keep the poll loop (and its caller) stuck
	// forever; hitting the bound fails the execution so the outcome gets
	// recorded.
	receiptWaitTimeout = 3 * time.Minute

	// gasLimitBufferPercent pads the gas estimate so a marginal estimate
	// does not revert the transaction.
	gasLimitBufferPercent = 20
)

var (
	// ErrNoSigningKey is returned when no scheduler private key was
	// configured; execution cannot proceed without a signer.
	ErrNoSigningKey = errors.New("lottery signing key not configured")

	// ErrWinnerEventNotFound is returned when the transaction mined but no
	// LotteryWinner log appeared in the receipt.
	ErrWinnerEventNotFound = errors.New("LotteryWinner event not found in transaction receipt")

	// ErrTransactionReverted is returned when the mined transaction has a
	// failed receipt status.
	ErrTransactionReverted = errors.New("lottery transaction reverted")
)

// Result is the interpreted outcome of one lottery() call. Winner is empty
// when the contract resolved the lottery without participants.
type Result struct {
	Winner           string `json:"winner"`
	ParticipantCount int64  `json:"participantCount"`
	TransactionHash  string `json:"transactionHash"`
	GasUsed          string `json:"gasUsed"`
}

// ethBackend is the subset of the JSON-RPC client the gateway uses, kept
// narrow so tests can substitute a fake.
type ethBackend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
}

// EVMGateway executes the contract's lottery() operation over JSON-RPC and
// interprets the receipt logs.
type EVMGateway struct {
	backend      ethBackend
	abi          abi.ABI
	contract     common.Address
	chainID      *big.Int
	key          *ecdsa.PrivateKey
	from         common.Address
	pollInterval time.Duration
	waitTimeout  time.Duration
}

// NewEVMGateway dials the RPC endpoint and prepares the signer. An empty
// private key is allowed; executions will then fail with ErrNoSigningKey,
// which callers record as a failed lottery.
func NewEVMGateway(rpcURL, contractAddress, privateKeyHex string, chainID int64) (*EVMGateway, error) {
	parsed, err := abi.JSON(strings.NewReader(lotteryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse lottery ABI: %w", err)
	}

	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", contractAddress)
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	g := &EVMGateway{
		backend:      client,
		abi:          parsed,
		contract:     common.HexToAddress(contractAddress),
		chainID:      big.NewInt(chainID),
		pollInterval: receiptPollInterval,
		waitTimeout:  receiptWaitTimeout,
	}

	if privateKeyHex != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid scheduler private key: %w", err)
		}
		g.key = key
		g.from = crypto.PubkeyToAddress(key.PublicKey)
	}

	return g, nil
}

// ExecuteLottery performs exactly one on-chain lottery() call for the given
// disaster hash and returns the interpreted LotteryWinner event.
func (g *EVMGateway) ExecuteLottery(ctx context.Context, disasterHash string) (*Result, error) {
	if g.key == nil {
		return nil, ErrNoSigningKey
	}

	hash, err := NormalizeDisasterHash(disasterHash)
	if err != nil {
		return nil, err
	}

	data, err := g.abi.Pack("lottery", hash)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lottery call: %w", err)
	}

	nonce, err := g.backend.PendingNonceAt(ctx, g.from)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch nonce: %w", err)
	}

	gasPrice, err := g.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas price: %w", err)
	}

	gasLimit, err := g.backend.EstimateGas(ctx, ethereum.CallMsg{
		From: g.from,
		To:   &g.contract,
		Data: data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}
	gasLimit = gasLimit * (100 + gasLimitBufferPercent) / 100

	tx := ethtypes.NewTransaction(nonce, g.contract, big.NewInt(0), gasLimit, gasPrice, data)
	signed, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(g.chainID), g.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := g.backend.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to submit transaction: %w", err)
	}

	receipt, err := g.waitMined(ctx, signed.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed waiting for transaction %s: %w", signed.Hash(), err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: tx %s", ErrTransactionReverted, signed.Hash())
	}

	winner, count, err := g.winnerFromReceipt(receipt)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ParticipantCount: count.Int64(),
		TransactionHash:  receipt.TxHash.Hex(),
		GasUsed:          strconv.FormatUint(receipt.GasUsed, 10),
	}
	// The zero address signals a lottery that resolved without donors.
	if winner != (common.Address{}) {
		result.Winner = winner.Hex()
	}
	return result, nil
}

// waitMined polls for the transaction receipt until it appears, the caller's
// context is cancelled, or the wait timeout elapses.
func (g *EVMGateway) waitMined(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, g.waitTimeout)
	defer cancel()

	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := g.backend.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// winnerFromReceipt scans the receipt logs for the LotteryWinner event.
func (g *EVMGateway) winnerFromReceipt(receipt *ethtypes.Receipt) (common.Address, *big.Int, error) {
	eventID := g.abi.Events["LotteryWinner"].ID

	for _, log := range receipt.Logs {
		if log.Address != g.contract || len(log.Topics) < 3 || log.Topics[0] != eventID {
			continue
		}

		winner := common.BytesToAddress(log.Topics[2].Bytes())

		unpacked, err := g.abi.Unpack("LotteryWinner", log.Data)
		if err != nil {
			return common.Address{}, nil, fmt.Errorf("failed to decode LotteryWinner event: %w", err)
		}
		count, ok := unpacked[0].(*big.Int)
		if !ok {
			return common.Address{}, nil, fmt.Errorf("unexpected participantCount type %T", unpacked[0])
		}

		return winner, count, nil
	}

	return common.Address{}, nil, ErrWinnerEventNotFound
}

// NormalizeDisasterHash turns the stored correlation key into the bytes32
// identifier the contract expects: the 0x prefix is added when missing and
// shorter values are left-padded to 32 bytes.
func NormalizeDisasterHash(raw string) (common.Hash, error) {
	if raw == "" {
		return common.Hash{}, errors.New("empty disaster hash")
	}
	if !strings.HasPrefix(raw, "0x") {
		raw = "0x" + raw
	}

	b, err := hexutil.Decode(raw)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid disaster hash %q: %w", raw, err)
	}
	if len(b) > common.HashLength {
		return common.Hash{}, fmt.Errorf("disaster hash %q longer than %d bytes", raw, common.HashLength)
	}

	return common.BytesToHash(b), nil
}
