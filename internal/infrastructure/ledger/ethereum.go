// Package ledger submits parcel mints to an EVM chain and waits for their
// confirmation.  Submission and confirmation are separate steps so the
// caller can distinguish "the chain never saw this" from "the chain may
// still confirm this".
package ledger

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/landwho/landwho/internal/config"
	"github.com/landwho/landwho/internal/domain/mint"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	apperrors "github.com/landwho/landwho/pkg/errors"
)

// mintABI is the slice of the parcel registry contract the service calls.
// The fingerprint doubles as the on-chain dedupe key; the contract reverts
// on a repeated fingerprint.
const mintABI = `[{
	"name": "mintParcel",
	"type": "function",
	"stateMutability": "nonpayable",
	"inputs": [
		{"name": "to", "type": "address"},
		{"name": "fingerprint", "type": "bytes32"},
		{"name": "tokenURI", "type": "string"},
		{"name": "royaltyBps", "type": "uint96"}
	],
	"outputs": [{"name": "tokenId", "type": "uint256"}]
}]`

// transferTopic is keccak256("Transfer(address,address,uint256)"), the
// ERC-721 event the token id is read back from.
var transferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

const receiptPollInterval = 2 * time.Second

// Backend is the slice of ethclient.Client the ledger needs, abstracted for
// testing.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// EthereumLedger satisfies mint.Ledger against a JSON-RPC endpoint.
type EthereumLedger struct {
	backend  Backend
	contract common.Address
	key      *ecdsa.PrivateKey
	from     common.Address
	chainID  *big.Int
	gasLimit uint64
	parsed   abi.ABI
	logger   logging.Logger
}

var _ mint.Ledger = (*EthereumLedger)(nil)

// New dials the configured RPC endpoint and prepares the signing identity.
func New(cfg config.LedgerConfig, logger logging.Logger) (*EthereumLedger, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeServiceUnavailable, "dial chain rpc %s", cfg.RPCURL)
	}
	return NewWithBackend(client, cfg, logger)
}

// NewWithBackend builds the ledger over an existing backend.
func NewWithBackend(backend Backend, cfg config.LedgerConfig, logger logging.Logger) (*EthereumLedger, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "parse ledger private key")
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, apperrors.Newf(apperrors.ErrCodeValidation, "invalid contract address %q", cfg.ContractAddress)
	}
	if cfg.ChainID == 0 {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "chain id required")
	}

	parsed, err := abi.JSON(strings.NewReader(mintABI))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "parse mint abi")
	}

	gasLimit := cfg.GasLimit
	if gasLimit == 0 {
		gasLimit = 500_000
	}

	return &EthereumLedger{
		backend:  backend,
		contract: common.HexToAddress(cfg.ContractAddress),
		key:      key,
		from:     crypto.PubkeyToAddress(key.PublicKey),
		chainID:  big.NewInt(cfg.ChainID),
		gasLimit: gasLimit,
		parsed:   parsed,
		logger:   logger.Named("ledger"),
	}, nil
}

// SubmitMint signs and broadcasts the mint transaction.  An error here
// means the chain never accepted the transaction.
func (l *EthereumLedger) SubmitMint(ctx context.Context, p *mint.MintedParcel) (mint.Submission, error) {
	fingerprint, err := fingerprintWord(p.Fingerprint)
	if err != nil {
		return mint.Submission{}, err
	}

	data, err := l.parsed.Pack("mintParcel",
		common.HexToAddress(p.Wallet),
		fingerprint,
		p.ContentKey,
		new(big.Int).SetInt64(int64(p.RoyaltyBps)),
	)
	if err != nil {
		return mint.Submission{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "pack mint calldata")
	}

	nonce, err := l.backend.PendingNonceAt(ctx, l.from)
	if err != nil {
		return mint.Submission{}, apperrors.Wrap(err, apperrors.ErrCodeServiceUnavailable, "fetch pending nonce")
	}
	gasPrice, err := l.backend.SuggestGasPrice(ctx)
	if err != nil {
		return mint.Submission{}, apperrors.Wrap(err, apperrors.ErrCodeServiceUnavailable, "fetch gas price")
	}

	tx := types.NewTransaction(nonce, l.contract, big.NewInt(0), l.gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(l.chainID), l.key)
	if err != nil {
		return mint.Submission{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "sign mint transaction")
	}

	if err := l.backend.SendTransaction(ctx, signed); err != nil {
		return mint.Submission{}, apperrors.Wrap(err, apperrors.ErrCodeServiceUnavailable, "broadcast mint transaction")
	}

	l.logger.Info("mint transaction submitted",
		logging.String("tx_hash", signed.Hash().Hex()),
		logging.String("fingerprint", p.Fingerprint),
	)
	return mint.Submission{TxHash: signed.Hash().Hex()}, nil
}

// AwaitConfirmation polls for the receipt until the context expires.  A
// context deadline error here means the transaction may still confirm
// later.
func (l *EthereumLedger) AwaitConfirmation(ctx context.Context, sub mint.Submission) (mint.Receipt, error) {
	hash := common.HexToHash(sub.TxHash)
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := l.backend.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return mint.Receipt{}, apperrors.Newf(apperrors.ErrCodeInternal, "transaction %s reverted", sub.TxHash)
			}
			return mint.Receipt{
				TxHash:      sub.TxHash,
				TokenID:     tokenIDFromLogs(receipt.Logs),
				BlockNumber: receipt.BlockNumber.Uint64(),
			}, nil
		case errors.Is(err, ethereum.NotFound):
			// Not mined yet.
		case ctx.Err() != nil:
			return mint.Receipt{}, ctx.Err()
		default:
			return mint.Receipt{}, apperrors.Wrapf(err, apperrors.ErrCodeServiceUnavailable, "fetch receipt %s", sub.TxHash)
		}

		select {
		case <-ctx.Done():
			return mint.Receipt{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// tokenIDFromLogs reads the minted token id from the ERC-721 Transfer
// event.  An empty string means the contract emitted no recognizable
// transfer, which callers treat as a missing but non-fatal detail.
func tokenIDFromLogs(logs []*types.Log) string {
	for _, entry := range logs {
		if len(entry.Topics) == 4 && entry.Topics[0] == transferTopic {
			return new(big.Int).SetBytes(entry.Topics[3].Bytes()).String()
		}
	}
	return ""
}

func fingerprintWord(fingerprint string) ([32]byte, error) {
	var word [32]byte
	raw, err := hex.DecodeString(fingerprint)
	if err != nil || len(raw) != 32 {
		return word, apperrors.Newf(apperrors.ErrCodeValidation, "fingerprint %q is not a sha-256 hex digest", fingerprint)
	}
	copy(word[:], raw)
	return word, nil
}
