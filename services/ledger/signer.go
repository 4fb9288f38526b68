package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"pharma-supply/metrics"
)

// DefaultGasLimit is the fixed gas limit of every write transaction.
const DefaultGasLimit uint64 = 300000

// ErrSignerNotConfigured is returned by write operations when no private key was supplied.
var ErrSignerNotConfigured = errors.New("PRIVATE_KEY not configured")

// Signer holds the backend's ledger identity and submits transactions on its behalf.
//
// Nonce selection and submission run under mu, so concurrent writes from this
// process get consecutive pending nonces. Other processes sharing the key can
// still collide; the ledger's replacement rules settle that.
type Signer struct {
	backend  Backend
	key      *ecdsa.PrivateKey
	address  common.Address
	chainID  *big.Int
	gasLimit uint64

	mu sync.Mutex
}

// NewSigner parses a hex private key (with or without 0x).
func NewSigner(backend Backend, privateKeyHex string, chainID int64) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &Signer{
		backend:  backend,
		key:      key,
		address:  crypto.PubkeyToAddress(key.PublicKey),
		chainID:  big.NewInt(chainID),
		gasLimit: DefaultGasLimit,
	}, nil
}

func (s *Signer) Address() common.Address {
	return s.address
}

// Submit builds a legacy transaction calling to with data, signs it for the
// configured chain and sends it. It does not wait for mining.
func (s *Signer) Submit(ctx context.Context, to common.Address, data []byte) (*types.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nonce, err := s.backend.PendingNonceAt(ctx, s.address)
	if err != nil {
		return nil, fmt.Errorf("get pending nonce: %w", err)
	}
	suggested, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("get gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: BumpGasPrice(suggested),
		Gas:      s.gasLimit,
		To:       &to,
		Value:    new(big.Int),
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.NewEIP155Signer(s.chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		return nil, err
	}
	return signed, nil
}

// WaitMined blocks until tx has a receipt, ctx ends, or timeout elapses
// (timeout <= 0 means no extra bound). The transaction stays submitted either way.
func (s *Signer) WaitMined(ctx context.Context, tx *types.Transaction, timeout time.Duration) (*types.Receipt, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	receipt, err := bind.WaitMined(ctx, s.backend, tx)
	metrics.ObserveReceiptWait(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("wait for transaction %s: %w", tx.Hash().Hex(), err)
	}
	return receipt, nil
}

// BumpGasPrice returns price increased by 10%, rounded down.
func BumpGasPrice(price *big.Int) *big.Int {
	bumped := new(big.Int).Mul(price, big.NewInt(11))
	return bumped.Div(bumped, big.NewInt(10))
}
