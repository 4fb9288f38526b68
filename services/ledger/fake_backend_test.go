package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"pharma-supply/types/drug"
)

// fakeBackend answers PharmaSupply calls from an in-memory drug list.
type fakeBackend struct {
	abi abi.ABI

	mu          sync.Mutex
	drugs       []drug.Drug
	nonce       uint64
	gasPrice    *big.Int
	chainID     *big.Int
	blockNumber int64
	revert      bool
	callErr     error
	sendErr     error
	chainErr    error

	calls    int
	sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
}

func newFakeBackend(t *testing.T, drugs ...drug.Drug) *fakeBackend {
	t.Helper()
	parsed, _, err := LoadABI("../../contract/PharmaSupply.json")
	require.NoError(t, err)
	return &fakeBackend{
		abi:         parsed,
		drugs:       drugs,
		nonce:       7,
		gasPrice:    big.NewInt(1_000_000_000),
		chainID:     big.NewInt(11155111),
		blockNumber: 42,
		receipts:    make(map[common.Hash]*types.Receipt),
	}
}

func (f *fakeBackend) networkCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeBackend) method(data []byte) (abi.Method, error) {
	if len(data) < 4 {
		return abi.Method{}, errors.New("short call data")
	}
	for _, m := range f.abi.Methods {
		if bytes.Equal(m.ID, data[:4]) {
			return m, nil
		}
	}
	return abi.Method{}, fmt.Errorf("unknown selector %x", data[:4])
}

func (f *fakeBackend) lookup(data []byte) (drug.Drug, error) {
	m, err := f.method(data)
	if err != nil {
		return drug.Drug{}, err
	}
	args, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		return drug.Drug{}, err
	}
	id := args[0].(*big.Int).Int64()
	if id < 1 || id > int64(len(f.drugs)) {
		return drug.Drug{}, errors.New("execution reverted: invalid id")
	}
	return f.drugs[id-1], nil
}

func (f *fakeBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.callErr != nil {
		return nil, f.callErr
	}

	m, err := f.method(call.Data)
	if err != nil {
		return nil, err
	}
	switch m.Name {
	case "drugCount":
		return m.Outputs.Pack(big.NewInt(int64(len(f.drugs))))
	case "drugs":
		d, err := f.lookup(call.Data)
		if err != nil {
			return nil, err
		}
		return m.Outputs.Pack(big.NewInt(d.ID), d.Name, d.Batch, common.HexToAddress(d.Owner), uint8(d.Stage))
	case "getDrug":
		d, err := f.lookup(call.Data)
		if err != nil {
			return nil, err
		}
		return m.Outputs.Pack(d.Name, d.Batch, common.HexToAddress(d.Owner), uint8(d.Stage))
	}
	return nil, fmt.Errorf("%s is not a view", m.Name)
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.nonce, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return new(big.Int).Set(f.gasPrice), nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	f.nonce++
	status := types.ReceiptStatusSuccessful
	if f.revert {
		status = types.ReceiptStatusFailed
	}
	f.receipts[tx.Hash()] = &types.Receipt{
		Status:      status,
		TxHash:      tx.Hash(),
		BlockNumber: big.NewInt(f.blockNumber),
	}
	return nil
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if r, ok := f.receipts[hash]; ok {
		return r, nil
	}
	return nil, ethereum.NotFound
}

func (f *fakeBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.chainErr != nil {
		return nil, f.chainErr
	}
	return new(big.Int).Set(f.chainID), nil
}
