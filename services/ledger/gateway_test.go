package ledger

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharma-supply/apperror"
	"pharma-supply/types/drug"
)

var contractAddr = common.HexToAddress("0x4257684D15f17FeD1DC762a0A7643E0126e94C20")

const ownerHex = "0x00000000000000000000000000000000000000Aa"

func newTestSigner(t *testing.T, backend Backend) *Signer {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer, err := NewSigner(backend, common.Bytes2Hex(crypto.FromECDSA(key)), 11155111)
	require.NoError(t, err)
	return signer
}

func newTestGateway(t *testing.T, backend *fakeBackend, withSigner bool) *Gateway {
	t.Helper()
	var signer *Signer
	if withSigner {
		signer = newTestSigner(t, backend)
	}
	return NewGateway(backend, contractAddr, backend.abi, signer, time.Second)
}

func TestGateway_ListDrugs(t *testing.T) {
	owner := common.HexToAddress(ownerHex).Hex()
	backend := newFakeBackend(t,
		drug.Drug{ID: 1, Name: "Paracetamol", Batch: "BATCH-001", Owner: owner, Stage: 0},
		drug.Drug{ID: 2, Name: "Ibuprofen", Batch: "BATCH-002", Owner: owner, Stage: 2},
	)
	gw := newTestGateway(t, backend, false)

	drugs, err := gw.ListDrugs(context.Background())
	require.NoError(t, err)
	require.Len(t, drugs, 2)
	assert.Equal(t, drug.Drug{ID: 1, Name: "Paracetamol", Batch: "BATCH-001", Owner: owner, Stage: 0}, drugs[0])
	assert.Equal(t, int64(2), drugs[1].ID)
	assert.Equal(t, 2, drugs[1].Stage)
}

func TestGateway_ListDrugsEmpty(t *testing.T) {
	gw := newTestGateway(t, newFakeBackend(t), false)

	drugs, err := gw.ListDrugs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drugs)
}

func TestGateway_ListDrugsReadFailure(t *testing.T) {
	backend := newFakeBackend(t)
	backend.callErr = errors.New("dial tcp: connection refused")
	gw := newTestGateway(t, backend, false)

	_, err := gw.ListDrugs(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindInternal))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestGateway_GetDrug(t *testing.T) {
	owner := common.HexToAddress(ownerHex).Hex()
	backend := newFakeBackend(t, drug.Drug{ID: 1, Name: "Amoxicillin", Batch: "B-9", Owner: owner, Stage: 3})
	gw := newTestGateway(t, backend, false)

	d, err := gw.GetDrug(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, &drug.Drug{ID: 1, Name: "Amoxicillin", Batch: "B-9", Owner: owner, Stage: 3}, d)

	_, err = gw.GetDrug(context.Background(), 2)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = gw.GetDrug(context.Background(), 0)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestGateway_AddDrugWithoutSignerMakesNoNetworkCall(t *testing.T) {
	backend := newFakeBackend(t)
	gw := newTestGateway(t, backend, false)

	_, err := gw.AddDrug(context.Background(), "Paracetamol", "BATCH-001")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindInternal))
	assert.ErrorIs(t, err, ErrSignerNotConfigured)
	assert.Equal(t, 0, backend.networkCalls())

	_, err = gw.TransferDrug(context.Background(), 1, 1, "")
	assert.ErrorIs(t, err, ErrSignerNotConfigured)
	assert.Equal(t, 0, backend.networkCalls())
}

func TestGateway_AddDrug(t *testing.T) {
	backend := newFakeBackend(t)
	gw := newTestGateway(t, backend, true)

	resp, err := gw.AddDrug(context.Background(), "Paracetamol", "BATCH-001")
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)

	tx := backend.sent[0]
	assert.Equal(t, tx.Hash().Hex(), resp.Tx)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, uint64(42), resp.BlockNumber)

	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, DefaultGasLimit, tx.Gas())
	assert.Equal(t, "1100000000", tx.GasPrice().String())
	assert.Equal(t, contractAddr, *tx.To())
	assert.Equal(t, "11155111", tx.ChainId().String())

	from, err := types.Sender(types.NewEIP155Signer(big.NewInt(11155111)), tx)
	require.NoError(t, err)
	assert.Equal(t, gw.signer.Address(), from)

	args, err := backend.abi.Methods["addDrug"].Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"Paracetamol", "BATCH-001"}, args)
}

func TestGateway_AddDrugReverted(t *testing.T) {
	backend := newFakeBackend(t)
	backend.revert = true
	gw := newTestGateway(t, backend, true)

	_, err := gw.AddDrug(context.Background(), "Paracetamol", "BATCH-001")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindInternal))
	assert.Contains(t, err.Error(), "reverted")
}

func TestGateway_AddDrugSubmissionFailure(t *testing.T) {
	backend := newFakeBackend(t)
	backend.sendErr = errors.New("insufficient funds for gas * price + value")
	gw := newTestGateway(t, backend, true)

	_, err := gw.AddDrug(context.Background(), "Paracetamol", "BATCH-001")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindInternal))
	assert.Equal(t, "insufficient funds for gas * price + value", apperror.ClientMessage(err, true))
}

func TestGateway_TransferDrugDefaultsToSigner(t *testing.T) {
	backend := newFakeBackend(t)
	gw := newTestGateway(t, backend, true)

	hash, err := gw.TransferDrug(context.Background(), 3, 1, "")
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)
	assert.Equal(t, backend.sent[0].Hash().Hex(), hash)

	args, err := backend.abi.Methods["transferDrug"].Inputs.Unpack(backend.sent[0].Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, "3", args[0].(*big.Int).String())
	assert.Equal(t, uint8(1), args[1])
	assert.Equal(t, gw.signer.Address(), args[2])
}

func TestGateway_TransferDrugToAddress(t *testing.T) {
	backend := newFakeBackend(t)
	gw := newTestGateway(t, backend, true)

	_, err := gw.TransferDrug(context.Background(), 1, 2, ownerHex)
	require.NoError(t, err)

	args, err := backend.abi.Methods["transferDrug"].Inputs.Unpack(backend.sent[0].Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(ownerHex), args[2])
}

func TestGateway_TransferDrugRejectsBadInput(t *testing.T) {
	backend := newFakeBackend(t)
	gw := newTestGateway(t, backend, true)

	_, err := gw.TransferDrug(context.Background(), 1, 1, "not-an-address")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = gw.TransferDrug(context.Background(), 1, 256, "")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	for _, id := range []int64{0, -1} {
		_, err = gw.TransferDrug(context.Background(), id, 1, "")
		assert.True(t, apperror.Is(err, apperror.KindValidation), id)
	}
	assert.Empty(t, backend.sent)
}

func TestGateway_ConcurrentWritesGetDistinctNonces(t *testing.T) {
	backend := newFakeBackend(t)
	gw := newTestGateway(t, backend, true)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := gw.TransferDrug(context.Background(), int64(i+1), 1, "")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]bool)
	for _, tx := range backend.sent {
		assert.False(t, seen[tx.Nonce()], "nonce %d reused", tx.Nonce())
		seen[tx.Nonce()] = true
	}
	assert.Len(t, seen, 5)
}

func TestGateway_Health(t *testing.T) {
	backend := newFakeBackend(t)
	gw := newTestGateway(t, backend, false)

	health := gw.Health(context.Background())
	assert.True(t, health.OK)
	assert.True(t, health.Connected)
	require.NotNil(t, health.Network)
	assert.Equal(t, int64(11155111), *health.Network)

	backend.chainErr = errors.New("no route to host")
	health = gw.Health(context.Background())
	assert.True(t, health.OK)
	assert.False(t, health.Connected)
	assert.Nil(t, health.Network)
}

func TestBumpGasPrice(t *testing.T) {
	assert.Equal(t, "110", BumpGasPrice(big.NewInt(100)).String())
	assert.Equal(t, "1", BumpGasPrice(big.NewInt(1)).String())
	assert.Equal(t, "0", BumpGasPrice(big.NewInt(0)).String())
}

func TestNewSignerRejectsBadKey(t *testing.T) {
	_, err := NewSigner(newFakeBackend(t), "0xnothex", 1)
	assert.Error(t, err)
}
