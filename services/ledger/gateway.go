package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"pharma-supply/apperror"
	"pharma-supply/metrics"
	"pharma-supply/types/drug"
)

const healthTimeout = 5 * time.Second

// Gateway translates API payloads into PharmaSupply contract calls.
type Gateway struct {
	backend        Backend
	contract       common.Address
	abi            abi.ABI
	signer         *Signer
	receiptTimeout time.Duration
}

// NewGateway wires the contract façade. signer may be nil, in which case
// reads work and writes fail with ErrSignerNotConfigured.
func NewGateway(backend Backend, contract common.Address, contractABI abi.ABI, signer *Signer, receiptTimeout time.Duration) *Gateway {
	return &Gateway{
		backend:        backend,
		contract:       contract,
		abi:            contractABI,
		signer:         signer,
		receiptTimeout: receiptTimeout,
	}
}

// call performs a read-only contract call and unpacks its outputs.
func (g *Gateway) call(ctx context.Context, method string, args ...interface{}) (out []interface{}, err error) {
	defer func() { metrics.RecordLedgerCall(method, err) }()

	data, err := g.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	raw, err := g.backend.CallContract(ctx, ethereum.CallMsg{To: &g.contract, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	out, err = g.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return out, nil
}

// DrugCount returns the number of drugs registered on the ledger.
func (g *Gateway) DrugCount(ctx context.Context) (int64, error) {
	out, err := g.call(ctx, "drugCount")
	if err != nil {
		return 0, apperror.Internal(err)
	}
	if len(out) != 1 {
		return 0, apperror.Internal(fmt.Errorf("drugCount returned %d values", len(out)))
	}
	count, err := toInt64(out[0])
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

// ListDrugs reads every drug record in id order.
func (g *Gateway) ListDrugs(ctx context.Context) ([]drug.Drug, error) {
	count, err := g.DrugCount(ctx)
	if err != nil {
		return nil, err
	}

	drugs := make([]drug.Drug, 0, count)
	for i := int64(1); i <= count; i++ {
		out, err := g.call(ctx, "drugs", big.NewInt(i))
		if err != nil {
			return nil, apperror.Internal(err)
		}
		d, err := drugFromTuple(out)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		drugs = append(drugs, d)
	}
	return drugs, nil
}

// GetDrug reads one drug through the contract's getDrug view.
func (g *Gateway) GetDrug(ctx context.Context, id int64) (*drug.Drug, error) {
	if id < 1 {
		return nil, apperror.Validation("id must be positive")
	}
	count, err := g.DrugCount(ctx)
	if err != nil {
		return nil, err
	}
	if id > count {
		return nil, apperror.NotFound(fmt.Sprintf("drug %d not found", id))
	}

	out, err := g.call(ctx, "getDrug", big.NewInt(id))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if len(out) != 4 {
		return nil, apperror.Internal(fmt.Errorf("getDrug returned %d values", len(out)))
	}
	d := drug.Drug{ID: id}
	if d.Name, err = toString(out[0]); err != nil {
		return nil, apperror.Internal(err)
	}
	if d.Batch, err = toString(out[1]); err != nil {
		return nil, apperror.Internal(err)
	}
	if d.Owner, err = toAddressHex(out[2]); err != nil {
		return nil, apperror.Internal(err)
	}
	stage, err := toInt64(out[3])
	if err != nil {
		return nil, apperror.Internal(err)
	}
	d.Stage = int(stage)
	return &d, nil
}

// AddDrug registers a drug and blocks until the transaction is mined.
func (g *Gateway) AddDrug(ctx context.Context, name, batch string) (*drug.AddDrugResponse, error) {
	if g.signer == nil {
		return nil, apperror.Internal(ErrSignerNotConfigured)
	}

	tx, err := g.submit(ctx, "addDrug", name, batch)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	receipt, err := g.signer.WaitMined(ctx, tx, g.receiptTimeout)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, apperror.Internal(fmt.Errorf("transaction %s reverted in block %s", tx.Hash().Hex(), receipt.BlockNumber))
	}

	return &drug.AddDrugResponse{
		Tx:          tx.Hash().Hex(),
		Status:      "confirmed",
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

// TransferDrug moves a drug to nextStage and owner to. An empty to means the
// signer itself. It returns once the transaction is submitted.
func (g *Gateway) TransferDrug(ctx context.Context, id int64, nextStage int, to string) (string, error) {
	if g.signer == nil {
		return "", apperror.Internal(ErrSignerNotConfigured)
	}
	if id < 1 {
		return "", apperror.Validation("id must be positive")
	}

	recipient := g.signer.Address()
	if to = strings.TrimSpace(to); to != "" {
		if !common.IsHexAddress(to) {
			return "", apperror.Validation("invalid to_address: %s", to)
		}
		recipient = common.HexToAddress(to)
	}

	method := g.abi.Methods["transferDrug"]
	stageArg, err := uintArg(method.Inputs[1].Type, int64(nextStage))
	if err != nil {
		return "", apperror.Validation("next_stage: %v", err)
	}

	tx, err := g.submit(ctx, "transferDrug", big.NewInt(id), stageArg, recipient)
	if err != nil {
		return "", apperror.Internal(err)
	}
	return tx.Hash().Hex(), nil
}

func (g *Gateway) submit(ctx context.Context, method string, args ...interface{}) (tx *types.Transaction, err error) {
	defer func() { metrics.RecordLedgerCall(method, err) }()

	data, err := g.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	return g.signer.Submit(ctx, g.contract, data)
}

// Health reports whether the RPC endpoint answers and on which chain.
func (g *Gateway) Health(ctx context.Context) drug.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	resp := drug.HealthResponse{OK: true}
	chainID, err := g.backend.ChainID(ctx)
	if err != nil {
		return resp
	}
	resp.Connected = true
	network := chainID.Int64()
	resp.Network = &network
	return resp
}

func drugFromTuple(out []interface{}) (drug.Drug, error) {
	if len(out) != 5 {
		return drug.Drug{}, fmt.Errorf("drugs returned %d values", len(out))
	}
	var (
		d   drug.Drug
		err error
	)
	if d.ID, err = toInt64(out[0]); err != nil {
		return d, err
	}
	if d.Name, err = toString(out[1]); err != nil {
		return d, err
	}
	if d.Batch, err = toString(out[2]); err != nil {
		return d, err
	}
	if d.Owner, err = toAddressHex(out[3]); err != nil {
		return d, err
	}
	stage, err := toInt64(out[4])
	if err != nil {
		return d, err
	}
	d.Stage = int(stage)
	return d, nil
}

// uintArg converts v to the Go type go-ethereum packs for an unsigned ABI type.
func uintArg(t abi.Type, v int64) (interface{}, error) {
	if v < 0 {
		return nil, errors.New("must not be negative")
	}
	if t.T != abi.UintTy {
		return nil, fmt.Errorf("unsupported ABI type %s", t.String())
	}
	if t.Size < 64 && v >= int64(1)<<uint(t.Size) {
		return nil, fmt.Errorf("%d overflows %s", v, t.String())
	}
	switch t.Size {
	case 8:
		return uint8(v), nil
	case 16:
		return uint16(v), nil
	case 32:
		return uint32(v), nil
	case 64:
		return uint64(v), nil
	default:
		return big.NewInt(v), nil
	}
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case *big.Int:
		if !n.IsInt64() {
			return 0, fmt.Errorf("value %s overflows int64", n)
		}
		return n.Int64(), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected numeric type %T", v)
	}
}

func toString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("unexpected string type %T", v)
	}
	return s, nil
}

func toAddressHex(v interface{}) (string, error) {
	a, ok := v.(common.Address)
	if !ok {
		return "", fmt.Errorf("unexpected address type %T", v)
	}
	return a.Hex(), nil
}
