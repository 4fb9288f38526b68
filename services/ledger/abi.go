package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// requiredMethods are the contract entry points the gateway calls.
var requiredMethods = []string{"drugCount", "drugs", "getDrug", "addDrug", "transferDrug"}

// LoadABI reads the contract interface artifact from the first existing path.
// The artifact is either a compiler output object with an "abi" field or a
// bare ABI array.
func LoadABI(paths ...string) (abi.ABI, string, error) {
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return abi.ABI{}, path, fmt.Errorf("read ABI file %s: %w", path, err)
		}
		parsed, err := ParseABI(raw)
		if err != nil {
			return abi.ABI{}, path, fmt.Errorf("parse ABI file %s: %w", path, err)
		}
		return parsed, path, nil
	}
	return abi.ABI{}, "", fmt.Errorf("ABI file not found at %v", paths)
}

// ParseABI decodes an artifact and checks it exposes every required method.
func ParseABI(raw []byte) (abi.ABI, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return abi.ABI{}, errors.New("ABI not found in JSON file")
	}

	abiJSON := raw
	if raw[0] == '{' {
		var artifact struct {
			ABI json.RawMessage `json:"abi"`
		}
		if err := json.Unmarshal(raw, &artifact); err != nil {
			return abi.ABI{}, err
		}
		if len(artifact.ABI) == 0 {
			return abi.ABI{}, errors.New("ABI not found in JSON file")
		}
		abiJSON = artifact.ABI
	}

	parsed, err := abi.JSON(bytes.NewReader(abiJSON))
	if err != nil {
		return abi.ABI{}, err
	}
	for _, name := range requiredMethods {
		if _, ok := parsed.Methods[name]; !ok {
			return abi.ABI{}, fmt.Errorf("contract ABI has no %s method", name)
		}
	}
	return parsed, nil
}
