package drug

import (
	"fmt"
	"strings"
)

// Drug mirrors one ledger drug record.
type Drug struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Batch string `json:"batch"`
	Owner string `json:"owner"`
	Stage int    `json:"stage"`
}

type AddDrugRequest struct {
	Name  string `json:"name"`
	Batch string `json:"batch"`
	// Price is accepted for client compatibility; the ledger call does not take it.
	Price *float64 `json:"price,omitempty"`
}

func (r *AddDrugRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(r.Batch) == "" {
		return fmt.Errorf("batch is required")
	}
	return nil
}

type AddDrugResponse struct {
	Tx          string `json:"tx"`
	Status      string `json:"status"`
	BlockNumber uint64 `json:"blockNumber"`
}

type TransferDrugRequest struct {
	ID        *int64  `json:"id"`
	NextStage *int    `json:"next_stage"`
	ToAddress *string `json:"to_address,omitempty"`
}

func (r *TransferDrugRequest) Validate() error {
	if r.ID == nil {
		return fmt.Errorf("id is required")
	}
	if *r.ID < 1 {
		return fmt.Errorf("id must be positive")
	}
	if r.NextStage == nil {
		return fmt.Errorf("next_stage is required")
	}
	if *r.NextStage < 0 || *r.NextStage > 255 {
		return fmt.Errorf("next_stage must be between 0 and 255")
	}
	return nil
}

type TransferDrugResponse struct {
	Tx string `json:"tx"`
}

// HealthResponse reports ledger reachability.
type HealthResponse struct {
	OK        bool   `json:"ok"`
	Connected bool   `json:"connected"`
	Network   *int64 `json:"network"`
}
