package transaction

import (
	"time"
)

// Transaction is an immutable purchase record.
type Transaction struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"_id"`
	Customer    string    `gorm:"type:varchar(255);not null;index" json:"customer"`
	Medicine    string    `gorm:"type:text;not null" json:"medicine"`
	ItemCount   int       `gorm:"not null;default:0" json:"item_count"`
	PriceETH    float64   `gorm:"column:price_eth;not null" json:"price_eth"`
	PurchasedAt time.Time `gorm:"not null;index" json:"timestamp"`
	TxHash      *string   `gorm:"type:varchar(80)" json:"tx_hash"`
	ChainID     *string   `gorm:"type:varchar(32)" json:"chain_id"`
	BlockNumber *string   `gorm:"type:varchar(32)" json:"block_number"`
}
