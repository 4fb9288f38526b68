package transaction

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"gorm.io/gorm"

	"pharma-supply/apperror"
	"pharma-supply/logger"
	"pharma-supply/metrics"
	txModel "pharma-supply/models/transaction"
	txTypes "pharma-supply/types/transaction"
)

const (
	listLimit      = 100
	statsBatchSize = 500
	dateLayout     = "2006-01-02"
)

// Recorder stores purchases and answers the reporting queries over them.
type Recorder struct {
	db *gorm.DB
	// revenueOffset moves month boundaries earlier so months follow local time.
	revenueOffset time.Duration
	now           func() time.Time
}

func NewRecorder(db *gorm.DB, revenueOffset time.Duration) *Recorder {
	return &Recorder{db: db, revenueOffset: revenueOffset, now: time.Now}
}

// RecordPurchase validates and stores one purchase payload and returns its id.
func (r *Recorder) RecordPurchase(ctx context.Context, payload map[string]interface{}) (string, error) {
	rawPrice, hasPrice := payload["price_eth"]
	rawMedicine, hasMedicine := payload["medicine"]
	if !hasPrice || !hasMedicine {
		return "", apperror.Validation("Missing transaction information: price_eth and medicine are required")
	}

	price, err := parsePrice(rawPrice)
	if err != nil {
		return "", apperror.Validation("%v", err)
	}

	customer := "unknown"
	if v, ok := payload["customer"]; ok && v != nil {
		customer = textOf(v)
	}
	medicine, items := NormalizeMedicine(rawMedicine)

	record := txModel.Transaction{
		ID:          uuid.NewString(),
		Customer:    customer,
		Medicine:    medicine,
		ItemCount:   items,
		PriceETH:    price,
		PurchasedAt: r.now().UTC(),
		TxHash:      optionalText(payload["tx_hash"]),
		ChainID:     optionalText(payload["chain_id"]),
		BlockNumber: optionalText(payload["block_number"]),
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", apperror.Internal(err)
	}

	metrics.RecordPurchase()
	logger.Success("Purchase recorded: " + customer + " - " + medicine)
	return record.ID, nil
}

// RevenueWindow returns the [start, end) instants of a calendar month shifted
// back by offset.
func RevenueWindow(month, year int, offset time.Duration) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, apperror.Validation("month must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		return time.Time{}, time.Time{}, apperror.Validation("year must be between 1 and 9999")
	}

	mid := now.With(time.Date(year, time.Month(month), 15, 0, 0, 0, 0, time.UTC))
	first := mid.BeginningOfMonth()
	next := mid.EndOfMonth().Add(time.Nanosecond)
	return first.Add(-offset), next.Add(-offset), nil
}

// GetRevenue sums the purchases recorded in the given month.
func (r *Recorder) GetRevenue(ctx context.Context, month, year int) (*txTypes.RevenueResponse, error) {
	start, end, err := RevenueWindow(month, year, r.revenueOffset)
	if err != nil {
		return nil, err
	}

	var rows []txModel.Transaction
	err = r.db.WithContext(ctx).
		Where("purchased_at >= ? AND purchased_at < ?", start, end).
		Order("purchased_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}

	resp := &txTypes.RevenueResponse{Transactions: make([]txTypes.RevenueItem, 0, len(rows))}
	for _, row := range rows {
		resp.Total += row.PriceETH
		resp.Transactions = append(resp.Transactions, txTypes.RevenueItem{
			Customer: row.Customer,
			Medicine: row.Medicine,
			PriceETH: row.PriceETH,
			Date:     row.PurchasedAt.UTC().Format(dateLayout),
		})
	}
	logger.Infof("Revenue %02d/%d: %d transactions, total %v ETH", month, year, len(rows), resp.Total)
	return resp, nil
}

// ListTransactions returns the newest purchases. A store failure yields an
// empty listing.
func (r *Recorder) ListTransactions(ctx context.Context) txTypes.TransactionListResponse {
	var rows []txModel.Transaction
	err := r.db.WithContext(ctx).Order("purchased_at desc").Limit(listLimit).Find(&rows).Error
	if err != nil {
		logger.Error("Error getting transactions", err)
		return txTypes.TransactionListResponse{Count: 0, Data: []txTypes.TransactionView{}}
	}

	views := make([]txTypes.TransactionView, 0, len(rows))
	for _, row := range rows {
		views = append(views, txTypes.TransactionView{
			ID:          row.ID,
			Customer:    row.Customer,
			Medicine:    row.Medicine,
			PriceETH:    row.PriceETH,
			Timestamp:   row.PurchasedAt.UTC().Format(time.RFC3339Nano),
			TxHash:      row.TxHash,
			ChainID:     row.ChainID,
			BlockNumber: row.BlockNumber,
		})
	}
	return txTypes.TransactionListResponse{Count: len(views), Data: views}
}

// UserStats aggregates purchases per customer, biggest spenders first.
func (r *Recorder) UserStats(ctx context.Context) (*txTypes.UserStatsResponse, error) {
	type aggregate struct {
		stat txTypes.UserStat
		last time.Time
	}
	byCustomer := make(map[string]*aggregate)

	var batch []txModel.Transaction
	result := r.db.WithContext(ctx).
		Select("id", "customer", "item_count", "price_eth", "purchased_at").
		FindInBatches(&batch, statsBatchSize, func(tx *gorm.DB, _ int) error {
			for _, row := range batch {
				agg, ok := byCustomer[row.Customer]
				if !ok {
					agg = &aggregate{stat: txTypes.UserStat{Customer: row.Customer}}
					byCustomer[row.Customer] = agg
				}
				agg.stat.OrderCount++
				agg.stat.ItemCount += int64(row.ItemCount)
				agg.stat.TotalSpent += row.PriceETH
				if row.PurchasedAt.After(agg.last) {
					agg.last = row.PurchasedAt
				}
			}
			return nil
		})
	if result.Error != nil {
		return nil, apperror.Internal(result.Error)
	}

	stats := make([]txTypes.UserStat, 0, len(byCustomer))
	for _, agg := range byCustomer {
		agg.stat.AvgOrderValue = agg.stat.TotalSpent / float64(agg.stat.OrderCount)
		agg.stat.LastPurchase = agg.last.UTC().Format(time.RFC3339Nano)
		stats = append(stats, agg.stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalSpent != stats[j].TotalSpent {
			return stats[i].TotalSpent > stats[j].TotalSpent
		}
		return stats[i].Customer < stats[j].Customer
	})
	return &txTypes.UserStatsResponse{Count: len(stats), Data: stats}, nil
}
