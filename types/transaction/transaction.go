package transaction

type PurchaseResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type RevenueItem struct {
	Customer string  `json:"customer"`
	Medicine string  `json:"medicine"`
	PriceETH float64 `json:"price_eth"`
	Date     string  `json:"date"`
}

type RevenueResponse struct {
	Total        float64       `json:"total"`
	Transactions []RevenueItem `json:"transactions"`
}

// TransactionView is a stored purchase with identifiers and time rendered as text.
type TransactionView struct {
	ID          string  `json:"_id"`
	Customer    string  `json:"customer"`
	Medicine    string  `json:"medicine"`
	PriceETH    float64 `json:"price_eth"`
	Timestamp   string  `json:"timestamp"`
	TxHash      *string `json:"tx_hash"`
	ChainID     *string `json:"chain_id"`
	BlockNumber *string `json:"block_number"`
}

type TransactionListResponse struct {
	Count int               `json:"count"`
	Data  []TransactionView `json:"data"`
}

// UserStat aggregates the purchases of one customer.
type UserStat struct {
	Customer      string  `json:"customer"`
	OrderCount    int64   `json:"orderCount"`
	ItemCount     int64   `json:"itemCount"`
	TotalSpent    float64 `json:"totalSpent"`
	AvgOrderValue float64 `json:"avgOrderValue"`
	LastPurchase  string  `json:"lastPurchase"`
}

type UserStatsResponse struct {
	Count int        `json:"count"`
	Data  []UserStat `json:"data"`
}
