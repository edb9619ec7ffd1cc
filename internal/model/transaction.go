package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the settlement state reported by the acquisition layer.
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
	StatusPending   TransactionStatus = "pending"
	StatusFailed    TransactionStatus = "failed"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusCompleted, StatusPending, StatusFailed:
		return true
	}
	return false
}

// AmountCategory buckets a transaction amount against the configured thresholds.
type AmountCategory string

const (
	AmountMicro     AmountCategory = "micro"
	AmountSmall     AmountCategory = "small"
	AmountMedium    AmountCategory = "medium"
	AmountLarge     AmountCategory = "large"
	AmountVeryLarge AmountCategory = "very_large"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Transaction is a warehouse-ready fact candidate. The enrichment fields are
// zero until the enricher has run; once loaded the record is immutable.
type Transaction struct {
	TransactionID string            `json:"transaction_id"`
	CustomerID    string            `json:"customer_id"`
	Timestamp     time.Time         `json:"transaction_date"`
	Amount        decimal.Decimal   `json:"amount"`
	MerchantID    string            `json:"merchant_id"`
	Category      string            `json:"category"`
	Status        TransactionStatus `json:"status"`
	PaymentMethod string            `json:"payment_method"`

	Year           int            `json:"transaction_year"`
	Month          int            `json:"transaction_month"`
	Day            int            `json:"transaction_day"`
	DayOfWeek      int            `json:"transaction_dayofweek"`
	Hour           int            `json:"transaction_hour"`
	AmountCategory AmountCategory `json:"amount_category"`
	RiskScore      float64        `json:"risk_score"`
	RiskLevel      RiskLevel      `json:"risk_level"`
	ProcessedAt    time.Time      `json:"processed_at"`
}

func (Transaction) TableName() string { return "fact_transactions" }
