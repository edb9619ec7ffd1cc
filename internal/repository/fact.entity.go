package repository

import (
	"time"

	"github.com/finboard/warehouse-etl/internal/model"
	"github.com/shopspring/decimal"
)

// FactEntity is a committed transaction fact row. The amount and status
// check constraints and the foreign key to dim_customers live in the
// migration DDL; gorm tags mirror them for the sqlite test harness.
type FactEntity struct {
	TransactionID  string          `db:"transaction_id"        gorm:"primaryKey;column:transaction_id"`
	CustomerID     string          `db:"customer_id"           gorm:"column:customer_id;not null;index"`
	Customer       *CustomerEntity `db:"-"                     gorm:"foreignKey:CustomerID;references:CustomerID"`
	Timestamp      time.Time       `db:"transaction_date"      gorm:"column:transaction_date;not null;index"`
	Amount         decimal.Decimal `db:"amount"                gorm:"column:amount;type:numeric(14,2);not null"`
	MerchantID     string          `db:"merchant_id"           gorm:"column:merchant_id"`
	Category       string          `db:"category"              gorm:"column:category"`
	Status         string          `db:"status"                gorm:"column:status;not null"`
	PaymentMethod  string          `db:"payment_method"        gorm:"column:payment_method"`
	Year           int             `db:"transaction_year"      gorm:"column:transaction_year"`
	Month          int             `db:"transaction_month"     gorm:"column:transaction_month"`
	Day            int             `db:"transaction_day"       gorm:"column:transaction_day"`
	DayOfWeek      int             `db:"transaction_dayofweek" gorm:"column:transaction_dayofweek"`
	Hour           int             `db:"transaction_hour"      gorm:"column:transaction_hour"`
	AmountCategory string          `db:"amount_category"       gorm:"column:amount_category"`
	RiskScore      float64         `db:"risk_score"            gorm:"column:risk_score"`
	RiskLevel      string          `db:"risk_level"            gorm:"column:risk_level"`
	ProcessedAt    time.Time       `db:"processed_at"          gorm:"column:processed_at"`
}

func (FactEntity) TableName() string {
	return "fact_transactions"
}

func toFactEntity(m *model.Transaction) *FactEntity {
	if m == nil {
		return nil
	}
	return &FactEntity{
		TransactionID:  m.TransactionID,
		CustomerID:     m.CustomerID,
		Timestamp:      m.Timestamp,
		Amount:         m.Amount,
		MerchantID:     m.MerchantID,
		Category:       m.Category,
		Status:         string(m.Status),
		PaymentMethod:  m.PaymentMethod,
		Year:           m.Year,
		Month:          m.Month,
		Day:            m.Day,
		DayOfWeek:      m.DayOfWeek,
		Hour:           m.Hour,
		AmountCategory: string(m.AmountCategory),
		RiskScore:      m.RiskScore,
		RiskLevel:      string(m.RiskLevel),
		ProcessedAt:    m.ProcessedAt,
	}
}

func toFactModel(e *FactEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	return &model.Transaction{
		TransactionID:  e.TransactionID,
		CustomerID:     e.CustomerID,
		Timestamp:      e.Timestamp,
		Amount:         e.Amount,
		MerchantID:     e.MerchantID,
		Category:       e.Category,
		Status:         model.TransactionStatus(e.Status),
		PaymentMethod:  e.PaymentMethod,
		Year:           e.Year,
		Month:          e.Month,
		Day:            e.Day,
		DayOfWeek:      e.DayOfWeek,
		Hour:           e.Hour,
		AmountCategory: model.AmountCategory(e.AmountCategory),
		RiskScore:      e.RiskScore,
		RiskLevel:      model.RiskLevel(e.RiskLevel),
		ProcessedAt:    e.ProcessedAt,
	}
}

func toFactEntities(models []model.Transaction) []*FactEntity {
	if models == nil {
		return nil
	}
	entities := make([]*FactEntity, len(models))
	for i := range models {
		entities[i] = toFactEntity(&models[i])
	}
	return entities
}
