package fixtures

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finboard/warehouse-etl/internal/model"
)

// BaseTime is the reference instant test fixtures are anchored to: a
// Wednesday afternoon, so neither the weekend nor the night-hour risk
// signal fires unless a test asks for it.
var BaseTime = time.Date(2026, time.March, 4, 14, 30, 0, 0, time.UTC)

var (
	TestCustomerGold = model.Customer{
		CustomerID:       "CUST000001",
		Name:             "Ada Marsh",
		RegistrationDate: time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC),
		Tier:             model.TierGold,
		Email:            "ada.marsh@example.com",
		Active:           true,
	}

	TestCustomerBronze = model.Customer{
		CustomerID:       "CUST000002",
		Name:             "Noor Haddad",
		RegistrationDate: time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
		Tier:             model.TierBronze,
		Email:            "noor.haddad@example.com",
		Active:           true,
	}

	TestCustomerSilver = model.Customer{
		CustomerID:       "CUST000003",
		Name:             "Tomas Lindqvist",
		RegistrationDate: time.Date(2023, time.October, 9, 0, 0, 0, 0, time.UTC),
		Tier:             model.TierSilver,
		Email:            "tomas.l@example.com",
		Active:           false,
	}
)

func NewTestTransaction(id, customerID string, amount float64, ts time.Time) model.Transaction {
	return model.Transaction{
		TransactionID: id,
		CustomerID:    customerID,
		Timestamp:     ts,
		Amount:        decimal.NewFromFloat(amount),
		MerchantID:    "MERCH0001",
		Category:      "retail",
		Status:        model.StatusCompleted,
		PaymentMethod: "credit_card",
	}
}

func NewRawTransaction(id, customerID, amount, ts string) model.RawTransaction {
	return model.RawTransaction{
		TransactionID: id,
		CustomerID:    customerID,
		Timestamp:     ts,
		Amount:        amount,
		MerchantID:    "MERCH0001",
		Category:      "retail",
		Status:        "completed",
		PaymentMethod: "credit_card",
	}
}

func NewRawCustomer(id, name, tier string) model.RawCustomer {
	return model.RawCustomer{
		CustomerID:       id,
		Name:             name,
		RegistrationDate: "2023-05-20",
		Tier:             tier,
		Email:            name + "@example.com",
		Active:           "true",
	}
}
