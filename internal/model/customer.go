package model

import "time"

type CustomerTier string

const (
	TierBronze   CustomerTier = "bronze"
	TierSilver   CustomerTier = "silver"
	TierGold     CustomerTier = "gold"
	TierPlatinum CustomerTier = "platinum"
)

// Customer is a dimension row. Transactions reference it by CustomerID and
// never own it; the referenced id must exist in the warehouse before a fact
// row commits.
type Customer struct {
	CustomerID       string       `json:"customer_id"`
	Name             string       `json:"customer_name"`
	RegistrationDate time.Time    `json:"registration_date"`
	Tier             CustomerTier `json:"customer_tier"`
	Email            string       `json:"email"`
	Active           bool         `json:"is_active"`
}

func (Customer) TableName() string { return "dim_customers" }
