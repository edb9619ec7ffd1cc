package model

// RawTransaction is the acquisition-layer payload before any coercion. Every
// field arrives as a string; the normalizer owns parsing and canonical casing.
type RawTransaction struct {
	TransactionID string `json:"transaction_id"`
	CustomerID    string `json:"customer_id"`
	Timestamp     string `json:"transaction_date"`
	Amount        string `json:"amount"`
	MerchantID    string `json:"merchant_id"`
	Category      string `json:"category"`
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
}

type RawCustomer struct {
	CustomerID       string `json:"customer_id"`
	Name             string `json:"customer_name"`
	RegistrationDate string `json:"registration_date"`
	Tier             string `json:"customer_tier"`
	Email            string `json:"email"`
	Active           string `json:"is_active"`
}
