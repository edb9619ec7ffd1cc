package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RawTransaction mirrors the acquisition contract consumed by the ETL
// normalizer: every field is a string, defects included.
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

type BatchResponse struct {
	BatchID     string      `json:"batch_id"`
	GeneratedAt time.Time   `json:"generated_at"`
	Count       int         `json:"count"`
	Records     interface{} `json:"records"`
}

var (
	categories     = []string{"groceries", "restaurants", "gas", "retail", "utilities", "entertainment"}
	statuses       = []string{"completed", "completed", "completed", "completed", "pending", "failed"}
	paymentMethods = []string{"credit_card", "credit_card", "debit_card", "bank_transfer", "cash"}
	tiers          = []string{"bronze", "bronze", "silver", "silver", "gold", "platinum"}
)

// MockSource simulates the raw-record acquisition collaborator. Batches
// carry realistic quality defects so a downstream run exercises its
// malformed, duplicate and rule-violation paths: ~2% missing amounts and
// ~1% repeated transaction ids, matching what production feeds look like
// on a bad day.
type MockSource struct {
	sourceID  string
	customers int
	rng       *rand.Rand
}

func NewMockSource(customers int) *MockSource {
	return &MockSource{
		sourceID:  "MOCK_SOURCE_" + uuid.New().String()[:8],
		customers: customers,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *MockSource) transactions(count int) []RawTransaction {
	now := time.Now().UTC()
	out := make([]RawTransaction, count)
	for i := 0; i < count; i++ {
		age := time.Duration(s.rng.Intn(365*24)) * time.Hour
		amount := fmt.Sprintf("%.2f", 5+s.rng.ExpFloat64()*250)
		out[i] = RawTransaction{
			TransactionID: fmt.Sprintf("TXN%08d", s.rng.Intn(100_000_000)),
			CustomerID:    fmt.Sprintf("CUST%06d", 1+s.rng.Intn(s.customers)),
			Timestamp:     now.Add(-age).Format(time.RFC3339),
			Amount:        amount,
			MerchantID:    fmt.Sprintf("MERCH%04d", 1+s.rng.Intn(500)),
			Category:      categories[s.rng.Intn(len(categories))],
			Status:        statuses[s.rng.Intn(len(statuses))],
			PaymentMethod: paymentMethods[s.rng.Intn(len(paymentMethods))],
		}
	}

	// defect injection: missing amounts and duplicated ids
	for i := range out {
		if s.rng.Float64() < 0.02 {
			out[i].Amount = ""
		}
		if i > 0 && s.rng.Float64() < 0.01 {
			out[i].TransactionID = out[s.rng.Intn(i)].TransactionID
		}
	}
	return out
}

func (s *MockSource) customerBatch(count int) []RawCustomer {
	out := make([]RawCustomer, count)
	for i := 0; i < count; i++ {
		id := i + 1
		regAge := time.Duration(s.rng.Intn(5*365*24)) * time.Hour
		out[i] = RawCustomer{
			CustomerID:       fmt.Sprintf("CUST%06d", id),
			Name:             fmt.Sprintf("Customer %d", id),
			RegistrationDate: time.Now().UTC().Add(-regAge).Format("2006-01-02"),
			Tier:             tiers[s.rng.Intn(len(tiers))],
			Email:            fmt.Sprintf("customer%d@example.com", id),
			Active:           strconv.FormatBool(s.rng.Float64() < 0.95),
		}
	}
	return out
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	port := os.Getenv("SOURCE_PORT")
	if port == "" {
		port = "8090"
	}

	source := NewMockSource(5000)
	log.Info().Str("source_id", source.sourceID).Str("port", port).Msg("starting mock acquisition source")

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"source_id": source.sourceID,
			"timestamp": time.Now().UTC(),
		})
	})

	r.GET("/batches/transactions", func(c *gin.Context) {
		count := queryCount(c, 1000)
		records := source.transactions(count)
		c.JSON(http.StatusOK, BatchResponse{
			BatchID:     uuid.New().String(),
			GeneratedAt: time.Now().UTC(),
			Count:       len(records),
			Records:     records,
		})
	})

	r.GET("/batches/customers", func(c *gin.Context) {
		count := queryCount(c, 500)
		records := source.customerBatch(count)
		c.JSON(http.StatusOK, BatchResponse{
			BatchID:     uuid.New().String(),
			GeneratedAt: time.Now().UTC(),
			Count:       len(records),
			Records:     records,
		})
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down mock source")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

func queryCount(c *gin.Context, def int) int {
	raw := c.Query("count")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 100_000 {
		return def
	}
	return n
}
