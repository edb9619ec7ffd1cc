package normalizer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/finboard/warehouse-etl/internal/model"
	"github.com/shopspring/decimal"
)

// timestampLayouts are the encodings the acquisition layer is known to emit.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalizer coerces raw acquisition payloads into typed records. It carries
// no business semantics: a record failing to parse is rejected as malformed
// and counted, never coerced to defaults or aborting the run.
type Normalizer struct {
	loc *time.Location
}

func New(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

// NormalizeTransactions returns canonical transactions in input order plus
// one rejection per unusable input: missing_transaction_id when the id is
// absent, malformed_record for any other parse failure.
func (n *Normalizer) NormalizeTransactions(raws []model.RawTransaction) ([]model.Transaction, []model.Rejection) {
	out := make([]model.Transaction, 0, len(raws))
	var rejected []model.Rejection

	for _, raw := range raws {
		tx, reason := n.normalizeTransaction(raw)
		if reason != "" {
			rejected = append(rejected, model.Rejection{
				TransactionID: canonicalID(raw.TransactionID),
				Stage:         model.StageNormalize,
				Reasons:       []model.ReasonCode{reason},
			})
			continue
		}
		out = append(out, tx)
	}
	return out, rejected
}

// normalizeTransaction returns the typed record and an empty reason, or the
// reason code the record is rejected under.
func (n *Normalizer) normalizeTransaction(raw model.RawTransaction) (model.Transaction, model.ReasonCode) {
	id := canonicalID(raw.TransactionID)
	customerID := canonicalID(raw.CustomerID)
	if id == "" {
		return model.Transaction{}, model.ReasonMissingTransactionID
	}

	ts, err := parseTimestamp(raw.Timestamp, n.loc)
	if err != nil {
		return model.Transaction{}, model.ReasonMalformedRecord
	}

	amountField := strings.TrimSpace(raw.Amount)
	if amountField == "" {
		return model.Transaction{}, model.ReasonMalformedRecord
	}
	amount, err := decimal.NewFromString(amountField)
	if err != nil {
		return model.Transaction{}, model.ReasonMalformedRecord
	}

	return model.Transaction{
		TransactionID: id,
		CustomerID:    customerID,
		Timestamp:     ts,
		Amount:        amount,
		MerchantID:    canonicalID(raw.MerchantID),
		Category:      canonicalEnum(raw.Category),
		Status:        model.TransactionStatus(canonicalEnum(raw.Status)),
		PaymentMethod: canonicalEnum(raw.PaymentMethod),
	}, ""
}

// NormalizeCustomers coerces raw customer payloads. A customer without an id
// or registration date is malformed; tier and email pass through canonical
// casing untouched otherwise.
func (n *Normalizer) NormalizeCustomers(raws []model.RawCustomer) ([]model.Customer, []model.Rejection) {
	out := make([]model.Customer, 0, len(raws))
	var rejected []model.Rejection

	for _, raw := range raws {
		id := canonicalID(raw.CustomerID)
		regDate, err := parseTimestamp(raw.RegistrationDate, n.loc)
		if id == "" || err != nil {
			rejected = append(rejected, model.Rejection{
				TransactionID: id,
				Stage:         model.StageNormalize,
				Reasons:       []model.ReasonCode{model.ReasonMalformedRecord},
			})
			continue
		}

		active := true
		if v := strings.TrimSpace(raw.Active); v != "" {
			b, err := strconv.ParseBool(strings.ToLower(v))
			if err != nil {
				rejected = append(rejected, model.Rejection{
					TransactionID: id,
					Stage:         model.StageNormalize,
					Reasons:       []model.ReasonCode{model.ReasonMalformedRecord},
				})
				continue
			}
			active = b
		}

		out = append(out, model.Customer{
			CustomerID:       id,
			Name:             strings.TrimSpace(raw.Name),
			RegistrationDate: regDate,
			Tier:             model.CustomerTier(canonicalEnum(raw.Tier)),
			Email:            strings.ToLower(strings.TrimSpace(raw.Email)),
			Active:           active,
		})
	}
	return out, rejected
}

func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Identifiers are upper-cased, enum-ish fields lower-cased, matching the
// warehouse's canonical casing.
func canonicalID(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func canonicalEnum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
