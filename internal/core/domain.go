package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Outcome Kind = "outcome"
)

type (
	// Kind tells whether a transaction adds to or subtracts from the balance.
	Kind string

	Category struct {
		Title string `json:"title"`
	}

	// RawTransaction is a transaction as received from the transactions service.
	RawTransaction struct {
		ID         string   `json:"id"`
		Title      string   `json:"title"`
		Value      float64  `json:"value"`
		Type       Kind     `json:"type"`
		Category   Category `json:"category"`
		CategoryID string   `json:"category_id,omitempty"`
		CreatedAt  string   `json:"created_at"`
	}

	// Balance holds the aggregate totals of the current data set.
	Balance struct {
		Income  float64 `json:"income"`
		Outcome float64 `json:"outcome"`
		Total   float64 `json:"total"`
	}

	// Response is the body of GET transactions.
	Response struct {
		Transactions []RawTransaction `json:"transactions"`
		Balance      Balance          `json:"balance"`
	}
)

var (
	ErrInvalidKind    = errors.New("invalid transaction type")
	ErrNegativeValue  = errors.New("negative value")
	ErrEmptyID        = errors.New("empty transaction id")
	ErrInvalidDate    = errors.New("invalid created_at")
	ErrDuplicateID    = errors.New("duplicate transaction id")
	ErrMissingBalance = errors.New("missing balance")
)

func (k Kind) Validate() error {
	switch k {
	case Income, Outcome:
		return nil
	default:
		return ErrInvalidKind
	}
}

// Sign returns the prefix shown before the formatted value.
func (k Kind) Sign() string {
	if k == Outcome {
		return "-"
	}
	return ""
}

func (t RawTransaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if t.Value < 0 {
		return ErrNegativeValue
	}
	return nil
}

// Validate checks every record and rejects repeated ids, which would break
// row identity in the rendered table.
func (r Response) Validate() error {
	seen := make(map[string]struct{}, len(r.Transactions))
	for _, t := range r.Transactions {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, ok := seen[t.ID]; ok {
			return ErrDuplicateID
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

// ComputeBalance sums the list; total is income minus outcome.
func ComputeBalance(txs []RawTransaction) Balance {
	var b Balance
	for _, t := range txs {
		switch t.Type {
		case Income:
			b.Income += t.Value
		case Outcome:
			b.Outcome += t.Value
		}
	}
	b.Total = b.Income - b.Outcome
	return b
}

// Layouts accepted for created_at, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without an offset are
// interpreted in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
