package core

import (
	"fmt"
	"time"
)

// DisplayTransaction is a RawTransaction with its display strings
// precomputed at load time.
type DisplayTransaction struct {
	ID             string
	Title          string
	Value          float64
	Type           Kind
	Category       Category
	CreatedAt      time.Time
	FormattedValue string
	FormattedDate  string
}

// SignedValue is the value cell text: outcome values carry a minus sign.
func (t DisplayTransaction) SignedValue() string {
	if sign := t.Type.Sign(); sign != "" {
		return sign + " " + t.FormattedValue
	}
	return t.FormattedValue
}

// DisplayBalance holds the formatted totals shown on the summary cards.
type DisplayBalance struct {
	Income  string
	Outcome string
	Total   string
}

// Dashboard is everything the transactions view renders.
type Dashboard struct {
	Transactions []DisplayTransaction
	Balance      DisplayBalance
}

// Present maps a response into display records. The mapping preserves order
// and count; it fails as a whole if any record cannot be formatted, so callers
// never observe a partial list.
func Present(resp Response, f *Formatter) (Dashboard, error) {
	if err := resp.Validate(); err != nil {
		return Dashboard{}, err
	}
	out := make([]DisplayTransaction, len(resp.Transactions))
	for i, raw := range resp.Transactions {
		created, err := ParseTimestamp(raw.CreatedAt, f.Location())
		if err != nil {
			return Dashboard{}, fmt.Errorf("transaction %s: %w", raw.ID, err)
		}
		out[i] = DisplayTransaction{
			ID:             raw.ID,
			Title:          raw.Title,
			Value:          raw.Value,
			Type:           raw.Type,
			Category:       Category{Title: raw.Category.Title},
			CreatedAt:      created,
			FormattedValue: f.Currency(raw.Value),
			FormattedDate:  f.Date(created),
		}
	}
	return Dashboard{
		Transactions: out,
		Balance:      PresentBalance(resp.Balance, f),
	}, nil
}

// PresentBalance formats each total independently.
func PresentBalance(b Balance, f *Formatter) DisplayBalance {
	return DisplayBalance{
		Income:  f.Currency(b.Income),
		Outcome: f.Currency(b.Outcome),
		Total:   f.Currency(b.Total),
	}
}
