package view

import (
	"context"
	"errors"

	"gofinances/internal/api"
	"gofinances/internal/core"
	"gofinances/internal/log"
)

// Summary card test ids.
const (
	TestIDIncome  = "balance-income"
	TestIDOutcome = "balance-outcome"
	TestIDTotal   = "balance-total"
)

// Card is one summary card.
type Card struct {
	Label  string
	Icon   string
	TestID string
	Value  string
	Total  bool
}

// Row is one table line.
type Row struct {
	ID       string
	Title    string
	Kind     string
	Value    string
	Category string
	Date     string
}

// Model is the data handed to the template.
type Model struct {
	Phase string
	Cards []Card
	Rows  []Row
	Error string
}

// NewModel maps state to template data.
func NewModel(s State) Model {
	b := s.Dashboard.Balance
	m := Model{
		Phase: s.Phase.String(),
		Cards: []Card{
			{Label: "Entradas", Icon: "income.svg", TestID: TestIDIncome, Value: b.Income},
			{Label: "Saídas", Icon: "outcome.svg", TestID: TestIDOutcome, Value: b.Outcome},
			{Label: "Total", Icon: "total.svg", TestID: TestIDTotal, Value: b.Total, Total: true},
		},
		Rows: make([]Row, 0, len(s.Dashboard.Transactions)),
	}
	for _, t := range s.Dashboard.Transactions {
		m.Rows = append(m.Rows, Row{
			ID:       t.ID,
			Title:    t.Title,
			Kind:     string(t.Type),
			Value:    t.SignedValue(),
			Category: t.Category.Title,
			Date:     t.FormattedDate,
		})
	}
	if s.Err != nil {
		m.Error = UserMessage(s.Err)
	}
	return m
}

// UserMessage turns a load error into text safe to show on the page.
func UserMessage(err error) string {
	var se *api.StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, api.ErrUnavailable):
		return "Não foi possível conectar ao serviço de transações."
	case errors.As(err, &se):
		return "O serviço de transações respondeu com erro. Tente novamente mais tarde."
	case errors.Is(err, api.ErrMalformed), errors.Is(err, core.ErrInvalidDate):
		return "Os dados recebidos são inválidos."
	default:
		return "Não foi possível carregar as transações."
	}
}

// ErrorType classifies a load error for logging.
func ErrorType(err error) string {
	var se *api.StatusError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return log.ErrorTypeCanceled
	case errors.Is(err, api.ErrUnavailable):
		return log.ErrorTypeNetwork
	case errors.As(err, &se):
		return log.ErrorTypeUpstream
	case errors.Is(err, api.ErrMalformed):
		return log.ErrorTypeMalformed
	case errors.Is(err, core.ErrInvalidDate):
		return log.ErrorTypeFormat
	default:
		return log.ErrorTypeInternal
	}
}
