package core

import (
	"errors"
	"testing"
)

func sampleResponse() Response {
	return Response{
		Transactions: []RawTransaction{
			{ID: "a", Title: "Salary", Value: 5000, Type: Income, Category: Category{Title: "Work"}, CreatedAt: "2021-03-15T00:00:00.000Z"},
			{ID: "b", Title: "Rent", Value: 1500, Type: Outcome, Category: Category{Title: "House"}, CreatedAt: "2021-03-16T12:00:00.000Z"},
			{ID: "c", Title: "Food", Value: 500, Type: Outcome, Category: Category{Title: "Groceries"}, CreatedAt: "2021-03-01"},
		},
		Balance: Balance{Income: 5000, Outcome: 2000, Total: 3000},
	}
}

func TestPresentPreservesOrderAndCount(t *testing.T) {
	f := MustFormatter(DefaultFormatterConfig())
	d, err := Present(sampleResponse(), f)
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	if len(d.Transactions) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(d.Transactions))
	}
	for i, id := range []string{"a", "b", "c"} {
		if d.Transactions[i].ID != id {
			t.Fatalf("row %d id = %q, want %q", i, d.Transactions[i].ID, id)
		}
	}

	first := d.Transactions[0]
	if first.FormattedDate != "15/03/2021" {
		t.Fatalf("FormattedDate = %q", first.FormattedDate)
	}
	if first.FormattedValue != "R$ 5.000,00" {
		t.Fatalf("FormattedValue = %q", first.FormattedValue)
	}
	if first.Category.Title != "Work" {
		t.Fatalf("Category = %q", first.Category.Title)
	}
	if d.Transactions[2].FormattedDate != "01/03/2021" {
		t.Fatalf("date-only FormattedDate = %q", d.Transactions[2].FormattedDate)
	}
}

func TestPresentBalanceMapping(t *testing.T) {
	f := MustFormatter(DefaultFormatterConfig())
	d, err := Present(sampleResponse(), f)
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	want := DisplayBalance{Income: "R$ 5.000,00", Outcome: "R$ 2.000,00", Total: "R$ 3.000,00"}
	if d.Balance != want {
		t.Fatalf("Balance = %+v, want %+v", d.Balance, want)
	}
}

func TestSignedValue(t *testing.T) {
	in := DisplayTransaction{Type: Income, FormattedValue: "R$ 10,00"}
	out := DisplayTransaction{Type: Outcome, FormattedValue: "R$ 10,00"}
	if in.SignedValue() != "R$ 10,00" {
		t.Fatalf("income SignedValue = %q", in.SignedValue())
	}
	if out.SignedValue() != "- R$ 10,00" {
		t.Fatalf("outcome SignedValue = %q", out.SignedValue())
	}
}

func TestPresentEmpty(t *testing.T) {
	f := MustFormatter(DefaultFormatterConfig())
	d, err := Present(Response{}, f)
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	if len(d.Transactions) != 0 {
		t.Fatalf("expected no transactions, got %d", len(d.Transactions))
	}
	if d.Balance.Total != "R$ 0,00" {
		t.Fatalf("Total = %q", d.Balance.Total)
	}
}

func TestPresentFailsAsWhole(t *testing.T) {
	f := MustFormatter(DefaultFormatterConfig())
	resp := sampleResponse()
	resp.Transactions[1].CreatedAt = "yesterday"
	d, err := Present(resp, f)
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if d.Transactions != nil {
		t.Fatalf("expected no partial result, got %d rows", len(d.Transactions))
	}
}
