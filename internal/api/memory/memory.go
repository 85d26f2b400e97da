package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"gofinances/internal/core"
)

// Store serves a fixed transaction list held in memory.
type Store struct {
	mu    sync.RWMutex
	items []core.RawTransaction
}

type seedFile struct {
	Transactions []core.RawTransaction `json:"transactions"`
}

// New copies txs, filling missing ids and timestamps.
func New(txs []core.RawTransaction) (*Store, error) {
	now := time.Now().UTC()
	items := make([]core.RawTransaction, 0, len(txs))
	for _, t := range txs {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.CreatedAt == "" {
			t.CreatedAt = now.Format(time.RFC3339Nano)
		}
		items = append(items, t)
	}
	resp := core.Response{Transactions: items}
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}
	return &Store{items: items}, nil
}

// NewFromFile loads a seed of the form {"transactions": [...]}. A missing
// file yields the default seed.
func NewFromFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Info("Seed file not found, using default seed", "path", path)
		return New(DefaultSeed())
	}
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return New(seed.Transactions)
}

// DefaultSeed is a small data set for local development.
func DefaultSeed() []core.RawTransaction {
	return []core.RawTransaction{
		{Title: "Desenvolvimento de site", Value: 12000, Type: core.Income, Category: core.Category{Title: "Vendas"}, CreatedAt: "2021-04-13T00:00:00.000Z"},
		{Title: "Hamburguer", Value: 59, Type: core.Outcome, Category: core.Category{Title: "Alimentação"}, CreatedAt: "2021-04-10T00:00:00.000Z"},
		{Title: "Aluguel do apartamento", Value: 1200, Type: core.Outcome, Category: core.Category{Title: "Casa"}, CreatedAt: "2021-03-27T00:00:00.000Z"},
		{Title: "Computador", Value: 5400, Type: core.Income, Category: core.Category{Title: "Vendas"}, CreatedAt: "2021-03-15T00:00:00.000Z"},
	}
}

// Transactions implements api.TransactionsReader. The balance is derived
// from the stored list.
func (s *Store) Transactions(_ context.Context) (core.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := append([]core.RawTransaction(nil), s.items...)
	return core.Response{
		Transactions: items,
		Balance:      core.ComputeBalance(items),
	}, nil
}

// Ping implements api.Pinger.
func (s *Store) Ping(_ context.Context) error {
	return nil
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
