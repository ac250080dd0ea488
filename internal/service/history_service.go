package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/gestorpro/gestor-api/internal/mapper"
	"github.com/gestorpro/gestor-api/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// HistoryService merges a contact's deals, quotes and transactions into one timeline
type HistoryService struct {
	dealRepo        *repository.DealRepository
	quoteRepo       *repository.QuoteRepository
	transactionRepo *repository.TransactionRepository
	logger          *zap.Logger
}

func NewHistoryService(
	dealRepo *repository.DealRepository,
	quoteRepo *repository.QuoteRepository,
	transactionRepo *repository.TransactionRepository,
	logger *zap.Logger,
) *HistoryService {
	return &HistoryService{
		dealRepo:        dealRepo,
		quoteRepo:       quoteRepo,
		transactionRepo: transactionRepo,
		logger:          logger,
	}
}

// BuildTimeline fetches the three sources concurrently; any failure aborts the whole timeline.
// Items are sorted by date, newest first, with undated items last.
func (s *HistoryService) BuildTimeline(ctx context.Context, tenantID, contactID uuid.UUID) (*domain.Timeline, error) {
	var (
		deals        []domain.Deal
		quotes       []domain.Quote
		transactions []domain.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		deals, err = s.dealRepo.ListByContact(gctx, tenantID, contactID)
		if err != nil {
			return fmt.Errorf("failed to list deals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		quotes, err = s.quoteRepo.ListByContact(gctx, tenantID, contactID)
		if err != nil {
			return fmt.Errorf("failed to list quotes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		transactions, err = s.transactionRepo.ListByContact(gctx, tenantID, contactID)
		if err != nil {
			return fmt.Errorf("failed to list transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("timeline aggregation failed",
			zap.String("contact_id", contactID.String()), zap.Error(err))
		return nil, err
	}

	items := make([]domain.TimelineItem, 0, len(deals)+len(quotes)+len(transactions))
	for i := range deals {
		d := &deals[i]
		created := d.CreatedAt
		items = append(items, domain.TimelineItem{
			ID:     d.ID,
			Kind:   domain.TimelineKindDeal,
			Date:   &created,
			Title:  d.Title,
			Value:  d.Value,
			Status: string(d.Status),
		})
	}
	for i := range quotes {
		q := &quotes[i]
		items = append(items, domain.TimelineItem{
			ID:     q.ID,
			Kind:   domain.TimelineKindQuote,
			Date:   q.IssueDate,
			Title:  mapper.QuoteTitle(q),
			Value:  q.TotalAmount,
			Status: string(q.Status),
		})
	}
	for i := range transactions {
		t := &transactions[i]
		items = append(items, domain.TimelineItem{
			ID:     t.ID,
			Kind:   domain.TimelineKindTransaction,
			Date:   t.DueDate,
			Title:  t.Description,
			Value:  t.Amount,
			Status: string(t.Status),
		})
	}

	SortTimeline(items)

	return &domain.Timeline{
		ContactID:     contactID,
		Items:         items,
		LifetimeValue: LifetimeValue(transactions),
	}, nil
}

// SortTimeline orders items by date descending. Undated items sort as oldest and keep their relative order.
func SortTimeline(items []domain.TimelineItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Date, items[j].Date
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

// LifetimeValue sums settled income: received income transactions, counting the
// paid amount when present and non-zero, else the nominal amount.
func LifetimeValue(transactions []domain.Transaction) float64 {
	total := decimal.Zero
	for i := range transactions {
		t := &transactions[i]
		if !t.CountsTowardLifetimeValue() {
			continue
		}
		total = total.Add(decimal.NewFromFloat(t.SettledAmount()))
	}
	v, _ := total.Float64()
	return v
}
