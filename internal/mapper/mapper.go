package mapper

import (
	"fmt"

	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/gestorpro/gestor-api/internal/format"
	"github.com/google/uuid"
)

// ToContactDTO converts Contact to ContactDTO
func ToContactDTO(contact *domain.Contact) domain.ContactDTO {
	return domain.ContactDTO{
		ID:           contact.ID,
		Name:         contact.Name,
		Category:     contact.Category,
		Email:        contact.Email,
		Phone:        contact.Phone,
		TaxID:        contact.TaxID,
		ZipCode:      contact.ZipCode,
		Street:       contact.Street,
		Number:       contact.Number,
		Complement:   contact.Complement,
		Neighborhood: contact.Neighborhood,
		City:         contact.City,
		State:        contact.State,
		CreatedAt:    format.Timestamp(contact.CreatedAt),
		UpdatedAt:    format.Timestamp(contact.UpdatedAt),
	}
}

// ToStageDTO converts Stage to StageDTO
func ToStageDTO(stage *domain.Stage) domain.StageDTO {
	return domain.StageDTO{
		ID:        stage.ID,
		Name:      stage.Name,
		Color:     stage.Color,
		Position:  stage.Position,
		CreatedAt: format.Timestamp(stage.CreatedAt),
		UpdatedAt: format.Timestamp(stage.UpdatedAt),
	}
}

// ToDealDTO converts Deal to DealDTO
func ToDealDTO(deal *domain.Deal) domain.DealDTO {
	tags := deal.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.DealDTO{
		ID:             deal.ID,
		Title:          deal.Title,
		Description:    deal.Description,
		ContactID:      deal.ContactID,
		StageID:        deal.StageID,
		Value:          deal.Value,
		ValueFormatted: format.BRL(deal.Value),
		Probability:    deal.Probability,
		Status:         deal.Status,
		Tags:           tags,
		CreatedAt:      format.Timestamp(deal.CreatedAt),
		UpdatedAt:      format.Timestamp(deal.UpdatedAt),
	}
}

// ToDealStageHistoryDTO converts DealStageHistory to DealStageHistoryDTO
func ToDealStageHistoryDTO(h *domain.DealStageHistory) domain.DealStageHistoryDTO {
	return domain.DealStageHistoryDTO{
		ID:            h.ID,
		DealID:        h.DealID,
		FromStageID:   h.FromStageID,
		ToStageID:     h.ToStageID,
		ChangedByID:   h.ChangedByID,
		ChangedByName: h.ChangedByName,
		ChangedAt:     format.Timestamp(h.ChangedAt),
	}
}

// ToBoardDTO groups the board's deals into one column per stage, in stage order.
// Deals without a stage, or pointing at a stage that is not on the board, are listed as unassigned.
func ToBoardDTO(board *domain.Board) domain.BoardDTO {
	columns := make([]domain.BoardColumnDTO, len(board.Stages))
	index := make(map[uuid.UUID]int, len(board.Stages))
	for i := range board.Stages {
		columns[i] = domain.BoardColumnDTO{
			Stage: ToStageDTO(&board.Stages[i]),
			Deals: []domain.DealDTO{},
		}
		index[board.Stages[i].ID] = i
	}

	unassigned := []domain.DealDTO{}
	for i := range board.Deals {
		deal := &board.Deals[i]
		if deal.StageID != nil {
			if col, ok := index[*deal.StageID]; ok {
				columns[col].Deals = append(columns[col].Deals, ToDealDTO(deal))
				columns[col].TotalValue += deal.Value
				continue
			}
		}
		unassigned = append(unassigned, ToDealDTO(deal))
	}

	for i := range columns {
		columns[i].TotalValueFormatted = format.BRL(columns[i].TotalValue)
	}

	return domain.BoardDTO{Columns: columns, Unassigned: unassigned}
}

// ToQuoteDTO converts Quote to QuoteDTO
func ToQuoteDTO(quote *domain.Quote) domain.QuoteDTO {
	return domain.QuoteDTO{
		ID:             quote.ID,
		ContactID:      quote.ContactID,
		DealID:         quote.DealID,
		Number:         quote.Number,
		Title:          quote.Title,
		TotalAmount:    quote.TotalAmount,
		TotalFormatted: format.BRL(quote.TotalAmount),
		Status:         quote.Status,
		IssueDate:      format.ISODate(quote.IssueDate),
		CreatedAt:      format.Timestamp(quote.CreatedAt),
	}
}

// ToTransactionDTO converts Transaction to TransactionDTO
func ToTransactionDTO(t *domain.Transaction) domain.TransactionDTO {
	return domain.TransactionDTO{
		ID:              t.ID,
		ContactID:       t.ContactID,
		DealID:          t.DealID,
		Description:     t.Description,
		Type:            t.Type,
		Status:          t.Status,
		Amount:          t.Amount,
		PaidAmount:      t.PaidAmount,
		AmountFormatted: format.BRL(t.SettledAmount()),
		DueDate:         format.ISODate(t.DueDate),
		CreatedAt:       format.Timestamp(t.CreatedAt),
	}
}

// ToTimelineDTO converts a Timeline with display formatting applied
func ToTimelineDTO(timeline *domain.Timeline) domain.TimelineDTO {
	items := make([]domain.TimelineItemDTO, len(timeline.Items))
	for i, item := range timeline.Items {
		items[i] = domain.TimelineItemDTO{
			ID:             item.ID,
			Kind:           item.Kind,
			Date:           format.ISODate(item.Date),
			DateFormatted:  format.Date(item.Date),
			Title:          item.Title,
			Value:          item.Value,
			ValueFormatted: format.BRL(item.Value),
			Status:         item.Status,
		}
	}
	return domain.TimelineDTO{
		ContactID:              timeline.ContactID,
		Items:                  items,
		LifetimeValue:          timeline.LifetimeValue,
		LifetimeValueFormatted: format.BRL(timeline.LifetimeValue),
	}
}

// QuoteTitle is the display title of a quote, falling back to its number
func QuoteTitle(quote *domain.Quote) string {
	if quote.Title != "" {
		return quote.Title
	}
	if quote.Number != "" {
		return fmt.Sprintf("Orçamento #%s", quote.Number)
	}
	return "Orçamento"
}
