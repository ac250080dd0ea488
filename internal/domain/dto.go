package domain

import (
	"time"

	"github.com/google/uuid"
)

// Response DTOs

type ContactDTO struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Category     ContactCategory `json:"category"`
	Email        string          `json:"email,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	TaxID        string          `json:"taxId,omitempty"`
	ZipCode      string          `json:"zipCode,omitempty"`
	Street       string          `json:"street,omitempty"`
	Number       string          `json:"number,omitempty"`
	Complement   string          `json:"complement,omitempty"`
	Neighborhood string          `json:"neighborhood,omitempty"`
	City         string          `json:"city,omitempty"`
	State        string          `json:"state,omitempty"`
	CreatedAt    string          `json:"createdAt"` // ISO 8601
	UpdatedAt    string          `json:"updatedAt"` // ISO 8601
}

type StageDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Position  int       `json:"position"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

type DealDTO struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	ContactID      *uuid.UUID `json:"contactId,omitempty"`
	StageID        *uuid.UUID `json:"stageId,omitempty"`
	Value          float64    `json:"value"`
	ValueFormatted string     `json:"valueFormatted"`
	Probability    int        `json:"probability"`
	Status         DealStatus `json:"status"`
	Tags           []string   `json:"tags"`
	CreatedAt      string     `json:"createdAt"`
	UpdatedAt      string     `json:"updatedAt"`
}

type DealStageHistoryDTO struct {
	ID            uuid.UUID  `json:"id"`
	DealID        uuid.UUID  `json:"dealId"`
	FromStageID   *uuid.UUID `json:"fromStageId,omitempty"`
	ToStageID     *uuid.UUID `json:"toStageId,omitempty"`
	ChangedByID   string     `json:"changedById"`
	ChangedByName string     `json:"changedByName,omitempty"`
	ChangedAt     string     `json:"changedAt"`
}

// BoardColumnDTO is a stage with the deals placed in it
type BoardColumnDTO struct {
	Stage               StageDTO  `json:"stage"`
	Deals               []DealDTO `json:"deals"`
	TotalValue          float64   `json:"totalValue"`
	TotalValueFormatted string    `json:"totalValueFormatted"`
}

type BoardDTO struct {
	Columns []BoardColumnDTO `json:"columns"`
	// Unassigned holds deals without a stage or whose stage is not on the board
	Unassigned []DealDTO `json:"unassigned"`
}

type DropResultDTO struct {
	Changed  bool            `json:"changed"`
	Board    BoardDTO        `json:"board"`
	FollowUp *FollowUpPrompt `json:"followUp,omitempty"`
}

type QuoteDTO struct {
	ID             uuid.UUID   `json:"id"`
	ContactID      *uuid.UUID  `json:"contactId,omitempty"`
	DealID         *uuid.UUID  `json:"dealId,omitempty"`
	Number         string      `json:"number,omitempty"`
	Title          string      `json:"title,omitempty"`
	TotalAmount    float64     `json:"totalAmount"`
	TotalFormatted string      `json:"totalFormatted"`
	Status         QuoteStatus `json:"status"`
	IssueDate      *string     `json:"issueDate,omitempty"`
	CreatedAt      string      `json:"createdAt"`
}

type TransactionDTO struct {
	ID              uuid.UUID         `json:"id"`
	ContactID       *uuid.UUID        `json:"contactId,omitempty"`
	DealID          *uuid.UUID        `json:"dealId,omitempty"`
	Description     string            `json:"description"`
	Type            TransactionType   `json:"type"`
	Status          TransactionStatus `json:"status"`
	Amount          float64           `json:"amount"`
	PaidAmount      *float64          `json:"paidAmount,omitempty"`
	AmountFormatted string            `json:"amountFormatted"`
	DueDate         *string           `json:"dueDate,omitempty"`
	CreatedAt       string            `json:"createdAt"`
}

type TimelineItemDTO struct {
	ID             uuid.UUID    `json:"id"`
	Kind           TimelineKind `json:"kind"`
	Date           *string      `json:"date,omitempty"`
	DateFormatted  string       `json:"dateFormatted,omitempty"`
	Title          string       `json:"title"`
	Value          float64      `json:"value"`
	ValueFormatted string       `json:"valueFormatted"`
	Status         string       `json:"status"`
}

type TimelineDTO struct {
	ContactID              uuid.UUID         `json:"contactId"`
	Items                  []TimelineItemDTO `json:"items"`
	LifetimeValue          float64           `json:"lifetimeValue"`
	LifetimeValueFormatted string            `json:"lifetimeValueFormatted"`
}

// Request DTOs

type CreateContactRequest struct {
	Name         string          `json:"name" validate:"required,max=200"`
	Category     ContactCategory `json:"category,omitempty" validate:"omitempty,oneof=client supplier"`
	Email        string          `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone        string          `json:"phone,omitempty" validate:"max=30"`
	TaxID        string          `json:"taxId,omitempty" validate:"max=20"`
	ZipCode      string          `json:"zipCode,omitempty" validate:"max=9"`
	Street       string          `json:"street,omitempty" validate:"max=200"`
	Number       string          `json:"number,omitempty" validate:"max=20"`
	Complement   string          `json:"complement,omitempty" validate:"max=100"`
	Neighborhood string          `json:"neighborhood,omitempty" validate:"max=100"`
	City         string          `json:"city,omitempty" validate:"max=100"`
	State        string          `json:"state,omitempty" validate:"omitempty,len=2"`
}

type UpdateContactRequest = CreateContactRequest

type CreateStageRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Color    string `json:"color,omitempty" validate:"max=20"`
	Position *int   `json:"position,omitempty" validate:"omitempty,min=0"`
}

type UpdateStageRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Color    *string `json:"color,omitempty" validate:"omitempty,max=20"`
	Position *int    `json:"position,omitempty" validate:"omitempty,min=0"`
}

type ReorderStagesRequest struct {
	StageIDs []uuid.UUID `json:"stageIds" validate:"required,min=1"`
}

type CreateDealRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description,omitempty"`
	ContactID   *uuid.UUID `json:"contactId,omitempty"`
	StageID     *uuid.UUID `json:"stageId,omitempty"`
	Value       float64    `json:"value,omitempty" validate:"gte=0"`
	Probability int        `json:"probability,omitempty" validate:"min=0,max=100"`
	Status      DealStatus `json:"status,omitempty" validate:"omitempty,oneof=active won lost"`
	Tags        []string   `json:"tags,omitempty" validate:"omitempty,dive,max=50"`
}

type UpdateDealRequest struct {
	Title       *string     `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string     `json:"description,omitempty"`
	ContactID   *uuid.UUID  `json:"contactId,omitempty"`
	StageID     *uuid.UUID  `json:"stageId,omitempty"`
	Value       *float64    `json:"value,omitempty" validate:"omitempty,gte=0"`
	Probability *int        `json:"probability,omitempty" validate:"omitempty,min=0,max=100"`
	Status      *DealStatus `json:"status,omitempty" validate:"omitempty,oneof=active won lost"`
	Tags        []string    `json:"tags,omitempty" validate:"omitempty,dive,max=50"`
}

type MoveDealRequest struct {
	StageID uuid.UUID `json:"stageId" validate:"required"`
}

type CreateQuoteRequest struct {
	ContactID   *uuid.UUID  `json:"contactId,omitempty"`
	DealID      *uuid.UUID  `json:"dealId,omitempty"`
	Number      string      `json:"number,omitempty" validate:"max=30"`
	Title       string      `json:"title" validate:"required,max=200"`
	TotalAmount float64     `json:"totalAmount" validate:"gte=0"`
	Status      QuoteStatus `json:"status,omitempty" validate:"omitempty,oneof=draft sent approved rejected"`
	IssueDate   *time.Time  `json:"issueDate,omitempty"`
}

type CreateTransactionRequest struct {
	ContactID   *uuid.UUID        `json:"contactId,omitempty"`
	DealID      *uuid.UUID        `json:"dealId,omitempty"`
	Description string            `json:"description" validate:"required,max=300"`
	Type        TransactionType   `json:"type" validate:"required,oneof=income expense"`
	Status      TransactionStatus `json:"status,omitempty" validate:"omitempty,oneof=pending received paid cancelled"`
	Amount      float64           `json:"amount" validate:"gt=0"`
	DueDate     *time.Time        `json:"dueDate,omitempty"`
}

type ReceiveTransactionRequest struct {
	PaidAmount *float64 `json:"paidAmount,omitempty" validate:"omitempty,gte=0"`
}
