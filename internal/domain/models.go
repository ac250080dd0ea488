package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel carries the identifier and timestamps shared by every table
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// BeforeCreate assigns an id when the caller did not
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ContactCategory classifies an entry of the address book
type ContactCategory string

const (
	ContactCategoryClient   ContactCategory = "client"
	ContactCategorySupplier ContactCategory = "supplier"
)

// IsValid reports whether the category is a known value
func (c ContactCategory) IsValid() bool {
	return c == ContactCategoryClient || c == ContactCategorySupplier
}

// Contact is a person or company in a user's address book
type Contact struct {
	BaseModel
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index;column:user_id" json:"userId"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index;column:tenant_id" json:"tenantId"`
	Name         string          `gorm:"type:varchar(200);not null" json:"name"`
	Category     ContactCategory `gorm:"type:varchar(20);not null;default:'client'" json:"category"`
	Email        string          `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone        string          `gorm:"type:varchar(30)" json:"phone,omitempty"`
	TaxID        string          `gorm:"type:varchar(20);column:tax_id" json:"taxId,omitempty"`
	ZipCode      string          `gorm:"type:varchar(9);column:zip_code" json:"zipCode,omitempty"`
	Street       string          `gorm:"type:varchar(200)" json:"street,omitempty"`
	Number       string          `gorm:"type:varchar(20)" json:"number,omitempty"`
	Complement   string          `gorm:"type:varchar(100)" json:"complement,omitempty"`
	Neighborhood string          `gorm:"type:varchar(100)" json:"neighborhood,omitempty"`
	City         string          `gorm:"type:varchar(100)" json:"city,omitempty"`
	State        string          `gorm:"type:varchar(2)" json:"state,omitempty"`
}

func (Contact) TableName() string {
	return "contacts"
}

// DefaultStageColor is used when a stage is created without a color
const DefaultStageColor = "#64748b"

// Stage is a tenant-configurable column of the sales pipeline board
type Stage struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index;column:tenant_id" json:"tenantId"`
	Name     string    `gorm:"type:varchar(100);not null" json:"name"`
	Color    string    `gorm:"type:varchar(20);not null;default:'#64748b'" json:"color"`
	Position int       `gorm:"type:int;not null;default:0" json:"position"`
}

func (Stage) TableName() string {
	return "crm_stages"
}

// DealStatus is the commercial outcome of a deal, independent of its board column
type DealStatus string

const (
	DealStatusActive DealStatus = "active"
	DealStatusWon    DealStatus = "won"
	DealStatusLost   DealStatus = "lost"
)

// IsValid reports whether the status is a known value
func (s DealStatus) IsValid() bool {
	switch s {
	case DealStatusActive, DealStatusWon, DealStatusLost:
		return true
	}
	return false
}

// Deal is a sales opportunity placed in one stage of the pipeline
type Deal struct {
	BaseModel
	TenantID    uuid.UUID  `gorm:"type:uuid;not null;index;column:tenant_id" json:"tenantId"`
	ContactID   *uuid.UUID `gorm:"type:uuid;index;column:contact_id" json:"contactId,omitempty"`
	Contact     *Contact   `gorm:"foreignKey:ContactID" json:"-"`
	StageID     *uuid.UUID `gorm:"type:uuid;index;column:stage_id" json:"stageId,omitempty"`
	Stage       *Stage     `gorm:"foreignKey:StageID;constraint:OnDelete:RESTRICT" json:"-"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Value       float64    `gorm:"type:decimal(15,2);not null;default:0" json:"value"`
	Probability int        `gorm:"type:int;not null;default:0" json:"probability"`
	Status      DealStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	Tags        []string   `gorm:"type:jsonb;serializer:json" json:"tags"`
}

func (Deal) TableName() string {
	return "crm_deals"
}

// DealStageHistory records every move of a deal between stages
type DealStageHistory struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      uuid.UUID  `gorm:"type:uuid;not null;index;column:tenant_id" json:"tenantId"`
	DealID        uuid.UUID  `gorm:"type:uuid;not null;index;column:deal_id" json:"dealId"`
	FromStageID   *uuid.UUID `gorm:"type:uuid;column:from_stage_id" json:"fromStageId,omitempty"`
	ToStageID     *uuid.UUID `gorm:"type:uuid;column:to_stage_id" json:"toStageId,omitempty"`
	ChangedByID   string     `gorm:"type:varchar(100);not null;column:changed_by_id" json:"changedById"`
	ChangedByName string     `gorm:"type:varchar(200);column:changed_by_name" json:"changedByName,omitempty"`
	ChangedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;column:changed_at" json:"changedAt"`
}

func (DealStageHistory) TableName() string {
	return "deal_stage_history"
}

func (h *DealStageHistory) BeforeCreate(_ *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// QuoteStatus tracks a quote through negotiation
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusApproved QuoteStatus = "approved"
	QuoteStatusRejected QuoteStatus = "rejected"
)

// Quote is a priced proposal sent to a contact
type Quote struct {
	BaseModel
	TenantID    uuid.UUID   `gorm:"type:uuid;not null;index;column:tenant_id" json:"tenantId"`
	ContactID   *uuid.UUID  `gorm:"type:uuid;index;column:contact_id" json:"contactId,omitempty"`
	DealID      *uuid.UUID  `gorm:"type:uuid;index;column:deal_id" json:"dealId,omitempty"`
	Number      string      `gorm:"type:varchar(30)" json:"number,omitempty"`
	Title       string      `gorm:"type:varchar(200)" json:"title,omitempty"`
	TotalAmount float64     `gorm:"type:decimal(15,2);not null;default:0;column:total_amount" json:"totalAmount"`
	Status      QuoteStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	IssueDate   *time.Time  `gorm:"type:date;column:issue_date" json:"issueDate,omitempty"`
}

func (Quote) TableName() string {
	return "quotes"
}

// TransactionType separates money in from money out
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// TransactionStatus is the settlement state of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusReceived  TransactionStatus = "received"
	TransactionStatusPaid      TransactionStatus = "paid"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Transaction is a receivable or payable entry of the financial ledger
type Transaction struct {
	BaseModel
	TenantID    uuid.UUID         `gorm:"type:uuid;not null;index;column:tenant_id" json:"tenantId"`
	ContactID   *uuid.UUID        `gorm:"type:uuid;index;column:contact_id" json:"contactId,omitempty"`
	DealID      *uuid.UUID        `gorm:"type:uuid;index;column:deal_id" json:"dealId,omitempty"`
	Description string            `gorm:"type:varchar(300);not null" json:"description"`
	Type        TransactionType   `gorm:"type:varchar(20);not null" json:"type"`
	Status      TransactionStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Amount      float64           `gorm:"type:decimal(15,2);not null;default:0" json:"amount"`
	PaidAmount  *float64          `gorm:"type:decimal(15,2);column:paid_amount" json:"paidAmount,omitempty"`
	DueDate     *time.Time        `gorm:"type:date;column:due_date" json:"dueDate,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// CountsTowardLifetimeValue reports whether the transaction is settled income
func (t *Transaction) CountsTowardLifetimeValue() bool {
	return t.Type == TransactionTypeIncome && t.Status == TransactionStatusReceived
}

// SettledAmount is the paid amount when recorded and non-zero, else the nominal amount
func (t *Transaction) SettledAmount() float64 {
	if t.PaidAmount != nil && *t.PaidAmount != 0 {
		return *t.PaidAmount
	}
	return t.Amount
}
