package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Board is a snapshot of a tenant's pipeline: stages ordered by position plus every deal
type Board struct {
	Stages []Stage `json:"stages"`
	Deals  []Deal  `json:"deals"`
}

// DealsInStage returns the deals currently placed in the given stage
func (b *Board) DealsInStage(stageID uuid.UUID) []Deal {
	var out []Deal
	for _, d := range b.Deals {
		if d.StageID != nil && *d.StageID == stageID {
			out = append(out, d)
		}
	}
	return out
}

// StageByID finds a stage of the board
func (b *Board) StageByID(id uuid.UUID) (*Stage, bool) {
	for i := range b.Stages {
		if b.Stages[i].ID == id {
			return &b.Stages[i], true
		}
	}
	return nil, false
}

// DragType identifies what was dragged on the board
type DragType string

const (
	DragTypeDeal  DragType = "deal"
	DragTypeStage DragType = "stage"
)

// DropLocation is a droppable container and the index inside it
type DropLocation struct {
	DroppableID string `json:"droppableId" validate:"required"`
	Index       int    `json:"index" validate:"min=0"`
}

// DropEvent is the outcome of a drag gesture as reported by the board front end
type DropEvent struct {
	Type        DragType      `json:"type" validate:"required,oneof=deal stage"`
	DraggableID string        `json:"draggableId" validate:"required"`
	Source      DropLocation  `json:"source" validate:"required"`
	Destination *DropLocation `json:"destination,omitempty"`
}

// IsNoop reports whether the drop leaves everything where it was
func (e *DropEvent) IsNoop() bool {
	if e.Destination == nil {
		return true
	}
	return e.Destination.DroppableID == e.Source.DroppableID && e.Destination.Index == e.Source.Index
}

// FollowUpAction is an action offered to the user after a deal enters a proposal stage
type FollowUpAction string

const (
	FollowUpCreateQuote      FollowUpAction = "create_quote"
	FollowUpCreateReceivable FollowUpAction = "create_receivable"
)

// FollowUpPrompt is advisory; nothing is persisted when it is emitted
type FollowUpPrompt struct {
	DealID    uuid.UUID        `json:"dealId"`
	StageID   uuid.UUID        `json:"stageId"`
	StageName string           `json:"stageName"`
	Actions   []FollowUpAction `json:"actions"`
}

var proposalStageKeywords = []string{"proposta", "proposal"}

// IsProposalStage reports whether a stage name denotes a proposal stage
func IsProposalStage(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range proposalStageKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// TimelineKind is the source entity of a timeline item
type TimelineKind string

const (
	TimelineKindDeal        TimelineKind = "deal"
	TimelineKindQuote       TimelineKind = "quote"
	TimelineKindTransaction TimelineKind = "transaction"
)

// TimelineItem is one entry of a contact's commercial history
type TimelineItem struct {
	ID     uuid.UUID    `json:"id"`
	Kind   TimelineKind `json:"kind"`
	Date   *time.Time   `json:"date,omitempty"`
	Title  string       `json:"title"`
	Value  float64      `json:"value"`
	Status string       `json:"status"`
}

// Timeline is the merged history of a contact with its lifetime value
type Timeline struct {
	ContactID     uuid.UUID      `json:"contactId"`
	Items         []TimelineItem `json:"items"`
	LifetimeValue float64        `json:"lifetimeValue"`
}

// Address is the result of a postal code lookup
type Address struct {
	ZipCode      string `json:"zipCode"`
	Street       string `json:"street"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}
