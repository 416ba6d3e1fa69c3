// Package claims provides domain types for the expense claim system.
package claims

import (
	"time"

	"github.com/google/uuid"
)

// ClaimEventType represents the type of a claim domain event.
type ClaimEventType string

const (
	// Lifecycle events
	EventClaimCreated     ClaimEventType = "claim:created"
	EventClaimUpdated     ClaimEventType = "claim:updated"
	EventClaimSubmitted   ClaimEventType = "claim:submitted"
	EventClaimInReview    ClaimEventType = "claim:sent-to-review"
	EventClaimApproved    ClaimEventType = "claim:approved"
	EventClaimRejected    ClaimEventType = "claim:rejected"
	EventClaimResubmitted ClaimEventType = "claim:resubmitted"
	EventClaimDeleted     ClaimEventType = "claim:deleted"

	// Pipeline events
	EventPipelineTriggered ClaimEventType = "pipeline:blob-created"
	EventPipelineBlocked   ClaimEventType = "pipeline:blocked"
	EventPipelineRouted    ClaimEventType = "pipeline:routed-to-review"
	EventPipelineApproved  ClaimEventType = "pipeline:auto-approved"
)

// ClaimEvent represents a domain event in the claim system.
type ClaimEvent struct {
	ID        string                 `json:"id"`
	Type      ClaimEventType         `json:"type"`
	ClaimID   string                 `json:"claimId"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// NewClaimEvent creates a new claim event.
func NewClaimEvent(eventType ClaimEventType, claimID string, payload map[string]interface{}) *ClaimEvent {
	return &ClaimEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		ClaimID:   claimID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// NewStatusEvent creates a lifecycle event carrying the status change.
func NewStatusEvent(eventType ClaimEventType, claim *Claim, oldStatus ClaimStatus) *ClaimEvent {
	return NewClaimEvent(eventType, claim.ID, map[string]interface{}{
		"oldStatus": oldStatus,
		"newStatus": claim.Status,
		"category":  claim.Category,
		"amount":    claim.Amount,
		"currency":  claim.Currency,
	})
}

// NewPipelineEvent creates a pipeline event with an outcome detail.
func NewPipelineEvent(eventType ClaimEventType, claimID, detail string) *ClaimEvent {
	return NewClaimEvent(eventType, claimID, map[string]interface{}{
		"detail": detail,
	})
}

// EventHandler is a function that handles claim events.
type EventHandler func(event *ClaimEvent)
