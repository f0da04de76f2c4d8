package sqs

// Outcome is the terminal state of a mutation.
type Outcome string

const (
	OutcomeConfirmed  Outcome = "confirmed"
	OutcomeRolledBack Outcome = "rolled_back"
	OutcomeLocal      Outcome = "local_only"
	OutcomeRejected   Outcome = "rejected"
)

// MutationMessage describes how one optimistic catalog mutation ended.
type MutationMessage struct {
	Action    string  `json:"action"`
	Outcome   Outcome `json:"outcome"`
	ProductID string  `json:"product_id"`
	PendingID string  `json:"pending_id,omitempty"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Error     string  `json:"error,omitempty"`
}
