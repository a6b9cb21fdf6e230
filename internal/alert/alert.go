// Package alert defines price-alert rules and their persistence contract.
package alert

import "time"

// Rule is a standing price alert. It is created Pending (Sent=false) and
// transitions exactly once to Sent when the evaluation loop delivers it;
// it never transitions back. Rules are only deleted by their owner.
type Rule struct {
	ID        string
	Owner     string
	Symbol    string
	Threshold float64
	Message   string
	Sent      bool
	CreatedAt time.Time
}

// Store is the persistence contract for alert rules. MarkSentIfPending is a
// conditional update: it applies only if the stored rule is still Pending,
// which guarantees at-most-once delivery under overlapping evaluation
// cycles or concurrent manual edits.
type Store interface {
	Create(rule *Rule) (string, error)
	ListPending() ([]Rule, error)
	ListByOwner(owner string) ([]Rule, error)
	MarkSentIfPending(id string) (bool, error)
	DeleteIfOwner(id, owner string) (bool, error)
	Close() error
}
