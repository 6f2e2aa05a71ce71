package types

import "github.com/google/uuid"

// BatchID identifies a generation batch
type BatchID string

// NewBatchID returns a random batch identifier
func NewBatchID() BatchID {
	return BatchID(uuid.NewString())
}

func (x BatchID) String() string {
	return string(x)
}
