package models

import (
	"fmt"
	"math"
	"time"
)

// totalValueTolerance bounds the acceptable float drift between a
// snapshot's recorded total and the sum of its asset values.
const totalValueTolerance = 0.01

// Snapshot is an immutable, timestamped record of all portfolio positions
// and their total value. Snapshots are appended to a history and never
// mutated afterwards.
type Snapshot struct {
	ID         string    `json:"id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	TotalValue float64   `json:"total_value"`
	Assets     []Asset   `json:"assets"`
}

// Validate checks required fields and internal consistency.
func (s *Snapshot) Validate() error {
	if s == nil {
		return &InvalidInputError{Reason: "snapshot is nil"}
	}
	if s.Timestamp.IsZero() {
		return &InvalidInputError{Reason: "snapshot timestamp is zero"}
	}
	var sum float64
	for i := range s.Assets {
		if err := s.Assets[i].Validate(); err != nil {
			return err
		}
		sum += s.Assets[i].CurrentValue
	}
	if math.Abs(sum-s.TotalValue) > totalValueTolerance {
		return &InvalidInputError{
			Reason: fmt.Sprintf("snapshot total %.2f does not match asset sum %.2f", s.TotalValue, sum),
		}
	}
	return nil
}

// AssetsByName returns a name-keyed view of the snapshot's positions.
// Names are case-sensitive identities within a snapshot.
func (s *Snapshot) AssetsByName() map[string]Asset {
	byName := make(map[string]Asset, len(s.Assets))
	for _, a := range s.Assets {
		byName[a.Name] = a
	}
	return byName
}
