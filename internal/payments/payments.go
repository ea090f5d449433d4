// Package payments is the boundary to the external payment collaborator. The
// engine hands it an amount and records whatever outcome it reports; it never
// speaks the payment protocol itself.
package payments

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// ChargeRequest describes one payment to process.
type ChargeRequest struct {
	JobID        string
	ClientID     string
	FreelancerID string
	Amount       float64
	Method       string
}

// ChargeResult carries the collaborator's reference string for the ledger.
type ChargeResult struct {
	Reference string
}

// Processor is implemented by the payment collaborator.
type Processor interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// Simulated stands in for a real gateway: it fabricates a reference and fails
// a configurable fraction of charges.
type Simulated struct {
	FailureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulated seeds a simulated processor. failureRate is clamped to [0, 1].
func NewSimulated(failureRate float64) *Simulated {
	if failureRate < 0 {
		failureRate = 0
	}
	if failureRate > 1 {
		failureRate = 1
	}
	return &Simulated{
		FailureRate: failureRate,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Simulated) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return ChargeResult{}, err
	}
	if req.Amount <= 0 {
		return ChargeResult{}, errors.New("amount must be positive")
	}
	s.mu.Lock()
	roll := s.rng.Float64()
	suffix := s.rng.Intn(1_000_000)
	s.mu.Unlock()

	if roll < s.FailureRate {
		return ChargeResult{}, errors.New("payment declined")
	}
	return ChargeResult{Reference: fmt.Sprintf("PAY-%d-%06d", time.Now().Unix(), suffix)}, nil
}
