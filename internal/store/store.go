// Package store persists couple state. Each couple is one JSONB document;
// every write goes through ModifyCouple so answer submission and cluster
// reveal are serialized per couple.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/quissme/resonance/internal/quissme"
)

var ErrNotFound = errors.New("not found")

// Couple is the persisted state of one couple.
type Couple struct {
	ID        string                  `json:"id"`
	PartnerA  string                  `json:"partnerA"`
	PartnerB  string                  `json:"partnerB"`
	State     quissme.StateSnapshot   `json:"state"`
	Traits    quissme.TraitLevels     `json:"traits"`
	Buffs     []quissme.ActiveBuff    `json:"buffs"`
	Drops     []quissme.DuoDrop       `json:"drops"`
	History   []quissme.ClusterResult `json:"history"`
	Reveals   map[quissme.Cluster]int `json:"reveals"`
	CreatedAt time.Time               `json:"createdAt"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

type Store interface {
	CreateCouple(ctx context.Context, c Couple) (Couple, error)
	Couple(ctx context.Context, id string) (Couple, error)
	// ModifyCouple loads a couple, applies fn and saves the result in one
	// transaction. If fn returns an error nothing is written.
	ModifyCouple(ctx context.Context, id string, fn func(*Couple) error) (Couple, error)
}
