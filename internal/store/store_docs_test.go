package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quissme/resonance/internal/database"
	"github.com/quissme/resonance/internal/migrations"
	"github.com/quissme/resonance/internal/quissme"
)

func setupStore(t *testing.T, path string) *DocStore {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = migrations.Run(ctx, db)
	require.NoError(t, err)
	return NewDocStore(db)
}

func TestCreateAndGetCouple(t *testing.T) {
	s := setupStore(t, ":memory:")
	ctx := context.Background()

	created, err := s.CreateCouple(ctx, Couple{
		PartnerA: "Mia",
		PartnerB: "Jonas",
		Traits:   quissme.TraitLevels{"play": quissme.LevelMedium},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.Couple(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mia", got.PartnerA)
	assert.Equal(t, "Jonas", got.PartnerB)
	assert.Equal(t, quissme.LevelMedium, got.Traits["play"])
}

func TestCoupleNotFound(t *testing.T) {
	s := setupStore(t, ":memory:")

	_, err := s.Couple(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)

	called := false
	_, err = s.ModifyCouple(context.Background(), "missing", func(*Couple) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, ErrNotFound)
	assert.False(t, called)
}

func TestModifyCouple(t *testing.T) {
	s := setupStore(t, ":memory:")
	ctx := context.Background()

	c, err := s.CreateCouple(ctx, Couple{PartnerA: "A", PartnerB: "B"})
	require.NoError(t, err)

	answeredAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	updated, err := s.ModifyCouple(ctx, c.ID, func(c *Couple) error {
		c.State.Answers = append(c.State.Answers, quissme.Answer{
			QuizID:      "passion_01_initiative",
			OptionIndex: 2,
			Partner:     quissme.PartnerA,
			AnsweredAt:  answeredAt,
		})
		return nil
	})
	require.NoError(t, err)
	require.Len(t, updated.State.Answers, 1)

	got, err := s.Couple(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.State.Answers, 1)
	assert.True(t, got.State.Answers[0].AnsweredAt.Equal(answeredAt),
		"expected answeredAt %v, got %v", answeredAt, got.State.Answers[0].AnsweredAt)
}

func TestModifyCoupleRollsBackOnError(t *testing.T) {
	s := setupStore(t, ":memory:")
	ctx := context.Background()

	c, err := s.CreateCouple(ctx, Couple{PartnerA: "A", PartnerB: "B"})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = s.ModifyCouple(ctx, c.ID, func(c *Couple) error {
		c.PartnerA = "changed"
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Couple(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.PartnerA)
}

func TestModifyCoupleConcurrentWritersOnFile(t *testing.T) {
	s := setupStore(t, filepath.Join(t.TempDir(), "quissme.db"))
	ctx := context.Background()

	const couples, writers = 5, 8
	ids := make([]string, couples)
	for i := range ids {
		c, err := s.CreateCouple(ctx, Couple{PartnerA: "A", PartnerB: "B"})
		require.NoError(t, err)
		ids[i] = c.ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, couples*writers)
	for _, id := range ids {
		for range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.ModifyCouple(ctx, id, func(c *Couple) error {
					if c.Reveals == nil {
						c.Reveals = make(map[quissme.Cluster]int)
					}
					c.Reveals[quissme.ClusterPassion]++
					return nil
				})
				errs <- err
			}()
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	for _, id := range ids {
		got, err := s.Couple(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, writers, got.Reveals[quissme.ClusterPassion], "couple %s lost an update", id)
	}
}
