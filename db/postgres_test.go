package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/workflow"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/config"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

// Runs against a live database when BIZNES_TEST_DSN is set
func openTestPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("BIZNES_TEST_DSN")
	if dsn == "" {
		t.Skip("BIZNES_TEST_DSN not set")
	}
	s, err := OpenPostgres(config.DatabaseConfig{Driver: "postgres", DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	s := openTestPostgres(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	p := &workflow.Partner{
		ID:           uuid.NewString(),
		BusinessName: "Toshkent Savdo",
		PricingTier:  "starter_pro",
		Status:       workflow.StatusApproved,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.CreatePartner(ctx, p))

	r := &workflow.UpgradeRequest{
		ID:            uuid.NewString(),
		PartnerID:     p.ID,
		CurrentTier:   "starter_pro",
		RequestedTier: "business_standard",
		Status:        workflow.StatusPending,
		CreatedAt:     now,
	}
	require.NoError(t, s.CreateUpgrade(ctx, r))

	second := *r
	second.ID = uuid.NewString()
	err := s.CreateUpgrade(ctx, &second)
	assert.True(t, errors.IsType(err, errors.TypeConflict), "second pending request must conflict: %v", err)

	err = s.WithinTx(ctx, func(ctx context.Context) error {
		got, err := s.GetUpgrade(ctx, r.ID)
		if err != nil {
			return err
		}
		got.Status = workflow.StatusApproved
		got.ReviewedAt = &now
		return s.UpdateUpgrade(ctx, got)
	})
	require.NoError(t, err)

	list, err := s.ListUpgrades(ctx, workflow.UpgradeFilter{PartnerID: p.ID, Status: workflow.StatusApproved})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, r.ID, list[0].ID)

	_, err = s.GetPartner(ctx, uuid.NewString())
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}
