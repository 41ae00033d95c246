package repository

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ouedraogodev/pronos226/internal/models"
)

func setupTestDb(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort(nat.Port("5432/tcp")),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(3*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			if err = storage.DB.Ping(); err == nil {
				break
			}
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	// Создаем таблицы
	_, err = storage.DB.Exec(`
        CREATE EXTENSION IF NOT EXISTS "pgcrypto";

        CREATE TABLE users (
            uid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            email TEXT NOT NULL UNIQUE,
            full_name TEXT NOT NULL,
            phone TEXT,
            password_hash TEXT NOT NULL,
            tier TEXT NOT NULL DEFAULT 'free',
            expires_at TIMESTAMPTZ,
            promo_code_used TEXT,
            promo_trial_granted BOOLEAN NOT NULL DEFAULT false,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE TABLE payment_claims (
            id UUID PRIMARY KEY,
            user_uid UUID NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
            target_tier TEXT NOT NULL,
            billing_period TEXT NOT NULL,
            amount INT NOT NULL,
            payment_channel TEXT NOT NULL,
            phone_number TEXT NOT NULL,
            proof_url TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            reviewer_note TEXT,
            decided_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE TABLE promo_usage (
            code TEXT PRIMARY KEY,
            used_count INT NOT NULL DEFAULT 0
        );

        CREATE TABLE predictions (
            id SERIAL PRIMARY KEY,
            sport TEXT NOT NULL,
            league TEXT NOT NULL,
            home_team TEXT NOT NULL,
            away_team TEXT NOT NULL,
            prediction TEXT NOT NULL,
            odds FLOAT NOT NULL,
            confidence TEXT NOT NULL DEFAULT 'medium',
            access_level TEXT NOT NULL DEFAULT 'free',
            status TEXT NOT NULL DEFAULT 'pending',
            match_date TIMESTAMPTZ NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
    `)
	require.NoError(t, err, "failed to create tables")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		_ = pgContainer.Terminate(ctx)
	}

	return storage, cleanup
}

func registerTestUser(t *testing.T, s *Storage, email string) string {
	uid, err := s.RegisterUser(context.Background(), models.User{
		Email:        email,
		FullName:     "Test User",
		PasswordHash: "hashedpassword",
		Tier:         models.TierFree,
	})
	require.NoError(t, err)
	return uid
}

func createTestClaim(t *testing.T, s *Storage, userUID, id string) {
	err := s.CreateClaim(context.Background(), models.PaymentClaim{
		ID:          id,
		UserUID:     userUID,
		TargetTier:  models.TierVIP,
		Period:      models.PeriodMonthly,
		Amount:      5000,
		Channel:     "orange_money",
		PhoneNumber: "+22670000000",
		ProofURL:    "https://cdn.example.com/proof.png",
		Status:      models.ClaimPending,
	})
	require.NoError(t, err)
}

func TestStorage_Users(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	uid := registerTestUser(t, storage, "User@Example.com")

	t.Run("get by uid", func(t *testing.T) {
		u, err := storage.GetUser(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, models.TierFree, u.Tier)
		assert.Nil(t, u.ExpiresAt)
	})

	t.Run("email lookup is case-insensitive", func(t *testing.T) {
		u, err := storage.GetUserByEmail(ctx, "user@example.COM")
		require.NoError(t, err)
		assert.Equal(t, uid, u.UID)
	})

	t.Run("unknown uid returns ErrNotFound", func(t *testing.T) {
		_, err := storage.GetUser(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update subscription overwrites tier and expiry", func(t *testing.T) {
		exp := time.Now().UTC().AddDate(0, 0, 30).Truncate(time.Second)
		affected, err := storage.UpdateSubscription(ctx, uid, models.TierVIP, &exp)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		u, err := storage.GetUser(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, models.TierVIP, u.Tier)
		require.NotNil(t, u.ExpiresAt)
		assert.WithinDuration(t, exp, *u.ExpiresAt, time.Second)
	})

	t.Run("conditional tier update only applies on expected tier", func(t *testing.T) {
		affected, err := storage.UpdateTierIf(ctx, uid, models.TierFree, models.TierAdmin, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(0), affected, "user is vip, expected-free update must not apply")

		affected, err = storage.UpdateTierIf(ctx, uid, models.TierVIP, models.TierAdmin, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)
	})
}

func TestStorage_Claims(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	uid := registerTestUser(t, storage, "claims@example.com")
	claimID := "11111111-1111-1111-1111-111111111111"
	createTestClaim(t, storage, uid, claimID)

	t.Run("get claim", func(t *testing.T) {
		c, err := storage.GetClaim(ctx, claimID)
		require.NoError(t, err)
		assert.Equal(t, models.ClaimPending, c.Status)
		assert.Equal(t, 5000, c.Amount)
		assert.Nil(t, c.DecidedAt)
	})

	t.Run("list by status", func(t *testing.T) {
		pending := models.ClaimPending
		claims, err := storage.ListClaims(ctx, models.ClaimFilter{Status: &pending, Limit: 10})
		require.NoError(t, err)
		require.Len(t, claims, 1)
		assert.Equal(t, claimID, claims[0].ID)
	})

	t.Run("decide is a one-shot conditional update", func(t *testing.T) {
		note := "paiement vérifié"
		decidedAt := time.Now().UTC()

		affected, err := storage.DecideClaim(ctx, claimID, models.ClaimApproved, &note, decidedAt)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		// Повторное решение по закрытой заявке не затрагивает строк.
		affected, err = storage.DecideClaim(ctx, claimID, models.ClaimRejected, nil, decidedAt)
		require.NoError(t, err)
		assert.Equal(t, int64(0), affected)

		c, err := storage.GetClaim(ctx, claimID)
		require.NoError(t, err)
		assert.Equal(t, models.ClaimApproved, c.Status)
		require.NotNil(t, c.ReviewerNote)
		assert.Equal(t, note, *c.ReviewerNote)
		require.NotNil(t, c.DecidedAt)
	})
}

func TestStorage_PromoUsage(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, storage.IncrementPromoUsage(ctx, "Le226"))
	require.NoError(t, storage.IncrementPromoUsage(ctx, "Le226"))

	var count int
	err := storage.DB.QueryRow("SELECT used_count FROM promo_usage WHERE code = $1", "Le226").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStorage_Predictions(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	matchDate := time.Date(2025, 6, 1, 16, 0, 0, 0, time.UTC)
	id, err := storage.CreatePrediction(ctx, models.Prediction{
		Sport:       "football",
		League:      "Ligue 1",
		HomeTeam:    "ASFA",
		AwayTeam:    "EFO",
		Tip:         "1X",
		Odds:        1.85,
		Confidence:  "high",
		AccessLevel: models.TierStandard,
		Status:      models.PredictionPending,
		MatchDate:   matchDate,
	})
	require.NoError(t, err)

	t.Run("range query includes the match day only", func(t *testing.T) {
		from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		list, err := storage.ListPredictions(ctx, from, from.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, models.TierStandard, list[0].AccessLevel)

		list, err = storage.ListPredictions(ctx, from.AddDate(0, 0, 1), from.AddDate(0, 0, 2))
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("set result and remove", func(t *testing.T) {
		affected, err := storage.UpdatePredictionStatus(ctx, id, models.PredictionWon)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		p, err := storage.GetPrediction(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.PredictionWon, p.Status)

		affected, err = storage.RemovePrediction(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		_, err = storage.GetPrediction(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
