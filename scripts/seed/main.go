package main

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tempest-stays/tempest/internal/analytics"
	"github.com/tempest-stays/tempest/internal/app"
	"github.com/tempest-stays/tempest/internal/booking"
	"github.com/tempest-stays/tempest/internal/platform/cache"
	"github.com/tempest-stays/tempest/internal/platform/db"
	"github.com/tempest-stays/tempest/internal/shared"
	"github.com/tempest-stays/tempest/migrations"
)

var (
	demoHostID = uuid.MustParse("6f1c8a52-3b5e-4c11-9d1a-2a7c0e5b9f01")
	nightlyPay = []string{"85.00", "120.00", "64.50"}
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	ctx := context.Background()

	fmt.Println("→ Applying migrations...")
	if err := db.Migrate(cfg.PGDSN, migrations.FS); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	today := analytics.DateOf(time.Now().In(cfg.Location()))
	fmt.Println("→ Seeding demo host...")
	err = db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		return seedHost(ctx, tx, today)
	})
	if err != nil {
		log.Fatalf("seed host: %v", err)
	}

	if os.Getenv("SEED_SKIP_SESSION") == "1" {
		fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
		return
	}
	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	defer redisClient.Close()

	sessions := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, false)
	sess, err := sessions.Issue(ctx, demoHostID)
	if err != nil {
		log.Fatalf("issue session: %v", err)
	}
	fmt.Printf("✓ Seed complete. Dev token (valid %s):\n  Authorization: Bearer %s\n", cfg.SessionTTL, sess.Token)
}

func seedHost(ctx context.Context, tx pgx.Tx, today time.Time) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO users (id, name, email) VALUES ($1, 'Demo Host', 'host@tempest.local')
		ON CONFLICT (id) DO NOTHING`, demoHostID); err != nil {
		return err
	}
	for _, table := range []string{"reservations", "property_views", "property_likes"} {
		if _, err := tx.Exec(ctx, `
			DELETE FROM `+table+` WHERE property_id IN (SELECT id FROM properties WHERE host_id = $1)`, demoHostID); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}

	guests, err := seedGuests(ctx, tx)
	if err != nil {
		return err
	}

	properties := []struct {
		title  string
		status booking.PropertyStatus
	}{
		{"Seaside Loft", booking.PropertyActive},
		{"Garden Cottage", booking.PropertyActive},
		{"City Studio", booking.PropertyActive},
		{"Mountain Cabin", booking.PropertyInactive},
	}

	rng := rand.New(rand.NewPCG(42, uint64(today.Unix())))
	for i, p := range properties {
		id := uuid.NewSHA1(demoHostID, []byte(p.title))
		if _, err := tx.Exec(ctx, `
			INSERT INTO properties (id, host_id, title, status, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status`,
			id, demoHostID, p.title, p.status.String(), today.AddDate(-1, 0, 0)); err != nil {
			return err
		}
		if !p.status.CountsTowardCapacity() {
			continue
		}
		rate := decimal.RequireFromString(nightlyPay[i%len(nightlyPay)])
		if err := seedReservations(ctx, tx, rng, id, guests, rate, today); err != nil {
			return fmt.Errorf("reservations for %s: %w", p.title, err)
		}
		if err := seedEngagement(ctx, tx, rng, id, today); err != nil {
			return fmt.Errorf("engagement for %s: %w", p.title, err)
		}
	}
	return nil
}

func seedGuests(ctx context.Context, tx pgx.Tx) ([]uuid.UUID, error) {
	names := []string{"Ana Lima", "Kenji Sato", "Maya Putri", "Omar Haddad", "Lena Fischer"}
	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("guest:"+name))
		if _, err := tx.Exec(ctx, `
			INSERT INTO users (id, name, email) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO NOTHING`, id, name, fmt.Sprintf("guest-%s@tempest.local", id.String()[:8])); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// seedReservations lays back-to-back stays over the last year and the next month,
// assigning the status a real stay at that position would have today.
func seedReservations(ctx context.Context, tx pgx.Tx, rng *rand.Rand, propertyID uuid.UUID, guests []uuid.UUID, rate decimal.Decimal, today time.Time) error {
	cursor := today.AddDate(-1, 0, 0)
	horizon := today.AddDate(0, 1, 0)
	batch := &pgx.Batch{}
	for cursor.Before(horizon) {
		cursor = cursor.AddDate(0, 0, rng.IntN(4))
		nights := 1 + rng.IntN(6)
		start := cursor
		end := start.AddDate(0, 0, nights)
		cursor = end

		status := statusAt(rng, start, end, today)
		pay := rate.Mul(decimal.NewFromInt(int64(nights)))
		created := start.AddDate(0, 0, -(3 + rng.IntN(20)))
		batch.Queue(`
			INSERT INTO reservations (id, property_id, guest_id, status, start_date, end_date,
			                          number_of_nights, host_pay, confirmation_code, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10)`,
			uuid.New(), propertyID, guests[rng.IntN(len(guests))], status.String(),
			start, end, nights, pay.StringFixed(2), confirmationCode(rng), created)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func statusAt(rng *rand.Rand, start, end, today time.Time) booking.ReservationStatus {
	if rng.IntN(12) == 0 {
		return booking.ReservationCancelled
	}
	switch {
	case !end.After(today):
		return booking.ReservationCompleted
	case !start.After(today):
		return booking.ReservationOngoing
	case rng.IntN(5) == 0:
		return booking.ReservationPending
	default:
		return booking.ReservationApproved
	}
}

func seedEngagement(ctx context.Context, tx pgx.Tx, rng *rand.Rand, propertyID uuid.UUID, today time.Time) error {
	batch := &pgx.Batch{}
	for day := today.AddDate(-1, 0, 0); !day.After(today); day = day.AddDate(0, 0, 1) {
		for range rng.IntN(8) {
			batch.Queue(`INSERT INTO property_views (property_id, created_at) VALUES ($1, $2)`,
				propertyID, day.Add(time.Duration(rng.IntN(86400))*time.Second))
		}
		if rng.IntN(6) == 0 {
			batch.Queue(`INSERT INTO property_likes (property_id, created_at) VALUES ($1, $2)`,
				propertyID, day.Add(time.Duration(rng.IntN(86400))*time.Second))
		}
	}
	return tx.SendBatch(ctx, batch).Close()
}

func confirmationCode(rng *rand.Rand) string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	code := make([]byte, 8)
	for i := range code {
		code[i] = alphabet[rng.IntN(len(alphabet))]
	}
	return "TMP-" + string(code)
}
