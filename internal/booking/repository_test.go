package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tempest-stays/tempest/internal/booking"
	"github.com/tempest-stays/tempest/internal/platform/db"
	"github.com/tempest-stays/tempest/migrations"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests skipped in -short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("tempest"),
		postgres.WithUsername("tempest"),
		postgres.WithPassword("tempest"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(dsn, migrations.FS))
	// A second run is a no-op.
	require.NoError(t, db.Migrate(dsn, migrations.FS))

	pool, err := db.New(ctx, dsn, db.WithMaxConns(4), db.WithSessionTimeZone("UTC"))
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type fixture struct {
	host, otherHost      uuid.UUID
	loft, cabin, foreign uuid.UUID
	guest                uuid.UUID
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seed(t *testing.T, pool *pgxpool.Pool) fixture {
	t.Helper()
	ctx := context.Background()
	f := fixture{
		host: uuid.New(), otherHost: uuid.New(),
		loft: uuid.New(), cabin: uuid.New(), foreign: uuid.New(),
		guest: uuid.New(),
	}
	exec := func(sql string, args ...any) {
		t.Helper()
		_, err := pool.Exec(ctx, sql, args...)
		require.NoError(t, err)
	}
	exec(`INSERT INTO users (id, name, email) VALUES ($1, 'Host', 'h@x'), ($2, 'Other', 'o@x'), ($3, 'Ana Lima', 'g@x')`,
		f.host, f.otherHost, f.guest)
	exec(`INSERT INTO properties (id, host_id, title, status) VALUES
		($1, $4, 'Seaside Loft', 'active'),
		($2, $4, 'Mountain Cabin', 'inactive'),
		($3, $5, 'Elsewhere', 'active')`, f.loft, f.cabin, f.foreign, f.host, f.otherHost)

	reservation := func(property uuid.UUID, status string, start, end time.Time, pay string, created time.Time) {
		t.Helper()
		nights := int(end.Sub(start).Hours() / 24)
		exec(`INSERT INTO reservations (id, property_id, guest_id, status, start_date, end_date,
			number_of_nights, host_pay, confirmation_code, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10)`,
			uuid.New(), property, f.guest, status, start, end, nights, pay, "TMP-"+status, created)
	}
	reservation(f.loft, "completed", date(2024, 1, 28), date(2024, 2, 3), "600.00", time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC))
	reservation(f.loft, "ongoing", date(2024, 2, 14), date(2024, 2, 17), "300.00", time.Date(2024, 2, 1, 23, 30, 0, 0, time.UTC))
	reservation(f.loft, "cancelled", date(2024, 2, 20), date(2024, 2, 22), "200.00", time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC))
	reservation(f.cabin, "approved", date(2024, 2, 15), date(2024, 2, 18), "150.00", time.Date(2024, 2, 3, 9, 0, 0, 0, time.UTC))
	reservation(f.foreign, "completed", date(2024, 2, 1), date(2024, 2, 5), "999.00", time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))

	exec(`INSERT INTO property_views (property_id, created_at) VALUES ($1, $3), ($1, $4), ($2, $3)`,
		f.loft, f.foreign, time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	exec(`INSERT INTO property_likes (property_id, created_at) VALUES ($1, $2)`, f.loft, time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC))
	return f
}

func TestRepositoryQueries(t *testing.T) {
	pool := startPostgres(t)
	f := seed(t, pool)
	repo := booking.NewRepository(pool, time.UTC)
	ctx := context.Background()

	from, to := date(2024, 2, 1), date(2024, 2, 29)

	overlapping, err := repo.FindOverlapping(ctx, f.host, booking.OccupancyStatuses(), from, to.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, overlapping, 3)
	require.Equal(t, booking.ReservationCompleted, overlapping[0].Status)
	require.True(t, overlapping[0].HostPay.Equal(decimal.RequireFromString("600")))
	require.Equal(t, 6, overlapping[0].NumberOfNights)

	active, err := repo.CountActiveProperties(ctx, f.host)
	require.NoError(t, err)
	require.Equal(t, 1, active)

	views, err := repo.CountPropertyViews(ctx, f.host, from, to)
	require.NoError(t, err)
	require.Equal(t, 1, views)

	likes, err := repo.CountPropertyLikes(ctx, f.host, from, to)
	require.NoError(t, err)
	require.Equal(t, 1, likes)

	created, err := repo.CountReservationsCreated(ctx, f.host, from, to)
	require.NoError(t, err)
	require.Equal(t, 3, created)

	checkIns, err := repo.CountCheckIns(ctx, f.host, date(2024, 2, 14), []booking.ReservationStatus{booking.ReservationApproved, booking.ReservationOngoing})
	require.NoError(t, err)
	require.Equal(t, 1, checkIns)

	checkOuts, err := repo.CountCheckOuts(ctx, f.host, date(2024, 2, 3), []booking.ReservationStatus{booking.ReservationOngoing, booking.ReservationCompleted})
	require.NoError(t, err)
	require.Equal(t, 1, checkOuts)

	staying, err := repo.CountStaying(ctx, f.host, date(2024, 2, 16), []booking.ReservationStatus{booking.ReservationOngoing})
	require.NoError(t, err)
	require.Equal(t, 1, staying)
	staying, err = repo.CountStaying(ctx, f.host, date(2024, 2, 17), []booking.ReservationStatus{booking.ReservationOngoing})
	require.NoError(t, err)
	require.Zero(t, staying)

	byDay, err := repo.BookingsByDay(ctx, f.host, from, to)
	require.NoError(t, err)
	require.Equal(t, []booking.DailyCount{
		{Date: date(2024, 2, 1), Count: 1},
		{Date: date(2024, 2, 2), Count: 1},
		{Date: date(2024, 2, 3), Count: 1},
	}, byDay)

	revenue, err := repo.RevenueByCheckoutDay(ctx, f.host, []booking.ReservationStatus{booking.ReservationCompleted}, from, to.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, revenue, 1)
	require.Equal(t, date(2024, 2, 3), revenue[0].Date)
	require.True(t, revenue[0].Amount.Equal(decimal.RequireFromString("600")))

	entries, err := repo.CalendarEntries(ctx, f.host, date(2024, 2, 3), date(2024, 2, 15))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "Seaside Loft", entries[0].PropertyTitle)
	require.Equal(t, "Ana Lima", entries[0].GuestName)

	hosts, err := repo.ListActiveHosts(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []uuid.UUID{f.host, f.otherHost}, hosts)
}

func TestRepositoryBucketsCreationByTimezone(t *testing.T) {
	pool := startPostgres(t)
	f := seed(t, pool)
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	repo := booking.NewRepository(pool, jakarta)

	// 2024-02-01 23:30 UTC is 2024-02-02 06:30 in Jakarta.
	byDay, err := repo.BookingsByDay(context.Background(), f.host, date(2024, 2, 1), date(2024, 2, 1))
	require.NoError(t, err)
	require.Empty(t, byDay)

	byDay, err = repo.BookingsByDay(context.Background(), f.host, date(2024, 2, 2), date(2024, 2, 2))
	require.NoError(t, err)
	require.Equal(t, []booking.DailyCount{{Date: date(2024, 2, 2), Count: 2}}, byDay)
}
