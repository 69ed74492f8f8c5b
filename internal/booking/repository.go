package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository provides read-only PostgreSQL queries over reservations and properties.
type Repository struct {
	pool     *pgxpool.Pool
	timezone string
}

// NewRepository constructs a repository. created_at timestamps are bucketed
// into calendar days of loc.
func NewRepository(pool *pgxpool.Pool, loc *time.Location) *Repository {
	if loc == nil {
		loc = time.UTC
	}
	return &Repository{pool: pool, timezone: loc.String()}
}

const reservationColumns = `
		r.id, r.property_id, r.guest_id, r.status, r.start_date, r.end_date,
		r.number_of_nights, r.host_pay::text, r.confirmation_code, r.created_at`

// FindOverlapping returns reservations of the host in statuses whose stay
// intersects [from, toExclusive).
func (r *Repository) FindOverlapping(ctx context.Context, hostID uuid.UUID, statuses []ReservationStatus, from, toExclusive time.Time) ([]Reservation, error) {
	query := `
		SELECT` + reservationColumns + `
		FROM reservations r
		JOIN properties p ON p.id = r.property_id
		WHERE p.host_id = $1
		  AND r.status = ANY($2)
		  AND r.start_date < $4
		  AND r.end_date > $3
		ORDER BY r.start_date, r.id
	`
	rows, err := r.pool.Query(ctx, query, hostID, StatusStrings(statuses), from, toExclusive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// CountActiveProperties counts the host's listings that contribute capacity.
func (r *Repository) CountActiveProperties(ctx context.Context, hostID uuid.UUID) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM properties WHERE host_id = $1 AND status = $2`, hostID, PropertyActive.String())
}

// CountPropertyViews counts views of the host's properties created in [from, to].
func (r *Repository) CountPropertyViews(ctx context.Context, hostID uuid.UUID, from, to time.Time) (int, error) {
	return r.countCreated(ctx, "property_views", hostID, from, to)
}

// CountPropertyLikes counts likes of the host's properties created in [from, to].
func (r *Repository) CountPropertyLikes(ctx context.Context, hostID uuid.UUID, from, to time.Time) (int, error) {
	return r.countCreated(ctx, "property_likes", hostID, from, to)
}

// CountReservationsCreated counts reservations of any status created in [from, to].
func (r *Repository) CountReservationsCreated(ctx context.Context, hostID uuid.UUID, from, to time.Time) (int, error) {
	return r.countCreated(ctx, "reservations", hostID, from, to)
}

// countCreated counts rows of a property-scoped table by local creation day.
// table is always a package constant.
func (r *Repository) countCreated(ctx context.Context, table string, hostID uuid.UUID, from, to time.Time) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s x
		JOIN properties p ON p.id = x.property_id
		WHERE p.host_id = $1
		  AND (x.created_at AT TIME ZONE $4)::date BETWEEN $2 AND $3
	`, table)
	return r.count(ctx, query, hostID, from, to, r.timezone)
}

// CountCheckIns counts reservations in statuses starting on day.
func (r *Repository) CountCheckIns(ctx context.Context, hostID uuid.UUID, day time.Time, statuses []ReservationStatus) (int, error) {
	return r.count(ctx, `
		SELECT COUNT(*)
		FROM reservations r
		JOIN properties p ON p.id = r.property_id
		WHERE p.host_id = $1 AND r.status = ANY($2) AND r.start_date = $3
	`, hostID, StatusStrings(statuses), day)
}

// CountCheckOuts counts reservations in statuses ending on day.
func (r *Repository) CountCheckOuts(ctx context.Context, hostID uuid.UUID, day time.Time, statuses []ReservationStatus) (int, error) {
	return r.count(ctx, `
		SELECT COUNT(*)
		FROM reservations r
		JOIN properties p ON p.id = r.property_id
		WHERE p.host_id = $1 AND r.status = ANY($2) AND r.end_date = $3
	`, hostID, StatusStrings(statuses), day)
}

// CountStaying counts reservations in statuses occupying the night of day.
func (r *Repository) CountStaying(ctx context.Context, hostID uuid.UUID, day time.Time, statuses []ReservationStatus) (int, error) {
	return r.count(ctx, `
		SELECT COUNT(*)
		FROM reservations r
		JOIN properties p ON p.id = r.property_id
		WHERE p.host_id = $1 AND r.status = ANY($2)
		  AND r.start_date <= $3 AND r.end_date > $3
	`, hostID, StatusStrings(statuses), day)
}

// BookingsByDay groups reservations created in [from, to] by local creation day.
func (r *Repository) BookingsByDay(ctx context.Context, hostID uuid.UUID, from, to time.Time) ([]DailyCount, error) {
	query := `
		SELECT (r.created_at AT TIME ZONE $4)::date AS day, COUNT(*)
		FROM reservations r
		JOIN properties p ON p.id = r.property_id
		WHERE p.host_id = $1
		  AND (r.created_at AT TIME ZONE $4)::date BETWEEN $2 AND $3
		GROUP BY day
		ORDER BY day
	`
	rows, err := r.pool.Query(ctx, query, hostID, from, to, r.timezone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailyCount
	for rows.Next() {
		var point DailyCount
		if err := rows.Scan(&point.Date, &point.Count); err != nil {
			return nil, err
		}
		out = append(out, point)
	}
	return out, rows.Err()
}

// RevenueByCheckoutDay sums host_pay of reservations in statuses by end_date,
// for end_date in [from, toExclusive).
func (r *Repository) RevenueByCheckoutDay(ctx context.Context, hostID uuid.UUID, statuses []ReservationStatus, from, toExclusive time.Time) ([]DailyAmount, error) {
	query := `
		SELECT r.end_date, SUM(r.host_pay)::text
		FROM reservations r
		JOIN properties p ON p.id = r.property_id
		WHERE p.host_id = $1 AND r.status = ANY($2)
		  AND r.end_date >= $3 AND r.end_date < $4
		GROUP BY r.end_date
		ORDER BY r.end_date
	`
	rows, err := r.pool.Query(ctx, query, hostID, StatusStrings(statuses), from, toExclusive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailyAmount
	for rows.Next() {
		var (
			point DailyAmount
			raw   string
		)
		if err := rows.Scan(&point.Date, &raw); err != nil {
			return nil, err
		}
		if point.Amount, err = decimal.NewFromString(raw); err != nil {
			return nil, fmt.Errorf("booking: parse revenue %q: %w", raw, err)
		}
		out = append(out, point)
	}
	return out, rows.Err()
}

// CalendarEntries returns reservations of any status with start_date <= to
// and end_date >= from, ordered by start date.
func (r *Repository) CalendarEntries(ctx context.Context, hostID uuid.UUID, from, to time.Time) ([]CalendarEntry, error) {
	query := `
		SELECT` + reservationColumns + `, p.title, COALESCE(g.name, '')
		FROM reservations r
		JOIN properties p ON p.id = r.property_id
		LEFT JOIN users g ON g.id = r.guest_id
		WHERE p.host_id = $1
		  AND r.start_date <= $3
		  AND r.end_date >= $2
		ORDER BY r.start_date, r.id
	`
	rows, err := r.pool.Query(ctx, query, hostID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CalendarEntry
	for rows.Next() {
		var entry CalendarEntry
		res, err := scanReservation(rows, &entry.PropertyTitle, &entry.GuestName)
		if err != nil {
			return nil, err
		}
		entry.Reservation = res
		out = append(out, entry)
	}
	return out, rows.Err()
}

// ListActiveHosts returns every host owning at least one active property.
func (r *Repository) ListActiveHosts(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT host_id FROM properties WHERE status = $1 ORDER BY host_id
	`, PropertyActive.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hosts []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		hosts = append(hosts, id)
	}
	return hosts, rows.Err()
}

func (r *Repository) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanReservation(row pgx.Row, extra ...any) (Reservation, error) {
	var (
		res     Reservation
		status  string
		hostPay string
	)
	dest := append([]any{
		&res.ID, &res.PropertyID, &res.GuestID, &status, &res.StartDate, &res.EndDate,
		&res.NumberOfNights, &hostPay, &res.ConfirmationCode, &res.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return Reservation{}, err
	}
	parsed, err := ParseReservationStatus(status)
	if err != nil {
		return Reservation{}, err
	}
	res.Status = parsed
	if res.HostPay, err = decimal.NewFromString(hostPay); err != nil {
		return Reservation{}, fmt.Errorf("booking: parse host_pay %q: %w", hostPay, err)
	}
	return res, nil
}
