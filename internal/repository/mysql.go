package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/go-sql-driver/mysql"
    "github.com/jmoiron/sqlx"
    "github.com/samber/lo"

    "github.com/iliyamo/venue-booking/internal/model"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// MySQLStore implements Store on top of the schema in
// internal/database/migrations.  All timestamps are written in UTC.
type MySQLStore struct {
    db *sqlx.DB
}

// NewMySQLStore returns a MySQLStore bound to the given database.
func NewMySQLStore(db *sqlx.DB) *MySQLStore { return &MySQLStore{db: db} }

var _ Store = (*MySQLStore)(nil)

const holdColumns = `id, org_id, game_id, room_id, booking_type, start_at, end_at, players, status,
    customer_name, customer_email, customer_phone, promo_code, currency,
    subtotal_cents, fee_cents, total_cents, booking_id, created_at, expires_at, confirmed_at, updated_at`

const bookingColumns = `id, org_id, game_id, room_id, hold_id, booking_type, start_at, end_at, players, status,
    customer_name, customer_email, customer_phone, promo_code, currency,
    subtotal_cents, fee_cents, total_cents, payment_status, paid_cents, external_charge_id, paid_at, created_at`

// gameRow carries the pricing tiers as the raw JSON column.
type gameRow struct {
    model.Game
    Tiers []byte `db:"pricing_tiers"`
}

type scheduleRow struct {
    model.Schedule
    Hours []byte `db:"opening_hours"`
}

func isDuplicate(err error) bool {
    var me *mysql.MySQLError
    return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// notFound maps sql.ErrNoRows to ErrNotFound and leaves other errors alone.
func notFound(err error) error {
    if errors.Is(err, sql.ErrNoRows) {
        return ErrNotFound
    }
    return err
}

func (s *MySQLStore) GetOrg(ctx context.Context, orgID string) (model.Org, error) {
    var o model.Org
    err := s.db.GetContext(ctx, &o,
        `SELECT id, name, service_fee_bps, fee_label, currency, timezone FROM orgs WHERE id = ?`, orgID)
    return o, notFound(err)
}

func (s *MySQLStore) GetGame(ctx context.Context, orgID, gameID string) (model.Game, error) {
    var row gameRow
    err := s.db.GetContext(ctx, &row, `
        SELECT id, org_id, name, duration_mins, buffer_mins, slot_interval_mins,
               min_players, max_players, allow_private, allow_public, pricing_tiers
        FROM games WHERE org_id = ? AND id = ?`, orgID, gameID)
    if err != nil {
        return model.Game{}, notFound(err)
    }
    g := row.Game
    if len(row.Tiers) > 0 {
        if err := json.Unmarshal(row.Tiers, &g.PricingTiers); err != nil {
            return model.Game{}, fmt.Errorf("decode pricing tiers of game %s: %w", gameID, err)
        }
    }
    return g, nil
}

func (s *MySQLStore) GetRoom(ctx context.Context, orgID, roomID string) (model.Room, error) {
    var r model.Room
    err := s.db.GetContext(ctx, &r, `
        SELECT id, org_id, game_id, name, max_players, enabled, version
        FROM rooms WHERE org_id = ? AND id = ?`, orgID, roomID)
    return r, notFound(err)
}

func (s *MySQLStore) ListRooms(ctx context.Context, orgID, gameID string) ([]model.Room, error) {
    rooms := []model.Room{}
    err := s.db.SelectContext(ctx, &rooms, `
        SELECT id, org_id, game_id, name, max_players, enabled, version
        FROM rooms WHERE org_id = ? AND game_id = ? ORDER BY id`, orgID, gameID)
    return rooms, err
}

func (s *MySQLStore) GetSchedule(ctx context.Context, orgID, gameID string) (model.Schedule, error) {
    var row scheduleRow
    err := s.db.GetContext(ctx, &row,
        `SELECT org_id, game_id, opening_hours FROM schedules WHERE org_id = ? AND game_id = ?`, orgID, gameID)
    if err != nil {
        return model.Schedule{}, notFound(err)
    }
    sc := row.Schedule
    sc.OpeningHours = []model.OpeningHours{}
    if err := json.Unmarshal(row.Hours, &sc.OpeningHours); err != nil {
        return model.Schedule{}, fmt.Errorf("decode opening hours of game %s: %w", gameID, err)
    }
    return sc, nil
}

func (s *MySQLStore) GetHold(ctx context.Context, orgID, holdID string) (model.Hold, error) {
    var h model.Hold
    err := s.db.GetContext(ctx, &h, `SELECT `+holdColumns+` FROM holds WHERE org_id = ? AND id = ?`, orgID, holdID)
    return h, notFound(err)
}

func (s *MySQLStore) ListActiveHolds(ctx context.Context, orgID, gameID string, from, to time.Time) ([]model.Hold, error) {
    holds := []model.Hold{}
    err := s.db.SelectContext(ctx, &holds, `SELECT `+holdColumns+` FROM holds
        WHERE org_id = ? AND game_id = ? AND status = ? AND start_at < ? AND end_at > ?
        ORDER BY start_at, id`,
        orgID, gameID, string(model.HoldActive), to.UTC(), from.UTC())
    return holds, err
}

// InsertHold bumps the room version and inserts the hold in one
// transaction.  A moved version or a duplicate hold id is ErrConflict.
func (s *MySQLStore) InsertHold(ctx context.Context, hold model.Hold, expectedRoomVersion uint64) (err error) {
    tx, err := s.db.BeginTxx(ctx, nil)
    if err != nil {
        return fmt.Errorf("begin hold insert: %w", err)
    }
    defer func() {
        if err != nil {
            _ = tx.Rollback()
            return
        }
        err = tx.Commit()
    }()

    res, err := tx.ExecContext(ctx,
        `UPDATE rooms SET version = version + 1 WHERE org_id = ? AND id = ? AND version = ?`,
        hold.OrgID, hold.RoomID, expectedRoomVersion)
    if err != nil {
        return fmt.Errorf("bump room version: %w", err)
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrConflict
    }

    _, err = tx.NamedExecContext(ctx, `INSERT INTO holds (`+holdColumns+`) VALUES (
        :id, :org_id, :game_id, :room_id, :booking_type, :start_at, :end_at, :players, :status,
        :customer_name, :customer_email, :customer_phone, :promo_code, :currency,
        :subtotal_cents, :fee_cents, :total_cents, :booking_id, :created_at, :expires_at, :confirmed_at, :updated_at)`,
        utcHold(hold))
    if isDuplicate(err) {
        return ErrConflict
    }
    return err
}

func (s *MySQLStore) TransitionHold(ctx context.Context, orgID, holdID string, from []model.HoldStatus, to model.HoldStatus, bookingID string, at time.Time) (bool, error) {
    if len(from) == 0 {
        return false, nil
    }
    set := []string{"status = ?"}
    args := []any{string(to)}
    if bookingID != "" {
        set = append(set, "booking_id = ?")
        args = append(args, bookingID)
    }
    if !at.IsZero() {
        set = append(set, "updated_at = ?")
        args = append(args, at.UTC())
        if to == model.HoldConfirmed {
            set = append(set, "confirmed_at = ?")
            args = append(args, at.UTC())
        }
    }
    statuses := lo.Map(from, func(st model.HoldStatus, _ int) string { return string(st) })
    args = append(args, orgID, holdID, statuses)

    query, args, err := sqlx.In(`UPDATE holds SET `+strings.Join(set, ", ")+` WHERE org_id = ? AND id = ? AND status IN (?)`, args...)
    if err != nil {
        return false, err
    }
    res, err := s.db.ExecContext(ctx, query, args...)
    if err != nil {
        return false, fmt.Errorf("transition hold %s: %w", holdID, err)
    }
    n, err := res.RowsAffected()
    return n > 0, err
}

func (s *MySQLStore) ExpireHolds(ctx context.Context, now time.Time) (int64, error) {
    res, err := s.db.ExecContext(ctx,
        `UPDATE holds SET status = ?, updated_at = ? WHERE status = ? AND expires_at <= ?`,
        string(model.HoldExpired), now.UTC(), string(model.HoldActive), now.UTC())
    if err != nil {
        return 0, fmt.Errorf("expire holds: %w", err)
    }
    return res.RowsAffected()
}

func (s *MySQLStore) GetBooking(ctx context.Context, orgID, bookingID string) (model.Booking, error) {
    var b model.Booking
    err := s.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE org_id = ? AND id = ?`, orgID, bookingID)
    return b, notFound(err)
}

func (s *MySQLStore) GetBookingByHold(ctx context.Context, orgID, holdID string) (model.Booking, error) {
    var b model.Booking
    err := s.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE org_id = ? AND hold_id = ?`, orgID, holdID)
    return b, notFound(err)
}

func (s *MySQLStore) ListConfirmedBookings(ctx context.Context, orgID, gameID string, from, to time.Time) ([]model.Booking, error) {
    bookings := []model.Booking{}
    err := s.db.SelectContext(ctx, &bookings, `SELECT `+bookingColumns+` FROM bookings
        WHERE org_id = ? AND game_id = ? AND status = ? AND start_at < ? AND end_at > ?
        ORDER BY start_at, id`,
        orgID, gameID, string(model.BookingConfirmed), to.UTC(), from.UTC())
    return bookings, err
}

// InsertBooking relies on the primary key and the unique (org_id, hold_id)
// index; either collision is ErrConflict.
func (s *MySQLStore) InsertBooking(ctx context.Context, booking model.Booking) error {
    _, err := s.db.NamedExecContext(ctx, `INSERT INTO bookings (`+bookingColumns+`) VALUES (
        :id, :org_id, :game_id, :room_id, :hold_id, :booking_type, :start_at, :end_at, :players, :status,
        :customer_name, :customer_email, :customer_phone, :promo_code, :currency,
        :subtotal_cents, :fee_cents, :total_cents, :payment_status, :paid_cents, :external_charge_id, :paid_at, :created_at)`,
        utcBooking(booking))
    if isDuplicate(err) {
        return ErrConflict
    }
    return err
}

func (s *MySQLStore) SaveOrg(ctx context.Context, org model.Org) error {
    _, err := s.db.NamedExecContext(ctx, `
        INSERT INTO orgs (id, name, service_fee_bps, fee_label, currency, timezone)
        VALUES (:id, :name, :service_fee_bps, :fee_label, :currency, :timezone)
        ON DUPLICATE KEY UPDATE name = VALUES(name), service_fee_bps = VALUES(service_fee_bps),
            fee_label = VALUES(fee_label), currency = VALUES(currency), timezone = VALUES(timezone)`, org)
    return err
}

func (s *MySQLStore) SaveGame(ctx context.Context, game model.Game) error {
    row := gameRow{Game: game}
    if len(game.PricingTiers) > 0 {
        b, err := json.Marshal(game.PricingTiers)
        if err != nil {
            return err
        }
        row.Tiers = b
    }
    _, err := s.db.NamedExecContext(ctx, `
        INSERT INTO games (id, org_id, name, duration_mins, buffer_mins, slot_interval_mins,
            min_players, max_players, allow_private, allow_public, pricing_tiers)
        VALUES (:id, :org_id, :name, :duration_mins, :buffer_mins, :slot_interval_mins,
            :min_players, :max_players, :allow_private, :allow_public, :pricing_tiers)
        ON DUPLICATE KEY UPDATE name = VALUES(name), duration_mins = VALUES(duration_mins),
            buffer_mins = VALUES(buffer_mins), slot_interval_mins = VALUES(slot_interval_mins),
            min_players = VALUES(min_players), max_players = VALUES(max_players),
            allow_private = VALUES(allow_private), allow_public = VALUES(allow_public),
            pricing_tiers = VALUES(pricing_tiers)`, row)
    return err
}

// SaveRoom upserts a room without touching its version.
func (s *MySQLStore) SaveRoom(ctx context.Context, room model.Room) error {
    _, err := s.db.NamedExecContext(ctx, `
        INSERT INTO rooms (id, org_id, game_id, name, max_players, enabled)
        VALUES (:id, :org_id, :game_id, :name, :max_players, :enabled)
        ON DUPLICATE KEY UPDATE game_id = VALUES(game_id), name = VALUES(name),
            max_players = VALUES(max_players), enabled = VALUES(enabled)`, room)
    return err
}

func (s *MySQLStore) SaveSchedule(ctx context.Context, schedule model.Schedule) error {
    hours := schedule.OpeningHours
    if hours == nil {
        hours = []model.OpeningHours{}
    }
    b, err := json.Marshal(hours)
    if err != nil {
        return err
    }
    _, err = s.db.NamedExecContext(ctx, `
        INSERT INTO schedules (org_id, game_id, opening_hours)
        VALUES (:org_id, :game_id, :opening_hours)
        ON DUPLICATE KEY UPDATE opening_hours = VALUES(opening_hours)`,
        scheduleRow{Schedule: schedule, Hours: b})
    return err
}

func utcHold(h model.Hold) model.Hold {
    h.StartAt, h.EndAt = h.StartAt.UTC(), h.EndAt.UTC()
    h.CreatedAt, h.ExpiresAt, h.UpdatedAt = h.CreatedAt.UTC(), h.ExpiresAt.UTC(), h.UpdatedAt.UTC()
    if h.ConfirmedAt != nil {
        t := h.ConfirmedAt.UTC()
        h.ConfirmedAt = &t
    }
    return h
}

func utcBooking(b model.Booking) model.Booking {
    b.StartAt, b.EndAt, b.CreatedAt = b.StartAt.UTC(), b.EndAt.UTC(), b.CreatedAt.UTC()
    if b.PaidAt != nil {
        t := b.PaidAt.UTC()
        b.PaidAt = &t
    }
    return b
}
