/*
Package sqlite provides a SQLite-backed implementation of dispense.Store.

PURPOSE:
  Implements the persistence boundary (members, medications, machine
  slots, schedule entries) using SQLite. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  members:          household members with RFID token and device uids
  medications:      per-household medication definitions (composite key)
  machine_slots:    per-(device, medication) inventory counters
  schedule_entries: planned doses on the day/slot grid

CONDITIONAL UPDATES:
  The two updates with invariants are single conditional statements, not
  read-modify-write cycles:
  - DecrementRemaining: remaining = remaining - ? ... AND remaining >= ?
  - MarkTookToday:      took_today = 1 ... AND took_today = 0
  This keeps concurrent callers and multiple process instances safe; the
  struct mutex only serializes access within one process.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  store, err := sqlite.New("./data/dispenser.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - dispense/store.go: interface definitions
  - dispense/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/carebox/dispense-engine/dispense"
)

// Store implements dispense.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Household members
	CREATE TABLE IF NOT EXISTS members (
		member_id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		token_uid TEXT,
		device_uid TEXT,
		took_today INTEGER NOT NULL DEFAULT 0,
		age INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_members_group ON members(group_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_members_token ON members(token_uid)
		WHERE token_uid IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_members_device ON members(device_uid);

	-- Medication definitions, scoped per household
	CREATE TABLE IF NOT EXISTS medications (
		medication_id TEXT NOT NULL,
		group_id TEXT NOT NULL,
		name TEXT NOT NULL,
		warning INTEGER NOT NULL DEFAULT 0,
		start_date TEXT,
		end_date TEXT,
		target_members_json TEXT,
		PRIMARY KEY (medication_id, group_id)
	);

	-- Machine inventory slots
	CREATE TABLE IF NOT EXISTS machine_slots (
		device_uid TEXT NOT NULL,
		medication_id TEXT NOT NULL,
		group_id TEXT NOT NULL,
		slot INTEGER,
		max_slot INTEGER NOT NULL DEFAULT 3,
		total INTEGER NOT NULL,
		remaining INTEGER NOT NULL,
		PRIMARY KEY (device_uid, medication_id),
		CHECK (remaining >= 0 AND remaining <= total)
	);

	CREATE INDEX IF NOT EXISTS idx_slots_group_med
		ON machine_slots(group_id, medication_id);

	-- Planned doses on the (day, time-of-day) grid
	CREATE TABLE IF NOT EXISTS schedule_entries (
		schedule_id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL,
		member_id TEXT,
		medication_id TEXT NOT NULL,
		day_of_week TEXT NOT NULL,
		time_of_day TEXT,
		dose INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_schedule_group_day
		ON schedule_entries(group_id, day_of_week, time_of_day);
	CREATE INDEX IF NOT EXISTS idx_schedule_member_day
		ON schedule_entries(member_id, day_of_week, time_of_day);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Reset clears all data. Dev/demo scenarios only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"schedule_entries", "machine_slots", "medications", "members"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// MEMBER STORE
// =============================================================================

const memberColumns = `member_id, group_id, name, role, token_uid, device_uid, took_today, age`

// GetMemberByTokenUID resolves an RFID kit token to its member.
func (s *Store) GetMemberByTokenUID(ctx context.Context, tokenUID string) (*dispense.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryMember(ctx,
		`SELECT `+memberColumns+` FROM members WHERE token_uid = ?`, tokenUID)
}

// GetMemberByDeviceUID resolves a dispenser uid to one of the members
// sharing it (lowest member id for determinism).
func (s *Store) GetMemberByDeviceUID(ctx context.Context, deviceUID string) (*dispense.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryMember(ctx,
		`SELECT `+memberColumns+` FROM members WHERE device_uid = ? ORDER BY member_id ASC LIMIT 1`,
		deviceUID)
}

func (s *Store) GetMember(ctx context.Context, id dispense.MemberID) (*dispense.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryMember(ctx,
		`SELECT `+memberColumns+` FROM members WHERE member_id = ?`, string(id))
}

// ListMembersByGroup returns the household roster, role ascending then
// member id ascending.
func (s *Store) ListMembersByGroup(ctx context.Context, groupID dispense.GroupID) ([]dispense.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE group_id = ? ORDER BY role ASC, member_id ASC`,
		string(groupID))
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []dispense.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Store) SaveMember(ctx context.Context, m dispense.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO members (member_id, group_id, name, role, token_uid, device_uid, took_today, age)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(member_id) DO UPDATE SET
			group_id = excluded.group_id,
			name = excluded.name,
			role = excluded.role,
			token_uid = excluded.token_uid,
			device_uid = excluded.device_uid,
			took_today = excluded.took_today,
			age = excluded.age
	`

	_, err := s.db.ExecContext(ctx, query,
		string(m.ID), string(m.GroupID), m.Name, string(m.Role),
		nullString(m.TokenUID), nullString(m.DeviceUID), m.TookToday, m.Age)
	if err != nil {
		return fmt.Errorf("failed to save member: %w", err)
	}
	return nil
}

// MarkTookToday flips the taken-today marker 0 -> 1 as one conditional
// update. Returns true only when this call performed the transition.
func (s *Store) MarkTookToday(ctx context.Context, id dispense.MemberID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE members SET took_today = 1 WHERE member_id = ? AND took_today = 0`,
		string(id))
	if err != nil {
		return false, fmt.Errorf("failed to mark took_today: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return true, nil
	}

	// Distinguish "already confirmed" from "no such member".
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM members WHERE member_id = ?`, string(id)).Scan(&count); err != nil {
		return false, err
	}
	if count == 0 {
		return false, dispense.ErrMemberNotFound
	}
	return false, nil
}

// ResetTookToday zeroes the marker for every member.
func (s *Store) ResetTookToday(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE members SET took_today = 0`)
	if err != nil {
		return 0, fmt.Errorf("failed to reset took_today: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) queryMember(ctx context.Context, query string, args ...any) (*dispense.Member, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query member: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	m, err := scanMember(rows)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanMember(rows *sql.Rows) (dispense.Member, error) {
	var (
		m         dispense.Member
		tokenUID  sql.NullString
		deviceUID sql.NullString
		age       sql.NullInt64
	)

	err := rows.Scan(&m.ID, &m.GroupID, &m.Name, &m.Role, &tokenUID, &deviceUID, &m.TookToday, &age)
	if err != nil {
		return m, fmt.Errorf("failed to scan member: %w", err)
	}

	m.TokenUID = tokenUID.String
	m.DeviceUID = deviceUID.String
	m.Age = int(age.Int64)
	return m, nil
}

// =============================================================================
// MEDICATION STORE
// =============================================================================

func (s *Store) GetMedication(ctx context.Context, groupID dispense.GroupID, id dispense.MedicationID) (*dispense.Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT medication_id, group_id, name, warning, start_date, end_date, target_members_json
		FROM medications
		WHERE medication_id = ? AND group_id = ?`,
		string(id), string(groupID))
	if err != nil {
		return nil, fmt.Errorf("failed to query medication: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	med, err := scanMedication(rows)
	if err != nil {
		return nil, err
	}
	return &med, nil
}

func (s *Store) SaveMedication(ctx context.Context, m dispense.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var targetsJSON sql.NullString
	if len(m.TargetMembers) > 0 {
		b, err := json.Marshal(m.TargetMembers)
		if err != nil {
			return fmt.Errorf("failed to encode target members: %w", err)
		}
		targetsJSON = sql.NullString{String: string(b), Valid: true}
	}

	query := `
		INSERT INTO medications (medication_id, group_id, name, warning, start_date, end_date, target_members_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(medication_id, group_id) DO UPDATE SET
			name = excluded.name,
			warning = excluded.warning,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			target_members_json = excluded.target_members_json
	`

	_, err := s.db.ExecContext(ctx, query,
		string(m.ID), string(m.GroupID), m.Name, boolToInt(m.Warning),
		nullTime(m.StartDate), nullTime(m.EndDate), targetsJSON)
	if err != nil {
		return fmt.Errorf("failed to save medication: %w", err)
	}
	return nil
}

// SetWarning raises the sticky low-stock flag via a conditional update.
// Returns true only on the false -> true transition.
func (s *Store) SetWarning(ctx context.Context, groupID dispense.GroupID, id dispense.MedicationID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE medications SET warning = 1 WHERE medication_id = ? AND group_id = ? AND warning = 0`,
		string(id), string(groupID))
	if err != nil {
		return false, fmt.Errorf("failed to set warning: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return true, nil
	}

	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM medications WHERE medication_id = ? AND group_id = ?`,
		string(id), string(groupID)).Scan(&count); err != nil {
		return false, err
	}
	if count == 0 {
		return false, dispense.ErrMedicationNotFound
	}
	return false, nil
}

func scanMedication(rows *sql.Rows) (dispense.Medication, error) {
	var (
		m           dispense.Medication
		warning     int
		startDate   sql.NullString
		endDate     sql.NullString
		targetsJSON sql.NullString
	)

	err := rows.Scan(&m.ID, &m.GroupID, &m.Name, &warning, &startDate, &endDate, &targetsJSON)
	if err != nil {
		return m, fmt.Errorf("failed to scan medication: %w", err)
	}

	m.Warning = warning != 0
	m.StartDate = parseNullDate(startDate)
	m.EndDate = parseNullDate(endDate)
	if targetsJSON.Valid && targetsJSON.String != "" {
		json.Unmarshal([]byte(targetsJSON.String), &m.TargetMembers)
	}
	return m, nil
}

// =============================================================================
// SLOT STORE
// =============================================================================

const slotColumns = `device_uid, medication_id, group_id, slot, max_slot, total, remaining`

func (s *Store) GetSlot(ctx context.Context, groupID dispense.GroupID, id dispense.MedicationID) (*dispense.MachineSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.querySlot(ctx, groupID, id)
}

func (s *Store) querySlot(ctx context.Context, groupID dispense.GroupID, id dispense.MedicationID) (*dispense.MachineSlot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+slotColumns+` FROM machine_slots WHERE group_id = ? AND medication_id = ?`,
		string(groupID), string(id))
	if err != nil {
		return nil, fmt.Errorf("failed to query slot: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	slot, err := scanSlot(rows)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListSlotsByGroup returns the household's slots, physical index ascending.
func (s *Store) ListSlotsByGroup(ctx context.Context, groupID dispense.GroupID) ([]dispense.MachineSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+slotColumns+` FROM machine_slots WHERE group_id = ? ORDER BY slot ASC`,
		string(groupID))
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	var slots []dispense.MachineSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func (s *Store) SaveSlot(ctx context.Context, slot dispense.MachineSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO machine_slots (device_uid, medication_id, group_id, slot, max_slot, total, remaining)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(device_uid, medication_id) DO UPDATE SET
			group_id = excluded.group_id,
			slot = excluded.slot,
			max_slot = excluded.max_slot,
			total = excluded.total,
			remaining = excluded.remaining
	`

	_, err := s.db.ExecContext(ctx, query,
		slot.DeviceUID, string(slot.MedicationID), string(slot.GroupID),
		slot.Slot, slot.MaxSlot, slot.Total, slot.Remaining)
	if err != nil {
		return fmt.Errorf("failed to save slot: %w", err)
	}
	return nil
}

// DecrementRemaining is the one write with a hard invariant: the compare
// and the decrement are a single conditional UPDATE, so a racing call can
// never drive remaining below zero even across process instances.
func (s *Store) DecrementRemaining(ctx context.Context, groupID dispense.GroupID, id dispense.MedicationID, dose int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE machine_slots
		SET remaining = remaining - ?
		WHERE group_id = ? AND medication_id = ? AND remaining >= ?`,
		dose, string(groupID), string(id), dose)
	if err != nil {
		return 0, fmt.Errorf("failed to decrement slot: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if affected == 0 {
		// Either the slot doesn't exist or stock is short; re-read to tell.
		slot, err := s.querySlot(ctx, groupID, id)
		if err != nil {
			return 0, err
		}
		if slot == nil {
			return 0, dispense.ErrSlotNotFound
		}
		return 0, &dispense.InsufficientStockError{
			GroupID:      groupID,
			MedicationID: id,
			Remaining:    slot.Remaining,
			Requested:    dose,
		}
	}

	var remaining int
	err = s.db.QueryRowContext(ctx,
		`SELECT remaining FROM machine_slots WHERE group_id = ? AND medication_id = ?`,
		string(groupID), string(id)).Scan(&remaining)
	if err != nil {
		return 0, fmt.Errorf("failed to read remaining: %w", err)
	}
	return remaining, nil
}

func scanSlot(rows *sql.Rows) (dispense.MachineSlot, error) {
	var (
		slot    dispense.MachineSlot
		slotIdx sql.NullInt64
	)

	err := rows.Scan(&slot.DeviceUID, &slot.MedicationID, &slot.GroupID,
		&slotIdx, &slot.MaxSlot, &slot.Total, &slot.Remaining)
	if err != nil {
		return slot, fmt.Errorf("failed to scan slot: %w", err)
	}

	slot.Slot = int(slotIdx.Int64)
	return slot, nil
}

// =============================================================================
// SCHEDULE STORE
// =============================================================================

func (s *Store) SaveScheduleEntry(ctx context.Context, e dispense.ScheduleEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO schedule_entries (schedule_id, group_id, member_id, medication_id, day_of_week, time_of_day, dose, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(schedule_id) DO UPDATE SET
			group_id = excluded.group_id,
			member_id = excluded.member_id,
			medication_id = excluded.medication_id,
			day_of_week = excluded.day_of_week,
			time_of_day = excluded.time_of_day,
			dose = excluded.dose
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID, string(e.GroupID), nullString(string(e.MemberID)), string(e.MedicationID),
		string(e.Day), nullString(string(e.Slot)), e.Dose, createdAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save schedule entry: %w", err)
	}
	return nil
}

// dueDoseQuery joins schedule entries with member and medication display
// data. The medication join is on the composite (medication_id, group_id)
// key; joining on medication_id alone would leak across households.
const dueDoseQuery = `
	SELECT e.schedule_id, e.group_id, e.member_id, e.medication_id,
	       e.dose, e.time_of_day,
	       m.name, m.role,
	       md.name, md.target_members_json
	FROM schedule_entries e
	LEFT JOIN members m ON m.member_id = e.member_id
	LEFT JOIN medications md
		ON md.medication_id = e.medication_id AND md.group_id = e.group_id
`

func (s *Store) FindDueForGroup(ctx context.Context, groupID dispense.GroupID, day dispense.DayOfWeek, slots []dispense.TimeOfDay) ([]dispense.DueDose, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := dueDoseQuery + `
		WHERE e.group_id = ? AND e.day_of_week = ? AND e.time_of_day IN (` + placeholders(len(slots)) + `)`

	args := []any{string(groupID), string(day)}
	for _, slot := range slots {
		args = append(args, string(slot))
	}
	return s.queryDueDoses(ctx, query, args...)
}

func (s *Store) FindDueForMember(ctx context.Context, memberID dispense.MemberID, day dispense.DayOfWeek, slots []dispense.TimeOfDay) ([]dispense.DueDose, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := dueDoseQuery + `
		WHERE e.member_id = ? AND e.day_of_week = ? AND e.time_of_day IN (` + placeholders(len(slots)) + `)`

	args := []any{string(memberID), string(day)}
	for _, slot := range slots {
		args = append(args, string(slot))
	}
	return s.queryDueDoses(ctx, query, args...)
}

func (s *Store) FindByGroupDay(ctx context.Context, groupID dispense.GroupID, day dispense.DayOfWeek) ([]dispense.DueDose, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := dueDoseQuery + `
		WHERE e.group_id = ? AND e.day_of_week = ?`

	return s.queryDueDoses(ctx, query, string(groupID), string(day))
}

func (s *Store) queryDueDoses(ctx context.Context, query string, args ...any) ([]dispense.DueDose, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query due doses: %w", err)
	}
	defer rows.Close()

	doses := []dispense.DueDose{}
	for rows.Next() {
		var (
			d           dispense.DueDose
			memberID    sql.NullString
			slot        sql.NullString
			memberName  sql.NullString
			memberRole  sql.NullString
			medName     sql.NullString
			targetsJSON sql.NullString
		)

		err := rows.Scan(&d.ScheduleID, &d.GroupID, &memberID, &d.MedicationID,
			&d.Dose, &slot, &memberName, &memberRole, &medName, &targetsJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due dose: %w", err)
		}

		d.MemberID = dispense.MemberID(memberID.String)
		d.Slot = dispense.TimeOfDay(slot.String)
		d.MemberName = memberName.String
		d.MemberRole = dispense.Role(memberRole.String)
		d.MedicationName = medName.String
		if targetsJSON.Valid && targetsJSON.String != "" {
			json.Unmarshal([]byte(targetsJSON.String), &d.Targets)
		}
		doses = append(doses, d)
	}
	return doses, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func placeholders(n int) string {
	if n <= 0 {
		return "NULL"
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format("2006-01-02"), Valid: true}
}

func parseNullDate(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s.String)
	if err != nil {
		return nil
	}
	return &t
}
