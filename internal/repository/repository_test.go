package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// newTestDB opens an in-memory database with the marketplace schema.
// The pool is capped at one connection so transactions serialize the
// same way the production row locks do.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	const schema = `
CREATE TABLE operators (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	api_key TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE experiences (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	operator_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	city TEXT NOT NULL,
	price_npr INTEGER NOT NULL DEFAULT 0,
	max_group_size INTEGER NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	cover_image_url TEXT,
	geo_lat REAL,
	geo_lng REAL,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE slots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	experience_id INTEGER NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	seats_total INTEGER NOT NULL,
	seats_booked INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE bookings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	slot_id INTEGER NOT NULL,
	customer_name TEXT NOT NULL,
	customer_phone TEXT NOT NULL,
	pax INTEGER NOT NULL,
	note TEXT,
	status TEXT NOT NULL DEFAULT 'PENDING',
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func seedOperator(t *testing.T, db *sql.DB, apiKey string) uint64 {
	t.Helper()
	op := &OperatorRecord{Name: "Test Operator", APIKey: apiKey}
	if err := NewOperatorRepo(db).Create(context.Background(), op); err != nil {
		t.Fatalf("seed operator: %v", err)
	}
	return op.ID
}

func seedExperience(t *testing.T, db *sql.DB, operatorID uint64, city string, active bool) uint64 {
	t.Helper()
	exp := &ExperienceRecord{
		OperatorID:   operatorID,
		Title:        "Sunrise Hike",
		Description:  "A guided sunrise hike with breakfast.",
		City:         city,
		PriceNPR:     2500,
		MaxGroupSize: 12,
		Tags:         []string{"hiking", "nature"},
		IsActive:     active,
	}
	if err := NewExperienceRepo(db).Create(context.Background(), exp); err != nil {
		t.Fatalf("seed experience: %v", err)
	}
	return exp.ID
}

func seedSlot(t *testing.T, db *sql.DB, experienceID uint64, start time.Time, seatsTotal uint32) uint64 {
	t.Helper()
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	ids, err := NewSlotRepo(db).CreateBulkTx(context.Background(), tx, experienceID, []SlotRecord{{
		StartTime:  start.UTC().Format(timeLayout),
		EndTime:    start.Add(2 * time.Hour).UTC().Format(timeLayout),
		SeatsTotal: seatsTotal,
	}})
	if err != nil {
		t.Fatalf("seed slot: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit slot: %v", err)
	}
	return ids[0]
}

func seedBooking(t *testing.T, db *sql.DB, slotID uint64, pax uint32) uint64 {
	t.Helper()
	b := &BookingRecord{SlotID: slotID, CustomerName: "Asha", CustomerPhone: "9800000000", Pax: pax}
	if err := NewBookingRepo(db).Create(context.Background(), b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b.ID
}

func slotCounter(t *testing.T, db *sql.DB, slotID uint64) (booked, total uint32) {
	t.Helper()
	if err := db.QueryRow(`SELECT seats_booked, seats_total FROM slots WHERE id = ?`, slotID).Scan(&booked, &total); err != nil {
		t.Fatalf("read slot counter: %v", err)
	}
	return booked, total
}

func bookingStatus(t *testing.T, db *sql.DB, bookingID uint64) string {
	t.Helper()
	var status string
	if err := db.QueryRow(`SELECT status FROM bookings WHERE id = ?`, bookingID).Scan(&status); err != nil {
		t.Fatalf("read booking status: %v", err)
	}
	return status
}
