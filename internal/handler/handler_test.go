package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	_ "modernc.org/sqlite"

	"github.com/iliyamo/travel-experience-marketplace/internal/queue"
	"github.com/iliyamo/travel-experience-marketplace/internal/repository"
)

// testSchema is the marketplace schema used by every handler test
// database.
const testSchema = `
CREATE TABLE operators (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	api_key TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
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
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE slots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	experience_id INTEGER NOT NULL,
	start_time DATETIME NOT NULL,
	end_time DATETIME NOT NULL,
	seats_total INTEGER NOT NULL,
	seats_booked INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE bookings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	slot_id INTEGER NOT NULL,
	customer_name TEXT NOT NULL,
	customer_phone TEXT NOT NULL,
	pax INTEGER NOT NULL,
	note TEXT,
	status TEXT NOT NULL DEFAULT 'PENDING',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// newTestDB opens an in-memory database with the marketplace schema,
// capped at one connection so concurrent transactions serialize like
// they do on the production row locks.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

// eventLog is a test double for the booking-confirmed publisher.
type eventLog struct {
	mu     sync.Mutex
	events []queue.BookingConfirmedEvent
}

func (l *eventLog) publish(_ context.Context, ev queue.BookingConfirmedEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	return nil
}

func (l *eventLog) all() []queue.BookingConfirmedEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]queue.BookingConfirmedEvent, len(l.events))
	copy(out, l.events)
	return out
}

// testEnv bundles everything a handler test touches.
type testEnv struct {
	db       *sql.DB
	echo     *echo.Echo
	public   *PublicHandler
	operator *OperatorHandler
	events   *eventLog
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithDB(t, newTestDB(t))
}

// newTestEnvWithDB wires handlers over a caller-provided database, for
// tests that need a non-default connection setup.
func newTestEnvWithDB(t *testing.T, db *sql.DB) *testEnv {
	t.Helper()
	operatorRepo := repository.NewOperatorRepo(db)
	experienceRepo := repository.NewExperienceRepo(db)
	slotRepo := repository.NewSlotRepo(db)
	bookingRepo := repository.NewBookingRepo(db)

	events := &eventLog{}
	op := NewOperatorHandler(operatorRepo, experienceRepo, slotRepo, bookingRepo)
	op.Publish = events.publish

	return &testEnv{
		db:       db,
		echo:     echo.New(),
		public:   NewPublicHandler(experienceRepo, slotRepo, bookingRepo),
		operator: op,
		events:   events,
	}
}

func (env *testEnv) seedOperator(t *testing.T, apiKey string) uint64 {
	t.Helper()
	op := &repository.OperatorRecord{Name: "Test Operator", APIKey: apiKey}
	if err := repository.NewOperatorRepo(env.db).Create(context.Background(), op); err != nil {
		t.Fatalf("seed operator: %v", err)
	}
	return op.ID
}

func (env *testEnv) seedExperience(t *testing.T, operatorID uint64, city string, active bool) uint64 {
	t.Helper()
	exp := &repository.ExperienceRecord{
		OperatorID:   operatorID,
		Title:        "Sunrise Hike",
		Description:  "A guided sunrise hike with breakfast.",
		City:         city,
		PriceNPR:     2500,
		MaxGroupSize: 12,
		Tags:         []string{"hiking"},
		IsActive:     active,
	}
	if err := repository.NewExperienceRepo(env.db).Create(context.Background(), exp); err != nil {
		t.Fatalf("seed experience: %v", err)
	}
	return exp.ID
}

func (env *testEnv) seedSlot(t *testing.T, experienceID uint64, start time.Time, seatsTotal uint32) uint64 {
	t.Helper()
	repo := repository.NewSlotRepo(env.db)
	tx, err := env.db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	ids, err := repo.CreateBulkTx(context.Background(), tx, experienceID, []repository.SlotRecord{{
		StartTime:  start.UTC().Format("2006-01-02 15:04:05"),
		EndTime:    start.Add(2 * time.Hour).UTC().Format("2006-01-02 15:04:05"),
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

func (env *testEnv) seedBooking(t *testing.T, slotID uint64, pax uint32) uint64 {
	t.Helper()
	b := &repository.BookingRecord{SlotID: slotID, CustomerName: "Asha", CustomerPhone: "9800000000", Pax: pax}
	if err := repository.NewBookingRepo(env.db).Create(context.Background(), b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b.ID
}

func (env *testEnv) slotCounter(t *testing.T, slotID uint64) (booked, total uint32) {
	t.Helper()
	if err := env.db.QueryRow(`SELECT seats_booked, seats_total FROM slots WHERE id = ?`, slotID).Scan(&booked, &total); err != nil {
		t.Fatalf("read slot counter: %v", err)
	}
	return booked, total
}

func (env *testEnv) bookingStatus(t *testing.T, bookingID uint64) string {
	t.Helper()
	var status string
	if err := env.db.QueryRow(`SELECT status FROM bookings WHERE id = ?`, bookingID).Scan(&status); err != nil {
		t.Fatalf("read booking status: %v", err)
	}
	return status
}

// call builds an echo context for a handler invocation and returns the
// recorder capturing the response. An id > 0 is bound as the :id path
// parameter; an operatorID > 0 simulates OperatorAuth having resolved
// the caller.
func (env *testEnv) call(method, body string, id, operatorID uint64, fn echo.HandlerFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(req, rec)
	if id > 0 {
		c.SetParamNames("id")
		c.SetParamValues(strconv.FormatUint(id, 10))
	}
	if operatorID > 0 {
		c.Set("operator_id", operatorID)
	}
	_ = fn(c)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}
