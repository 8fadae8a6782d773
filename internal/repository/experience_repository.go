package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ExperienceRepo provides CRUD operations for experiences. It is the
// leaf of the ownership chain: slots and bookings both resolve their
// owning operator through the experience row.
type ExperienceRepo struct {
	db *sql.DB
}

// NewExperienceRepo returns a new ExperienceRepo bound to the given database.
func NewExperienceRepo(db *sql.DB) *ExperienceRepo { return &ExperienceRepo{db: db} }

// DB exposes the underlying database handle.
func (r *ExperienceRepo) DB() *sql.DB { return r.db }

// ExperienceRecord mirrors the schema of the experiences table. Tags
// are persisted as a JSON array in a text column so the row stays
// portable across storage engines.
type ExperienceRecord struct {
	ID            uint64   `json:"id"`
	OperatorID    uint64   `json:"operator_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	City          string   `json:"city"`
	PriceNPR      uint32   `json:"price_npr"`
	MaxGroupSize  uint32   `json:"max_group_size"`
	Tags          []string `json:"tags"`
	CoverImageURL *string  `json:"cover_image_url,omitempty"`
	GeoLat        *float64 `json:"geo_lat,omitempty"`
	GeoLng        *float64 `json:"geo_lng,omitempty"`
	IsActive      bool     `json:"is_active"`
	CreatedAt     string   `json:"created_at"`
}

// encodeTags marshals a tag list for storage. A nil or empty list is
// stored as an empty JSON array so scanning never deals with NULL.
func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// decodeTags unmarshals a stored tag column, tolerating empty values.
func decodeTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return []string{}
	}
	if tags == nil {
		tags = []string{}
	}
	return tags
}

// Create inserts a new experience row and populates the generated ID
// and creation timestamp on the provided record.
func (r *ExperienceRepo) Create(ctx context.Context, exp *ExperienceRecord) error {
	const q = `INSERT INTO experiences
			   (operator_id, title, description, city, price_npr, max_group_size, tags, cover_image_url, geo_lat, geo_lng, is_active)
			   VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		exp.OperatorID, exp.Title, exp.Description, exp.City,
		exp.PriceNPR, exp.MaxGroupSize, encodeTags(exp.Tags),
		exp.CoverImageURL, exp.GeoLat, exp.GeoLng, exp.IsActive,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	exp.ID = uint64(id)
	// Query back the row to populate the DB-assigned timestamp.
	const sel = `SELECT created_at FROM experiences WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, exp.ID).Scan(&exp.CreatedAt)
}

// GetByID returns a single experience regardless of its active flag.
// It returns ErrExperienceNotFound when no row matches.
func (r *ExperienceRepo) GetByID(ctx context.Context, id uint64) (*ExperienceRecord, error) {
	const q = `SELECT id, operator_id, title, description, city, price_npr, max_group_size,
					  tags, cover_image_url, geo_lat, geo_lng, is_active, created_at
			   FROM experiences WHERE id = ?`
	var exp ExperienceRecord
	var tagsRaw string
	var cover sql.NullString
	var lat, lng sql.NullFloat64
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&exp.ID, &exp.OperatorID, &exp.Title, &exp.Description, &exp.City,
		&exp.PriceNPR, &exp.MaxGroupSize, &tagsRaw, &cover, &lat, &lng,
		&exp.IsActive, &exp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExperienceNotFound
		}
		return nil, err
	}
	exp.Tags = decodeTags(tagsRaw)
	if cover.Valid {
		v := cover.String
		exp.CoverImageURL = &v
	}
	if lat.Valid {
		v := lat.Float64
		exp.GeoLat = &v
	}
	if lng.Valid {
		v := lng.Float64
		exp.GeoLng = &v
	}
	return &exp, nil
}

// GetByIDAndOwner loads an experience and enforces the ownership
// chain against the calling operator. It returns ErrExperienceNotFound
// when the row is absent and ErrForbidden when it belongs to another
// operator.
func (r *ExperienceRepo) GetByIDAndOwner(ctx context.Context, id, operatorID uint64) (*ExperienceRecord, error) {
	exp, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if exp.OperatorID != operatorID {
		return nil, ErrForbidden
	}
	return exp, nil
}

// ExperienceUpdate lists the mutable fields of an experience. Nil
// pointers leave the corresponding column untouched, so a PATCH body
// only has to carry the fields it wants to change. Deactivation goes
// through IsActive; rows are never deleted.
type ExperienceUpdate struct {
	Title         *string
	Description   *string
	City          *string
	PriceNPR      *uint32
	MaxGroupSize  *uint32
	Tags          *[]string
	CoverImageURL *string
	GeoLat        *float64
	GeoLng        *float64
	IsActive      *bool
}

// UpdateFields applies a partial update to an experience owned by the
// given operator. Ownership is re-derived here rather than trusted
// from the caller. When no field is set the call is a no-op.
func (r *ExperienceRepo) UpdateFields(ctx context.Context, id, operatorID uint64, upd ExperienceUpdate) error {
	if _, err := r.GetByIDAndOwner(ctx, id, operatorID); err != nil {
		return err
	}
	set := make([]string, 0, 10)
	args := make([]interface{}, 0, 11)
	if upd.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.City != nil {
		set = append(set, "city = ?")
		args = append(args, *upd.City)
	}
	if upd.PriceNPR != nil {
		set = append(set, "price_npr = ?")
		args = append(args, *upd.PriceNPR)
	}
	if upd.MaxGroupSize != nil {
		set = append(set, "max_group_size = ?")
		args = append(args, *upd.MaxGroupSize)
	}
	if upd.Tags != nil {
		set = append(set, "tags = ?")
		args = append(args, encodeTags(*upd.Tags))
	}
	if upd.CoverImageURL != nil {
		set = append(set, "cover_image_url = ?")
		args = append(args, *upd.CoverImageURL)
	}
	if upd.GeoLat != nil {
		set = append(set, "geo_lat = ?")
		args = append(args, *upd.GeoLat)
	}
	if upd.GeoLng != nil {
		set = append(set, "geo_lng = ?")
		args = append(args, *upd.GeoLng)
	}
	if upd.IsActive != nil {
		set = append(set, "is_active = ?")
		args = append(args, *upd.IsActive)
	}
	if len(set) == 0 {
		return nil
	}
	set = append(set, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(timeLayout))
	query := "UPDATE experiences SET " + strings.Join(set, ", ") + " WHERE id = ?"
	args = append(args, id)
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// SlotSummary is the abbreviated slot shape embedded in public
// experience listings: enough for a customer to pick a time without a
// second request.
type SlotSummary struct {
	ID          uint64 `json:"id"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	SeatsTotal  uint32 `json:"seats_total"`
	SeatsBooked uint32 `json:"seats_booked"`
}

// PublicExperience is an experience with its slots attached, returned
// by the public browse endpoints.
type PublicExperience struct {
	ExperienceRecord
	Slots []SlotSummary `json:"slots"`
}

// ListPublic returns active experiences, newest first, each with its
// slots. The optional city filter is matched case-insensitively; the
// optional tag filter is applied after scanning since tags live in a
// JSON column.
func (r *ExperienceRepo) ListPublic(ctx context.Context, city, tag string) ([]PublicExperience, error) {
	query := `SELECT id, operator_id, title, description, city, price_npr, max_group_size,
					 tags, cover_image_url, geo_lat, geo_lng, is_active, created_at
			  FROM experiences WHERE is_active = ?`
	args := []interface{}{true}
	if city != "" {
		query += " AND LOWER(city) = LOWER(?)"
		args = append(args, city)
	}
	query += " ORDER BY created_at DESC, id DESC"
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]PublicExperience, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var exp ExperienceRecord
		var tagsRaw string
		var cover sql.NullString
		var lat, lng sql.NullFloat64
		if err := rows.Scan(
			&exp.ID, &exp.OperatorID, &exp.Title, &exp.Description, &exp.City,
			&exp.PriceNPR, &exp.MaxGroupSize, &tagsRaw, &cover, &lat, &lng,
			&exp.IsActive, &exp.CreatedAt,
		); err != nil {
			return nil, err
		}
		exp.Tags = decodeTags(tagsRaw)
		if cover.Valid {
			v := cover.String
			exp.CoverImageURL = &v
		}
		if lat.Valid {
			v := lat.Float64
			exp.GeoLat = &v
		}
		if lng.Valid {
			v := lng.Float64
			exp.GeoLng = &v
		}
		if tag != "" && !containsTag(exp.Tags, tag) {
			continue
		}
		index[exp.ID] = len(items)
		items = append(items, PublicExperience{ExperienceRecord: exp, Slots: []SlotSummary{}})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}
	// Fetch slots for all matched experiences in one query.
	ids := make([]interface{}, 0, len(items))
	placeholders := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
		placeholders = append(placeholders, "?")
	}
	slotQuery := `SELECT experience_id, id, start_time, end_time, seats_total, seats_booked
				  FROM slots
				  WHERE experience_id IN (` + strings.Join(placeholders, ",") + `)
				  ORDER BY experience_id, start_time`
	srows, err := r.db.QueryContext(ctx, slotQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var expID uint64
		var s SlotSummary
		if err := srows.Scan(&expID, &s.ID, &s.StartTime, &s.EndTime, &s.SeatsTotal, &s.SeatsBooked); err != nil {
			return nil, err
		}
		idx, ok := index[expID]
		if !ok {
			continue
		}
		items[idx].Slots = append(items[idx].Slots, s)
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetPublicByID returns one experience with all of its slots. Unlike
// the list endpoint, inactive experiences are still visible here so a
// customer holding a direct link sees the page rather than a 404;
// absent rows return ErrExperienceNotFound.
func (r *ExperienceRepo) GetPublicByID(ctx context.Context, id uint64) (*PublicExperience, error) {
	exp, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &PublicExperience{ExperienceRecord: *exp, Slots: []SlotSummary{}}
	const slotQ = `SELECT id, start_time, end_time, seats_total, seats_booked
				   FROM slots WHERE experience_id = ? ORDER BY start_time`
	rows, err := r.db.QueryContext(ctx, slotQ, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s SlotSummary
		if err := rows.Scan(&s.ID, &s.StartTime, &s.EndTime, &s.SeatsTotal, &s.SeatsBooked); err != nil {
			return nil, err
		}
		out.Slots = append(out.Slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListActiveByCity returns up to limit active experiences in a city,
// with only the fields the AI planner needs for prompt context.
func (r *ExperienceRepo) ListActiveByCity(ctx context.Context, city string, limit int) ([]ExperienceRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `SELECT id, title, description, tags
			   FROM experiences
			   WHERE is_active = ? AND LOWER(city) = LOWER(?)
			   ORDER BY created_at DESC, id DESC
			   LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, true, city, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ExperienceRecord, 0, limit)
	for rows.Next() {
		var exp ExperienceRecord
		var tagsRaw string
		if err := rows.Scan(&exp.ID, &exp.Title, &exp.Description, &tagsRaw); err != nil {
			return nil, err
		}
		exp.Tags = decodeTags(tagsRaw)
		out = append(out, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func containsTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}
