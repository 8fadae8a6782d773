package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/iliyamo/travel-experience-marketplace/internal/repository"
)

func TestCreateOperatorReturnsAPIKey(t *testing.T) {
	env := newTestEnv(t)
	rec := env.call(http.MethodPost, `{"name":"Himalaya Treks","phone":"9811111111"}`, 0, 0, env.operator.CreateOperator)
	wantStatus(t, rec, http.StatusCreated)
	resp := decodeBody(t, rec)
	key, _ := resp["api_key"].(string)
	if len(key) != 48 { // 24 random bytes hex-encoded
		t.Fatalf("api_key = %q, want 48 hex chars", key)
	}

	// The returned key resolves back to the operator.
	op, err := repository.NewOperatorRepo(env.db).GetByAPIKey(context.Background(), key)
	if err != nil {
		t.Fatalf("GetByAPIKey: %v", err)
	}
	if op.Name != "Himalaya Treks" {
		t.Fatalf("name = %q", op.Name)
	}

	wantStatus(t, env.call(http.MethodPost, `{"name":"  "}`, 0, 0, env.operator.CreateOperator), http.StatusBadRequest)
}

func TestCreateExperienceDefaultsActive(t *testing.T) {
	env := newTestEnv(t)
	opID := env.seedOperator(t, "ak-ce")

	body := `{"title":"Temple Walk","description":"Guided walk through old temples.","city":"Bhaktapur","price_npr":1200,"max_group_size":8,"tags":["culture"]}`
	rec := env.call(http.MethodPost, body, 0, opID, env.operator.CreateExperience)
	wantStatus(t, rec, http.StatusCreated)
	resp := decodeBody(t, rec)
	id := uint64(resp["id"].(float64))

	exp, err := repository.NewExperienceRepo(env.db).GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !exp.IsActive {
		t.Fatal("experience should default to active")
	}
	if exp.OperatorID != opID {
		t.Fatalf("operator_id = %d, want %d", exp.OperatorID, opID)
	}

	cases := []string{
		`{"description":"d","city":"c","max_group_size":5}`,                          // no title
		`{"title":"t","description":"d","max_group_size":5}`,                         // no city
		`{"title":"t","description":"d","city":"c"}`,                                 // no group size
		`{"title":" ","description":"d","city":"c","max_group_size":5}`,              // blank title
	}
	for _, bad := range cases {
		wantStatus(t, env.call(http.MethodPost, bad, 0, opID, env.operator.CreateExperience), http.StatusBadRequest)
	}
}

func TestUpdateExperiencePatchAndDeactivate(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedOperator(t, "ak-ue")
	intruder := env.seedOperator(t, "ak-uei")
	expID := env.seedExperience(t, owner, "Pokhara", true)

	rec := env.call(http.MethodPatch, `{"title":"New Title","is_active":false}`, expID, owner, env.operator.UpdateExperience)
	wantStatus(t, rec, http.StatusOK)

	exp, err := repository.NewExperienceRepo(env.db).GetByID(context.Background(), expID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if exp.Title != "New Title" || exp.IsActive {
		t.Fatalf("patch not applied: %+v", exp)
	}
	if exp.City != "Pokhara" {
		t.Fatalf("untouched city changed to %q", exp.City)
	}

	wantStatus(t, env.call(http.MethodPatch, `{"title":"x"}`, expID, intruder, env.operator.UpdateExperience), http.StatusForbidden)
	wantStatus(t, env.call(http.MethodPatch, `{"title":"x"}`, 9999, owner, env.operator.UpdateExperience), http.StatusNotFound)
}
