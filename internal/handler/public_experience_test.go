package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestListExperiencesWithFilters(t *testing.T) {
	env := newTestEnv(t)
	opID := env.seedOperator(t, "ak-le")
	pokhara := env.seedExperience(t, opID, "Pokhara", true)
	env.seedExperience(t, opID, "Kathmandu", true)
	env.seedExperience(t, opID, "Pokhara", false)
	env.seedSlot(t, pokhara, time.Now().Add(24*time.Hour), 10)

	list := func(query string) map[string]interface{} {
		req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
		rec := httptest.NewRecorder()
		c := env.echo.NewContext(req, rec)
		if err := env.public.ListExperiences(c); err != nil {
			t.Fatalf("ListExperiences: %v", err)
		}
		wantStatus(t, rec, http.StatusOK)
		return decodeBody(t, rec)
	}

	all := list("")
	if items := all["items"].([]interface{}); len(items) != 2 {
		t.Fatalf("unfiltered list returned %d items, want 2", len(items))
	}
	byCity := list("city=pokhara")
	items := byCity["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("city filter returned %d items, want 1", len(items))
	}
	exp := items[0].(map[string]interface{})
	if uint64(exp["id"].(float64)) != pokhara {
		t.Fatalf("city filter returned experience %v, want %d", exp["id"], pokhara)
	}
	if slots := exp["slots"].([]interface{}); len(slots) != 1 {
		t.Fatalf("expected 1 slot attached, got %d", len(slots))
	}
	byTag := list("tag=hiking")
	if items := byTag["items"].([]interface{}); len(items) != 2 {
		t.Fatalf("tag filter returned %d items, want 2", len(items))
	}
}

func TestGetExperienceByID(t *testing.T) {
	env := newTestEnv(t)
	opID := env.seedOperator(t, "ak-ge")
	expID := env.seedExperience(t, opID, "Pokhara", false)

	// Direct links resolve even for inactive experiences.
	rec := env.call(http.MethodGet, "", expID, 0, env.public.GetExperience)
	wantStatus(t, rec, http.StatusOK)
	resp := decodeBody(t, rec)
	item := resp["item"].(map[string]interface{})
	if uint64(item["id"].(float64)) != expID {
		t.Fatalf("item id = %v, want %d", item["id"], expID)
	}

	wantStatus(t, env.call(http.MethodGet, "", 9999, 0, env.public.GetExperience), http.StatusNotFound)

	// Non-numeric path parameter.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	c := env.echo.NewContext(req, w)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	_ = env.public.GetExperience(c)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
