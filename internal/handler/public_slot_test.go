package handler

import (
	"net/http"
	"testing"
	"time"
)

func TestClampDaysAhead(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"", defaultDaysAhead},
		{"not-a-number", defaultDaysAhead},
		{"0", minDaysAhead},
		{"-3", minDaysAhead},
		{"1", 1},
		{"30", 30},
		{"60", maxDaysAhead},
		{"500", maxDaysAhead},
	}
	for _, tc := range cases {
		if got := clampDaysAhead(tc.raw); got != tc.want {
			t.Errorf("clampDaysAhead(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestListSlotsHidesInactiveExperience(t *testing.T) {
	env := newTestEnv(t)
	opID := env.seedOperator(t, "ak-slots")
	active := env.seedExperience(t, opID, "Pokhara", true)
	inactive := env.seedExperience(t, opID, "Pokhara", false)
	upcoming := env.seedSlot(t, active, time.Now().Add(24*time.Hour), 10)
	env.seedSlot(t, active, time.Now().Add(90*24*time.Hour), 10) // beyond the default window
	env.seedSlot(t, inactive, time.Now().Add(24*time.Hour), 10)

	rec := env.call(http.MethodGet, "", active, 0, env.public.ListSlots)
	wantStatus(t, rec, http.StatusOK)
	resp := decodeBody(t, rec)
	items, ok := resp["items"].([]interface{})
	if !ok {
		t.Fatalf("items missing from body: %v", resp)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 slot in the default window, got %d", len(items))
	}
	first := items[0].(map[string]interface{})
	if uint64(first["id"].(float64)) != upcoming {
		t.Fatalf("slot id = %v, want %d", first["id"], upcoming)
	}

	// Inactive and absent experiences are indistinguishable.
	wantStatus(t, env.call(http.MethodGet, "", inactive, 0, env.public.ListSlots), http.StatusNotFound)
	wantStatus(t, env.call(http.MethodGet, "", 9999, 0, env.public.ListSlots), http.StatusNotFound)
}
