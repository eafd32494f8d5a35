package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/clubworks/memberfees/internal/service"
	"github.com/clubworks/memberfees/internal/storage/sqlite"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewServer(&Options{
		Addr:           ":0",
		DisableReqLogs: true,
		Store:          store,
		Fees:           service.NewFeeService(store),
		Membership:     service.NewMembershipService(store),
	})
}

func doJSON(t *testing.T, srv *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Body.String(), "{") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, out
}

func TestServerEndToEnd(t *testing.T) {
	srv := setupTestServer(t)

	rec, household := doJSON(t, srv, http.MethodPost, "/v1/households",
		`{"name":"Miller","street":"Main St 1","postal_code":"04109","city":"Leipzig"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create household: status = %d, body %s", rec.Code, rec.Body)
	}
	householdID := household["id"].(string)

	rec, person := doJSON(t, srv, http.MethodPost, "/v1/persons",
		`{"name":"Ann","household_id":"`+householdID+`","date_of_birth":"1990-05-10"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create person: status = %d, body %s", rec.Code, rec.Body)
	}
	personID := person["id"].(string)
	if person["state"] != "passive" {
		t.Errorf("new person state = %v, want passive", person["state"])
	}

	rec, sport := doJSON(t, srv, http.MethodPost, "/v1/sports",
		`{"name":"Football","adult_fee":"500","child_fee":"250","effective_from":"2020-01-01","reason":"initial fee schedule"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create sport: status = %d, body %s", rec.Code, rec.Body)
	}
	sportID := sport["id"].(string)
	if sport["current_adult_fee"] != "500.00" {
		t.Errorf("current_adult_fee = %v, want 500.00", sport["current_adult_fee"])
	}

	rec, _ = doJSON(t, srv, http.MethodPost, "/v1/enrollments",
		`{"person_id":"`+personID+`","sport_id":"`+sportID+`","date":"2022-06-01"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("join sport: status = %d, body %s", rec.Code, rec.Body)
	}

	rec, got := doJSON(t, srv, http.MethodGet, "/v1/persons/"+personID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get person: status = %d", rec.Code)
	}
	if got["state"] != "active" {
		t.Errorf("state after join = %v, want active", got["state"])
	}
	if _, err := time.Parse(time.RFC3339, got["state_changed_at"].(string)); err != nil {
		t.Errorf("state_changed_at %v is not RFC3339: %v", got["state_changed_at"], err)
	}

	rec, amount := doJSON(t, srv, http.MethodGet, "/v1/fees/person/"+personID+"?as_of=2022-12-31", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("person fee: status = %d, body %s", rec.Code, rec.Body)
	}
	if amount["amount"] != "500.00" {
		t.Errorf("amount = %v, want 500.00", amount["amount"])
	}

	rec, amount = doJSON(t, srv, http.MethodGet, "/v1/fees/household/"+householdID+"?as_of=2022-12-31", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("household fee: status = %d", rec.Code)
	}
	if amount["amount"] != "500.00" {
		t.Errorf("household amount = %v, want 500.00", amount["amount"])
	}
}

func TestServerErrorMapping(t *testing.T) {
	srv := setupTestServer(t)

	rec, household := doJSON(t, srv, http.MethodPost, "/v1/households", `{"name":"Miller"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create household: status = %d", rec.Code)
	}
	householdID := household["id"].(string)

	rec, sport := doJSON(t, srv, http.MethodPost, "/v1/sports",
		`{"name":"Chess","adult_fee":"100","child_fee":"40","effective_from":"2021-06-01","reason":"initial fee schedule"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create sport: status = %d", rec.Code)
	}
	sportID := sport["id"].(string)

	rec, person := doJSON(t, srv, http.MethodPost, "/v1/persons",
		`{"name":"Ann","household_id":"`+householdID+`","date_of_birth":"1990-05-10"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create person: status = %d", rec.Code)
	}
	personID := person["id"].(string)

	rec, _ = doJSON(t, srv, http.MethodPost, "/v1/enrollments",
		`{"person_id":"`+personID+`","sport_id":"`+sportID+`","date":"2022-01-01"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("join sport: status = %d", rec.Code)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{
			name:   "unknown person is 404",
			method: http.MethodGet,
			path:   "/v1/persons/missing",
			want:   http.StatusNotFound,
		},
		{
			name:   "unknown fee target is 404",
			method: http.MethodGet,
			path:   "/v1/fees/sport/missing",
			want:   http.StatusNotFound,
		},
		{
			name:   "invalid birth date is 400",
			method: http.MethodPost,
			path:   "/v1/persons",
			body:   `{"name":"X","household_id":"` + householdID + `","date_of_birth":"soon"}`,
			want:   http.StatusBadRequest,
		},
		{
			name:   "duplicate effective date is 409",
			method: http.MethodPost,
			path:   "/v1/sports/" + sportID + "/fees",
			body:   `{"adult_fee":"120","child_fee":"50","effective_from":"2021-06-01","reason":"tie"}`,
			want:   http.StatusConflict,
		},
		{
			name:   "double join is 409",
			method: http.MethodPost,
			path:   "/v1/enrollments",
			body:   `{"person_id":"` + personID + `","sport_id":"` + sportID + `","date":"2022-02-01"}`,
			want:   http.StatusConflict,
		},
		{
			name:   "fee before any schedule entry is 422",
			method: http.MethodGet,
			path:   "/v1/fees/person/" + personID + "?as_of=2021-01-01",
			want:   http.StatusUnprocessableEntity,
		},
		{
			name:   "invalid as_of is 400",
			method: http.MethodGet,
			path:   "/v1/fees/club?as_of=whenever",
			want:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := doJSON(t, srv, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}
