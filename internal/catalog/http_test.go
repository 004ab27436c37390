package catalog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"pricewatch/internal/catalog"
)

var errStoreDown = errors.New("store down")

// brokenStore fails every operation, standing in for a lost database.
type brokenStore struct{}

func (brokenStore) Ping(context.Context) error { return errStoreDown }

func (brokenStore) FindByName(context.Context, string) (catalog.Record, bool, error) {
	return catalog.Record{}, false, errStoreDown
}

func (brokenStore) Insert(context.Context, string, int64) (catalog.Record, error) {
	return catalog.Record{}, errStoreDown
}

func (brokenStore) List(context.Context, int, int) ([]catalog.Record, error) {
	return nil, errStoreDown
}

func (brokenStore) Get(context.Context, int64) (catalog.Record, bool, error) {
	return catalog.Record{}, false, errStoreDown
}

func (brokenStore) Update(context.Context, int64, catalog.Patch) (catalog.Record, error) {
	return catalog.Record{}, errStoreDown
}

func (brokenStore) Delete(context.Context, int64) error { return errStoreDown }

func newPricesTS(t *testing.T) (*httptest.Server, *catalog.MemStore) {
	t.Helper()

	store := catalog.NewMemStore()
	s := &catalog.Server{Store: store, Log: zap.NewNop()}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "pricewatch",
	})

	return httptest.NewServer(h), store
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func createRecord(t *testing.T, baseURL, name string, cost int64) catalog.Record {
	t.Helper()

	resp, raw := doJSON(t, http.MethodPost, baseURL+"/prices/create", map[string]any{
		"name": name,
		"cost": cost,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create %q: status %d, body %s", name, resp.StatusCode, raw)
	}

	var rec catalog.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("unmarshal created record: %v", err)
	}
	return rec
}

func TestCreateGetRoundTrip(t *testing.T) {
	ts, _ := newPricesTS(t)
	defer ts.Close()

	created := createRecord(t, ts.URL, "Кран-букса 1/2", 740)
	if created.ID == 0 {
		t.Fatal("created record has no id")
	}

	resp, raw := doJSON(t, http.MethodGet, fmt.Sprintf("%s/prices/%d", ts.URL, created.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: status %d, body %s", resp.StatusCode, raw)
	}

	var got catalog.Record
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != created {
		t.Errorf("round trip mismatch: created %+v, got %+v", created, got)
	}
}

func TestUpdatePatchesOnlyProvidedFields(t *testing.T) {
	ts, _ := newPricesTS(t)
	defer ts.Close()

	created := createRecord(t, ts.URL, "Кран-букса 3/8", 620)

	resp, raw := doJSON(t, http.MethodPut, fmt.Sprintf("%s/prices/%d", ts.URL, created.ID), map[string]any{
		"cost": 500,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put: status %d, body %s", resp.StatusCode, raw)
	}

	var got catalog.Record
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Cost != 500 {
		t.Errorf("cost = %d, want 500", got.Cost)
	}
	if got.Name != created.Name {
		t.Errorf("name changed by cost-only patch: %q -> %q", created.Name, got.Name)
	}
}

func TestUpdateMissingIDIs404(t *testing.T) {
	ts, store := newPricesTS(t)
	defer ts.Close()

	resp, _ := doJSON(t, http.MethodPut, ts.URL+"/prices/12345", map[string]any{"cost": 1})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d, want 404", resp.StatusCode)
	}

	recs, err := store.List(t.Context(), 0, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("update of a missing id created records: %+v", recs)
	}
}

func TestDeleteThenGet(t *testing.T) {
	ts, _ := newPricesTS(t)
	defer ts.Close()

	created := createRecord(t, ts.URL, "Кран-букса 3/4", 810)
	url := fmt.Sprintf("%s/prices/%d", ts.URL, created.ID)

	resp, raw := doJSON(t, http.MethodDelete, url, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: status %d, body %s", resp.StatusCode, raw)
	}

	var ok map[string]bool
	if err := json.Unmarshal(raw, &ok); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !ok["ok"] {
		t.Errorf(`delete body = %s, want {"ok":true}`, raw)
	}

	resp, _ = doJSON(t, http.MethodGet, url, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: status %d, want 404", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodDelete, url, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: status %d, want 404", resp.StatusCode)
	}
}

// The create endpoint performs no name-uniqueness check. Two creates
// with the same name yield two records; only the ingest path guards
// against duplicates.
func TestCreateAllowsDuplicateNames(t *testing.T) {
	ts, store := newPricesTS(t)
	defer ts.Close()

	first := createRecord(t, ts.URL, "Кран-букса 1/2", 740)
	second := createRecord(t, ts.URL, "Кран-букса 1/2", 740)
	if first.ID == second.ID {
		t.Fatalf("duplicate create reused id %d", first.ID)
	}

	recs, err := store.List(t.Context(), 0, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("got %d records, want 2", len(recs))
	}
}

func TestListPaginationDoesNotOverlap(t *testing.T) {
	ts, _ := newPricesTS(t)
	defer ts.Close()

	for i := 0; i < 5; i++ {
		createRecord(t, ts.URL, fmt.Sprintf("item-%d", i), int64(100*i))
	}

	var page1, page2 []catalog.Record

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/prices?offset=0&limit=2", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("page 1: status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(raw, &page1); err != nil {
		t.Fatalf("unmarshal page 1: %v", err)
	}

	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/prices?offset=2&limit=2", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("page 2: status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(raw, &page2); err != nil {
		t.Fatalf("unmarshal page 2: %v", err)
	}

	if len(page1) != 2 || len(page2) != 2 {
		t.Fatalf("page sizes %d and %d, want 2 and 2", len(page1), len(page2))
	}

	seen := map[int64]bool{}
	for _, rec := range page1 {
		seen[rec.ID] = true
	}
	for _, rec := range page2 {
		if seen[rec.ID] {
			t.Errorf("id %d appears on both pages", rec.ID)
		}
	}
}

func TestListBadParamsRejected(t *testing.T) {
	ts, _ := newPricesTS(t)
	defer ts.Close()

	for _, q := range []string{"?offset=x", "?limit=-1", "?limit=abc"} {
		resp, _ := doJSON(t, http.MethodGet, ts.URL+"/prices"+q, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", q, resp.StatusCode)
		}
	}
}

func TestBadIDRejected(t *testing.T) {
	ts, _ := newPricesTS(t)
	defer ts.Close()

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/prices/notanumber", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
}

func TestHealthAndReady(t *testing.T) {
	ts, _ := newPricesTS(t)
	defer ts.Close()

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, _ := doJSON(t, http.MethodGet, ts.URL+path, nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: status %d, want 200", path, resp.StatusCode)
		}
	}
}

func newBrokenTS(t *testing.T) *httptest.Server {
	t.Helper()

	s := &catalog.Server{Store: brokenStore{}, Log: zap.NewNop()}
	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "pricewatch",
	})
	return httptest.NewServer(h)
}

func TestReadyzReflectsPingFailure(t *testing.T) {
	ts := newBrokenTS(t)
	defer ts.Close()

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/readyz", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("readyz: status %d, want 503", resp.StatusCode)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	if body.Error != "not ready" {
		t.Errorf(`error = %q, want "not ready"`, body.Error)
	}

	// healthz stays 200: it reports process liveness, not the store.
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz: status %d, want 200", resp.StatusCode)
	}
}

func TestStoreFailuresSurfaceAs500(t *testing.T) {
	ts := newBrokenTS(t)
	defer ts.Close()

	cases := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/prices", nil},
		{http.MethodGet, "/prices/1", nil},
		{http.MethodPost, "/prices/create", map[string]any{"name": "x", "cost": 1}},
		{http.MethodPut, "/prices/1", map[string]any{"cost": 1}},
		{http.MethodDelete, "/prices/1", nil},
	}

	for _, tc := range cases {
		resp, raw := doJSON(t, tc.method, ts.URL+tc.path, tc.body)
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("%s %s: status %d, want 500 (body %s)", tc.method, tc.path, resp.StatusCode, raw)
		}
	}
}
