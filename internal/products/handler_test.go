package products

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/ropeartlab/ropeartlab/internal/store/localstore"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := localstore.Open("")
	if err != nil {
		t.Fatalf("failed to open local store: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(NewService(st, nil, logger), logger)

	mux := http.NewServeMux()
	handler.Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Error   string          `json:"error"`
}

func doJSON(t *testing.T, method, url, body string) (int, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode, env
}

func TestHandler_TrashListing(t *testing.T) {
	server := newTestServer(t)

	status, env := doJSON(t, http.MethodPost, server.URL+"/api/products", `{
		"name": "Macrame Wall Hanging",
		"price": "130.00"
	}`)
	if status != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", status, env.Error)
	}
	var product struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &product); err != nil {
		t.Fatalf("failed to decode product: %v", err)
	}

	status, _ = doJSON(t, http.MethodDelete, server.URL+"/api/products/"+strconv.FormatInt(product.ID, 10), "")
	if status != http.StatusOK {
		t.Fatalf("trash: expected 200, got %d", status)
	}

	status, env = doJSON(t, http.MethodGet, server.URL+"/api/products/admin/trash", "")
	if status != http.StatusOK {
		t.Fatalf("trash listing: expected 200, got %d", status)
	}
	if env.Count == nil || *env.Count != 1 {
		t.Errorf("expected 1 trashed product, got %v", env.Count)
	}

	// The pre-move path serves the same listing.
	status, env = doJSON(t, http.MethodGet, server.URL+"/api/products/trash", "")
	if status != http.StatusOK || env.Count == nil || *env.Count != 1 {
		t.Errorf("alias path: expected 200 with 1 product, got %d %v", status, env.Count)
	}

	status, _ = doJSON(t, http.MethodGet, server.URL+"/api/products", "")
	if status != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", status)
	}
}
