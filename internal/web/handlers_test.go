package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/itemlist/internal/config"
	"github.com/JonMunkholm/itemlist/internal/itemlist"
	"github.com/JonMunkholm/itemlist/internal/store"
)

type fakeSource struct {
	mu    sync.Mutex
	items []itemlist.Item
	err   error
}

func (f *fakeSource) ListItems(ctx context.Context) ([]itemlist.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items, f.err
}

func (f *fakeSource) Close() error { return nil }

func (f *fakeSource) set(items []itemlist.Item, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items, f.err = items, err
}

func item(id int, number, status string, service string) itemlist.Item {
	data := itemlist.ItemData{
		ID:        id,
		Number:    number,
		Summary:   "summary " + number,
		Status:    &itemlist.Named{Name: status},
		Author:    &itemlist.Named{Name: "alex"},
		CreatedOn: "2023-01-02T10:00:00Z",
		UpdatedOn: "2023-01-03T10:00:00Z",
	}
	if service != "" {
		data.Service = &itemlist.Named{Name: service}
	}
	return itemlist.NewItem(data)
}

func sampleItems() []itemlist.Item {
	return []itemlist.Item{
		item(1, "BUG-42", "Open", "Billing"),
		item(2, "FEAT-7", "Closed", ""),
		item(3, "BUG-9", "Open", "Auth"),
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, RequestTimeout: 5 * time.Second, ShutdownTimeout: time.Second},
		Source:   config.SourceConfig{Driver: config.DriverYAML, LoadTimeout: time.Second},
		Views:    config.ViewConfig{TTL: time.Minute, MaxViews: 10, CleanupInterval: time.Second},
		Display:  config.DisplayConfig{TimeZone: "UTC", CellWidth: 8},
		Rate:     config.RateLimitConfig{Enabled: false, RequestsPerMinute: 100},
		Security: config.SecurityConfig{EnableCSP: true},
		Logging:  config.LoggingConfig{Level: "error", Format: "text"},
	}
}

func newTestServer(t *testing.T, src *fakeSource) *Server {
	t.Helper()
	return NewServer(src, testConfig())
}

func do(s *Server, method, target string, form url.Values, headers map[string]string) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

var htmx = map[string]string{"HX-Request": "true"}

var (
	viewIDPattern = regexp.MustCompile(`data-width-url="/views/([^/"]+)/width"`)
	keyPattern    = regexp.MustCompile(`data-key="([^"]+)"`)
	columnPattern = regexp.MustCompile(`data-column="([^"]+)"`)
)

func openView(t *testing.T, s *Server, query string) string {
	t.Helper()
	rec := do(s, http.MethodGet, "/"+query, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	m := viewIDPattern.FindStringSubmatch(rec.Body.String())
	require.Len(t, m, 2, "page should embed the view id")
	return m[1]
}

func matches(re *regexp.Regexp, body string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(body, -1) {
		out = append(out, m[1])
	}
	return out
}

func TestHandlePage(t *testing.T) {
	s := newTestServer(t, &fakeSource{items: sampleItems()})

	rec := do(s, http.MethodGet, "/", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Type #")
	assert.Equal(t, []string{"BUG-42", "FEAT-7", "BUG-9"}, matches(keyPattern, body))
	assert.Len(t, matches(columnPattern, body), 8, "nothing is hidden before the first width report")
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")
	assert.Equal(t, 1, s.views.len())
}

func TestHandlePage_QuerySeedsView(t *testing.T) {
	s := newTestServer(t, &fakeSource{items: sampleItems()})

	rec := do(s, http.MethodGet, "/?sort=type:desc&width=500", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, []string{"FEAT-7", "BUG-42", "BUG-9"}, matches(keyPattern, body))
	assert.Equal(t, []string{"type", "summary", "isPrivate", "status"}, matches(columnPattern, body))
	assert.Contains(t, body, "↓")
}

func TestHandlePage_BadQueryCreatesNoView(t *testing.T) {
	tests := []struct {
		name  string
		query string
		code  string
	}{
		{"unknown sort column", "/?sort=priority", "VIEW002"},
		{"unparseable width", "/?width=wide", "VIEW003"},
		{"infinite width", "/?width=Inf", "VIEW003"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{items: sampleItems()}
			s := newTestServer(t, src)

			rec := do(s, http.MethodGet, tt.query, nil, map[string]string{"Accept": "application/json"})

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, 0, s.views.len())
		})
	}
}

func TestHandlePage_SourceUnavailable(t *testing.T) {
	s := newTestServer(t, &fakeSource{err: errors.New("dial tcp: connection refused")})

	rec := do(s, http.MethodGet, "/", nil, map[string]string{"Accept": "application/json"})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "SRC001", resp.Code)
	assert.Equal(t, 0, s.views.len())
}

func TestHandleSort_Cycle(t *testing.T) {
	s := newTestServer(t, &fakeSource{items: sampleItems()})
	id := openView(t, s, "")
	target := "/views/" + id + "/sort/type"

	rec := do(s, http.MethodPost, target, nil, htmx)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"BUG-9", "BUG-42", "FEAT-7"}, matches(keyPattern, rec.Body.String()))
	assert.Contains(t, rec.Body.String(), `aria-sort="ascending"`)
	assert.NotContains(t, rec.Body.String(), "<html", "sort returns a partial")

	rec = do(s, http.MethodPost, target, nil, htmx)
	assert.Equal(t, []string{"FEAT-7", "BUG-42", "BUG-9"}, matches(keyPattern, rec.Body.String()))
	assert.Contains(t, rec.Body.String(), "↓")

	rec = do(s, http.MethodPost, target, nil, htmx)
	assert.Equal(t, []string{"BUG-42", "FEAT-7", "BUG-9"}, matches(keyPattern, rec.Body.String()))
	assert.NotContains(t, rec.Body.String(), "sort-indicator")
}

func TestHandleSort_UnknownColumn(t *testing.T) {
	s := newTestServer(t, &fakeSource{items: sampleItems()})
	id := openView(t, s, "")

	rec := do(s, http.MethodPost, "/views/"+id+"/sort/nope", nil, htmx)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VIEW002")
	assert.Equal(t, "#alerts", rec.Header().Get("HX-Retarget"))
}

func TestHandleWidth(t *testing.T) {
	s := newTestServer(t, &fakeSource{items: sampleItems()})
	id := openView(t, s, "")
	target := "/views/" + id + "/width"

	rec := do(s, http.MethodPost, target, url.Values{"width": {"900"}}, htmx)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, matches(columnPattern, rec.Body.String()), "createdOn")

	rec = do(s, http.MethodPost, target, url.Values{"width": {"700"}}, htmx)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"type", "summary", "isPrivate", "status", "author"}, matches(columnPattern, rec.Body.String()))

	rec = do(s, http.MethodPost, target, url.Values{"width": {"650"}}, htmx)
	assert.Equal(t, http.StatusNoContent, rec.Code, "unchanged hidden set needs no swap")
	assert.Empty(t, rec.Body.String())
}

func TestHandleWidth_Invalid(t *testing.T) {
	s := newTestServer(t, &fakeSource{items: sampleItems()})
	id := openView(t, s, "")

	for _, raw := range []string{"", "wide", "NaN", "+Inf"} {
		rec := do(s, http.MethodPost, "/views/"+id+"/width", url.Values{"width": {raw}}, htmx)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "width %q", raw)
		assert.Contains(t, rec.Body.String(), "VIEW003", "width %q", raw)
	}
}

func TestHandleSelect(t *testing.T) {
	s := newTestServer(t, &fakeSource{items: sampleItems()})
	id := openView(t, s, "")

	rec := do(s, http.MethodPost, "/views/"+id+"/rows/1/select", nil, htmx)

	require.Equal(t, http.StatusNoContent, rec.Code)
	var trigger map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &trigger))
	assert.Equal(t, "BUG-42", trigger["item-selected"]["identifier"])

	rec = do(s, http.MethodGet, "/views/"+id+"/table", nil, htmx)
	assert.Contains(t, rec.Body.String(), `class="itemlist-row selected" data-key="BUG-42"`)
}

func TestHandleSelect_JSON(t *testing.T) {
	s := newTestServer(t, &fakeSource{items: sampleItems()})
	id := openView(t, s, "")

	rec := do(s, http.MethodPost, "/views/"+id+"/rows/3/select", nil, map[string]string{"Accept": "application/json"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"identifier":"BUG-9"}`, rec.Body.String())
}

func TestHandleSelect_MissingRow(t *testing.T) {
	s := newTestServer(t, &fakeSource{items: sampleItems()})
	id := openView(t, s, "")

	for _, rowID := range []string{"99", "abc"} {
		rec := do(s, http.MethodPost, "/views/"+id+"/rows/"+rowID+"/select", nil, htmx)
		assert.Equal(t, http.StatusNotFound, rec.Code, "row %s", rowID)
		assert.Contains(t, rec.Body.String(), "ROW001", "row %s", rowID)
	}
}

func TestUnknownView(t *testing.T) {
	s := newTestServer(t, &fakeSource{items: sampleItems()})

	rec := do(s, http.MethodGet, "/views/does-not-exist/table", nil, htmx)

	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, "#alerts", rec.Header().Get("HX-Retarget"))
	assert.Equal(t, "innerHTML", rec.Header().Get("HX-Reswap"))
	assert.Contains(t, rec.Body.String(), "VIEW001")
	assert.Contains(t, rec.Body.String(), "Reload the page")
}

func TestErrorAlertsAreSwapped(t *testing.T) {
	s := newTestServer(t, &fakeSource{})

	rec := do(s, http.MethodGet, "/static/itemlist.js", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"htmx:beforeSwap"`)
	assert.Contains(t, body, `getResponseHeader("HX-Retarget") === "#alerts"`)
	assert.Contains(t, body, "shouldSwap = true")
}

func TestHandleRefresh_KeepsSort(t *testing.T) {
	src := &fakeSource{items: sampleItems()}
	s := newTestServer(t, src)
	id := openView(t, s, "")
	do(s, http.MethodPost, "/views/"+id+"/sort/type", nil, htmx)

	src.set(append(sampleItems(), item(4, "BUG-1", "Open", "")), nil)
	rec := do(s, http.MethodPost, "/views/"+id+"/refresh", nil, htmx)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"BUG-1", "BUG-9", "BUG-42", "FEAT-7"}, matches(keyPattern, rec.Body.String()))

	src.set(nil, errors.New("context deadline exceeded"))
	rec = do(s, http.MethodPost, "/views/"+id+"/refresh", nil, htmx)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "SRC001")
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, &fakeSource{items: sampleItems()})
	id := openView(t, s, "")
	do(s, http.MethodPost, "/views/"+id+"/sort/status", nil, htmx)

	rec := do(s, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","views":1}`, rec.Body.String())

	rec = do(s, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `itemlist_table_sort_toggles_total{column="status",direction="asc"} 1`)
	assert.Contains(t, body, "itemlist_http_requests_total")
	assert.Contains(t, body, "itemlist_views_live 1")
}

func TestHealth_LimitedSource(t *testing.T) {
	s := NewServer(store.NewLimited(&fakeSource{items: sampleItems()}, 4, time.Second), testConfig())
	openView(t, s, "")

	rec := do(s, http.MethodGet, "/healthz", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","views":1,"loads":{"active":0,"max_concurrent":4}}`, rec.Body.String())
}

func TestBusySource(t *testing.T) {
	src := &fakeSource{items: sampleItems()}
	s := newTestServer(t, src)
	id := openView(t, s, "")

	src.set(nil, store.ErrTooManyLoads)
	rec := do(s, http.MethodPost, "/views/"+id+"/refresh", nil, htmx)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "SRC002")
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	s := NewServer(&fakeSource{items: sampleItems()}, cfg)

	for i := 0; i < 2; i++ {
		rec := do(s, http.MethodGet, "/healthz", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(s, http.MethodGet, "/healthz", nil, map[string]string{"Accept": "application/json"})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE001")
}

func TestStaticAssets(t *testing.T) {
	s := newTestServer(t, &fakeSource{})

	rec := do(s, http.MethodGet, "/static/itemlist.js", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ResizeObserver")
}
