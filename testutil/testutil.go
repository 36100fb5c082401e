// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/stat-grid/cliparse"
)

// ListCall is one read observed by the fake stats service.
type ListCall struct {
	Page     string
	PageSize string
}

// PatchCall is one update observed by the fake stats service.
type PatchCall struct {
	State       string
	Date        string
	Body        map[string]string
	ContentType string
	Accept      string
}

// ListResponder decides what a read returns. Returning a status other than
// 200 makes the fake reply with that status and the body as-is.
type ListResponder func(page, pageSize string) (status int, body string)

// FakeStatsAPI is an httptest server implementing the two stats endpoints and
// recording every call it receives.
type FakeStatsAPI struct {
	Server *httptest.Server

	mu        sync.Mutex
	lists     []ListCall
	patches   []PatchCall
	respond   ListResponder
	delays    map[string]time.Duration
	patchCode int
}

// NewFakeStatsAPI starts a fake stats service. It is closed on test cleanup.
func NewFakeStatsAPI(t *testing.T, respond ListResponder) *FakeStatsAPI {
	t.Helper()

	if respond == nil {
		respond = func(page, pageSize string) (int, string) { return http.StatusOK, "[]" }
	}
	f := &FakeStatsAPI{respond: respond, delays: map[string]time.Duration{}, patchCode: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /covid-stats/state-stats", f.handleList)
	mux.HandleFunc("PATCH /covid-stats/state-stats/{state}/{date}", f.handlePatch)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)

	return f
}

// URL is the base URL to hand to statsapi.NewClient.
func (f *FakeStatsAPI) URL() string { return f.Server.URL }

// SetListDelay makes reads of the given page wait before answering.
func (f *FakeStatsAPI) SetListDelay(page string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays[page] = d
}

// SetPatchStatus changes the status returned by updates.
func (f *FakeStatsAPI) SetPatchStatus(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patchCode = code
}

// Lists returns a copy of the reads seen so far.
func (f *FakeStatsAPI) Lists() []ListCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ListCall(nil), f.lists...)
}

// Patches returns a copy of the updates seen so far.
func (f *FakeStatsAPI) Patches() []PatchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PatchCall(nil), f.patches...)
}

func (f *FakeStatsAPI) handleList(w http.ResponseWriter, r *http.Request) {
	page := r.URL.Query().Get("page")
	pageSize := r.URL.Query().Get("page_size")

	f.mu.Lock()
	f.lists = append(f.lists, ListCall{Page: page, PageSize: pageSize})
	delay := f.delays[page]
	respond := f.respond
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	status, body := respond(page, pageSize)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func (f *FakeStatsAPI) handlePatch(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.patches = append(f.patches, PatchCall{
		State:       r.PathValue("state"),
		Date:        r.PathValue("date"),
		Body:        body,
		ContentType: r.Header.Get("Content-Type"),
		Accept:      r.Header.Get("Accept"),
	})
	code := f.patchCode
	f.mu.Unlock()

	w.WriteHeader(code)
}

// Eventually polls cond until it holds or the timeout passes.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}

// RecordsJSON builds a JSON array from raw object literals, keeping their key order.
func RecordsJSON(objects ...string) string {
	return "[" + strings.Join(objects, ",") + "]"
}

// GetTestConfig returns a standard test configuration pointing at baseURL
func GetTestConfig(baseURL string) cliparse.Config {
	return cliparse.Config{
		Port:          3000,
		APIBaseURL:    baseURL,
		PageSize:      "100",
		EditMode:      cliparse.EditModeLive,
		RenderWait:    2 * time.Second,
		SessionSecret: "test-session-secret",
		SessionLimit:  16,
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeFormRequest creates an HTTP test request with a form-encoded body, the
// way htmx submits inputs
func MakeFormRequest(method, path string, form map[string]string) *http.Request {
	values := url.Values{}
	for k, v := range form {
		values.Set(k, v)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
