// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package statsapi

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/stat-grid/models"
	"github.com/danielhkuo/stat-grid/testutil"
)

func TestNewClientValidatesBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"local default", DefaultBaseURL, false},
		{"trailing slash", "http://localhost:5001/", false},
		{"https", "https://stats.example.com", false},
		{"no scheme", "localhost:5001", true},
		{"ftp", "ftp://example.com", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.baseURL, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBaseURL)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestListURL(t *testing.T) {
	c, err := NewClient("http://localhost:5001/", nil)
	require.NoError(t, err)

	got := c.ListURL(models.PageRequest{Page: 3, PageSize: "25"})
	assert.Equal(t, "http://localhost:5001/covid-stats/state-stats?page=3&page_size=25", got)
}

func TestPatchURLEscapesSegments(t *testing.T) {
	c, err := NewClient("http://localhost:5001", nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5001/covid-stats/state-stats/NY/2020-03-01", c.PatchURL("NY", "2020-03-01"))
	assert.Equal(t, "http://localhost:5001/covid-stats/state-stats/New%20York/2020%2F03", c.PatchURL("New York", "2020/03"))
}

func TestListStateStats(t *testing.T) {
	api := testutil.NewFakeStatsAPI(t, func(page, pageSize string) (int, string) {
		return http.StatusOK, testutil.RecordsJSON(
			`{"date":"2020-03-01","state":"NY","death":10,"recovered":null}`,
			`{"date":"2020-03-01","state":"CA","death":3,"recovered":7}`,
		)
	})
	c, err := NewClient(api.URL(), nil)
	require.NoError(t, err)

	records, err := c.ListStateStats(context.Background(), models.PageRequest{Page: 2, PageSize: "50"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"date", "state", "death", "recovered"}, records[0].Keys())
	assert.Equal(t, "CA", records[1].Text("state"))
	assert.Equal(t, []testutil.ListCall{{Page: "2", PageSize: "50"}}, api.Lists())
}

func TestListStateStatsSendsPageSizeVerbatim(t *testing.T) {
	api := testutil.NewFakeStatsAPI(t, nil)
	c, err := NewClient(api.URL(), nil)
	require.NoError(t, err)

	_, err = c.ListStateStats(context.Background(), models.PageRequest{Page: 0, PageSize: "1 0"})
	require.NoError(t, err)
	assert.Equal(t, []testutil.ListCall{{Page: "0", PageSize: "1 0"}}, api.Lists())
}

func TestListStateStatsEmptyAndNull(t *testing.T) {
	for _, body := range []string{"[]", "null"} {
		api := testutil.NewFakeStatsAPI(t, func(string, string) (int, string) { return http.StatusOK, body })
		c, err := NewClient(api.URL(), nil)
		require.NoError(t, err)

		records, err := c.ListStateStats(context.Background(), models.PageRequest{PageSize: "100"})
		require.NoError(t, err, body)
		assert.NotNil(t, records, body)
		assert.Empty(t, records, body)
	}
}

func TestListStateStatsErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		is     error
	}{
		{"server error", http.StatusInternalServerError, "boom", ErrUnexpectedStatus},
		{"not found", http.StatusNotFound, "", ErrUnexpectedStatus},
		{"malformed json", http.StatusOK, "[{", nil},
		{"object not array", http.StatusOK, `{"state":"NY"}`, nil},
		{"array of scalars", http.StatusOK, `[1,2]`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := testutil.NewFakeStatsAPI(t, func(string, string) (int, string) { return tt.status, tt.body })
			c, err := NewClient(api.URL(), nil)
			require.NoError(t, err)

			_, err = c.ListStateStats(context.Background(), models.PageRequest{PageSize: "100"})
			require.Error(t, err)
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is), "got %v", err)
			}
		})
	}
}

func TestListStateStatsHonoursContext(t *testing.T) {
	api := testutil.NewFakeStatsAPI(t, nil)
	api.SetListDelay("0", time.Second)
	c, err := NewClient(api.URL(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = c.ListStateStats(ctx, models.PageRequest{PageSize: "100"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPatchStateStat(t *testing.T) {
	api := testutil.NewFakeStatsAPI(t, nil)
	c, err := NewClient(api.URL(), nil)
	require.NoError(t, err)

	err = c.PatchStateStat(context.Background(), models.PatchRequest{
		State: "NY", Date: "2020-03-01", Field: "death", Value: "15",
	})
	require.NoError(t, err)

	patches := api.Patches()
	require.Len(t, patches, 1)
	assert.Equal(t, "NY", patches[0].State)
	assert.Equal(t, "2020-03-01", patches[0].Date)
	assert.Equal(t, map[string]string{"death": "15"}, patches[0].Body)
	assert.Equal(t, "application/json", patches[0].ContentType)
	assert.Equal(t, "application/json", patches[0].Accept)
}

func TestPatchStateStatStatusError(t *testing.T) {
	api := testutil.NewFakeStatsAPI(t, nil)
	api.SetPatchStatus(http.StatusUnprocessableEntity)
	c, err := NewClient(api.URL(), nil)
	require.NoError(t, err)

	err = c.PatchStateStat(context.Background(), models.PatchRequest{State: "NY", Date: "d", Field: "death", Value: "x"})
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}
