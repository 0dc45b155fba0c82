package integrationtests

import (
	"fmt"
	"os"
	"testing"
	"time"

	"medibook/test/integration/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a live catalog service. Point TEST_SERVER_URL at it, e.g.
// TEST_SERVER_URL=http://localhost:8081 go test ./test/integration/catalog/
func newSuite(t *testing.T) *testutil.Client {
	t.Helper()

	serverURL := os.Getenv("TEST_SERVER_URL")
	if serverURL == "" {
		t.Skip("TEST_SERVER_URL not set, skipping integration tests")
	}

	c := testutil.NewClient(serverURL)
	c.WaitForHealthy(t, 30*time.Second)
	return c
}

func providerBody() map[string]any {
	return map[string]any{
		"name":      "Dr. Meera Iyer",
		"specialty": "Cardiology",
		"degree":    "MD",
		"fee":       700,
		"windows": []map[string]any{
			{"day": "Monday", "start_time": "09:00", "end_time": "13:00", "slot_duration_min": 30},
		},
	}
}

func createProvider(t *testing.T, c *testutil.Client) string {
	t.Helper()

	resp := c.POST(t, "/api/v1/providers", providerBody())
	require.Equal(t, 201, resp.StatusCode, string(resp.Body))

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, resp.DecodeJSON(&created))
	require.NotEmpty(t, created.Data.ID)
	return created.Data.ID
}

func TestProviderSlots(t *testing.T) {
	c := newSuite(t)
	id := createProvider(t, c)

	// 2026-06-01 is a Monday.
	resp := c.GET(t, fmt.Sprintf("/api/v1/providers/id/%s/slots?date=2026-06-01", id))
	require.Equal(t, 200, resp.StatusCode, string(resp.Body))

	var result struct {
		Data struct {
			Slots []string `json:"slots"`
		} `json:"data"`
	}
	require.NoError(t, resp.DecodeJSON(&result))
	assert.Equal(t,
		[]string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00", "12:30"},
		result.Data.Slots,
	)

	// Off day yields an empty list, not an error.
	resp = c.GET(t, fmt.Sprintf("/api/v1/providers/id/%s/slots?date=2026-06-02", id))
	require.Equal(t, 200, resp.StatusCode, string(resp.Body))
	require.NoError(t, resp.DecodeJSON(&result))
	assert.Empty(t, result.Data.Slots)
}

func TestProviderRejectsOverlappingWindows(t *testing.T) {
	c := newSuite(t)

	body := providerBody()
	body["windows"] = []map[string]any{
		{"day": "Monday", "start_time": "09:00", "end_time": "13:00", "slot_duration_min": 30},
		{"day": "Monday", "start_time": "12:00", "end_time": "15:00", "slot_duration_min": 30},
	}

	resp := c.POST(t, "/api/v1/providers", body)
	assert.Equal(t, 422, resp.StatusCode, string(resp.Body))
}

func TestTestItemCRUD(t *testing.T) {
	c := newSuite(t)

	resp := c.POST(t, "/api/v1/tests", map[string]any{
		"name":     "Lipid Panel",
		"category": "Blood",
		"price":    450,
	})
	require.Equal(t, 201, resp.StatusCode, string(resp.Body))

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, resp.DecodeJSON(&created))

	resp = c.PATCH(t, "/api/v1/tests/id/"+created.Data.ID, map[string]any{"price": 500})
	require.Equal(t, 200, resp.StatusCode, string(resp.Body))

	resp = c.DELETE(t, "/api/v1/tests/id/"+created.Data.ID)
	require.Equal(t, 204, resp.StatusCode)

	resp = c.GET(t, "/api/v1/tests/id/"+created.Data.ID)
	assert.Equal(t, 404, resp.StatusCode)
}
