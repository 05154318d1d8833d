package rest

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allocd/allocd/handlers"
)

func testContext(t *testing.T, body string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	return c
}

func TestBindsJSONBody(t *testing.T) {
	c := testContext(t, `{"orderid": "order-001", "sku": "RETRO-CLOCK", "qty": 10}`)

	var cmd handlers.Allocate
	require.NoError(t, Bind(c, &cmd))

	assert.Equal(t, "order-001", cmd.OrderID)
	assert.Equal(t, "RETRO-CLOCK", cmd.SKU)
	assert.Equal(t, 10, cmd.Qty)
}

func TestBindsWeaklyTypedValues(t *testing.T) {
	c := testContext(t, `{"orderid": "order-001", "sku": "RETRO-CLOCK", "qty": "10"}`)

	var cmd handlers.Allocate
	require.NoError(t, Bind(c, &cmd))
	assert.Equal(t, 10, cmd.Qty)
}

func TestBindsRFC3339Times(t *testing.T) {
	c := testContext(t, `{"ref": "batch-001", "sku": "RETRO-CLOCK", "qty": 100, "eta": "2026-09-15T00:00:00Z"}`)

	var cmd handlers.CreateBatch
	require.NoError(t, Bind(c, &cmd))

	require.NotNil(t, cmd.ETA)
	assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), cmd.ETA.UTC())
}

func TestBindsURIParams(t *testing.T) {
	c := testContext(t, "")
	c.Params = gin.Params{{Key: "sku", Value: "RETRO-CLOCK"}}

	var cmd handlers.Allocate
	require.NoError(t, Bind(c, &cmd))
	assert.Equal(t, "RETRO-CLOCK", cmd.SKU)
}

func TestRejectsInvalidJSON(t *testing.T) {
	c := testContext(t, `{"orderid": `)

	var cmd handlers.Allocate
	assert.EqualError(t, Bind(c, &cmd), "invalid JSON body")
}

func TestRejectsNonPointerTarget(t *testing.T) {
	c := testContext(t, "")

	assert.Error(t, Bind(c, handlers.Allocate{}))
}
