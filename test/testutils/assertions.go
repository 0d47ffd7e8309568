package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planifia/planner/internal/domain/shopping"
	"github.com/planifia/planner/internal/ports/inbound"
)

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// StatusCode asserts the HTTP status code
func (ha *HTTPAssertions) StatusCode(rec *httptest.ResponseRecorder, expectedCode int, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, rec, "Response should not be nil")
	if len(msgAndArgs) == 0 {
		msgAndArgs = []interface{}{"body: %s", rec.Body.String()}
	}
	assert.Equal(ha.t, expectedCode, rec.Code, msgAndArgs...)
}

// Data decodes the success envelope and unmarshals its data into target
func (ha *HTTPAssertions) Data(rec *httptest.ResponseRecorder, target interface{}) {
	require.NotNil(ha.t, rec, "Response should not be nil")
	assert.True(ha.t, strings.Contains(rec.Header().Get("Content-Type"), "application/json"),
		"Response should have JSON content type, got: %s", rec.Header().Get("Content-Type"))

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(ha.t, json.Unmarshal(rec.Body.Bytes(), &envelope), "Response should be valid JSON")
	require.True(ha.t, envelope.Success, "body: %s", rec.Body.String())
	if target != nil {
		require.NoError(ha.t, json.Unmarshal(envelope.Data, target))
	}
}

// ErrorCode asserts the status and the code of an error envelope
func (ha *HTTPAssertions) ErrorCode(rec *httptest.ResponseRecorder, expectedStatus int, expectedCode string) {
	ha.StatusCode(rec, expectedStatus)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(ha.t, json.Unmarshal(rec.Body.Bytes(), &body), "Response should be valid JSON")
	assert.Equal(ha.t, expectedCode, body.Error.Code, "body: %s", rec.Body.String())
}

// SecurityHeaders asserts that security headers are present
func (ha *HTTPAssertions) SecurityHeaders(rec *httptest.ResponseRecorder) {
	for _, header := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy"} {
		assert.NotEmpty(ha.t, rec.Header().Get(header), "Security header %s should be present", header)
	}
}

// ShoppingAssertions checks shopping list views
type ShoppingAssertions struct {
	t *testing.T
}

// NewShoppingAssertions creates a new shopping assertions helper
func NewShoppingAssertions(t *testing.T) *ShoppingAssertions {
	return &ShoppingAssertions{t: t}
}

// FindGroup returns the group with the given display name and origin
func (sa *ShoppingAssertions) FindGroup(list *inbound.ShoppingListDTO, name string, manual bool) shopping.Group {
	require.NotNil(sa.t, list)
	for _, g := range list.Groups {
		if g.Name == name && g.Manual == manual {
			return g
		}
	}
	require.FailNow(sa.t, "group not found", "name=%q manual=%v groups=%v", name, manual, list.Groups)
	return shopping.Group{}
}

// GroupQuantity asserts the rendered quantity of an auto group
func (sa *ShoppingAssertions) GroupQuantity(list *inbound.ShoppingListDTO, name, expected string) {
	g := sa.FindGroup(list, name, false)
	assert.Equal(sa.t, expected, g.Quantity.String(), "quantity of %s", name)
}

// NoGroup asserts that no group carries the name
func (sa *ShoppingAssertions) NoGroup(list *inbound.ShoppingListDTO, name string) {
	require.NotNil(sa.t, list)
	for _, g := range list.Groups {
		assert.NotEqual(sa.t, name, g.Name, "unexpected group %s", name)
	}
}

// Counts asserts the purchased and total counters
func (sa *ShoppingAssertions) Counts(list *inbound.ShoppingListDTO, purchased, total int) {
	require.NotNil(sa.t, list)
	assert.Equal(sa.t, purchased, list.PurchasedCount, "purchased count")
	assert.Equal(sa.t, total, list.TotalCount, "total count")
}

// Do serves req through h and records the response
func Do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
