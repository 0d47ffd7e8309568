package apiserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	inventoryapp "github.com/planifia/planner/internal/application/inventory"
	mealapp "github.com/planifia/planner/internal/application/meal"
	"github.com/planifia/planner/internal/application/planning"
	shoppingapp "github.com/planifia/planner/internal/application/shopping"
	"github.com/planifia/planner/internal/domain/ingredient"
	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/infrastructure/config"
	"github.com/planifia/planner/internal/infrastructure/monitoring"
	"github.com/planifia/planner/internal/infrastructure/persistence/memory"
	"github.com/planifia/planner/internal/ports/inbound"
	"github.com/planifia/planner/test/testutils"
)

var now = time.Date(2024, 6, 5, 9, 30, 0, 0, time.UTC)

type ServerTestSuite struct {
	suite.Suite
	handler  http.Handler
	metrics  *monitoring.Metrics
	dbErr    error
	http     *testutils.HTTPAssertions
	shopping *testutils.ShoppingAssertions
}

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "Planifia", Version: "test"},
		Server: config.ServerConfig{Port: 8080},
		Monitoring: config.MonitoringConfig{
			EnableMetrics:   true,
			MetricsPath:     "/metrics",
			HealthCheckPath: "/health",
		},
	}
}

func (s *ServerTestSuite) SetupTest() {
	logger := zaptest.NewLogger(s.T())
	clock := shared.FixedClock(now)

	meals := memory.NewMealRepository()
	stock := memory.NewInventoryRepository()
	items := memory.NewShoppingItemRepository()
	resolver := ingredient.NewResolver(nil)

	s.metrics = monitoring.NewMetrics()
	engine := planning.NewEngine(meals, stock, items, memory.NewSyncStateRepository(),
		planning.NewRequirementAggregator(resolver, ingredient.NewWeightPolicy()),
		testutils.NewRecordingPublisher(), s.metrics, logger)

	services := Services{
		Meals:     mealapp.NewMealService(meals, resolver, engine, clock, logger),
		Inventory: inventoryapp.NewInventoryService(stock, engine, clock, logger),
		Shopping:  shoppingapp.NewShoppingService(items, memory.NewShoppingNotesRepository(), engine, clock, logger),
		Sync:      engine,
	}
	s.dbErr = nil
	checks := map[string]HealthChecker{
		"database": func(context.Context) error { return s.dbErr },
	}

	s.handler = NewServer(testConfig(), logger, services, s.metrics, checks, clock).Handler()
	s.http = testutils.NewHTTPAssertions(s.T())
	s.shopping = testutils.NewShoppingAssertions(s.T())
}

func (s *ServerTestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return testutils.Do(s.handler, req)
}

func (s *ServerTestSuite) list() *inbound.ShoppingListDTO {
	rec := s.do(http.MethodGet, "/api/v1/users/ana/shopping", "")
	s.http.StatusCode(rec, http.StatusOK)
	var list inbound.ShoppingListDTO
	s.http.Data(rec, &list)
	return &list
}

func (s *ServerTestSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health", "")
	s.http.StatusCode(rec, http.StatusOK)
	s.http.SecurityHeaders(rec)
	assert.Contains(s.T(), rec.Body.String(), `"database":"ok"`)

	s.dbErr = errors.New("connection refused")
	rec = s.do(http.MethodGet, "/health", "")
	s.http.StatusCode(rec, http.StatusServiceUnavailable)
	assert.Contains(s.T(), rec.Body.String(), "connection refused")
}

func (s *ServerTestSuite) TestScheduleMealFillsShoppingList() {
	rec := s.do(http.MethodPost, "/api/v1/users/ana/meals",
		`{"date":"2024-06-05","meal_type":"comida","dish_name":"Tortilla de patata"}`)
	s.http.StatusCode(rec, http.StatusCreated)

	var created inbound.MealDTO
	s.http.Data(rec, &created)
	assert.Equal(s.T(), "2024-06-05", created.Date)
	assert.NotEmpty(s.T(), created.ID)

	list := s.list()
	s.shopping.Counts(list, 0, 3)
	s.shopping.GroupQuantity(list, "Huevos", "5")

	rec = s.do(http.MethodPut, "/api/v1/users/ana/inventory", `{"name":"huevos","quantity":2}`)
	s.http.StatusCode(rec, http.StatusOK)
	s.shopping.GroupQuantity(s.list(), "Huevos", "3")

	rec = s.do(http.MethodDelete, "/api/v1/users/ana/meals/"+created.ID, "")
	s.http.StatusCode(rec, http.StatusNoContent)
	s.shopping.Counts(s.list(), 0, 0)
}

func (s *ServerTestSuite) TestScheduleMealValidation() {
	rec := s.do(http.MethodPost, "/api/v1/users/ana/meals",
		`{"date":"05/06/2024","meal_type":"Lunch","dish_name":"Sopa"}`)
	s.http.ErrorCode(rec, http.StatusBadRequest, "VALIDATION_FAILED")

	rec = s.do(http.MethodPost, "/api/v1/users/ana/meals",
		`{"date":"2024-06-05","meal_type":"Breakfast","dish_name":"Sopa"}`)
	s.http.ErrorCode(rec, http.StatusBadRequest, "VALIDATION_FAILED")

	rec = s.do(http.MethodPost, "/api/v1/users/ana/meals", `{"date":`)
	s.http.ErrorCode(rec, http.StatusBadRequest, "BAD_REQUEST")
}

func (s *ServerTestSuite) TestUpsertInventoryRequiresQuantity() {
	s.http.StatusCode(s.do(http.MethodPut, "/api/v1/users/ana/inventory", `{"name":"Huevos","quantity":3}`), http.StatusOK)

	rec := s.do(http.MethodPut, "/api/v1/users/ana/inventory", `{"name":"Huevos"}`)
	s.http.ErrorCode(rec, http.StatusBadRequest, "VALIDATION_FAILED")

	rec = s.do(http.MethodPut, "/api/v1/users/ana/inventory", `{"name":"Huevos","quantity":"0.3"}`)
	s.http.ErrorCode(rec, http.StatusBadRequest, "BAD_REQUEST")

	rec = s.do(http.MethodPut, "/api/v1/users/ana/inventory", `{"name":"Huevo","quantity":"1,5"}`)
	s.http.StatusCode(rec, http.StatusOK)

	rec = s.do(http.MethodGet, "/api/v1/users/ana/inventory", "")
	s.http.StatusCode(rec, http.StatusOK)
	var stock []inbound.InventoryItemDTO
	s.http.Data(rec, &stock)
	require.Len(s.T(), stock, 1)
	assert.Equal(s.T(), "Huevo", stock[0].IngredientName)
	assert.Equal(s.T(), "1.5", stock[0].Quantity.String())
}

func (s *ServerTestSuite) TestUnknownRoute() {
	s.http.ErrorCode(s.do(http.MethodGet, "/api/v1/users/ana/pantry", ""), http.StatusNotFound, "NOT_FOUND")
	s.http.ErrorCode(s.do(http.MethodGet, "/favicon.ico", ""), http.StatusNotFound, "NOT_FOUND")
}

func (s *ServerTestSuite) TestDeleteAutoGroupSuppresses() {
	s.http.StatusCode(s.do(http.MethodPost, "/api/v1/users/ana/meals",
		`{"date":"2024-06-05","meal_type":"Dinner","dish_name":"Tortilla de patata"}`), http.StatusCreated)

	potatoes := s.shopping.FindGroup(s.list(), "Patatas", false)
	body := `{"item_ids":["` + strings.Join(potatoes.ItemIDs, `","`) + `"]}`
	rec := s.do(http.MethodPost, "/api/v1/users/ana/shopping/groups/delete", body)
	s.http.StatusCode(rec, http.StatusOK)

	s.http.StatusCode(s.do(http.MethodPost, "/api/v1/users/ana/shopping/sync", ""), http.StatusOK)
	list := s.list()
	s.shopping.NoGroup(list, "Patatas")
	s.shopping.Counts(list, 0, 2)

	rec = s.do(http.MethodGet, "/api/v1/users/ana/shopping/sync", "")
	s.http.StatusCode(rec, http.StatusOK)
	var status inbound.SyncStatusDTO
	s.http.Data(rec, &status)
	assert.Equal(s.T(), "2024-06-03", status.WeekKey)
	assert.Equal(s.T(), "1", status.Consumed["patatas"].String())
}

func (s *ServerTestSuite) TestManualItemsAndNotes() {
	rec := s.do(http.MethodPost, "/api/v1/users/ana/shopping/items", `{"name":"Servilletas"}`)
	s.http.StatusCode(rec, http.StatusCreated)
	var item inbound.ShoppingItemDTO
	s.http.Data(rec, &item)

	rec = s.do(http.MethodPost, "/api/v1/users/ana/shopping/groups/toggle", `{"item_ids":["`+item.ID+`"]}`)
	s.http.StatusCode(rec, http.StatusOK)
	var toggled map[string]bool
	s.http.Data(rec, &toggled)
	assert.True(s.T(), toggled["purchased"])
	s.shopping.Counts(s.list(), 1, 1)

	rec = s.do(http.MethodPost, "/api/v1/users/ana/shopping/groups/toggle", `{"item_ids":[]}`)
	s.http.ErrorCode(rec, http.StatusBadRequest, "VALIDATION_FAILED")

	rec = s.do(http.MethodPut, "/api/v1/users/ana/shopping/notes", `{"notes":"comprar en el mercado"}`)
	s.http.StatusCode(rec, http.StatusOK)
	assert.Equal(s.T(), "comprar en el mercado", s.list().Notes)
}

func (s *ServerTestSuite) TestResolveDish() {
	rec := s.do(http.MethodGet, "/api/v1/dishes/resolve?name=Tortilla%20de%20patata", "")
	s.http.StatusCode(rec, http.StatusOK)
	var res inbound.ResolutionDTO
	s.http.Data(rec, &res)
	assert.Equal(s.T(), []string{"Huevos", "Patatas", "Cebolla"}, res.Ingredients)

	rec = s.do(http.MethodGet, "/api/v1/dishes/resolve", "")
	s.http.ErrorCode(rec, http.StatusBadRequest, "VALIDATION_FAILED")
}

func (s *ServerTestSuite) TestJSONOnlyAndMetrics() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/ana/shopping/items", strings.NewReader("name=pan"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := testutils.Do(s.handler, req)
	s.http.StatusCode(rec, http.StatusUnsupportedMediaType)

	rec = s.do(http.MethodGet, "/metrics", "")
	s.http.StatusCode(rec, http.StatusOK)
	assert.Contains(s.T(), rec.Body.String(), "http_requests_total")
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func TestNewServer_RoutesWithoutOptionalParts(t *testing.T) {
	cfg := testConfig()
	cfg.Monitoring.EnableMetrics = false

	srv := NewServer(cfg, zaptest.NewLogger(t), Services{}, nil, nil, shared.FixedClock(now))
	require.NotNil(t, srv.Handler())

	rec := testutils.Do(srv.Handler(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = testutils.Do(srv.Handler(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
