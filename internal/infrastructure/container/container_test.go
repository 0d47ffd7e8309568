package container

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/domain/shopping"
	"github.com/planifia/planner/internal/infrastructure/http/apiserver"
	"github.com/planifia/planner/internal/ports/inbound"
)

func TestEventDispatcher_Publish(t *testing.T) {
	d := NewEventDispatcher(zaptest.NewLogger(t))

	var seen []string
	d.Register("shopping.week.rolled_over", func(_ context.Context, e shared.DomainEvent) error {
		seen = append(seen, "first:"+e.EventName())
		return errors.New("boom")
	})
	d.Register("shopping.week.rolled_over", func(_ context.Context, e shared.DomainEvent) error {
		seen = append(seen, "second:"+e.EventName())
		return nil
	})

	err := d.Publish(context.Background(),
		shopping.WeekRolledOverEvent{UserID: "u1", WeekKey: "2024-06-03"},
		shopping.AutoItemCreatedEvent{UserID: "u1"},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"first:shopping.week.rolled_over", "second:shopping.week.rolled_over"}, seen)
}

func TestRegisterEventHandlers_AuditLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)
	d := NewEventDispatcher(log)
	RegisterEventHandlers(d, log)

	err := d.Publish(context.Background(),
		&shopping.SuppressionRegisteredEvent{UserID: "u1", WeekKey: "2024-06-03", Key: "patatas", Quantity: shared.Whole(1)},
		shopping.WeekRolledOverEvent{UserID: "u1", PreviousKey: "2024-05-27", WeekKey: "2024-06-03"},
	)
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("Suppression registered").Len())
	assert.Equal(t, 1, logs.FilterMessage("Shopping week rolled over").Len())
	assert.Zero(t, logs.FilterMessage("Failed to handle event").Len())
}

func TestModule_StartsWithSQLite(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PLANIFIA_DATABASE_PATH", filepath.Join(dir, "planifia.db"))
	t.Setenv("PLANIFIA_SERVER_PORT", strconv.Itoa(freePort(t)))
	t.Setenv("PLANIFIA_APP_SEED_DEMO", "true")
	t.Setenv("PLANIFIA_LOGGING_LEVEL", "error")

	var (
		server   *apiserver.Server
		meals    inbound.MealService
		sync     inbound.ReconciliationService
		database *Database
	)
	app := fxtest.New(t,
		fx.Supply(ConfigPath("")),
		Module,
		fx.Populate(&server, &meals, &sync, &database),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NoError(t, database.Ping(context.Background()))

	listed, err := meals.ListMeals(context.Background(), "demo")
	require.NoError(t, err)
	assert.NotEmpty(t, listed, "demo week is seeded")

	status, err := sync.Status(context.Background(), "demo", time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, status.CurrentWeekKey)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
