//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/planifia/planner/internal/application/planning"
	"github.com/planifia/planner/internal/domain/ingredient"
	"github.com/planifia/planner/internal/domain/meal"
	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/domain/shopping"
	gormRepo "github.com/planifia/planner/internal/infrastructure/persistence/gorm"
	"github.com/planifia/planner/internal/infrastructure/persistence/migrations"
	"github.com/planifia/planner/internal/infrastructure/persistence/postgres"
	"github.com/planifia/planner/test/testutils"
)

// PostgresIntegrationTestSuite runs the GORM repositories against a real
// postgres whose schema comes from the SQL migrations
type PostgresIntegrationTestSuite struct {
	suite.Suite
	ctx    context.Context
	testDB *testutils.TestDatabase
	cm     *postgres.ConnectionManager
}

func (s *PostgresIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.testDB = testutils.SetupTestDatabase(s.T())
	log := zaptest.NewLogger(s.T())

	m, err := migrations.Open(s.ctx, s.testDB.URL, s.testDB.Config.Database.Database, log)
	require.NoError(s.T(), err)
	require.NoError(s.T(), m.Up())
	version, dirty, err := m.Version()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), uint(1), version)
	assert.False(s.T(), dirty)
	require.NoError(s.T(), m.Close())

	s.cm, err = postgres.NewConnectionManager(s.testDB.Config, log)
	require.NoError(s.T(), err)
}

func (s *PostgresIntegrationTestSuite) TearDownSuite() {
	if s.cm != nil {
		_ = s.cm.Close()
	}
}

func (s *PostgresIntegrationTestSuite) TestHealthCheck() {
	require.NoError(s.T(), s.cm.HealthCheck(s.ctx))
}

func (s *PostgresIntegrationTestSuite) TestSyncStateRoundTrip() {
	states := gormRepo.NewSyncStateRepository(s.cm.GetDB())

	state := shopping.NewSyncState("2024-06-03")
	state.Consumed["patatas"] = shared.Quarters(6)
	state.Consumed["sal"] = shared.Unlimited()
	_, err := states.Update(s.ctx, "pg-state", state)
	require.NoError(s.T(), err)

	stored, err := states.Get(s.ctx, "pg-state")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), stored)
	assert.Equal(s.T(), "2024-06-03", stored.WeekKey)
	assert.Equal(s.T(), "1.5", stored.Consumed["patatas"].String())
	assert.True(s.T(), stored.Consumed["sal"].IsUnlimited())
}

func (s *PostgresIntegrationTestSuite) TestEngineFullResync() {
	db := s.cm.GetDB()
	const userID = "pg-engine"
	now := time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)

	meals := gormRepo.NewMealRepository(db)
	m, err := meal.New(userID, now, meal.Lunch, "Tortilla de patata")
	require.NoError(s.T(), err)
	require.NoError(s.T(), meals.Create(s.ctx, m))

	items := gormRepo.NewShoppingItemRepository(db)
	engine := planning.NewEngine(meals,
		gormRepo.NewInventoryRepository(db),
		items,
		gormRepo.NewSyncStateRepository(db),
		planning.NewRequirementAggregator(ingredient.NewResolver(nil), ingredient.NewWeightPolicy()),
		nil, nil, zaptest.NewLogger(s.T()),
	)

	report, err := engine.FullResync(s.ctx, userID, now)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 3, report.Created)

	list, err := items.List(s.ctx, userID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), list, 3)

	again, err := engine.IncrementalResync(s.ctx, userID, now)
	require.NoError(s.T(), err)
	assert.False(s.T(), again.Changed())
}

func TestPostgresIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationTestSuite))
}
