//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	repo "github.com/carlosarraes/payroll/internal/adapters/repository/postgres"
	"github.com/carlosarraes/payroll/internal/core/adjustment"
	"github.com/carlosarraes/payroll/internal/core/employee"
	"github.com/carlosarraes/payroll/internal/core/payroll"
	"github.com/carlosarraes/payroll/internal/platform/config"
	pg "github.com/carlosarraes/payroll/internal/platform/db/postgres"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const repoRoot = "../../../.."

func TestEmployeePersistenceIntegration(t *testing.T) {
	cfg, err := config.Load(configPathFromEnv())
	require.NoError(t, err, "failed to load config")
	if !cfg.Database.Enabled {
		t.Skip("database is disabled in config")
	}

	require.NoError(t, resetMigrations(cfg.Database.DSN(), filepath.Join(repoRoot, "assets", "migrations")), "failed to migrate database")

	ctx := context.Background()
	pool, err := pg.NewPool(ctx, cfg.Database)
	require.NoError(t, err, "failed to create pool")
	t.Cleanup(func() { pool.Close() })

	employeeRepo := repo.NewEmployeeRepository(pool)
	deps := payroll.Deps{
		Registry: employee.NewRegistry(),
		Policy:   adjustment.Performance,
		Repo:     employeeRepo,
		Clock:    &steppingClock{now: time.Now().UTC().Truncate(time.Microsecond)},
		Tx:       pg.NewTransactionManager(pool),
	}
	svc := payroll.NewService(deps)

	hired, err := svc.HireEmployee(ctx, payroll.HireEmployeeInput{
		Name:       "Integration",
		Phone:      "555-0100",
		Salary:     1000,
		Department: employee.DepartmentFinance,
		Role:       employee.RoleAnalyst,
	})
	require.NoError(t, err)

	contractor, err := svc.HireContractor(ctx, payroll.HireContractorInput{
		HireEmployeeInput: payroll.HireEmployeeInput{
			Name:       "Contractor",
			Salary:     2000,
			Department: employee.DepartmentOperations,
			Role:       employee.RoleDeveloper,
		},
		Company:       "Acme",
		PlannedMonths: 6,
	})
	require.NoError(t, err)

	_, err = svc.ApplyPolicy(ctx, payroll.ApplyPolicyInput{ID: hired.ID})
	require.NoError(t, err)

	found, err := employeeRepo.FindByID(ctx, hired.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1100, found.Salary, 1e-9)

	// 空の Registry をデータベースから再構築する。
	deps.Registry = employee.NewRegistry()
	reloaded := payroll.NewService(deps)
	loaded, err := reloaded.Hydrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded)

	list, err := reloaded.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, contractor.ID, list[1].ID)
	require.NotNil(t, list[1].Contract)
	assert.Equal(t, "Acme", list[1].Contract.Company)

	_, err = employeeRepo.FindByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func resetMigrations(dsn, dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	m, err := migrate.New("file://"+filepath.ToSlash(abs), dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func configPathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return filepath.Join(repoRoot, "assets", "local.yaml")
}

type steppingClock struct {
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}
