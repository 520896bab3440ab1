package postgres

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/carlosarraes/payroll/internal/core/employee"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var employeeColumnNames = []string{"id", "name", "phones", "address", "salary", "department", "role", "kind", "contract_company", "contract_months", "created_at", "updated_at"}

type stubEmployeeRow struct {
	scanFn func(dest ...interface{}) error
}

func (s stubEmployeeRow) Scan(dest ...interface{}) error {
	return s.scanFn(dest...)
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestScanEmployee_Contracted(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2025, 1, 1, 9, 0, 0, 0, time.FixedZone("BRT", -3*60*60))
	updatedAt := createdAt.Add(time.Hour)

	row := stubEmployeeRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 12 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "emp-1"
		*(dest[1].(*string)) = "Bruno"
		*(dest[2].(*[]string)) = []string{"111", "222"}
		*(dest[3].(*string)) = "Rua B, 2"
		*(dest[4].(*float64)) = 5000
		*(dest[5].(*string)) = string(employee.DepartmentSales)
		*(dest[6].(*string)) = string(employee.RoleManager)
		*(dest[7].(*string)) = string(employee.KindContracted)

		companyDest := dest[8].(*sql.NullString)
		companyDest.String = "Acme"
		companyDest.Valid = true

		monthsDest := dest[9].(*sql.NullInt32)
		monthsDest.Int32 = 12
		monthsDest.Valid = true

		*(dest[10].(*time.Time)) = createdAt
		*(dest[11].(*time.Time)) = updatedAt
		return nil
	}}

	emp, err := scanEmployee(row)
	require.NoError(t, err)

	assert.True(t, emp.IsContracted())
	require.NotNil(t, emp.Contract)
	assert.Equal(t, employee.Contract{Company: "Acme", PlannedMonths: 12}, *emp.Contract)
	assert.Equal(t, []string{"111", "222"}, emp.Phones)
	assert.Equal(t, time.UTC, emp.CreatedAt.Location())
	assert.True(t, emp.CreatedAt.Equal(createdAt))
}

func TestScanEmployee_NoRows(t *testing.T) {
	t.Parallel()

	row := stubEmployeeRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	_, err := scanEmployee(row)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestTranslateEmployeePgError(t *testing.T) {
	t.Parallel()

	uniqueErr := &pgconn.PgError{Code: employeeUniqueViolationCode}
	assert.ErrorIs(t, translateEmployeePgError(uniqueErr), employee.ErrEmployeeAlreadyExists)

	salaryErr := &pgconn.PgError{Code: employeeCheckViolationCode, ConstraintName: employeeSalaryCheck}
	assert.ErrorIs(t, translateEmployeePgError(salaryErr), employee.ErrInvalidSalary)

	contractErr := &pgconn.PgError{Code: employeeCheckViolationCode, ConstraintName: employeeContractCheck}
	assert.ErrorIs(t, translateEmployeePgError(contractErr), employee.ErrInvalidKind)

	otherCheck := &pgconn.PgError{Code: employeeCheckViolationCode, ConstraintName: "other"}
	assert.Same(t, otherCheck, translateEmployeePgError(otherCheck))

	other := errors.New("other")
	assert.Equal(t, other, translateEmployeePgError(other))

	assert.NoError(t, translateEmployeePgError(nil))
}

func TestEmployeeRepository_Create(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)

	repo := NewEmployeeRepository(mock)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	emp := &employee.Employee{
		ID:         "emp-1",
		Name:       "Bruno",
		Phones:     []string{"111"},
		Address:    "Rua B, 2",
		Salary:     5000,
		Department: employee.DepartmentSales,
		Role:       employee.RoleManager,
		Kind:       employee.KindContracted,
		Contract:   &employee.Contract{Company: "Acme", PlannedMonths: 6},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	rows := pgxmock.NewRows(employeeColumnNames).
		AddRow("emp-1", "Bruno", []string{"111"}, "Rua B, 2", 5000.0, "sales", "manager", "contracted", "Acme", int32(6), now, now)

	mock.ExpectQuery(`INSERT INTO employees`).
		WithArgs("emp-1", "Bruno", []string{"111"}, "Rua B, 2", 5000.0, "sales", "manager", "contracted", "Acme", int32(6), now, now).
		WillReturnRows(rows)

	created, err := repo.Create(context.Background(), emp)
	require.NoError(t, err)
	require.NotNil(t, created.Contract)
	assert.Equal(t, 6, created.Contract.PlannedMonths)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepository_RejectsPlannedMonthsBeyondInt32(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewEmployeeRepository(mock)

	emp := &employee.Employee{
		ID:       "emp-1",
		Kind:     employee.KindContracted,
		Contract: &employee.Contract{Company: "Acme", PlannedMonths: math.MaxInt32 + 1},
	}

	_, err := repo.Create(context.Background(), emp)
	assert.ErrorIs(t, err, employee.ErrInvalidPlannedMonths)

	_, err = repo.Update(context.Background(), emp)
	assert.ErrorIs(t, err, employee.ErrInvalidPlannedMonths)

	assert.NoError(t, mock.ExpectationsWereMet(), "no query may reach the database")
}

func TestEmployeeRepository_Create_Duplicate(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)

	repo := NewEmployeeRepository(mock)
	mock.ExpectQuery(`INSERT INTO employees`).
		WillReturnError(&pgconn.PgError{Code: employeeUniqueViolationCode})

	_, err := repo.Create(context.Background(), &employee.Employee{ID: "emp-1", Kind: employee.KindStandard})
	assert.ErrorIs(t, err, employee.ErrEmployeeAlreadyExists)
}

func TestEmployeeRepository_Update(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)

	repo := NewEmployeeRepository(mock)
	created := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(24 * time.Hour)

	rows := pgxmock.NewRows(employeeColumnNames).
		AddRow("emp-2", "Ana", []string{"1", "1"}, "", 1100.0, "engineering", "developer", "standard", nil, nil, created, updated)

	mock.ExpectQuery(`UPDATE employees`).
		WithArgs("Ana", []string{"1", "1"}, "", 1100.0, "engineering", "developer", nil, nil, updated, "emp-2").
		WillReturnRows(rows)

	result, err := repo.Update(context.Background(), &employee.Employee{
		ID:         "emp-2",
		Name:       "Ana",
		Phones:     []string{"1", "1"},
		Salary:     1100,
		Department: employee.DepartmentEngineering,
		Role:       employee.RoleDeveloper,
		Kind:       employee.KindStandard,
		UpdatedAt:  updated,
	})
	require.NoError(t, err)
	assert.Equal(t, 1100.0, result.Salary)
	assert.Nil(t, result.Contract)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepository_FindByID_NotFound(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)

	repo := NewEmployeeRepository(mock)
	mock.ExpectQuery(`FROM employees`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(employeeColumnNames))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepository_List(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)

	repo := NewEmployeeRepository(mock)
	now := time.Now().UTC()

	rows := pgxmock.NewRows(employeeColumnNames).
		AddRow("emp-1", "Ana", []string{"1"}, "", 1000.0, "finance", "analyst", "standard", nil, nil, now, now).
		AddRow("emp-2", "Bruno", []string{"2"}, "", 2000.0, "sales", "manager", "contracted", "Acme", int32(3), now, now)

	mock.ExpectQuery(`ORDER BY created_at ASC, id ASC`).WillReturnRows(rows)

	employees, err := repo.List(context.Background())
	require.NoError(t, err)

	require.Len(t, employees, 2)
	assert.False(t, employees[0].IsContracted())
	assert.True(t, employees[1].IsContracted())
	assert.Equal(t, "Acme", employees[1].Contract.Company)
	assert.NoError(t, mock.ExpectationsWereMet())
}
