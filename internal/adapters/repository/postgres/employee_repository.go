package postgres

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/carlosarraes/payroll/internal/core/employee"
	pgdb "github.com/carlosarraes/payroll/internal/platform/db/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	employeeUniqueViolationCode = "23505"
	employeeCheckViolationCode  = "23514"

	employeeSalaryCheck   = "employees_salary_check"
	employeeContractCheck = "employees_contract_check"
)

const employeeColumns = `id, name, phones, address, salary, department, role, kind, contract_company, contract_months, created_at, updated_at`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	company, months, err := contractColumns(e)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (id, name, phones, address, salary, department, role, kind, contract_company, contract_months, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING `+employeeColumns,
		e.ID,
		e.Name,
		phonesOrEmpty(e.Phones),
		e.Address,
		e.Salary,
		string(e.Department),
		string(e.Role),
		string(e.Kind),
		company,
		months,
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は社員情報を更新します。区分と作成日時は変更しません。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	company, months, err := contractColumns(e)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET name = $1,
               phones = $2,
               address = $3,
               salary = $4,
               department = $5,
               role = $6,
               contract_company = $7,
               contract_months = $8,
               updated_at = $9
         WHERE id = $10
        RETURNING `+employeeColumns,
		e.Name,
		phonesOrEmpty(e.Phones),
		e.Address,
		e.Salary,
		string(e.Department),
		string(e.Role),
		company,
		months,
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// List は全社員を作成順で取得します。
func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         ORDER BY created_at ASC, id ASC
    `)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}

	return employees, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id         string
		name       string
		phones     []string
		address    string
		salary     float64
		department string
		role       string
		kind       string
		company    sql.NullString
		months     sql.NullInt32
		createdAt  time.Time
		updatedAt  time.Time
	)

	if err := row.Scan(
		&id,
		&name,
		&phones,
		&address,
		&salary,
		&department,
		&role,
		&kind,
		&company,
		&months,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	emp := &employee.Employee{
		ID:         id,
		Name:       name,
		Phones:     phones,
		Address:    address,
		Salary:     salary,
		Department: employee.Department(department),
		Role:       employee.Role(role),
		Kind:       employee.Kind(kind),
		CreatedAt:  createdAt.UTC(),
		UpdatedAt:  updatedAt.UTC(),
	}

	if emp.Kind == employee.KindContracted {
		emp.Contract = &employee.Contract{Company: company.String}
		if months.Valid {
			emp.Contract.PlannedMonths = int(months.Int32)
		}
	}

	return emp, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case employeeUniqueViolationCode:
			return employee.ErrEmployeeAlreadyExists
		case employeeCheckViolationCode:
			switch pgErr.ConstraintName {
			case employeeSalaryCheck:
				return employee.ErrInvalidSalary
			case employeeContractCheck:
				return employee.ErrInvalidKind
			default:
				return err
			}
		}
	}

	return err
}

func contractColumns(e *employee.Employee) (any, any, error) {
	if e.Contract == nil {
		return nil, nil, nil
	}
	months := e.Contract.PlannedMonths
	if months < 0 || months > math.MaxInt32 {
		return nil, nil, employee.ErrInvalidPlannedMonths
	}
	return e.Contract.Company, int32(months), nil
}

func phonesOrEmpty(phones []string) []string {
	if phones == nil {
		return []string{}
	}
	return phones
}
