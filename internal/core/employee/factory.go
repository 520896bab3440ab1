package employee

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// Params は社員生成に必要な共通パラメータです。
type Params struct {
	Name       string
	Phone      string
	Address    string
	Salary     float64
	Department Department
	Role       Role
}

// IDGenerator は社員 ID を採番します。
type IDGenerator func() string

// Factory は Employee を生成します。
type Factory struct {
	notifier Notifier
	newID    IDGenerator
}

// FactoryOption は Factory の設定を変更します。
type FactoryOption func(*Factory)

// WithNotifier は生成した社員へ渡す Notifier を設定します。
func WithNotifier(n Notifier) FactoryOption {
	return func(f *Factory) {
		if n != nil {
			f.notifier = n
		}
	}
}

// WithIDGenerator は ID の採番方法を差し替えます。
func WithIDGenerator(gen IDGenerator) FactoryOption {
	return func(f *Factory) {
		if gen != nil {
			f.newID = gen
		}
	}
}

// NewFactory は Factory を生成します。
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		notifier: NopNotifier{},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewEmployee は通常の社員を生成します。入力値の検証は行いません。
func (f *Factory) NewEmployee(p Params) *Employee {
	return &Employee{
		ID:         f.newID(),
		Name:       p.Name,
		Phones:     []string{p.Phone},
		Address:    p.Address,
		Salary:     p.Salary,
		Department: p.Department,
		Role:       p.Role,
		Kind:       KindStandard,
		notifier:   f.notifier,
	}
}

// NewContractedEmployee は業務委託社員を生成します。
func (f *Factory) NewContractedEmployee(p Params, c Contract) *Employee {
	e := f.NewEmployee(p)
	e.Kind = KindContracted
	e.Contract = &Contract{Company: c.Company, PlannedMonths: c.PlannedMonths}
	return e
}

// Adopt は永続化層から復元した社員に Factory の Notifier を紐付けます。
func (f *Factory) Adopt(e *Employee) *Employee {
	if e == nil {
		return nil
	}
	e.notifier = f.notifier
	return e
}

// Validate は生成パラメータを検証します。
func Validate(p Params) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	if p.Salary < 0 || math.IsNaN(p.Salary) || math.IsInf(p.Salary, 0) {
		return ErrInvalidSalary
	}
	if !p.Department.Valid() {
		return ErrInvalidDepartment
	}
	if !p.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}

// ValidateContract は契約情報を検証します。
// PlannedMonths は永続化先の integer 列に収まる範囲でなければなりません。
func ValidateContract(c Contract) error {
	if strings.TrimSpace(c.Company) == "" {
		return ErrInvalidContractCompany
	}
	if c.PlannedMonths < 0 || c.PlannedMonths > math.MaxInt32 {
		return ErrInvalidPlannedMonths
	}
	return nil
}
