package employee

import (
	"slices"
	"strings"
	"time"
)

// Kind は社員の区分を表します。
type Kind string

const (
	KindStandard   Kind = "standard"
	KindContracted Kind = "contracted"
)

// Department は所属部署を表します。
type Department string

const (
	DepartmentEngineering    Department = "engineering"
	DepartmentFinance        Department = "finance"
	DepartmentHumanResources Department = "human_resources"
	DepartmentSales          Department = "sales"
	DepartmentOperations     Department = "operations"
)

// Role は役職を表します。
type Role string

const (
	RoleIntern    Role = "intern"
	RoleAnalyst   Role = "analyst"
	RoleDeveloper Role = "developer"
	RoleManager   Role = "manager"
	RoleDirector  Role = "director"
)

// ContractedNotice は業務委託社員の昇給要求時に通知されるメッセージです。
const ContractedNotice = "contracted employees do not receive salary adjustments"

// Notifier は情報通知の出力先です。アプリケーションのロガーが満たします。
type Notifier interface {
	Info(msg string, keysAndValues ...any)
}

// NopNotifier は何も出力しない Notifier です。
type NopNotifier struct{}

func (NopNotifier) Info(string, ...any) {}

// Contract は業務委託社員の契約情報です。
type Contract struct {
	Company       string
	PlannedMonths int
}

// Employee は社員エンティティです。Kind が KindContracted の場合のみ Contract を持ちます。
type Employee struct {
	ID         string
	Name       string
	Phones     []string
	Address    string
	Salary     float64
	Department Department
	Role       Role
	Kind       Kind
	Contract   *Contract
	CreatedAt  time.Time
	UpdatedAt  time.Time

	notifier Notifier
}

// IsContracted は業務委託社員かどうかを返します。
func (e *Employee) IsContracted() bool {
	return e.Kind == KindContracted
}

// AddPhone は電話番号を末尾に追加します。重複は許容されます。
func (e *Employee) AddPhone(phone string) {
	e.Phones = append(e.Phones, phone)
}

// SetSalary は給与を直接設定します。
func (e *Employee) SetSalary(salary float64) {
	e.Salary = salary
}

// AdjustSalary は給与を percentage パーセント増減させます。
// 業務委託社員の給与は変更されず、通知のみ行われます。
func (e *Employee) AdjustSalary(percentage float64) {
	switch e.Kind {
	case KindContracted:
		e.notify().Info(ContractedNotice, "employee_id", e.ID, "name", e.Name, "percentage", percentage)
	default:
		e.Salary += e.Salary * percentage / 100
	}
}

// Clone は Phones と Contract を含めた複製を返します。通知先は引き継がれます。
func (e *Employee) Clone() *Employee {
	if e == nil {
		return nil
	}
	c := *e
	c.Phones = slices.Clone(e.Phones)
	if e.Contract != nil {
		contract := *e.Contract
		c.Contract = &contract
	}
	return &c
}

func (e *Employee) notify() Notifier {
	if e.notifier == nil {
		return NopNotifier{}
	}
	return e.notifier
}

// Valid は定義済みの部署かどうかを返します。
func (d Department) Valid() bool {
	switch d {
	case DepartmentEngineering, DepartmentFinance, DepartmentHumanResources, DepartmentSales, DepartmentOperations:
		return true
	default:
		return false
	}
}

// Valid は定義済みの役職かどうかを返します。
func (r Role) Valid() bool {
	switch r {
	case RoleIntern, RoleAnalyst, RoleDeveloper, RoleManager, RoleDirector:
		return true
	default:
		return false
	}
}

// Valid は定義済みの区分かどうかを返します。
func (k Kind) Valid() bool {
	return k == KindStandard || k == KindContracted
}

// ParseDepartment は文字列を正規化して Department に変換します。
func ParseDepartment(raw string) (Department, error) {
	d := Department(strings.ToLower(strings.TrimSpace(raw)))
	if !d.Valid() {
		return "", ErrInvalidDepartment
	}
	return d, nil
}

// ParseRole は文字列を正規化して Role に変換します。
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}
