// Package payment は社員の語彙を外部決済サービスの語彙へ変換するアダプタ境界です。
package payment

import "github.com/carlosarraes/payroll/internal/core/employee"

// Processor は社員への給与支払いを要求する抽象です。
type Processor interface {
	PayEmployeeSalary(e *employee.Employee)
}

// ExternalService は外部決済サービスの呼び出し口です。失敗は通知されません。
type ExternalService interface {
	MakePayment(name string, amount float64)
}

// SalaryAdapter は ExternalService を Processor として公開します。
type SalaryAdapter struct {
	external ExternalService
}

// NewSalaryAdapter は SalaryAdapter を生成します。
func NewSalaryAdapter(external ExternalService) *SalaryAdapter {
	return &SalaryAdapter{external: external}
}

// PayEmployeeSalary は社員名と給与をそのまま外部サービスへ渡します。
func (a *SalaryAdapter) PayEmployeeSalary(e *employee.Employee) {
	a.external.MakePayment(e.Name, e.Salary)
}
