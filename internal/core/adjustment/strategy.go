// Package adjustment は差し替え可能な昇給ポリシーを提供します。
//
// ポリシーは給与フィールドを直接書き換え、Employee.AdjustSalary を経由しません。
// そのため業務委託社員にも適用されます。除外したい場合は ExemptContracted で包んでください。
package adjustment

import (
	"errors"

	"github.com/carlosarraes/payroll/internal/core/employee"
)

var (
	ErrNoStrategy      = errors.New("adjustment: no strategy selected")
	ErrUnknownStrategy = errors.New("adjustment: unknown strategy")
	ErrInvalidName     = errors.New("adjustment: invalid strategy name")
)

const (
	PerformanceFactor = 1.10
	InflationFactor   = 1.05
)

// Strategy は社員の給与を調整するポリシーです。
type Strategy interface {
	Apply(e *employee.Employee)
}

// Func は関数を Strategy として扱うためのアダプタです。
type Func func(e *employee.Employee)

// Apply は f(e) を呼び出します。
func (f Func) Apply(e *employee.Employee) {
	f(e)
}

// Multiplier は給与に factor を掛ける Strategy を返します。
func Multiplier(factor float64) Func {
	return func(e *employee.Employee) {
		e.SetSalary(e.Salary * factor)
	}
}

var (
	// Performance は評価に基づく 10% の昇給です。
	Performance Strategy = Multiplier(PerformanceFactor)
	// Inflation はインフレ率に基づく 5% の昇給です。
	Inflation Strategy = Multiplier(InflationFactor)
)

// ExemptContracted は業務委託社員をスキップする Strategy を返します。
func ExemptContracted(s Strategy) Strategy {
	return Func(func(e *employee.Employee) {
		if e.IsContracted() {
			return
		}
		s.Apply(e)
	})
}
