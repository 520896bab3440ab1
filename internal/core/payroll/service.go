// Package payroll は社員の雇用・昇給・支払いのユースケースをまとめます。
package payroll

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/carlosarraes/payroll/internal/core/adjustment"
	"github.com/carlosarraes/payroll/internal/core/employee"
	"github.com/carlosarraes/payroll/internal/core/payment"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/carlosarraes/payroll/internal/core/payroll"

// ErrPaymentUnavailable は支払い手段が設定されていない場合に返却されます。
var ErrPaymentUnavailable = errors.New("payroll: payment processor is not configured")

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// UseCase は給与ユースケースの公開インターフェースです。
type UseCase interface {
	HireEmployee(ctx context.Context, in HireEmployeeInput) (*employee.Employee, error)
	HireContractor(ctx context.Context, in HireContractorInput) (*employee.Employee, error)
	GetEmployee(ctx context.Context, id string) (*employee.Employee, error)
	ListEmployees(ctx context.Context) ([]*employee.Employee, error)
	AdjustSalary(ctx context.Context, in AdjustSalaryInput) (*employee.Employee, error)
	ApplyPolicy(ctx context.Context, in ApplyPolicyInput) (*employee.Employee, error)
	PaySalary(ctx context.Context, id string) (*employee.Employee, error)
}

// Deps は Service の依存関係です。nil のフィールドには既定値が使われます。
// Repo が nil の場合は Registry のみで動作します。
type Deps struct {
	Registry *employee.Registry
	Factory  *employee.Factory
	Catalog  *adjustment.Catalog
	Policy   adjustment.Strategy
	Payer    payment.Processor
	Repo     employee.Repository
	Clock    Clock
	Tx       TransactionManager
	Tracer   trace.Tracer
}

// Service は UseCase の実装です。
type Service struct {
	registry   *employee.Registry
	view       employee.View
	factory    *employee.Factory
	catalog    *adjustment.Catalog
	controller *adjustment.Controller
	payer      payment.Processor
	repo       employee.Repository
	clock      Clock
	tx         TransactionManager
	tracer     trace.Tracer

	// mu は登録済み社員の可変フィールドを保護します。変更は Lock、参照は RLock で行い、
	// 呼び出し元へは常に複製を返します。
	mu sync.RWMutex
	// loadMu は Repository から Registry への読み込みを直列化します。
	loadMu sync.Mutex
}

// NewService は Service を生成します。
func NewService(d Deps) *Service {
	if d.Registry == nil {
		d.Registry = employee.NewRegistry()
	}
	if d.Factory == nil {
		d.Factory = employee.NewFactory()
	}
	if d.Catalog == nil {
		d.Catalog = adjustment.DefaultCatalog()
	}
	if d.Clock == nil {
		d.Clock = realClock{}
	}
	if d.Tx == nil {
		d.Tx = noopTransactionManager{}
	}
	if d.Tracer == nil {
		d.Tracer = otel.Tracer(tracerName)
	}
	return &Service{
		registry:   d.Registry,
		view:       d.Registry.View(),
		factory:    d.Factory,
		catalog:    d.Catalog,
		controller: adjustment.NewController(d.Policy),
		payer:      d.Payer,
		repo:       d.Repo,
		clock:      d.Clock,
		tx:         d.Tx,
		tracer:     d.Tracer,
	}
}

// HireEmployeeInput は通常社員の雇用時の入力です。
type HireEmployeeInput struct {
	Name       string
	Phone      string
	Address    string
	Salary     float64
	Department employee.Department
	Role       employee.Role
}

// HireContractorInput は業務委託社員の雇用時の入力です。
type HireContractorInput struct {
	HireEmployeeInput
	Company       string
	PlannedMonths int
}

// AdjustSalaryInput はパーセント指定の昇給入力です。
type AdjustSalaryInput struct {
	ID         string
	Percentage float64
}

// ApplyPolicyInput はポリシー適用の入力です。
// Policy を指定した場合はその Strategy をこの呼び出しだけに適用し、空の場合は既定のポリシーを使います。
type ApplyPolicyInput struct {
	ID     string
	Policy string
}

// HireEmployee は通常社員を生成して登録します。
func (s *Service) HireEmployee(ctx context.Context, in HireEmployeeInput) (*employee.Employee, error) {
	params := in.params()
	if err := employee.Validate(params); err != nil {
		return nil, err
	}
	return s.hire(ctx, s.factory.NewEmployee(params))
}

// HireContractor は業務委託社員を生成して登録します。
func (s *Service) HireContractor(ctx context.Context, in HireContractorInput) (*employee.Employee, error) {
	params := in.params()
	if err := employee.Validate(params); err != nil {
		return nil, err
	}
	contract := employee.Contract{Company: strings.TrimSpace(in.Company), PlannedMonths: in.PlannedMonths}
	if err := employee.ValidateContract(contract); err != nil {
		return nil, err
	}
	return s.hire(ctx, s.factory.NewContractedEmployee(params, contract))
}

func (s *Service) hire(ctx context.Context, e *employee.Employee) (_ *employee.Employee, err error) {
	ctx, span := s.tracer.Start(ctx, "payroll.Hire", trace.WithAttributes(
		attribute.String("employee.id", e.ID),
		attribute.String("employee.kind", string(e.Kind)),
	))
	defer func() { endSpan(span, err) }()

	now := s.clock.Now()
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if s.repo == nil {
			return nil
		}
		_, err := s.repo.Create(txCtx, e)
		return err
	}); err != nil {
		return nil, err
	}

	out := e.Clone()
	s.registry.Add(e)
	return out, nil
}

// GetEmployee は社員の複製を取得します。
func (s *Service) GetEmployee(ctx context.Context, id string) (*employee.Employee, error) {
	var found *employee.Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		e, err := s.find(txCtx, id)
		if err != nil {
			return err
		}
		s.mu.RLock()
		found = e.Clone()
		s.mu.RUnlock()
		return nil
	}); err != nil {
		return nil, err
	}
	return found, nil
}

// ListEmployees は登録済みの社員の複製を追加順で返します。
func (s *Service) ListEmployees(_ context.Context) ([]*employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*employee.Employee, 0, s.view.Len())
	for _, e := range s.view.All() {
		out = append(out, e.Clone())
	}
	return out, nil
}

// AdjustSalary は Employee.AdjustSalary を通じて給与を変更します。業務委託社員は変更されません。
func (s *Service) AdjustSalary(ctx context.Context, in AdjustSalaryInput) (*employee.Employee, error) {
	return s.mutate(ctx, "payroll.AdjustSalary", in.ID, func(e *employee.Employee) error {
		e.AdjustSalary(in.Percentage)
		return nil
	})
}

// ApplyPolicy は Strategy を社員へ適用します。
// 名前で選択した Strategy は Controller を経由せずに適用され、既定のポリシーは変わりません。
func (s *Service) ApplyPolicy(ctx context.Context, in ApplyPolicyInput) (*employee.Employee, error) {
	var selected adjustment.Strategy
	if strings.TrimSpace(in.Policy) != "" {
		strategy, err := s.catalog.Lookup(in.Policy)
		if err != nil {
			return nil, err
		}
		selected = strategy
	}

	return s.mutate(ctx, "payroll.ApplyPolicy", in.ID, func(e *employee.Employee) error {
		if selected != nil {
			selected.Apply(e)
			return nil
		}
		return s.controller.Apply(e)
	})
}

// PaySalary は現在の給与で社員への支払いを外部サービスへ依頼します。
func (s *Service) PaySalary(ctx context.Context, id string) (_ *employee.Employee, err error) {
	ctx, span := s.tracer.Start(ctx, "payroll.PaySalary", trace.WithAttributes(attribute.String("employee.id", id)))
	defer func() { endSpan(span, err) }()

	if s.payer == nil {
		return nil, ErrPaymentUnavailable
	}

	e, err := s.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	// e は複製のため、支払い中に他の変更と競合しません。
	s.payer.PayEmployeeSalary(e)
	span.SetAttributes(attribute.Float64("payment.amount", e.Salary))
	return e, nil
}

// Hydrate は永続化済みの社員を Registry へ読み込み、追加件数を返します。
func (s *Service) Hydrate(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, nil
	}

	var loaded []*employee.Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		list, err := s.repo.List(txCtx)
		if err != nil {
			return err
		}
		loaded = list
		return nil
	}); err != nil {
		return 0, fmt.Errorf("payroll: hydrate registry: %w", err)
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	added := 0
	for _, e := range loaded {
		if _, ok := s.registry.Find(e.ID); ok {
			continue
		}
		s.registry.Add(s.factory.Adopt(e))
		added++
	}
	return added, nil
}

func (s *Service) mutate(ctx context.Context, op, id string, fn func(*employee.Employee) error) (_ *employee.Employee, err error) {
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("employee.id", id)))
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated *employee.Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		e, err := s.find(txCtx, id)
		if err != nil {
			return err
		}

		prevSalary, prevUpdated := e.Salary, e.UpdatedAt
		if err := fn(e); err != nil {
			return err
		}
		e.UpdatedAt = s.clock.Now()

		if s.repo != nil {
			if _, err := s.repo.Update(txCtx, e); err != nil {
				e.Salary, e.UpdatedAt = prevSalary, prevUpdated
				return err
			}
		}

		updated = e.Clone()
		return nil
	}); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Float64("employee.salary", updated.Salary))
	return updated, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Service) find(ctx context.Context, id string) (*employee.Employee, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, fmt.Errorf("id: %w", employee.ErrInvalidID)
	}

	if e, ok := s.registry.Find(trimmed); ok {
		return e, nil
	}
	if s.repo == nil {
		return nil, employee.ErrEmployeeNotFound
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if e, ok := s.registry.Find(trimmed); ok {
		return e, nil
	}

	e, err := s.repo.FindByID(ctx, trimmed)
	if err != nil {
		return nil, err
	}
	s.factory.Adopt(e)
	out := e.Clone()
	s.registry.Add(e)
	return out, nil
}

func (in HireEmployeeInput) params() employee.Params {
	return employee.Params{
		Name:       strings.TrimSpace(in.Name),
		Phone:      strings.TrimSpace(in.Phone),
		Address:    strings.TrimSpace(in.Address),
		Salary:     in.Salary,
		Department: in.Department,
		Role:       in.Role,
	}
}
