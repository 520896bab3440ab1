package handler

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/carlosarraes/payroll/internal/core/employee"
	"github.com/carlosarraes/payroll/internal/core/payroll"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// PayrollGrpcHandler は PayrollService の gRPC 実装です。
type PayrollGrpcHandler struct {
	svc payroll.UseCase
}

var _ PayrollServiceServer = (*PayrollGrpcHandler)(nil)

// NewPayrollGrpcHandler は PayrollGrpcHandler を生成します。
func NewPayrollGrpcHandler(svc payroll.UseCase) *PayrollGrpcHandler {
	return &PayrollGrpcHandler{svc: svc}
}

// HireEmployee は通常社員を雇用します。
func (h *PayrollGrpcHandler) HireEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in, err := hireInputFromStruct(req)
	if err != nil {
		return nil, err
	}

	created, err := h.svc.HireEmployee(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return employeeResponse(created, nil)
}

// HireContractor は業務委託社員を雇用します。
func (h *PayrollGrpcHandler) HireContractor(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in, err := hireInputFromStruct(req)
	if err != nil {
		return nil, err
	}

	months, _, err := numberField(req, "planned_months")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if months != math.Trunc(months) {
		return nil, status.Error(codes.InvalidArgument, "planned_months must be an integer")
	}
	if months < 0 || months > math.MaxInt32 {
		return nil, status.Errorf(codes.InvalidArgument, "planned_months must be between 0 and %d", math.MaxInt32)
	}

	created, err := h.svc.HireContractor(ctx, payroll.HireContractorInput{
		HireEmployeeInput: in,
		Company:           stringField(req, "company"),
		PlannedMonths:     int(months),
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return employeeResponse(created, nil)
}

// GetEmployee は社員を取得します。
func (h *PayrollGrpcHandler) GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	found, err := h.svc.GetEmployee(ctx, stringField(req, "id"))
	if err != nil {
		return nil, toStatusError(err)
	}

	return employeeResponse(found, nil)
}

// ListEmployees は登録済みの社員を追加順で返します。
func (h *PayrollGrpcHandler) ListEmployees(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	list, err := h.svc.ListEmployees(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	items := make([]any, 0, len(list))
	for _, e := range list {
		items = append(items, employeeFields(e))
	}

	return newStruct(map[string]any{"employees": items})
}

// AdjustSalary はパーセント指定で給与を変更します。
func (h *PayrollGrpcHandler) AdjustSalary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	percentage, ok, err := numberField(req, "percentage")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "percentage is required")
	}

	updated, err := h.svc.AdjustSalary(ctx, payroll.AdjustSalaryInput{
		ID:         stringField(req, "id"),
		Percentage: percentage,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return employeeResponse(updated, nil)
}

// ApplyPolicy は昇給ポリシーを適用します。policy を省略した場合は現在のポリシーを使います。
func (h *PayrollGrpcHandler) ApplyPolicy(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	updated, err := h.svc.ApplyPolicy(ctx, payroll.ApplyPolicyInput{
		ID:     stringField(req, "id"),
		Policy: stringField(req, "policy"),
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return employeeResponse(updated, nil)
}

// PaySalary は社員への給与支払いを依頼します。
func (h *PayrollGrpcHandler) PaySalary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	paid, err := h.svc.PaySalary(ctx, stringField(req, "id"))
	if err != nil {
		return nil, toStatusError(err)
	}

	return employeeResponse(paid, map[string]any{"amount": paid.Salary})
}

func hireInputFromStruct(req *structpb.Struct) (payroll.HireEmployeeInput, error) {
	salary, ok, err := numberField(req, "salary")
	if err != nil {
		return payroll.HireEmployeeInput{}, status.Error(codes.InvalidArgument, err.Error())
	}
	if !ok {
		return payroll.HireEmployeeInput{}, status.Error(codes.InvalidArgument, "salary is required")
	}

	department, err := employee.ParseDepartment(stringField(req, "department"))
	if err != nil {
		return payroll.HireEmployeeInput{}, toStatusError(err)
	}

	role, err := employee.ParseRole(stringField(req, "role"))
	if err != nil {
		return payroll.HireEmployeeInput{}, toStatusError(err)
	}

	return payroll.HireEmployeeInput{
		Name:       stringField(req, "name"),
		Phone:      stringField(req, "phone"),
		Address:    stringField(req, "address"),
		Salary:     salary,
		Department: department,
		Role:       role,
	}, nil
}

func employeeResponse(e *employee.Employee, extra map[string]any) (*structpb.Struct, error) {
	fields := map[string]any{"employee": employeeFields(e)}
	for k, v := range extra {
		fields[k] = v
	}
	return newStruct(fields)
}

func employeeFields(e *employee.Employee) map[string]any {
	if e == nil {
		return nil
	}

	phones := make([]any, 0, len(e.Phones))
	for _, p := range e.Phones {
		phones = append(phones, p)
	}

	fields := map[string]any{
		"id":         e.ID,
		"name":       e.Name,
		"phones":     phones,
		"address":    e.Address,
		"salary":     e.Salary,
		"department": string(e.Department),
		"role":       string(e.Role),
		"kind":       string(e.Kind),
		"contract":   nil,
		"created_at": e.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": e.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if e.Contract != nil {
		fields["contract"] = map[string]any{
			"company":        e.Contract.Company,
			"planned_months": e.Contract.PlannedMonths,
		}
	}
	return fields
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}

func stringField(req *structpb.Struct, key string) string {
	return strings.TrimSpace(req.GetFields()[key].GetStringValue())
}

func numberField(req *structpb.Struct, key string) (float64, bool, error) {
	v, ok := req.GetFields()[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return 0, false, nil
	case *structpb.Value_NumberValue:
		return kind.NumberValue, true, nil
	default:
		return 0, false, fmt.Errorf("%s must be a number", key)
	}
}
