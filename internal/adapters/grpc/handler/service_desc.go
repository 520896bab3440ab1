package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// PayrollServiceName は gRPC のサービス名です。
const PayrollServiceName = "payroll.v1.PayrollService"

const (
	MethodHireEmployee   = "HireEmployee"
	MethodHireContractor = "HireContractor"
	MethodGetEmployee    = "GetEmployee"
	MethodListEmployees  = "ListEmployees"
	MethodAdjustSalary   = "AdjustSalary"
	MethodApplyPolicy    = "ApplyPolicy"
	MethodPaySalary      = "PaySalary"
)

// PayrollServiceServer は PayrollService のサーバー側インターフェースです。
// リクエストとレスポンスは google.protobuf.Struct で表現します。
type PayrollServiceServer interface {
	HireEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	HireContractor(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListEmployees(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AdjustSalary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ApplyPolicy(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PaySalary(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(PayrollServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// PayrollServiceDesc は PayrollService の grpc.ServiceDesc です。
var PayrollServiceDesc = grpc.ServiceDesc{
	ServiceName: PayrollServiceName,
	HandlerType: (*PayrollServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodHireEmployee, Handler: unaryHandler(MethodHireEmployee, PayrollServiceServer.HireEmployee)},
		{MethodName: MethodHireContractor, Handler: unaryHandler(MethodHireContractor, PayrollServiceServer.HireContractor)},
		{MethodName: MethodGetEmployee, Handler: unaryHandler(MethodGetEmployee, PayrollServiceServer.GetEmployee)},
		{MethodName: MethodListEmployees, Handler: unaryHandler(MethodListEmployees, PayrollServiceServer.ListEmployees)},
		{MethodName: MethodAdjustSalary, Handler: unaryHandler(MethodAdjustSalary, PayrollServiceServer.AdjustSalary)},
		{MethodName: MethodApplyPolicy, Handler: unaryHandler(MethodApplyPolicy, PayrollServiceServer.ApplyPolicy)},
		{MethodName: MethodPaySalary, Handler: unaryHandler(MethodPaySalary, PayrollServiceServer.PaySalary)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "payroll/v1/payroll.proto",
}

// RegisterPayrollServiceServer は srv を s に登録します。
func RegisterPayrollServiceServer(s grpc.ServiceRegistrar, srv PayrollServiceServer) {
	s.RegisterService(&PayrollServiceDesc, srv)
}

func unaryHandler(method string, call unaryMethod) grpc.MethodHandler {
	fullMethod := "/" + PayrollServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PayrollServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PayrollServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// PayrollServiceClient は PayrollService を呼び出すクライアントです。
type PayrollServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewPayrollServiceClient は PayrollServiceClient を生成します。
func NewPayrollServiceClient(cc grpc.ClientConnInterface) *PayrollServiceClient {
	return &PayrollServiceClient{cc: cc}
}

// Call は method を呼び出します。
func (c *PayrollServiceClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+PayrollServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
