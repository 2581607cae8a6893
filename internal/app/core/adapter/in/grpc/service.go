package grpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName gRPC 服務名稱
const ServiceName = "ledger.v1.LedgerService"

// 方法名稱
const (
	MethodDeposit      = "Deposit"
	MethodWithdraw     = "Withdraw"
	MethodWithdrawAll  = "WithdrawAll"
	MethodGetBalance   = "GetBalance"
	MethodGetStatement = "GetStatement"
)

// FullMethod 回傳 "/ledger.v1.LedgerService/<method>"
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// LedgerServiceServer 帳本服務
// 請求與回應都是 structpb.Struct，內容為 api 套件定義的 JSON 結構
type LedgerServiceServer interface {
	Deposit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Withdraw(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WithdrawAll(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBalance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStatement(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(LedgerServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// LedgerServiceDesc 手寫的 ServiceDesc (沒有 .proto 產生的程式碼)
var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodDeposit, Handler: unaryHandler(MethodDeposit, LedgerServiceServer.Deposit)},
		{MethodName: MethodWithdraw, Handler: unaryHandler(MethodWithdraw, LedgerServiceServer.Withdraw)},
		{MethodName: MethodWithdrawAll, Handler: unaryHandler(MethodWithdrawAll, LedgerServiceServer.WithdrawAll)},
		{MethodName: MethodGetBalance, Handler: unaryHandler(MethodGetBalance, LedgerServiceServer.GetBalance)},
		{MethodName: MethodGetStatement, Handler: unaryHandler(MethodGetStatement, LedgerServiceServer.GetStatement)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterLedgerServiceServer 註冊服務
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}

// unaryHandler 解碼請求並套用 interceptor，等同 protoc-gen-go-grpc 產生的 handler
func unaryHandler(method string, call unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LedgerServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// toStruct 透過 JSON 把 v 轉成 structpb.Struct，沿用各型別的 json tag
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("convert message: %w", err)
	}
	return out, nil
}

// fromStruct 將 structpb.Struct 解回 v
func fromStruct(s *structpb.Struct, v any) error {
	raw, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("convert message: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}
	return nil
}
