package grpc

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-account-statement/internal/app/core/adapter/in/api"
	"github.com/JoeShih716/go-account-statement/internal/app/core/domain"
)

// Client LedgerService 的客戶端
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, req, reply any, opts ...grpc.CallOption) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return err
	}
	return fromStruct(out, reply)
}

// Deposit 存款
//
// 參數:
//
//	ctx: 上下文
//	amount: 金額
//	description: 描述
//	at: 交易時間，零值表示由伺服器決定
//
// 回傳:
//
//	api.MutationReply: 結果與最新餘額 (業務拒絕也是正常回應)
//	error: RPC 錯誤
func (c *Client) Deposit(ctx context.Context, amount decimal.Decimal, description string, at time.Time, opts ...grpc.CallOption) (api.MutationReply, error) {
	var reply api.MutationReply
	err := c.invoke(ctx, MethodDeposit, api.MutationRequest{
		Amount:      amount,
		Description: description,
		Timestamp:   optionalTime(at),
	}, &reply, opts...)
	return reply, err
}

// Withdraw 提款
func (c *Client) Withdraw(ctx context.Context, amount decimal.Decimal, description string, at time.Time, opts ...grpc.CallOption) (api.MutationReply, error) {
	var reply api.MutationReply
	err := c.invoke(ctx, MethodWithdraw, api.MutationRequest{
		Amount:      amount,
		Description: description,
		Timestamp:   optionalTime(at),
	}, &reply, opts...)
	return reply, err
}

// WithdrawAll 全額提款
func (c *Client) WithdrawAll(ctx context.Context, at time.Time, opts ...grpc.CallOption) (api.MutationReply, error) {
	var reply api.MutationReply
	err := c.invoke(ctx, MethodWithdrawAll, api.WithdrawAllRequest{Timestamp: optionalTime(at)}, &reply, opts...)
	return reply, err
}

// Balance 目前餘額
func (c *Client) Balance(ctx context.Context, opts ...grpc.CallOption) (decimal.Decimal, error) {
	var reply api.BalanceReply
	if err := c.invoke(ctx, MethodGetBalance, struct{}{}, &reply, opts...); err != nil {
		return decimal.Zero, err
	}
	return reply.Balance, nil
}

// Statement 對帳單，參數格式同 usecase.ParseStatementQuery
func (c *Client) Statement(ctx context.Context, req api.StatementRequest, opts ...grpc.CallOption) (domain.Statement, error) {
	var st domain.Statement
	err := c.invoke(ctx, MethodGetStatement, req, &st, opts...)
	return st, err
}

func optionalTime(at time.Time) *time.Time {
	if at.IsZero() {
		return nil
	}
	return &at
}
