package grpc

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-account-statement/internal/app/core/adapter/in/api"
	"github.com/JoeShih716/go-account-statement/internal/app/core/domain"
	"github.com/JoeShih716/go-account-statement/internal/app/core/usecase"
)

type GrpcServer struct {
	core   *usecase.CoreUseCase
	logger *zap.Logger
}

func NewGrpcServer(core *usecase.CoreUseCase, logger *zap.Logger) *GrpcServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GrpcServer{
		core:   core,
		logger: logger,
	}
}

func (s *GrpcServer) Deposit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in api.MutationRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	outcome, err := s.core.Deposit(ctx, in.Amount, in.Description, in.At())
	if err != nil {
		return nil, toStatus(err)
	}
	return s.mutationReply(outcome)
}

func (s *GrpcServer) Withdraw(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in api.MutationRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	outcome, err := s.core.Withdraw(ctx, in.Amount, in.Description, in.At())
	if err != nil {
		return nil, toStatus(err)
	}
	return s.mutationReply(outcome)
}

func (s *GrpcServer) WithdrawAll(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in api.WithdrawAllRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	outcome, err := s.core.WithdrawAll(ctx, in.At())
	if err != nil {
		return nil, toStatus(err)
	}
	return s.mutationReply(outcome)
}

// mutationReply 業務拒絕也回傳成功的 RPC，Accepted=false (Soft Failure)
func (s *GrpcServer) mutationReply(outcome domain.Outcome) (*structpb.Struct, error) {
	out, err := toStruct(api.NewMutationReply(outcome))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *GrpcServer) GetBalance(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	balance, err := s.core.Balance(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := toStruct(api.BalanceReply{Balance: balance, Currency: domain.CurrencyCode})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *GrpcServer) GetStatement(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in api.StatementRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	q, err := in.Query()
	if err != nil {
		return nil, toStatus(err)
	}
	st, err := s.core.Statement(ctx, q)
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := toStruct(st)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// toStatus 將錯誤轉為 gRPC status
func toStatus(err error) error {
	switch {
	case api.IsInvalidInput(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrLedgerStopped):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

var _ LedgerServiceServer = (*GrpcServer)(nil)
