package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor 記錄每個 unary RPC 的方法、耗時與狀態碼
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("elapsed", time.Since(start)),
			zap.Stringer("code", status.Code(err)),
		}
		if err != nil {
			logger.Warn("grpc request failed", append(fields, zap.Error(err))...)
			return resp, err
		}
		logger.Debug("grpc request", fields...)
		return resp, nil
	}
}
