package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// LoggingClientInterceptor 記錄每次呼叫的方法、耗時與狀態碼
func LoggingClientInterceptor(logger *zap.Logger) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("target", cc.Target()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Stringer("code", status.Code(err)),
		}
		if err != nil {
			logger.Warn("grpc call failed", append(fields, zap.Error(err))...)
			return err
		}
		logger.Debug("grpc call", fields...)
		return nil
	}
}
