// Package grpc 客戶端連線管理
package grpc

import (
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

// DefaultKeepalive 沒有設定 WithKeepalive 時的 ping 間隔
const DefaultKeepalive = 10 * time.Second

// Pool 依目標位址快取 gRPC 連線，同一位址只保留一條
type Pool struct {
	conns       sync.Map // map[string]*grpc.ClientConn
	mu          sync.Mutex
	interceptor grpc.UnaryClientInterceptor
	keepalive   time.Duration
}

type PoolOption func(*Pool)

// WithInterceptor 所有連線共用的 UnaryClientInterceptor
func WithInterceptor(interceptor grpc.UnaryClientInterceptor) PoolOption {
	return func(p *Pool) {
		p.interceptor = interceptor
	}
}

// WithKeepalive 閒置多久送一次 ping，0 或負數表示關閉 keepalive
func WithKeepalive(d time.Duration) PoolOption {
	return func(p *Pool) {
		p.keepalive = max(d, 0)
	}
}

func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{keepalive: DefaultKeepalive}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetConnection 取得到 target 的連線，沒有或已關閉就新建
//
// 參數:
//
//	target: 伺服器位址 (e.g., "localhost:50051")
//	opts: 只套用在這次新建的連線
//
// 回傳值:
//
//	*grpc.ClientConn: 連線 (lazy，第一次呼叫才真正連線)
//	error: 建立失敗
func (p *Pool) GetConnection(target string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	if conn, ok := p.load(target); ok {
		return conn, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// double-check
	if conn, ok := p.load(target); ok {
		return conn, nil
	}

	finalOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if p.keepalive > 0 {
		finalOpts = append(finalOpts, grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                p.keepalive,
			Timeout:             time.Second,
			PermitWithoutStream: true,
		}))
	}
	if p.interceptor != nil {
		finalOpts = append(finalOpts, grpc.WithUnaryInterceptor(p.interceptor))
	}
	finalOpts = append(finalOpts, opts...)

	conn, err := grpc.NewClient(target, finalOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client for target %s: %w", target, err)
	}
	p.conns.Store(target, conn)
	return conn, nil
}

// load 取出仍可用的連線，已 Shutdown 的順便移除
func (p *Pool) load(target string) (*grpc.ClientConn, bool) {
	v, ok := p.conns.Load(target)
	if !ok {
		return nil, false
	}
	conn := v.(*grpc.ClientConn)
	if conn.GetState() == connectivity.Shutdown {
		p.conns.Delete(target)
		return nil, false
	}
	return conn, true
}

// Close 關閉所有連線，回傳第一個錯誤
func (p *Pool) Close() error {
	var firstErr error
	p.conns.Range(func(key, value any) bool {
		conn := value.(*grpc.ClientConn)
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.conns.Delete(key)
		return true
	})
	return firstErr
}
