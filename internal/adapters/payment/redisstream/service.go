// Package redisstream は支払い要求を Redis Stream に積む外部決済サービスです。
// 実際の送金は Stream を購読する下流のワーカーが行います。
package redisstream

import (
	"context"
	"strconv"
	"time"

	"github.com/carlosarraes/payroll/internal/platform/config"
	"github.com/carlosarraes/payroll/internal/platform/logger"
	"github.com/redis/go-redis/v9"
)

// StreamAdder は XADD を発行できるクライアントです。*redis.Client が満たします。
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// PaymentService は支払い要求を Stream に追加します。失敗はログに残し、呼び出し元へは返しません。
type PaymentService struct {
	client  StreamAdder
	stream  string
	timeout time.Duration
	log     *logger.Logger
	now     func() time.Time
}

// NewClient は設定から Redis クライアントを生成します。
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})
}

// New は PaymentService を生成します。
func New(client StreamAdder, stream string, timeout time.Duration, log *logger.Logger) *PaymentService {
	if log == nil {
		log = logger.NewNop()
	}
	return &PaymentService{
		client:  client,
		stream:  stream,
		timeout: timeout,
		log:     log.With("stream", stream),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// MakePayment は name と amount を Stream のエントリとして追加します。
func (s *PaymentService) MakePayment(name string, amount float64) {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	id, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"name":         name,
			"amount":       strconv.FormatFloat(amount, 'f', -1, 64),
			"requested_at": s.now().Format(time.RFC3339Nano),
		},
	}).Result()
	if err != nil {
		s.log.Error("payment request failed", "name", name, "amount", amount, "error", err)
		return
	}

	s.log.Info("payment requested", "message_id", id, "name", name, "amount", amount)
}
