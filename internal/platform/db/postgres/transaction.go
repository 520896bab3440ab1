package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carlosarraes/payroll/internal/platform/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNilTxFunc は実行する関数が渡されなかった場合に返却されます。
	ErrNilTxFunc = errors.New("postgres: transaction function is required")
	// ErrReadOnlyTx は読み取り専用トランザクションの内側で書き込みを開始しようとした場合に返却されます。
	ErrReadOnlyTx = errors.New("postgres: read-write work requested inside a read-only transaction")
)

type txContextKey struct{}

// txState はコンテキストに格納される実行中のトランザクションです。
type txState struct {
	tx   pgx.Tx
	mode pgx.TxAccessMode
}

// txStarter は pgxpool.Pool と pgxmock の共通部分です。
type txStarter interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TxOption は TransactionManager の設定を変更します。
type TxOption func(*TransactionManager)

// WithIsolation はトランザクションの分離レベルを指定します。空の場合はサーバーの既定値です。
func WithIsolation(level pgx.TxIsoLevel) TxOption {
	return func(m *TransactionManager) {
		m.isolation = level
	}
}

// WithLogger はロールバック失敗を記録するロガーを指定します。
func WithLogger(log *logger.Logger) TxOption {
	return func(m *TransactionManager) {
		if log != nil {
			m.log = log
		}
	}
}

// TransactionManager は pgx を用いたトランザクション制御を提供します。
// 給与の読み取りと更新は同じトランザクションで行われます。
type TransactionManager struct {
	pool      txStarter
	isolation pgx.TxIsoLevel
	log       *logger.Logger
}

// NewTransactionManager は TransactionManager を生成します。
func NewTransactionManager(pool txStarter, opts ...TxOption) *TransactionManager {
	if pool == nil {
		return nil
	}
	m := &TransactionManager{pool: pool, log: logger.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsolationLevel は設定値 (read_committed / repeatable_read / serializable) を pgx の分離レベルに変換します。
func IsolationLevel(raw string) pgx.TxIsoLevel {
	return pgx.TxIsoLevel(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", " "))
}

// WithinReadOnly は読み取り専用トランザクションを開始し、fn を実行します。
func (m *TransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return m.within(ctx, pgx.ReadOnly, fn)
}

// WithinReadWrite は読み書きトランザクションを開始し、fn を実行します。
func (m *TransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return m.within(ctx, pgx.ReadWrite, fn)
}

func (m *TransactionManager) within(ctx context.Context, mode pgx.TxAccessMode, fn func(context.Context) error) error {
	if fn == nil {
		return ErrNilTxFunc
	}
	if m == nil {
		return fn(ctx)
	}

	// 外側のトランザクションがあれば再利用する。
	if st, ok := stateFromContext(ctx); ok {
		if st.mode == pgx.ReadOnly && mode == pgx.ReadWrite {
			return ErrReadOnlyTx
		}
		return fn(ctx)
	}

	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: m.isolation, AccessMode: mode})
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}

	if err := fn(context.WithValue(ctx, txContextKey{}, txState{tx: tx, mode: mode})); err != nil {
		m.rollback(ctx, tx, err)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if !errors.Is(err, pgx.ErrTxClosed) {
			m.rollback(ctx, tx, err)
		}
		return fmt.Errorf("postgres: commit: %w", err)
	}

	return nil
}

func (m *TransactionManager) rollback(ctx context.Context, tx pgx.Tx, cause error) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		m.log.Warn("transaction rollback failed", "cause", cause, "error", err)
	}
}

func stateFromContext(ctx context.Context) (txState, bool) {
	if ctx == nil {
		return txState{}, false
	}
	st, ok := ctx.Value(txContextKey{}).(txState)
	return st, ok
}

// QueryerFromContext はコンテキスト内にトランザクションが存在すればそれを返し、存在しなければ fallback を返します。
func QueryerFromContext(ctx context.Context, fallback Queryer) Queryer {
	if st, ok := stateFromContext(ctx); ok {
		return st.tx
	}
	return fallback
}

// Queryer は pgx.Tx および pgxpool.Pool と互換性のあるクエリ実行インターフェースです。
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}
