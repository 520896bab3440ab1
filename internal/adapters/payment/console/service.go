// Package console は支払い確認を標準出力などに書き出す外部決済サービスです。
package console

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
)

// PaymentService は支払いを行わず、確認メッセージのみを出力します。
type PaymentService struct {
	mu  sync.Mutex
	out io.Writer
}

// New は PaymentService を生成します。out が nil の場合は標準出力を使います。
func New(out io.Writer) *PaymentService {
	if out == nil {
		out = os.Stdout
	}
	return &PaymentService{out: out}
}

// MakePayment は "payment of <amount> made to <name>" を 1 行出力します。
func (s *PaymentService) MakePayment(name string, amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.out, "payment of %s made to %s\n", strconv.FormatFloat(amount, 'f', 2, 64), name)
}
