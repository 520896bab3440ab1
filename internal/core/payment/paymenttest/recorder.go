// Package paymenttest は payment.ExternalService のテスト用実装を提供します。
package paymenttest

import "sync"

// Call は Recorder が記録した 1 回分の呼び出しです。
type Call struct {
	Name   string
	Amount float64
}

// Recorder は呼び出しを記録するだけの ExternalService です。
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *Recorder) MakePayment(name string, amount float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Name: name, Amount: amount})
}

// Calls は記録済みの呼び出しを返します。
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}
