package employee

import (
	"iter"
	"sync"
)

// Registry はプロセス内で共有される社員の一覧です。追加順を保持し、削除操作はありません。
type Registry struct {
	mu        sync.RWMutex
	employees []*Employee
}

var (
	sharedOnce     sync.Once
	sharedRegistry *Registry
)

// Shared はプロセス全体で唯一の Registry を返します。初回呼び出し時に生成されます。
//
// グローバルな可変状態のため、テストや複数テナントでは NewRegistry を注入してください。
func Shared() *Registry {
	sharedOnce.Do(func() {
		sharedRegistry = NewRegistry()
	})
	return sharedRegistry
}

// NewRegistry は独立した Registry を生成します。
func NewRegistry() *Registry {
	return &Registry{}
}

// Add は社員を末尾に追加します。重複排除は行いません。
func (r *Registry) Add(e *Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees = append(r.employees, e)
}

// List は現在の社員を追加順で返します。要素は共有されたポインタです。
func (r *Registry) List() []*Employee {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Employee, len(r.employees))
	copy(out, r.employees)
	return out
}

// Len は登録数を返します。
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.employees)
}

// Find は ID で社員を検索します。
func (r *Registry) Find(id string) (*Employee, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.employees {
		if e != nil && e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// View は Registry の読み取り専用ビューを返します。以後の Add も反映されます。
func (r *Registry) View() View {
	return View{r: r}
}

// View は Registry を参照し続ける読み取り専用の窓です。
type View struct {
	r *Registry
}

func (v View) Len() int {
	return v.r.Len()
}

// At は i 番目の社員を返します。範囲外の場合は nil です。
func (v View) At(i int) *Employee {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()
	if i < 0 || i >= len(v.r.employees) {
		return nil
	}
	return v.r.employees[i]
}

// All は呼び出し時点から走査中に追加された社員も含めて順に返します。
func (v View) All() iter.Seq2[int, *Employee] {
	return func(yield func(int, *Employee) bool) {
		for i := 0; i < v.Len(); i++ {
			if !yield(i, v.At(i)) {
				return
			}
		}
	}
}
