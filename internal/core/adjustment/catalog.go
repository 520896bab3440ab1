package adjustment

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

const (
	NamePerformance = "performance"
	NameInflation   = "inflation"
)

// Catalog は名前付き Strategy の対応表です。
type Catalog struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewCatalog は空の Catalog を生成します。
func NewCatalog() *Catalog {
	return &Catalog{strategies: make(map[string]Strategy)}
}

// DefaultCatalog は performance と inflation を登録済みの Catalog を返します。
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	_ = c.Register(NamePerformance, Performance)
	_ = c.Register(NameInflation, Inflation)
	return c
}

// Register は name で Strategy を登録します。同名の登録は上書きされます。
func (c *Catalog) Register(name string, s Strategy) error {
	key := normalizeName(name)
	if key == "" || s == nil {
		return ErrInvalidName
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strategies[key] = s
	return nil
}

// Lookup は name に対応する Strategy を返します。
func (c *Catalog) Lookup(name string) (Strategy, error) {
	key := normalizeName(name)
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.strategies[key]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownStrategy)
	}
	return s, nil
}

// Names は登録済みの名前を昇順で返します。
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.strategies))
	for name := range c.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Wrap は登録済みの全 Strategy を wrap で包みます。
func (c *Catalog) Wrap(wrap func(Strategy) Strategy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, s := range c.strategies {
		c.strategies[name] = wrap(s)
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
