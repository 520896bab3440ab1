package adjustment

import (
	"sync"

	"github.com/carlosarraes/payroll/internal/core/employee"
)

// Controller は現在選択中の Strategy を保持し、適用を委譲します。
type Controller struct {
	mu       sync.RWMutex
	strategy Strategy
}

// NewController は Controller を生成します。
func NewController(s Strategy) *Controller {
	return &Controller{strategy: s}
}

// SetStrategy は次回以降の Apply で使用する Strategy を差し替えます。
func (c *Controller) SetStrategy(s Strategy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strategy = s
}

// Strategy は現在の Strategy を返します。
func (c *Controller) Strategy() Strategy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.strategy
}

// Apply は現在の Strategy を e に適用します。
func (c *Controller) Apply(e *employee.Employee) error {
	s := c.Strategy()
	if s == nil {
		return ErrNoStrategy
	}
	s.Apply(e)
	return nil
}
