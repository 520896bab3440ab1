package logger

import (
	"testing"

	"github.com/carlosarraes/payroll/internal/core/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NotifiesContractedAdjustment(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	log := FromZap(zap.New(core)).With("component", "payroll")

	f := employee.NewFactory(employee.WithNotifier(log), employee.WithIDGenerator(func() string { return "emp-1" }))
	c := f.NewContractedEmployee(employee.Params{Name: "Bruno", Salary: 1000}, employee.Contract{Company: "Acme"})
	c.AdjustSalary(10)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, employee.ContractedNotice, entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "payroll", fields["component"])
	assert.Equal(t, "emp-1", fields["employee_id"])
	assert.Equal(t, 10.0, fields["percentage"])
}

func TestLogger_Levels(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	log := FromZap(zap.New(core))

	log.Debug("debug")
	log.Info("info")
	log.Warn("warn", "k", "v")
	log.Error("error")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "warn", logs.All()[0].Message)
	assert.Equal(t, "error", logs.All()[1].Message)
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, mode := range []string{"development", "production", ""} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		assert.NotNil(t, l.SugaredLogger)
	}

	NewNop().Info("discarded")
}
