package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdmx/acms/executor"
)

func TestCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector, err := New(registry)
	require.NoError(t, err)

	collector.CommandCompleted(executor.OutcomeSuccess, 200*time.Millisecond)
	collector.CommandCompleted(executor.OutcomeSuccess, 300*time.Millisecond)
	collector.CommandCompleted(executor.OutcomeTimeout, time.Second)
	collector.CommandCompleted(executor.OutcomeInvalidArgument, 0)
	collector.ProcessesChanged(3, 7)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.commands.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.commands.WithLabelValues("timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.commands.WithLabelValues("invalid_argument")))
	assert.Equal(t, 3.0, testutil.ToFloat64(collector.active))
	assert.Equal(t, 7.0, testutil.ToFloat64(collector.available))

	// invalid arguments never spawn a process and are not timed
	assert.Equal(t, 1, testutil.CollectAndCount(collector.duration))
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() == "acms_executor_command_duration_seconds" {
			assert.Equal(t, uint64(3), family.GetMetric()[0].GetHistogram().GetSampleCount())
		}
	}
}

func TestNewRejectsDuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := New(registry)
	require.NoError(t, err)

	_, err = New(registry)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to register executor metrics")
}

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()
	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
