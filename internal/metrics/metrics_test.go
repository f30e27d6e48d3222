package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation(t *testing.T) {
	before := testutil.ToFloat64(OperationsTotal.WithLabelValues("place_bid", "ok"))

	ObserveOperation("place_bid", "ok")
	ObserveOperation("place_bid", "ok")
	ObserveOperation("place_bid", "4xx")

	require.Equal(t, before+2, testutil.ToFloat64(OperationsTotal.WithLabelValues("place_bid", "ok")))
	require.GreaterOrEqual(t, testutil.ToFloat64(OperationsTotal.WithLabelValues("place_bid", "4xx")), 1.0)
}

func TestRegistryGathers(t *testing.T) {
	ObserveOperation("buy", "ok")

	families, err := Registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	require.Contains(t, names, "cardmarket_operations_total")
}
