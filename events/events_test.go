package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failing struct{ err error }

func (f failing) Dispatch(context.Context, Event) error { return f.err }

func TestMultiDeliversToAllDispatchers(t *testing.T) {
	boom := errors.New("boom")
	first, last := &Recorder{}, &Recorder{}
	m := Multi{first, failing{boom}, last}

	err := m.Dispatch(context.Background(), OrderCreated{OrderID: 7})

	require.ErrorIs(t, err, boom)
	require.Len(t, first.Events, 1)
	require.Len(t, last.Events, 1)
	assert.Equal(t, TypeOrderCreated, last.Events[0].Type())
}

func TestMultiWithoutFailures(t *testing.T) {
	assert.NoError(t, Multi{Discard{}, &Recorder{}}.Dispatch(context.Background(), OrderTimeUpdated{}))
	assert.NoError(t, Multi{}.Dispatch(context.Background(), OrderStatusChanged{}))
}

func TestEventTypes(t *testing.T) {
	assert.Equal(t, "order.created", OrderCreated{}.Type())
	assert.Equal(t, "order.status_changed", OrderStatusChanged{}.Type())
	assert.Equal(t, "order.time_updated", OrderTimeUpdated{}.Type())
}
