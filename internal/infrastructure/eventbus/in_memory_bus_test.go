package eventbus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/paywave-go/internal/domain/event"
	"github.com/rcarvalho-pb/paywave-go/internal/infrastructure/eventbus"
)

func TestInMemoryBus_ShouldDeliverToSubscribersOfType(t *testing.T) {
	bus := eventbus.NewInMemoryBus()

	var applied, failed int
	bus.Subscribe(event.SettlementApplied, func(context.Context, event.Event) error {
		applied++
		return nil
	})
	bus.Subscribe(event.SettlementFailed, func(context.Context, event.Event) error {
		failed++
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), event.Event{Type: event.SettlementApplied, Key: "PYW-1"}))

	require.Equal(t, 1, applied)
	require.Equal(t, 0, failed)
}

func TestInMemoryBus_WhenHandlerFails_ShouldStillRunOthers(t *testing.T) {
	bus := eventbus.NewInMemoryBus()
	boom := errors.New("boom")

	second := false
	bus.Subscribe(event.PayoutFailed, func(context.Context, event.Event) error { return boom })
	bus.Subscribe(event.PayoutFailed, func(context.Context, event.Event) error {
		second = true
		return nil
	})

	err := bus.Publish(context.Background(), event.Event{Type: event.PayoutFailed})
	require.ErrorIs(t, err, boom)
	require.True(t, second)
}
