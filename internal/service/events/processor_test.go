package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Heinvv10/gaztime-sub000/internal/apperr"
)

type mockDispatch struct {
	dispatchFn func(ctx context.Context, orderID uuid.UUID) error
	forfeitFn  func(ctx context.Context, orderID uuid.UUID) error
}

func (m *mockDispatch) Dispatch(ctx context.Context, orderID uuid.UUID) error {
	return m.dispatchFn(ctx, orderID)
}

func (m *mockDispatch) ForfeitOrderOffers(ctx context.Context, orderID uuid.UUID) error {
	return m.forfeitFn(ctx, orderID)
}

func event(status string) Event {
	return Event{OrderID: uuid.New(), Status: status, CreatedAt: time.Now().UTC()}
}

func TestHandle_ConfirmedDispatches(t *testing.T) {
	t.Parallel()

	e := event("confirmed")
	called := 0
	p := NewProcessor(&mockDispatch{
		dispatchFn: func(_ context.Context, orderID uuid.UUID) error {
			called++
			require.Equal(t, e.OrderID, orderID)
			return nil
		},
	})

	require.NoError(t, p.Handle(context.Background(), e))
	require.Equal(t, 1, called)
}

func TestHandle_ConfirmedSwallowsBenignOutcomes(t *testing.T) {
	t.Parallel()

	for _, benign := range []error{
		apperr.ErrNoDriverAvailable,
		apperr.ErrConflict,
		apperr.ErrInvalid,
		apperr.ErrNotFound,
	} {
		p := NewProcessor(&mockDispatch{
			dispatchFn: func(context.Context, uuid.UUID) error { return benign },
		})
		require.NoError(t, p.Handle(context.Background(), event("confirmed")), "error %v", benign)
	}
}

func TestHandle_ConfirmedPropagatesUnexpectedErrors(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("db down")
	p := NewProcessor(&mockDispatch{
		dispatchFn: func(context.Context, uuid.UUID) error { return wantErr },
	})

	require.ErrorIs(t, p.Handle(context.Background(), event("confirmed")), wantErr)
}

func TestHandle_CancelledForfeitsOffers(t *testing.T) {
	t.Parallel()

	e := event("cancelled")
	called := 0
	p := NewProcessor(&mockDispatch{
		forfeitFn: func(_ context.Context, orderID uuid.UUID) error {
			called++
			require.Equal(t, e.OrderID, orderID)
			return nil
		},
	})

	require.NoError(t, p.Handle(context.Background(), e))
	require.Equal(t, 1, called)
}

func TestHandle_CancelledSwallowsNotFound(t *testing.T) {
	t.Parallel()

	p := NewProcessor(&mockDispatch{
		forfeitFn: func(context.Context, uuid.UUID) error { return apperr.ErrNotFound },
	})
	require.NoError(t, p.Handle(context.Background(), event("cancelled")))
}

func TestHandle_UnknownStatusSkipped(t *testing.T) {
	t.Parallel()

	p := NewProcessor(&mockDispatch{})
	for _, status := range []string{"created", "delivered", "completed", "", "shipped"} {
		require.NoError(t, p.Handle(context.Background(), event(status)), "status %q", status)
	}
}

func TestHandle_StatusIsCaseAndSpaceInsensitive(t *testing.T) {
	t.Parallel()

	called := 0
	p := NewProcessor(&mockDispatch{
		dispatchFn: func(context.Context, uuid.UUID) error {
			called++
			return nil
		},
	})

	require.NoError(t, p.Handle(context.Background(), event("  Confirmed ")))
	require.Equal(t, 1, called)
}
