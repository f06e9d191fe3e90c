package booking

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/spa-booking/internal/model"
)

func TestStore_DraftLifecycle(t *testing.T) {
    s, mr := newTestStore(t)
    ctx := context.Background()

    d, err := s.LoadDraft(ctx, 42)
    require.NoError(t, err)
    assert.Equal(t, Draft{}, d)

    b := benefitFor(1)
    want := Draft{EspecialidadID: 3, ColaboradorID: 7, Fecha: "2025-03-14", Hora: "10:30",
        Servicios: Selection{{ServicioID: 1, UsarMembresia: true, Beneficio: &b}}}
    require.NoError(t, s.SaveDraft(ctx, 42, want))
    assert.Equal(t, time.Hour, mr.TTL("test:draft:42"))

    got, err := s.LoadDraft(ctx, 42)
    require.NoError(t, err)
    assert.Equal(t, want, got)

    require.NoError(t, s.DeleteDraft(ctx, 42))
    got, err = s.LoadDraft(ctx, 42)
    require.NoError(t, err)
    assert.Empty(t, got.Servicios)
}

func TestStore_IntentIsScopedToPatient(t *testing.T) {
    s, _ := newTestStore(t)
    ctx := context.Background()
    in := model.PaymentIntent{CitaID: 310, Monto: 8050, IdempotencyKey: "k"}
    require.NoError(t, s.SaveIntent(ctx, 42, in))

    got, err := s.LoadIntent(ctx, 42, 310)
    require.NoError(t, err)
    assert.Equal(t, in, got)

    _, err = s.LoadIntent(ctx, 43, 310)
    assert.ErrorIs(t, err, ErrNoPendingPayment)

    require.NoError(t, s.DeleteIntent(ctx, 42, 310))
    _, err = s.LoadIntent(ctx, 42, 310)
    assert.ErrorIs(t, err, ErrNoPendingPayment)
}

func TestStore_LockIsExclusiveAndOwned(t *testing.T) {
    s, mr := newTestStore(t)
    ctx := context.Background()

    tok, ok, err := s.TryLock(ctx, "settle:1", time.Second)
    require.NoError(t, err)
    require.True(t, ok)

    _, ok, err = s.TryLock(ctx, "settle:1", time.Second)
    require.NoError(t, err)
    assert.False(t, ok)

    require.NoError(t, s.Unlock(ctx, "settle:1", "someone-else"))
    assert.True(t, mr.Exists("test:lock:settle:1"))

    require.NoError(t, s.Unlock(ctx, "settle:1", tok))
    assert.False(t, mr.Exists("test:lock:settle:1"))

    mr.FastForward(2 * time.Second)
    _, ok, err = s.TryLock(ctx, "settle:1", time.Second)
    require.NoError(t, err)
    assert.True(t, ok)
}
