package booking

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/spa-booking/internal/model"
)

func newDrafts(t *testing.T, be *fakeBackend) *Drafts {
    t.Helper()
    store, _ := newTestStore(t)
    return NewDrafts(store, NewCatalog(be, nil, 0, "test", nil), NewBenefitResolver(be, nil))
}

func TestDrafts_TapAttachesBenefitAndTotals(t *testing.T) {
    be := &fakeBackend{
        servicios:     []model.Servicio{{ID: 1, Precio: 5000}, {ID: 2, Precio: 8000}},
        suscripciones: []model.Suscripcion{{ID: 5, Estado: model.EstadoSuscripcionActiva}},
        consumos:      map[int64][]model.ConsumoBeneficio{5: {benefitFor(1)}},
    }
    ds := newDrafts(t, be)
    ctx := context.Background()

    esp := int64(3)
    _, err := ds.Update(ctx, testPatient, DraftPatch{EspecialidadID: &esp})
    require.NoError(t, err)
    _, err = ds.TapService(ctx, testPatient, 1)
    require.NoError(t, err)
    v, err := ds.TapService(ctx, testPatient, 2)
    require.NoError(t, err)
    assert.Equal(t, model.Centimos(13000), v.Totals.TotalSinMembresia)
    require.NotNil(t, v.Servicios[0].Beneficio)

    v, err = ds.ToggleMembership(ctx, testPatient, 1)
    require.NoError(t, err)
    assert.Equal(t, model.Centimos(8000), v.Totals.TotalSinMembresia)

    _, err = ds.ToggleMembership(ctx, testPatient, 2)
    assert.ErrorIs(t, err, ErrNoBenefit)

    v, err = ds.TapService(ctx, testPatient, 1)
    require.NoError(t, err)
    assert.Equal(t, []int64{2}, v.Servicios.ServiceIDs())
}

func TestDrafts_TapRejectsForeignService(t *testing.T) {
    ds := newDrafts(t, &fakeBackend{servicios: []model.Servicio{{ID: 1, Precio: 5000}}})
    _, err := ds.TapService(context.Background(), testPatient, 77)
    var verr *ValidationError
    assert.ErrorAs(t, err, &verr)
}

func TestDrafts_Reset(t *testing.T) {
    ds := newDrafts(t, &fakeBackend{servicios: []model.Servicio{{ID: 1, Precio: 5000}}})
    ctx := context.Background()
    col := int64(7)
    _, err := ds.Update(ctx, testPatient, DraftPatch{ColaboradorID: &col})
    require.NoError(t, err)
    require.NoError(t, ds.Reset(ctx, testPatient))
    d, err := ds.Load(ctx, testPatient)
    require.NoError(t, err)
    assert.Equal(t, Draft{}, d)
}
