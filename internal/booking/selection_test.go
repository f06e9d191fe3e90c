package booking

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/spa-booking/internal/model"
)

func TestToggle_SelectThenDeselectRestoresSelection(t *testing.T) {
    benefits := []model.ConsumoBeneficio{benefitFor(1)}
    cases := []Selection{
        nil,
        {{ServicioID: 2}},
        {{ServicioID: 2}, {ServicioID: 3, UsarMembresia: true, Beneficio: &model.ConsumoBeneficio{ID: 9}}},
    }
    for _, before := range cases {
        sel := append(Selection(nil), before...)
        assert.True(t, sel.Toggle(1, benefits))
        assert.False(t, sel.Toggle(1, benefits))
        assert.Equal(t, before, sel)
    }
}

func TestToggle_AttachesBenefitUnused(t *testing.T) {
    var sel Selection
    sel.Toggle(1, []model.ConsumoBeneficio{benefitFor(1)})
    sel.Toggle(2, []model.ConsumoBeneficio{benefitFor(1)})

    require.Len(t, sel, 2)
    require.NotNil(t, sel[0].Beneficio)
    assert.Equal(t, int64(901), sel[0].Beneficio.ID)
    assert.False(t, sel[0].UsarMembresia)
    assert.Nil(t, sel[1].Beneficio)
    assert.Equal(t, []int64{1, 2}, sel.ServiceIDs())
}

func TestToggle_IgnoresExhaustedBenefit(t *testing.T) {
    b := benefitFor(1)
    b.CantidadDisponible = 0
    var sel Selection
    sel.Toggle(1, []model.ConsumoBeneficio{b})
    assert.Nil(t, sel[0].Beneficio)
}

func TestToggleMembership_WithoutBenefitIsRejected(t *testing.T) {
    sel := Selection{{ServicioID: 1}}
    _, err := sel.ToggleMembership(1)
    assert.ErrorIs(t, err, ErrNoBenefit)
    assert.False(t, sel[0].UsarMembresia)

    _, err = sel.ToggleMembership(5)
    assert.ErrorIs(t, err, ErrNotSelected)
}

func TestToggleMembership_FlipsOnlyThatEntry(t *testing.T) {
    var sel Selection
    benefits := []model.ConsumoBeneficio{benefitFor(1), benefitFor(2)}
    sel.Toggle(1, benefits)
    sel.Toggle(2, benefits)

    on, err := sel.ToggleMembership(1)
    require.NoError(t, err)
    assert.True(t, on)
    assert.False(t, sel[1].UsarMembresia)
    assert.Equal(t, 1, sel.MembershipCount())

    on, err = sel.ToggleMembership(1)
    require.NoError(t, err)
    assert.False(t, on)
    assert.Equal(t, 0, sel.MembershipCount())
}

func TestDraftSetEspecialidadClearsDependentFields(t *testing.T) {
    d := Draft{EspecialidadID: 1, ColaboradorID: 7, Fecha: "2025-01-10", Servicios: Selection{{ServicioID: 1}}}
    d.SetEspecialidad(1)
    assert.Equal(t, int64(7), d.ColaboradorID)

    d.SetEspecialidad(2)
    assert.Equal(t, int64(0), d.ColaboradorID)
    assert.Empty(t, d.Servicios)
    assert.Equal(t, "2025-01-10", d.Fecha)
}
