package booking

import (
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/iliyamo/spa-booking/internal/model"
)

func TestCalculate(t *testing.T) {
    catalog := []model.Servicio{
        {ID: 1, Nombre: "Masaje relajante", Precio: 5000},
        {ID: 2, Nombre: "Facial", Precio: 8000},
        {ID: 3, Nombre: "Reflexología", Precio: 6000},
    }
    b := benefitFor(1)
    cases := []struct {
        name string
        sel  Selection
        want model.Centimos
    }{
        {"empty", nil, 0},
        {"single cash", Selection{{ServicioID: 3}}, 6000},
        {"membership covers first", Selection{{ServicioID: 1, UsarMembresia: true, Beneficio: &b}, {ServicioID: 2}}, 8000},
        {"benefit attached but unused", Selection{{ServicioID: 1, Beneficio: &b}, {ServicioID: 2}}, 13000},
        {"everything covered", Selection{{ServicioID: 1, UsarMembresia: true, Beneficio: &b}}, 0},
        {"unknown service skipped", Selection{{ServicioID: 99}, {ServicioID: 3}}, 6000},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            got := Calculate(tc.sel, catalog)
            assert.Equal(t, tc.want, got.TotalSinMembresia)
            assert.Equal(t, model.Centimos(0), got.TotalConMembresia)
            assert.Equal(t, got.TotalConMembresia+got.TotalSinMembresia, got.TotalGeneral)
        })
    }
}
