package booking

import "github.com/iliyamo/spa-booking/internal/model"

// Calculate partitions the selection into membership-covered and cash
// amounts using the catalog prices.  Membership covers the full price, so
// covered entries add nothing to TotalConMembresia.  Entries whose service
// is missing from the catalog add nothing at all.
func Calculate(sel Selection, servicios []model.Servicio) model.Totals {
    prices := make(map[int64]model.Centimos, len(servicios))
    for _, s := range servicios {
        prices[s.ID] = s.Precio
    }
    var t model.Totals
    for _, e := range sel {
        precio, ok := prices[e.ServicioID]
        if !ok {
            continue
        }
        if e.UsarMembresia {
            continue
        }
        t.TotalSinMembresia += precio
    }
    t.TotalGeneral = t.TotalConMembresia + t.TotalSinMembresia
    return t
}
