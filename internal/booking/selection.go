package booking

import "github.com/iliyamo/spa-booking/internal/model"

// Selection is the ordered set of services tapped into the appointment
// being built.  Entries are unique by ServicioID.
//
// Per service the states are unselected, selected/cash and
// selected/membership.  Toggle moves between unselected and selected/cash;
// ToggleMembership flips between selected/cash and selected/membership and
// is only possible when a benefit was attached at selection time.
type Selection []model.SelectionEntry

// Toggle selects the service when absent and removes it when present.  A
// newly selected service carries the matching benefit (if any) with
// UsarMembresia false.  Removing a service discards its membership choice.
// It reports whether the service is selected afterwards.
func (s *Selection) Toggle(servicioID int64, benefits []model.ConsumoBeneficio) bool {
    if s.index(servicioID) >= 0 {
        var kept Selection
        for _, e := range *s {
            if e.ServicioID != servicioID {
                kept = append(kept, e)
            }
        }
        *s = kept
        return false
    }
    entry := model.SelectionEntry{ServicioID: servicioID}
    if b := MatchBenefit(benefits, servicioID); b != nil {
        cp := *b
        entry.Beneficio = &cp
    }
    *s = append(*s, entry)
    return true
}

// ToggleMembership flips UsarMembresia for one selected service and
// returns the new value.  Other entries are untouched.
func (s Selection) ToggleMembership(servicioID int64) (bool, error) {
    i := s.index(servicioID)
    if i < 0 {
        return false, ErrNotSelected
    }
    if s[i].Beneficio == nil {
        return false, ErrNoBenefit
    }
    s[i].UsarMembresia = !s[i].UsarMembresia
    return s[i].UsarMembresia, nil
}

// Contains reports whether the service is selected.
func (s Selection) Contains(servicioID int64) bool { return s.index(servicioID) >= 0 }

// Entry returns the selection entry of a service.
func (s Selection) Entry(servicioID int64) (model.SelectionEntry, bool) {
    if i := s.index(servicioID); i >= 0 {
        return s[i], true
    }
    return model.SelectionEntry{}, false
}

// ServiceIDs lists the selected services in selection order.
func (s Selection) ServiceIDs() []int64 {
    ids := make([]int64, 0, len(s))
    for _, e := range s {
        ids = append(ids, e.ServicioID)
    }
    return ids
}

// MembershipCount is the number of entries paid with membership.
func (s Selection) MembershipCount() int {
    n := 0
    for _, e := range s {
        if e.UsarMembresia {
            n++
        }
    }
    return n
}

func (s Selection) index(servicioID int64) int {
    for i, e := range s {
        if e.ServicioID == servicioID {
            return i
        }
    }
    return -1
}
