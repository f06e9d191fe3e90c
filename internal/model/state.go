package model

// BookingState tracks one appointment through the booking flow.
//
//  IDLE -> SUBMITTING -> DETAILS_PARTIAL | AWAITING_PAYMENT_METHOD | SETTLED_VIA_MEMBERSHIP
//  AWAITING_PAYMENT_METHOD -> CASH_REGISTERED | YAPE_REGISTERED | CARD_CHARGE_PENDING
//  CARD_CHARGE_PENDING -> CARD_CHARGED | CARD_DECLINED
//
// A failed submission before the appointment exists returns to IDLE.
type BookingState string

const (
    StateIdle                  BookingState = "IDLE"
    StateSubmitting            BookingState = "SUBMITTING"
    StateDetailsPartial        BookingState = "DETAILS_PARTIAL"
    StateAwaitingPaymentMethod BookingState = "AWAITING_PAYMENT_METHOD"
    StateSettledViaMembership  BookingState = "SETTLED_VIA_MEMBERSHIP"
    StateCashRegistered        BookingState = "CASH_REGISTERED"
    StateYapeRegistered        BookingState = "YAPE_REGISTERED"
    StateCardChargePending     BookingState = "CARD_CHARGE_PENDING"
    StateCardCharged           BookingState = "CARD_CHARGED"
    StateCardDeclined          BookingState = "CARD_DECLINED"
)

// Incomplete reports whether the appointment exists on the backend but
// still lacks details or a settled payment.
func (s BookingState) Incomplete() bool {
    switch s {
    case StateDetailsPartial, StateAwaitingPaymentMethod, StateCardChargePending, StateCardDeclined:
        return true
    }
    return false
}

// StateForMethod maps a registered settlement to its terminal state.
func StateForMethod(m PaymentMethod) BookingState {
    switch m {
    case MetodoEfectivo:
        return StateCashRegistered
    case MetodoYape:
        return StateYapeRegistered
    case MetodoTarjeta:
        return StateCardChargePending
    case MetodoMembresia:
        return StateSettledViaMembership
    }
    return StateAwaitingPaymentMethod
}
