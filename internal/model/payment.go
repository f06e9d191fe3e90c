package model

// PaymentMethod names the settlement endpoint a payment is sent to.
type PaymentMethod string

const (
    MetodoMembresia PaymentMethod = "membresia"
    MetodoEfectivo  PaymentMethod = "efectivo"
    MetodoYape      PaymentMethod = "yape"
    MetodoTarjeta   PaymentMethod = "tarjeta"
)

// Valid reports whether m is one of the methods a patient may pick in the
// payment-method step.  Membership settlement is never picked by hand.
func (m PaymentMethod) Valid() bool {
    switch m {
    case MetodoEfectivo, MetodoYape, MetodoTarjeta:
        return true
    }
    return false
}

// PaymentIntent is the pending cash amount of a submitted appointment.  It
// is created when the submission leaves a non-zero amount and destroyed
// once a settlement succeeds.  IdempotencyKey is generated once per
// submission and sent with every settlement attempt for the appointment.
type PaymentIntent struct {
    CitaID         int64    `json:"citaId"`
    Monto          Centimos `json:"monto"`
    IdempotencyKey string   `json:"idempotencyKey"`
}

// ChargeOutcome is the result of a card charge.
type ChargeOutcome string

const (
    ChargeSucceeded ChargeOutcome = "succeeded"
    ChargeDeclined  ChargeOutcome = "declined"
)

// ChargeResult is delivered to the caller of a card settlement instead of
// being broadcast as an event.
type ChargeResult struct {
    Outcome  ChargeOutcome `json:"outcome"`
    ChargeID string        `json:"chargeId,omitempty"`
    Message  string        `json:"message,omitempty"`
}

// Succeeded is a shorthand for Outcome == ChargeSucceeded.
func (r ChargeResult) Succeeded() bool { return r.Outcome == ChargeSucceeded }

// CheckoutConfig configures the browser card widget for one appointment.
// Amount is expressed in céntimos, the widget's minor unit.
type CheckoutConfig struct {
    Title     string `json:"title"`
    Currency  string `json:"currency"`
    Amount    int64  `json:"amount"`
    Email     string `json:"email"`
    PublicKey string `json:"publicKey"`
    CitaID    int64  `json:"citaId"`
}
