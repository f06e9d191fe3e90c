package model

// Patient is the authenticated caller of the booking flow.  It is
// extracted from the access token and passed explicitly into every booking
// operation; nothing reads it from shared state.
type Patient struct {
    ID    int64
    Email string
}
