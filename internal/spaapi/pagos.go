package spaapi

import (
    "bytes"
    "context"
    "encoding/json"
    "net/http"

    "github.com/iliyamo/spa-booking/internal/model"
)

// SettlementInput is the body shared by the membership, cash and Yape
// settlement endpoints.
type SettlementInput struct {
    CitaID int64  `json:"idCita"`
    Email  string `json:"email"`
}

// CardChargeInput is the body of POST /pagos-cita/tarjeta.  Token is the
// single-use token produced by the browser card widget.
type CardChargeInput struct {
    CitaID int64  `json:"idCita"`
    Token  string `json:"token"`
    Email  string `json:"email"`
}

// Receipt is the backend's confirmation of a settlement call.  Fields the
// backend does not send are left empty.
type Receipt struct {
    ID      FlexID `json:"id,omitempty"`
    Estado  string `json:"estado,omitempty"`
    Mensaje string `json:"mensaje,omitempty"`
    Message string `json:"message,omitempty"`
}

// Text returns whichever message field the backend filled.
func (r Receipt) Text() string {
    if r.Mensaje != "" {
        return r.Mensaje
    }
    return r.Message
}

var settlementPaths = map[model.PaymentMethod]string{
    model.MetodoMembresia: "/pagos-cita/membresia",
    model.MetodoEfectivo:  "/pagos-cita/efectivo",
    model.MetodoYape:      "/pagos-cita/yape",
    model.MetodoTarjeta:   "/pagos-cita/tarjeta",
}

// PagarConMembresia handles POST /pagos-cita/membresia.
func (c *Client) PagarConMembresia(ctx context.Context, in SettlementInput, idempotencyKey string) (Receipt, error) {
    return c.settle(ctx, "pay_membresia", model.MetodoMembresia, in, idempotencyKey)
}

// RegistrarEfectivo handles POST /pagos-cita/efectivo.
func (c *Client) RegistrarEfectivo(ctx context.Context, in SettlementInput, idempotencyKey string) (Receipt, error) {
    return c.settle(ctx, "pay_efectivo", model.MetodoEfectivo, in, idempotencyKey)
}

// RegistrarYape handles POST /pagos-cita/yape.
func (c *Client) RegistrarYape(ctx context.Context, in SettlementInput, idempotencyKey string) (Receipt, error) {
    return c.settle(ctx, "pay_yape", model.MetodoYape, in, idempotencyKey)
}

// CobrarTarjeta handles POST /pagos-cita/tarjeta.
func (c *Client) CobrarTarjeta(ctx context.Context, in CardChargeInput, idempotencyKey string) (Receipt, error) {
    return c.settle(ctx, "pay_tarjeta", model.MetodoTarjeta, in, idempotencyKey)
}

func (c *Client) settle(ctx context.Context, op string, m model.PaymentMethod, body any, key string) (Receipt, error) {
    var out Receipt
    err := c.do(ctx, request{op: op, method: http.MethodPost, path: settlementPaths[m], body: body, idempotency: key}, &out)
    return out, err
}

// FlexID reads an identifier sent either as a JSON number or a string
// (card charge ids such as "chr_live_...").
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
    b = bytes.TrimSpace(b)
    if bytes.Equal(b, []byte("null")) {
        *f = ""
        return nil
    }
    if len(b) > 0 && b[0] == '"' {
        var s string
        if err := json.Unmarshal(b, &s); err != nil {
            return err
        }
        *f = FlexID(s)
        return nil
    }
    var n json.Number
    if err := json.Unmarshal(b, &n); err != nil {
        return err
    }
    *f = FlexID(n.String())
    return nil
}
