package handler_test

import (
    "encoding/json"
    "io"
    "net/http"
    "net/http/httptest"
    "strings"
    "sync"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    "github.com/iliyamo/spa-booking/internal/booking"
    "github.com/iliyamo/spa-booking/internal/config"
    "github.com/iliyamo/spa-booking/internal/handler"
    "github.com/iliyamo/spa-booking/internal/middleware"
    "github.com/iliyamo/spa-booking/internal/router"
    "github.com/iliyamo/spa-booking/internal/spaapi"
    "github.com/iliyamo/spa-booking/internal/utils"
)

const jwtSecret = "handler-test-secret"

// spaBackend is an in-memory stand-in for the spa REST API.
type spaBackend struct {
    mu          sync.Mutex
    detalles    []map[string]any
    settlements []string
    keys        []string
    failDetail  bool
}

func (b *spaBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
    b.mu.Lock()
    defer b.mu.Unlock()
    w.Header().Set("Content-Type", "application/json")
    switch {
    case r.URL.Path == "/especialidades":
        io.WriteString(w, `[{"id":3,"nombre":"Masajes"}]`)
    case r.URL.Path == "/colaboradores":
        io.WriteString(w, `[{"id":7,"nombre":"Ana","apellido":"Quispe","idEspecialidad":3}]`)
    case r.URL.Path == "/servicios":
        io.WriteString(w, `{"data":[{"id":1,"nombre":"Relajante","precio":"50.00","idEspecialidad":3},{"id":2,"nombre":"Piedras","precio":80,"idEspecialidad":3}]}`)
    case r.URL.Path == "/suscripciones":
        io.WriteString(w, `[{"id":5,"estado":"activa","idPaciente":42}]`)
    case r.URL.Path == "/consumos-beneficio":
        io.WriteString(w, `[{"id":901,"idSuscripcion":5,"servicio":{"id":1,"nombre":"Relajante","precio":"50.00"},"cantidadTotal":1,"cantidadConsumida":0,"cantidadDisponible":1}]`)
    case r.URL.Path == "/citas":
        io.WriteString(w, `{"id":310,"idPaciente":42,"fecha":"2025-03-14","hora":"10:30","estado":"pendiente"}`)
    case r.URL.Path == "/detalle-citas":
        var body map[string]any
        _ = json.NewDecoder(r.Body).Decode(&body)
        b.detalles = append(b.detalles, body)
        if b.failDetail && len(b.detalles) == 2 {
            w.WriteHeader(http.StatusInternalServerError)
            io.WriteString(w, `{"message":"db timeout"}`)
            return
        }
        io.WriteString(w, `{"id":1}`)
    case strings.HasPrefix(r.URL.Path, "/pagos-cita/"):
        b.settlements = append(b.settlements, strings.TrimPrefix(r.URL.Path, "/pagos-cita/"))
        b.keys = append(b.keys, r.Header.Get(spaapi.IdempotencyHeader))
        io.WriteString(w, `{"id":"chr_1","mensaje":"registrado"}`)
    default:
        w.WriteHeader(http.StatusNotFound)
    }
}

type app struct {
    e       *echo.Echo
    backend *spaBackend
}

func newApp(t *testing.T) *app {
    t.Helper()
    be := &spaBackend{}
    srv := httptest.NewServer(be)
    t.Cleanup(srv.Close)

    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })

    log := zap.NewNop()
    api := spaapi.New(config.BackendConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, log, nil)
    store := booking.NewStore(rdb, "test", time.Hour, time.Hour)
    catalog := booking.NewCatalog(api, rdb, time.Minute, "test", log)
    benefits := booking.NewBenefitResolver(api, log)
    drafts := booking.NewDrafts(store, catalog, benefits)
    sub := booking.NewSubmitter(api, catalog, store, booking.Deps{Log: log})
    coord := booking.NewCoordinator(api, store, config.CulqiConfig{PublicKey: "pk_test", Title: "Spa"}, booking.Deps{Log: log})

    e := echo.New()
    e.Validator = handler.NewValidator()
    router.RegisterRoutes(e, nil)
    router.RegisterCatalog(e, handler.NewCatalogHandler(catalog, log), middleware.NewRedisCache(config.CacheConfig{}, nil, log))
    attempts := handler.NewAttemptHandler(&stubAttempts{}, log)
    router.RegisterPatient(e, handler.NewBookingHandler(drafts, benefits, sub, coord, log), attempts, jwtSecret,
        middleware.NewTokenBucket(config.RateLimitConfig{}, nil, log))
    router.RegisterAdmin(e, attempts, jwtSecret)
    return &app{e: e, backend: be}
}

func (a *app) do(t *testing.T, method, path, body, role string) (*httptest.ResponseRecorder, map[string]any) {
    t.Helper()
    var r io.Reader
    if body != "" {
        r = strings.NewReader(body)
    }
    req := httptest.NewRequest(method, path, r)
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    if role != "" {
        tok, err := utils.NewAccessToken(jwtSecret, utils.TokenClaims{Subject: 42, Email: "p@example.com", Role: role}, time.Minute)
        require.NoError(t, err)
        req.Header.Set("Authorization", "Bearer "+tok)
    }
    rec := httptest.NewRecorder()
    a.e.ServeHTTP(rec, req)
    var out map[string]any
    _ = json.Unmarshal(rec.Body.Bytes(), &out)
    return rec, out
}

func (a *app) buildDraft(t *testing.T) {
    t.Helper()
    rec, _ := a.do(t, http.MethodPut, "/v1/borrador", `{"idEspecialidad":3,"idColaborador":7,"fecha":"2025-03-14","hora":"10:30"}`, utils.RolePaciente)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestCatalogRoutes(t *testing.T) {
    a := newApp(t)
    rec, body := a.do(t, http.MethodGet, "/v1/especialidades/3/servicios", "", "")
    require.Equal(t, http.StatusOK, rec.Code)
    data := body["data"].([]any)
    require.Len(t, data, 2)
    assert.Equal(t, 50.0, data[0].(map[string]any)["precio"])

    rec, body = a.do(t, http.MethodGet, "/v1/especialidades/3/colaboradores", "", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "Ana Quispe", body["data"].([]any)[0].(map[string]any)["nombre"])

    rec, _ = a.do(t, http.MethodGet, "/v1/especialidades/abc/servicios", "", "")
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingFlow_MembershipAndCash(t *testing.T) {
    a := newApp(t)
    a.buildDraft(t)

    rec, _ := a.do(t, http.MethodPost, "/v1/borrador/servicios/1", "", utils.RolePaciente)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    rec, _ = a.do(t, http.MethodPost, "/v1/borrador/servicios/2", "", utils.RolePaciente)
    require.Equal(t, http.StatusOK, rec.Code)

    rec, _ = a.do(t, http.MethodPost, "/v1/borrador/servicios/2/membresia", "", utils.RolePaciente)
    assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

    rec, body := a.do(t, http.MethodPost, "/v1/borrador/servicios/1/membresia", "", utils.RolePaciente)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, 80.0, body["totales"].(map[string]any)["totalSinMembresia"])

    rec, body = a.do(t, http.MethodPost, "/v1/citas", "", utils.RolePaciente)
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
    assert.Equal(t, "AWAITING_PAYMENT_METHOD", body["state"])
    assert.Equal(t, 80.0, body["pago"].(map[string]any)["monto"])

    require.Len(t, a.backend.detalles, 2)
    assert.Equal(t, true, a.backend.detalles[0]["pagarConMembresia"])
    _, present := a.backend.detalles[1]["pagarConMembresia"]
    assert.False(t, present)

    rec, body = a.do(t, http.MethodGet, "/v1/citas/310/checkout", "", utils.RolePaciente)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, 8000.0, body["amount"])
    assert.Equal(t, "PEN", body["currency"])

    rec, body = a.do(t, http.MethodPost, "/v1/citas/310/pagos/efectivo", "", utils.RolePaciente)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    assert.Equal(t, "CASH_REGISTERED", body["state"])
    assert.Equal(t, []string{"efectivo"}, a.backend.settlements)
    assert.NotEmpty(t, a.backend.keys[0])

    rec, _ = a.do(t, http.MethodPost, "/v1/citas/310/pagos/efectivo", "", utils.RolePaciente)
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmit_EmptyDraftIsRejected(t *testing.T) {
    a := newApp(t)
    a.buildDraft(t)
    rec, body := a.do(t, http.MethodPost, "/v1/citas", "", utils.RolePaciente)
    assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
    assert.Equal(t, "servicios", body["field"])
    assert.Empty(t, a.backend.detalles)
}

func TestSubmit_PartialFailureReportsCita(t *testing.T) {
    a := newApp(t)
    a.backend.failDetail = true
    a.buildDraft(t)
    a.do(t, http.MethodPost, "/v1/borrador/servicios/1", "", utils.RolePaciente)
    a.do(t, http.MethodPost, "/v1/borrador/servicios/2", "", utils.RolePaciente)

    rec, body := a.do(t, http.MethodPost, "/v1/citas", "", utils.RolePaciente)
    assert.Equal(t, http.StatusBadGateway, rec.Code)
    cita := body["cita"].(map[string]any)
    assert.Equal(t, 310.0, cita["citaId"])
    assert.Equal(t, "DETAILS_PARTIAL", cita["state"])
    assert.Empty(t, a.backend.settlements)
}

func TestSettle_CardRequiresToken(t *testing.T) {
    a := newApp(t)
    rec, body := a.do(t, http.MethodPost, "/v1/citas/310/pagos/tarjeta", `{}`, utils.RolePaciente)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Equal(t, "token", body["field"])

    rec, _ = a.do(t, http.MethodPost, "/v1/citas/310/pagos/bitcoin", "", utils.RolePaciente)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateDraft_Validation(t *testing.T) {
    a := newApp(t)
    rec, body := a.do(t, http.MethodPut, "/v1/borrador", `{"fecha":"14/03/2025"}`, utils.RolePaciente)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Equal(t, "fecha", body["field"])
}

func TestPatientRoutesRequireRole(t *testing.T) {
    a := newApp(t)
    rec, _ := a.do(t, http.MethodGet, "/v1/borrador", "", "")
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    rec, _ = a.do(t, http.MethodGet, "/v1/borrador", "", utils.RoleAdministrador)
    assert.Equal(t, http.StatusForbidden, rec.Code)
    rec, _ = a.do(t, http.MethodGet, "/v1/admin/intentos-incompletos", "", utils.RolePaciente)
    assert.Equal(t, http.StatusForbidden, rec.Code)
    rec, _ = a.do(t, http.MethodGet, "/v1/admin/intentos-incompletos", "", utils.RoleAdministrador)
    assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListBeneficios(t *testing.T) {
    a := newApp(t)
    rec, body := a.do(t, http.MethodGet, "/v1/beneficios", "", utils.RolePaciente)
    require.Equal(t, http.StatusOK, rec.Code)
    data := body["data"].([]any)
    require.Len(t, data, 1)
    assert.Equal(t, 1.0, data[0].(map[string]any)["cantidadDisponible"])
}

func TestHealth(t *testing.T) {
    a := newApp(t)
    rec, _ := a.do(t, http.MethodGet, "/healthz", "", "")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "ok", rec.Body.String())
}
