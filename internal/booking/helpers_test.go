package booking

import (
    "context"
    "errors"
    "sync"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/spa-booking/internal/model"
    "github.com/iliyamo/spa-booking/internal/queue"
    "github.com/iliyamo/spa-booking/internal/repository"
    "github.com/iliyamo/spa-booking/internal/spaapi"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
    t.Helper()
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })
    return NewStore(rdb, "test", time.Hour, time.Hour), mr
}

var errNetwork = errors.New("connection reset by peer")

// fakeBackend records every call made to the spa backend.
type fakeBackend struct {
    mu sync.Mutex

    servicios     []model.Servicio
    suscripciones []model.Suscripcion
    consumos      map[int64][]model.ConsumoBeneficio

    citaID        int64
    createCitaErr error
    failDetailAt  int // 1-based index of the failing detail; 0 means none
    settleErr     error
    cardErr       error
    afterDetail   func() // runs after every created detail

    citas       []spaapi.CreateCitaInput
    detalles    []spaapi.CreateDetalleInput
    settlements []string
    keys        []string
    catalogHits int
}

func (f *fakeBackend) ListEspecialidades(ctx context.Context) ([]model.Especialidad, error) {
    return []model.Especialidad{{ID: 1, Nombre: "Masajes"}}, nil
}

func (f *fakeBackend) ListColaboradores(ctx context.Context, id int64) ([]model.Colaborador, error) {
    return []model.Colaborador{{ID: 7, Nombre: "Ana", EspecialidadID: id}}, nil
}

func (f *fakeBackend) ListServicios(ctx context.Context, id int64) ([]model.Servicio, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.catalogHits++
    return f.servicios, nil
}

func (f *fakeBackend) ListSuscripciones(ctx context.Context, pacienteID int64) ([]model.Suscripcion, error) {
    return f.suscripciones, nil
}

func (f *fakeBackend) ListConsumosBeneficio(ctx context.Context, suscripcionID int64) ([]model.ConsumoBeneficio, error) {
    return f.consumos[suscripcionID], nil
}

func (f *fakeBackend) CreateCita(ctx context.Context, in spaapi.CreateCitaInput) (model.Cita, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.citas = append(f.citas, in)
    if f.createCitaErr != nil {
        return model.Cita{}, f.createCitaErr
    }
    return model.Cita{ID: f.citaID, PacienteID: in.PacienteID, Fecha: in.Fecha, Hora: in.Hora}, nil
}

func (f *fakeBackend) CreateDetalleCita(ctx context.Context, in spaapi.CreateDetalleInput) (model.DetalleCita, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.detalles = append(f.detalles, in)
    if f.failDetailAt == len(f.detalles) {
        return model.DetalleCita{}, errNetwork
    }
    if f.afterDetail != nil {
        f.afterDetail()
    }
    return model.DetalleCita{
        ID:             int64(len(f.detalles)),
        CitaID:         in.CitaID,
        ServicioID:     in.ServicioID,
        ColaboradorID:  in.ColaboradorID,
        EsConMembresia: in.PagarConMembresia != nil && *in.PagarConMembresia,
    }, nil
}

func (f *fakeBackend) record(method, key string) {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.settlements = append(f.settlements, method)
    f.keys = append(f.keys, key)
}

func (f *fakeBackend) PagarConMembresia(ctx context.Context, in spaapi.SettlementInput, key string) (spaapi.Receipt, error) {
    f.record("membresia", key)
    return spaapi.Receipt{Mensaje: "ok"}, f.settleErr
}

func (f *fakeBackend) RegistrarEfectivo(ctx context.Context, in spaapi.SettlementInput, key string) (spaapi.Receipt, error) {
    f.record("efectivo", key)
    return spaapi.Receipt{Mensaje: "pendiente de confirmación"}, f.settleErr
}

func (f *fakeBackend) RegistrarYape(ctx context.Context, in spaapi.SettlementInput, key string) (spaapi.Receipt, error) {
    f.record("yape", key)
    return spaapi.Receipt{Mensaje: "pendiente de confirmación"}, f.settleErr
}

func (f *fakeBackend) CobrarTarjeta(ctx context.Context, in spaapi.CardChargeInput, key string) (spaapi.Receipt, error) {
    f.record("tarjeta", key)
    if f.cardErr != nil {
        return spaapi.Receipt{}, f.cardErr
    }
    return spaapi.Receipt{ID: "chr_test_1", Mensaje: "cargo exitoso"}, nil
}

// fakeLedger keeps attempts in memory.
type fakeLedger struct {
    mu      sync.Mutex
    records []*repository.AttemptRecord
    updates []repository.AttemptUpdate
}

func (l *fakeLedger) Create(ctx context.Context, rec *repository.AttemptRecord) error {
    l.mu.Lock()
    defer l.mu.Unlock()
    rec.ID = uint64(len(l.records) + 1)
    l.records = append(l.records, rec)
    return nil
}

func (l *fakeLedger) Update(ctx context.Context, id uint64, upd repository.AttemptUpdate) error {
    l.mu.Lock()
    defer l.mu.Unlock()
    l.updates = append(l.updates, upd)
    return nil
}

func (l *fakeLedger) UpdateByCita(ctx context.Context, citaID int64, upd repository.AttemptUpdate) error {
    return l.Update(ctx, 0, upd)
}

func (l *fakeLedger) states() []string {
    l.mu.Lock()
    defer l.mu.Unlock()
    out := make([]string, 0, len(l.updates))
    for _, u := range l.updates {
        out = append(out, u.State)
    }
    return out
}

// fakeEvents collects published events.
type fakeEvents struct {
    mu     sync.Mutex
    events []queue.Event
}

func (e *fakeEvents) Publish(ctx context.Context, ev queue.Event) error {
    e.mu.Lock()
    defer e.mu.Unlock()
    e.events = append(e.events, ev)
    return nil
}

func (e *fakeEvents) queues() []string {
    e.mu.Lock()
    defer e.mu.Unlock()
    out := make([]string, 0, len(e.events))
    for _, ev := range e.events {
        out = append(out, ev.QueueName())
    }
    return out
}

var testPatient = model.Patient{ID: 42, Email: "paciente@example.com"}

func benefitFor(servicioID int64) model.ConsumoBeneficio {
    return model.ConsumoBeneficio{
        ID:                 900 + servicioID,
        SuscripcionID:      5,
        Servicio:           model.Servicio{ID: servicioID},
        CantidadTotal:      1,
        CantidadDisponible: 1,
    }
}
