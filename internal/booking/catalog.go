package booking

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/iliyamo/spa-booking/internal/model"
)

// CatalogBackend is the read side of the backend used by the booking form.
type CatalogBackend interface {
    ListEspecialidades(ctx context.Context) ([]model.Especialidad, error)
    ListColaboradores(ctx context.Context, especialidadID int64) ([]model.Colaborador, error)
    ListServicios(ctx context.Context, especialidadID int64) ([]model.Servicio, error)
}

// Catalog is a read-through cache over the backend catalog.  Entries
// expire after ttl; nothing else invalidates them.  Redis failures fall
// through to the backend.  A nil rdb disables caching.
type Catalog struct {
    backend CatalogBackend
    rdb     *redis.Client
    ttl     time.Duration
    prefix  string
    log     *zap.Logger
}

// NewCatalog constructs a Catalog.  backend must be non-nil.
func NewCatalog(backend CatalogBackend, rdb *redis.Client, ttl time.Duration, prefix string, log *zap.Logger) *Catalog {
    if backend == nil {
        panic("booking: nil backend passed to NewCatalog")
    }
    if log == nil {
        log = zap.NewNop()
    }
    if prefix == "" {
        prefix = "spa"
    }
    return &Catalog{backend: backend, rdb: rdb, ttl: ttl, prefix: prefix, log: log}
}

// Especialidades lists every specialty.
func (c *Catalog) Especialidades(ctx context.Context) ([]model.Especialidad, error) {
    return cached(ctx, c, c.key("especialidades", 0), func() ([]model.Especialidad, error) {
        return c.backend.ListEspecialidades(ctx)
    })
}

// Colaboradores lists the collaborators of a specialty.  A zero id means no
// specialty is chosen yet and yields an empty list without a backend call.
func (c *Catalog) Colaboradores(ctx context.Context, especialidadID int64) ([]model.Colaborador, error) {
    if especialidadID == 0 {
        return []model.Colaborador{}, nil
    }
    return cached(ctx, c, c.key("colaboradores", especialidadID), func() ([]model.Colaborador, error) {
        return c.backend.ListColaboradores(ctx, especialidadID)
    })
}

// Servicios lists the services of a specialty, empty for a zero id.
func (c *Catalog) Servicios(ctx context.Context, especialidadID int64) ([]model.Servicio, error) {
    if especialidadID == 0 {
        return []model.Servicio{}, nil
    }
    return cached(ctx, c, c.key("servicios", especialidadID), func() ([]model.Servicio, error) {
        return c.backend.ListServicios(ctx, especialidadID)
    })
}

func (c *Catalog) key(kind string, id int64) string {
    return fmt.Sprintf("%s:catalog:%s:%d", c.prefix, kind, id)
}

// cached serves key from Redis or loads it and stores the result.
func cached[T any](ctx context.Context, c *Catalog, key string, load func() ([]T, error)) ([]T, error) {
    if c.rdb != nil && c.ttl > 0 {
        if bs, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
            var out []T
            if err := json.Unmarshal(bs, &out); err == nil {
                return out, nil
            }
        } else if err != redis.Nil {
            c.log.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
        }
    }
    out, err := load()
    if err != nil {
        return nil, err
    }
    if out == nil {
        out = []T{}
    }
    if c.rdb != nil && c.ttl > 0 {
        if bs, err := json.Marshal(out); err == nil {
            if err := c.rdb.Set(ctx, key, bs, c.ttl).Err(); err != nil {
                c.log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
            }
        }
    }
    return out, nil
}
