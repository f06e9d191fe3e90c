package handler_test

import (
    "context"
    "net/http"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/spa-booking/internal/repository"
    "github.com/iliyamo/spa-booking/internal/utils"
)

type stubAttempts struct {
    patientID int64
}

func (s *stubAttempts) ListByPatient(ctx context.Context, patientID int64, limit int) ([]repository.AttemptRecord, error) {
    s.patientID = patientID
    cita := int64(310)
    return []repository.AttemptRecord{{
        ID: 1, PatientID: patientID, CitaID: &cita, State: "DETAILS_PARTIAL",
        DetailsExpected: 2, DetailsCreated: 1, MontoCentimos: 8000, CreatedAt: time.Now(), UpdatedAt: time.Now(),
    }}, nil
}

func (s *stubAttempts) ListIncomplete(ctx context.Context, limit int) ([]repository.AttemptRecord, error) {
    return nil, nil
}

func TestMyAttempts(t *testing.T) {
    a := newApp(t)
    rec, body := a.do(t, http.MethodGet, "/v1/mis-intentos", "", utils.RolePaciente)
    require.Equal(t, http.StatusOK, rec.Code)
    data := body["data"].([]any)
    require.Len(t, data, 1)
    row := data[0].(map[string]any)
    assert.Equal(t, "DETAILS_PARTIAL", row["estado"])
    assert.Equal(t, true, row["incompleto"])
    assert.Equal(t, 80.0, row["monto"])
    assert.Equal(t, 310.0, row["idCita"])
}
