package spaapi

import "github.com/iliyamo/spa-booking/internal/model"

// Wire shapes of the backend payloads.  The backend nests related
// entities ("especialidad": {"id": 3}) in some responses and flattens them
// ("idEspecialidad": 3) in others, so both are read.

type refWire struct {
    ID int64 `json:"id"`
}

type especialidadWire struct {
    ID     int64  `json:"id"`
    Nombre string `json:"nombre"`
}

type colaboradorWire struct {
    ID             int64    `json:"id"`
    Nombre         string   `json:"nombre"`
    Apellido       string   `json:"apellido"`
    EspecialidadID int64    `json:"idEspecialidad"`
    Especialidad   *refWire `json:"especialidad"`
}

func (w colaboradorWire) model() model.Colaborador {
    name := w.Nombre
    if w.Apellido != "" {
        name += " " + w.Apellido
    }
    esp := w.EspecialidadID
    if esp == 0 && w.Especialidad != nil {
        esp = w.Especialidad.ID
    }
    return model.Colaborador{ID: w.ID, Nombre: name, EspecialidadID: esp}
}

type servicioWire struct {
    ID             int64          `json:"id"`
    Nombre         string         `json:"nombre"`
    Precio         model.Centimos `json:"precio"`
    EspecialidadID int64          `json:"idEspecialidad"`
    Especialidad   *refWire       `json:"especialidad"`
}

func (w servicioWire) model() model.Servicio {
    esp := w.EspecialidadID
    if esp == 0 && w.Especialidad != nil {
        esp = w.Especialidad.ID
    }
    return model.Servicio{ID: w.ID, Nombre: w.Nombre, EspecialidadID: esp, Precio: w.Precio}
}

type planWire struct {
    Nombre string `json:"nombre"`
}

type suscripcionWire struct {
    ID         int64     `json:"id"`
    Estado     string    `json:"estado"`
    PacienteID int64     `json:"idPaciente"`
    Paciente   *refWire  `json:"paciente"`
    Membresia  *planWire `json:"membresia"`
}

func (w suscripcionWire) model() model.Suscripcion {
    s := model.Suscripcion{ID: w.ID, Estado: w.Estado, PacienteID: w.PacienteID}
    if s.PacienteID == 0 && w.Paciente != nil {
        s.PacienteID = w.Paciente.ID
    }
    if w.Membresia != nil {
        s.Plan = w.Membresia.Nombre
    }
    return s
}

type consumoWire struct {
    ID                 int64        `json:"id"`
    SuscripcionID      int64        `json:"idSuscripcion"`
    Suscripcion        *refWire     `json:"suscripcion"`
    Servicio           servicioWire `json:"servicio"`
    CantidadTotal      int          `json:"cantidadTotal"`
    CantidadConsumida  int          `json:"cantidadConsumida"`
    CantidadDisponible int          `json:"cantidadDisponible"`
}

func (w consumoWire) model() model.ConsumoBeneficio {
    b := model.ConsumoBeneficio{
        ID:                 w.ID,
        SuscripcionID:      w.SuscripcionID,
        Servicio:           w.Servicio.model(),
        CantidadTotal:      w.CantidadTotal,
        CantidadConsumida:  w.CantidadConsumida,
        CantidadDisponible: w.CantidadDisponible,
    }
    if b.SuscripcionID == 0 && w.Suscripcion != nil {
        b.SuscripcionID = w.Suscripcion.ID
    }
    return b
}
