package episodes

import (
	"encoding/json"
	"strings"
	"time"
)

// Episode ("ficha") representa una admisión de tratamiento de un cliente.
// Las fechas viajan como texto YYYY-MM-DD ya validado en el borde; así el
// rango por fecha de entrada puede compararse lexicográficamente.
type Episode struct {
	ID       int64
	ClientID int64

	EntryDate     string  // YYYY-MM-DD
	DischargeDate *string // nil = tratamiento activo
	Notes         string

	CreatedAt time.Time
}

// Medication es una indicación de dosis ligada a una ficha.
type Medication struct {
	ID        int64
	EpisodeID int64

	Name      string
	Dosage    string
	Frequency string // texto libre: "cada 12h"
	Notes     string
}

type EpisodeWithMedications struct {
	Episode
	Medications []Medication
}

// MedicationInput es la entrada del form (lista serializada en JSON).
type MedicationInput struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Notes     string `json:"notes"`
}

// EpisodeInput agrupa los campos de una ficha nueva o editada.
// CreatedAt lo setea el service, nunca el form.
type EpisodeInput struct {
	EntryDate     string
	DischargeDate *string
	Notes         string
	Medications   []MedicationInput

	CreatedAt time.Time
}

// Normalize recorta campos, exige fecha de entrada YYYY-MM-DD válida y
// filtra medicamentos incompletos. Alta vacía => ficha activa (nil).
func (in *EpisodeInput) Normalize() error {
	in.EntryDate = strings.TrimSpace(in.EntryDate)
	if !IsValidDate(in.EntryDate) {
		return ErrInvalidInput
	}

	if in.DischargeDate != nil {
		d := strings.TrimSpace(*in.DischargeDate)
		if d == "" {
			in.DischargeDate = nil
		} else {
			if !IsValidDate(d) {
				return ErrInvalidInput
			}
			in.DischargeDate = &d
		}
	}

	in.Notes = strings.TrimSpace(in.Notes)
	in.Medications = FilterValid(in.Medications)
	return nil
}

// IsValidDate acepta solo YYYY-MM-DD con cero a la izquierda.
func IsValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// FilterValid descarta entradas sin nombre o sin dosis: no se persisten.
func FilterValid(meds []MedicationInput) []MedicationInput {
	out := make([]MedicationInput, 0, len(meds))
	for _, m := range meds {
		m.Name = strings.TrimSpace(m.Name)
		m.Dosage = strings.TrimSpace(m.Dosage)
		m.Frequency = strings.TrimSpace(m.Frequency)
		m.Notes = strings.TrimSpace(m.Notes)
		if m.Name == "" || m.Dosage == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

// DecodeMedicationList decodifica la lista serializada del form.
// Política explícita: JSON malformado => lista vacía, no error duro.
func DecodeMedicationList(raw string) []MedicationInput {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var meds []MedicationInput
	if err := json.Unmarshal([]byte(raw), &meds); err != nil {
		return nil
	}
	return meds
}
