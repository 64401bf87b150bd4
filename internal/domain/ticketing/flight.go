package ticketing

import (
	"strings"
	"time"
)

// FlightSegment holds the flight attributes copied from the prospecting line.
// Once a ticket line exists they only change through a reschedule.
type FlightSegment struct {
	NumeroVol       string    `json:"numero_vol"`
	Itineraire      string    `json:"itineraire"`
	Classe          string    `json:"classe"`
	TypePassager    string    `json:"type_passager"`
	DateHeureDepart time.Time `json:"date_heure_depart"`
	DateHeureArrive time.Time `json:"date_heure_arrive"`
}

// Validate checks the fields a booking cannot do without
func (f FlightSegment) Validate() error {
	var missing []string
	if strings.TrimSpace(f.NumeroVol) == "" {
		missing = append(missing, "numero_vol")
	}
	if strings.TrimSpace(f.Classe) == "" {
		missing = append(missing, "classe")
	}
	if f.DateHeureDepart.IsZero() {
		missing = append(missing, "date_heure_depart")
	}
	if f.DateHeureArrive.IsZero() {
		missing = append(missing, "date_heure_arrive")
	}
	if len(missing) > 0 {
		return ErrInvalidFlight.WithMessage("Missing flight fields: %s", strings.Join(missing, ", "))
	}
	if f.DateHeureArrive.Before(f.DateHeureDepart) {
		return ErrInvalidFlight.WithMessage("Arrival %s is before departure %s",
			f.DateHeureArrive.Format(time.RFC3339), f.DateHeureDepart.Format(time.RFC3339))
	}
	return nil
}

// GroupKey identifies lines that are shown and acted on together
type GroupKey struct {
	NumeroVol    string `json:"numero_vol"`
	Itineraire   string `json:"itineraire"`
	Classe       string `json:"classe"`
	TypePassager string `json:"type_passager"`
}

// GroupKey returns the display grouping key of the segment
func (f FlightSegment) GroupKey() GroupKey {
	return GroupKey{
		NumeroVol:    f.NumeroVol,
		Itineraire:   f.Itineraire,
		Classe:       f.Classe,
		TypePassager: f.TypePassager,
	}
}
