package report

import (
	"fmt"

	apptic "github.com/agence/backoffice/internal/application/ticketing"
	"github.com/agence/backoffice/internal/domain/ticketing"
	"github.com/xuri/excelize/v2"
)

var _ apptic.TicketExporter = (*XLSXExporter)(nil)

const (
	summarySheet = "Dossier"
	linesSheet   = "Lignes"
)

var lineColumns = []string{
	"Position", "Vol", "Itinéraire", "Classe", "Départ", "Arrivée", "Statut",
	"PNR", "Billet", "Passagers", "Compagnie (Ar)", "Client (Ar)", "Commission (Ar)",
	"Raison annulation",
}

// XLSXExporter writes a ticket dossier as a two-sheet workbook
type XLSXExporter struct{}

// NewXLSXExporter creates a new XLSXExporter
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// ExportTicket writes the header summary and one row per line. Amounts come
// from the emission snapshot when present, the reservation snapshot otherwise.
func (e *XLSXExporter) ExportTicket(header *ticketing.TicketHeader) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(linesSheet); err != nil {
		return nil, err
	}

	summary := [][]any{
		{"Devis", header.QuoteReference},
		{"Numéro de billet", header.TicketNumber},
		{"Statut", header.Status.String()},
		{"Total compagnie (Ar)", header.TotalCompagnie.InexactFloat64()},
		{"Commission proposée (Ar)", header.CommissionPropose.InexactFloat64()},
		{"Commission appliquée (Ar)", header.CommissionAppliquer.InexactFloat64()},
		{"Total commission (Ar)", header.TotalCommission.InexactFloat64()},
		{"Facture", header.InvoiceReference},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, err
		}
	}

	if err := f.SetSheetRow(linesSheet, "A1", &lineColumns); err != nil {
		return nil, err
	}
	for i, line := range header.Lines {
		row := lineRow(line)
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(linesSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func lineRow(line *ticketing.TicketLine) []any {
	var compagnie, client, commission float64
	pricing := line.Emission
	if pricing == nil {
		pricing = line.Reservation
	}
	if pricing != nil {
		compagnie = pricing.CompagnieTotalAriary().InexactFloat64()
		client = pricing.ClientTotalAriary().InexactFloat64()
		commission = pricing.Commission.InexactFloat64()
	}

	return []any{
		line.Position,
		line.Flight.NumeroVol,
		line.Flight.Itineraire,
		line.Flight.Classe,
		line.Flight.DateHeureDepart.Format(dateTimeLayout),
		line.Flight.DateHeureArrive.Format(dateTimeLayout),
		string(line.Status),
		line.ReservationNumber,
		line.TicketNumber,
		len(line.PassengerIDs),
		compagnie,
		client,
		commission,
		line.RaisonAnnul,
	}
}
