package records

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// renderPrescriptionPDF lays out a single prescription on an A4 page.
func renderPrescriptionPDF(p *Prescription) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Prescription", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "Prescription")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Prescribed by: Dr. %s", p.DoctorName))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Issued: %s", p.IssuedAt.Format("January 2, 2006")))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Status: %s", p.Status))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 9, "Medications")
	pdf.Ln(10)

	for i, m := range p.Medications {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 7, fmt.Sprintf("%d. %s", i+1, m.Name))
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 6, fmt.Sprintf("   Dosage: %s    Frequency: %s    Duration: %s", m.Dosage, m.Frequency, m.Duration))
		pdf.Ln(6)
		if m.Instructions != "" {
			pdf.Cell(0, 6, fmt.Sprintf("   Instructions: %s", m.Instructions))
			pdf.Ln(6)
		}
		pdf.Ln(2)
	}

	if p.GeneralInstructions != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 9, "General Instructions")
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, p.GeneralInstructions, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
