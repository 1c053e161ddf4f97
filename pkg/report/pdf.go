package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/empresasintegra/leykarin/pkg/model"
)

// ExportPDF renders a one-page summary of a single complaint. Returns the
// document bytes and the suggested filename.
func ExportPDF(c *model.Complaint) ([]byte, string, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Denuncia %s", c.Code), true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr("Detalle de Denuncia"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Código: %s", c.Code)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	field := func(label, value string) {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(45, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 7, tr(value), "", "L", false)
	}

	field("Fecha de Registro:", c.CreatedAt.Format("02/01/2006 15:04"))
	field("Empresa:", companyName(c))
	field("Categoría:", categoryName(c))
	field("Tipo de Denuncia:", itemStatement(c))
	field("Denunciante:", complainantName(c))
	field("Relación:", relationText(c))
	field("Tiempo de Ocurrencia:", timeInterval(c))
	field("Estado:", string(c.Status))

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 7, tr("Descripción de los Hechos"), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 6, tr(c.Description), "", "L", false)

	if len(c.Attachments) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 7, tr("Archivos Adjuntos"), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, a := range c.Attachments {
			pdf.CellFormat(0, 6, tr(fmt.Sprintf("- %s", a.Name)), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("Denuncia_%s.pdf", c.Code)
	return buf.Bytes(), filename, nil
}

func relationText(c *model.Complaint) string {
	role := relationRole(c)
	if c.RelationDetail != "" {
		return fmt.Sprintf("%s (%s)", role, c.RelationDetail)
	}
	return role
}
