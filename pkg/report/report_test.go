package report

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empresasintegra/leykarin/pkg/model"
)

func sampleComplaint() model.Complaint {
	rut := "12.345.678-5"
	return model.Complaint{
		Code:      "DN-ABCD1234",
		CreatedAt: time.Date(2026, time.March, 3, 14, 20, 0, 0, time.UTC),
		Company:   &model.Company{Name: "Acme"},
		Item: &model.Item{
			Statement: "Hostigamiento reiterado",
			Category:  &model.Category{Name: "Acoso Laboral"},
		},
		Complainant: &model.Complainant{
			ID:        uuid.New(),
			PublicID:  "AB12C",
			RUT:       &rut,
			FirstName: strPtr("Ana"),
			LastName:  strPtr("Rojas"),
		},
		Relation:       &model.CompanyRelation{Role: "Otro"},
		RelationDetail: "Contratista externo",
		TimeBucket:     &model.TimeBucket{Interval: "Hace menos de un mes"},
		Description:    "Descripción de los hechos denunciados con suficiente nivel de detalle.",
		Status:         model.StatusPendiente,
		Attachments: []model.Attachment{
			{Name: "evidencia.pdf", Size: 1024},
		},
	}
}

func strPtr(s string) *string { return &s }

func TestExportExcel(t *testing.T) {
	f, filename, err := ExportExcel([]model.Complaint{sampleComplaint()})
	require.NoError(t, err)
	defer f.Close()

	assert.True(t, strings.HasPrefix(filename, "Reporte_Denuncias_"))
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))

	header, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Código", header)

	code, err := f.GetCellValue(sheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "DN-ABCD1234", code)

	status, err := f.GetCellValue(sheetName, "I2")
	require.NoError(t, err)
	assert.Equal(t, "PENDIENTE", status)

	attachments, err := f.GetCellValue(sheetName, "K2")
	require.NoError(t, err)
	assert.Equal(t, "1", attachments)
}

func TestExportExcelEmptyListing(t *testing.T) {
	f, _, err := ExportExcel(nil)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(sheetName, "K1")
	require.NoError(t, err)
	assert.Equal(t, "Archivos", header)
}

func TestExportPDF(t *testing.T) {
	c := sampleComplaint()
	data, filename, err := ExportPDF(&c)
	require.NoError(t, err)

	assert.Equal(t, "Denuncia_DN-ABCD1234.pdf", filename)
	require.True(t, len(data) > 4)
	assert.Equal(t, "%PDF", string(data[:4]))
}
