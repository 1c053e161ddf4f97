// Package report renders the admin dashboard exports: the complaints XLSX
// and the per-complaint PDF summary.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/empresasintegra/leykarin/pkg/model"
)

const sheetName = "Denuncias"

var excelColumns = []struct {
	Header string
	Width  float64
}{
	{"Código", 14},
	{"Fecha", 18},
	{"Empresa", 20},
	{"Categoría", 20},
	{"Tipo de Denuncia", 35},
	{"Denunciante", 25},
	{"Relación", 18},
	{"Tiempo", 18},
	{"Estado", 14},
	{"Descripción", 60},
	{"Archivos", 10},
}

// ExportExcel renders the filtered complaint listing the way the dashboard
// shows it. Returns the workbook and the suggested filename.
func ExportExcel(complaints []model.Complaint) (*excelize.File, string, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2F5496"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, "", err
	}

	for i, col := range excelColumns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, "", err
		}
		cell := fmt.Sprintf("%s1", name)
		if err := f.SetCellValue(sheetName, cell, col.Header); err != nil {
			return nil, "", err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, "", err
		}
		if err := f.SetColWidth(sheetName, name, name, col.Width); err != nil {
			return nil, "", err
		}
	}

	for i, c := range complaints {
		row := i + 2
		values := []interface{}{
			c.Code,
			c.CreatedAt.Format("02/01/2006 15:04"),
			companyName(&c),
			categoryName(&c),
			itemStatement(&c),
			complainantName(&c),
			relationRole(&c),
			timeInterval(&c),
			string(c.Status),
			c.Description,
			len(c.Attachments),
		}
		for j, value := range values {
			name, err := excelize.ColumnNumberToName(j + 1)
			if err != nil {
				return nil, "", err
			}
			if err := f.SetCellValue(sheetName, fmt.Sprintf("%s%d", name, row), value); err != nil {
				return nil, "", err
			}
		}
	}

	filename := fmt.Sprintf("Reporte_Denuncias_%s.xlsx", time.Now().Format("20060102_150405"))
	return f, filename, nil
}

func companyName(c *model.Complaint) string {
	if c.Company != nil {
		return c.Company.Name
	}
	return ""
}

func categoryName(c *model.Complaint) string {
	if c.Item != nil && c.Item.Category != nil {
		return c.Item.Category.Name
	}
	return ""
}

func itemStatement(c *model.Complaint) string {
	if c.Item != nil {
		return c.Item.Statement
	}
	return ""
}

func complainantName(c *model.Complaint) string {
	if c.Complainant != nil {
		return c.Complainant.DisplayName()
	}
	return ""
}

func relationRole(c *model.Complaint) string {
	if c.Relation != nil {
		return c.Relation.Role
	}
	return ""
}

func timeInterval(c *model.Complaint) string {
	if c.TimeBucket != nil {
		return c.TimeBucket.Interval
	}
	return ""
}
