// excel.go - Spreadsheet export and import of the product catalog

package catalog

import (
	"context"
	"io"
	"strconv"
	"strings"

	"cafesantander/apperr"
	"cafesantander/models"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// sheetColumns is the column layout shared by export and import.
var sheetColumns = []string{"ID", "Name", "Price", "Available", "Image", "CreatedAt", "UpdatedAt"}

// ExportXLSX writes the whole catalog as a single-sheet workbook.
func (s *Service) ExportXLSX(ctx context.Context, w io.Writer) error {
	products, err := s.List(ctx, false)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return apperr.Unexpected("failed to create sheet", err)
	}

	header := sheet.AddRow()
	for _, h := range sheetColumns {
		header.AddCell().SetValue(h)
	}
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Price.InexactFloat64())
		row.AddCell().SetValue(p.Available)
		row.AddCell().SetValue(p.Image)
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	if err := file.Write(w); err != nil {
		return apperr.Unexpected("failed to write workbook", err)
	}
	return nil
}

// ImportResult counts what an import did with each data row.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ImportXLSX reads a workbook in the export layout. Rows whose ID matches an existing
// product update it, other rows create new products, invalid rows are skipped.
func (s *Service) ImportXLSX(ctx context.Context, r io.ReaderAt, size int64) (ImportResult, error) {
	var res ImportResult
	wb, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return res, apperr.Validation("file is not a valid xlsx workbook")
	}
	if len(wb.Sheets) == 0 || len(wb.Sheets[0].Rows) < 2 {
		return res, apperr.Validation("workbook is empty or missing the header row")
	}

	rows := wb.Sheets[0].Rows[1:]
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			get := func(i int) string {
				if row == nil || i >= len(row.Cells) {
					return ""
				}
				return strings.TrimSpace(row.Cells[i].Value)
			}

			name := get(1)
			price, perr := decimal.NewFromString(get(2))
			if name == "" || perr != nil || !price.IsPositive() {
				res.Skipped++
				continue
			}
			available := true
			if v := get(3); v != "" {
				available = v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
			}
			values := map[string]interface{}{
				"name":      name,
				"price":     price.Round(2),
				"available": available,
				"image":     get(4),
			}

			if id, err := strconv.ParseUint(get(0), 10, 64); err == nil && id > 0 {
				upd := tx.Model(&models.Product{}).Where("id = ?", id).Updates(values)
				if upd.Error != nil {
					return upd.Error
				}
				if upd.RowsAffected > 0 {
					res.Updated++
					continue
				}
			}

			p := models.Product{Name: name, Price: price.Round(2), Available: true, Image: get(4)}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			if !available {
				if err := tx.Model(&p).Update("available", false).Error; err != nil {
					return err
				}
			}
			res.Created++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, apperr.Unexpected("failed to import products", err)
	}
	return res, nil
}
