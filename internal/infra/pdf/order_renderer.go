// Package pdf renders order summaries as PDF documents.
package pdf

import (
	"bytes"
	"strconv"

	"storehub/internal/domain/entity"
	"storehub/internal/domain/service"
	"storehub/internal/util"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

const (
	pageMargin  = 15.0
	lineHeight  = 7.0
	fontFamily  = "Helvetica"
	dateLayout  = "2006-01-02 15:04 MST"
	colName     = 90.0
	colQuantity = 25.0
	colPrice    = 35.0
	colTotal    = 30.0
)

type orderRenderer struct{}

// NewOrderRenderer returns a renderer whose output depends only on its inputs,
// so the same snapshot always produces the same bytes.
func NewOrderRenderer() service.PDFRenderer {
	return &orderRenderer{}
}

// RenderOrder lays out store details, order header, line items and totals.
func (r *orderRenderer) RenderOrder(order *entity.Order, store *entity.Store) (*service.RenderedDocument, error) {
	if order == nil || store == nil {
		return nil, errors.New("order and store are required")
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetCreationDate(order.CreatedAt)
	doc.SetModificationDate(order.CreatedAt)
	doc.SetCatalogSort(true)
	doc.SetTitle("Order "+order.OrderNumber, true)
	doc.SetAuthor(store.Name, true)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()

	doc.SetFont(fontFamily, "B", 18)
	doc.CellFormat(0, 10, tr(store.Name), "", 1, "L", false, 0, "")
	doc.SetFont(fontFamily, "", 10)
	if store.Address != "" {
		doc.MultiCell(0, 5, tr(store.Address), "", "L", false)
	}
	if store.PhoneNumber != "" {
		doc.CellFormat(0, 5, tr(store.PhoneNumber), "", 1, "L", false, 0, "")
	}
	doc.Ln(6)

	doc.SetFont(fontFamily, "B", 14)
	doc.CellFormat(0, 8, tr("Order #"+order.OrderNumber), "", 1, "L", false, 0, "")
	doc.SetFont(fontFamily, "", 10)
	r.labelRow(doc, tr, "Date", order.CreatedAt.UTC().Format(dateLayout))
	if order.CustomerName != "" {
		r.labelRow(doc, tr, "Customer", order.CustomerName)
	}
	r.labelRow(doc, tr, "Status", string(order.Status))
	r.labelRow(doc, tr, "Payment", string(order.PaymentStatus))
	doc.Ln(4)

	doc.SetFont(fontFamily, "B", 10)
	doc.SetFillColor(235, 235, 235)
	doc.CellFormat(colName, lineHeight, "Item", "1", 0, "L", true, 0, "")
	doc.CellFormat(colQuantity, lineHeight, "Qty", "1", 0, "R", true, 0, "")
	doc.CellFormat(colPrice, lineHeight, "Unit price", "1", 0, "R", true, 0, "")
	doc.CellFormat(colTotal, lineHeight, "Total", "1", 1, "R", true, 0, "")

	doc.SetFont(fontFamily, "", 10)
	for _, item := range order.Items {
		doc.CellFormat(colName, lineHeight, tr(item.Name), "1", 0, "L", false, 0, "")
		doc.CellFormat(colQuantity, lineHeight, strconv.Itoa(item.Quantity), "1", 0, "R", false, 0, "")
		doc.CellFormat(colPrice, lineHeight, util.FormatMinorUnits(item.UnitPrice), "1", 0, "R", false, 0, "")
		doc.CellFormat(colTotal, lineHeight, util.FormatMinorUnits(item.LineTotal), "1", 1, "R", false, 0, "")
	}

	doc.SetFont(fontFamily, "B", 11)
	doc.CellFormat(colName+colQuantity+colPrice, lineHeight+1, "Grand total", "1", 0, "R", false, 0, "")
	doc.CellFormat(colTotal, lineHeight+1, util.FormatMinorUnits(order.TotalAmount)+" "+order.Currency, "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to render order pdf")
	}

	return &service.RenderedDocument{
		Filename: order.DocumentFilename(),
		Content:  buf.Bytes(),
	}, nil
}

func (r *orderRenderer) labelRow(doc *fpdf.Fpdf, tr func(string) string, label, value string) {
	doc.CellFormat(30, 6, tr(label+":"), "", 0, "L", false, 0, "")
	doc.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
}
