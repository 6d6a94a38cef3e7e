package invoices

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/VadoVates/autoservice/internal/orders"
	"github.com/VadoVates/autoservice/pkg/config"
)

// Renderer produces the printable invoice document. The layout is fixed:
// header, seller and customer blocks, vehicle block, work description,
// itemized parts table when parts are attached, cost summary, footer.
type Renderer struct {
	cfg config.InvoiceConfig
}

func NewRenderer(cfg config.InvoiceConfig) *Renderer {
	return &Renderer{cfg: cfg}
}

// Render builds the PDF for an invoiced order.
func (r *Renderer) Render(data *orders.InvoiceData) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("invoice data required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+data.Invoice.InvoiceNumber, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "INVOICE", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Number: "+data.Invoice.InvoiceNumber, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Issue date: "+data.Invoice.IssueDate.Format("2006-01-02"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	r.sellerBlock(pdf)
	r.customerBlock(pdf, data)
	r.vehicleBlock(pdf, data)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Work performed", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, data.Order.Description, "", "L", false)
	pdf.Ln(4)

	if len(data.Parts) > 0 {
		r.partsTable(pdf, data)
	}

	r.costSummary(pdf, data)

	if r.cfg.FooterNote != "" {
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 5, r.cfg.FooterNote, "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) sellerBlock(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Seller", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, r.cfg.SellerName, "", 1, "L", false, 0, "")
	if r.cfg.SellerAddress != "" {
		pdf.CellFormat(0, 5, r.cfg.SellerAddress, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func (r *Renderer) customerBlock(pdf *gofpdf.Fpdf, data *orders.InvoiceData) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Customer", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if customer := data.Order.Customer; customer != nil {
		pdf.CellFormat(0, 5, customer.Name, "", 1, "L", false, 0, "")
		if customer.Address != nil {
			pdf.CellFormat(0, 5, *customer.Address, "", 1, "L", false, 0, "")
		}
		if customer.Phone != nil {
			pdf.CellFormat(0, 5, "Phone: "+*customer.Phone, "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)
}

func (r *Renderer) vehicleBlock(pdf *gofpdf.Fpdf, data *orders.InvoiceData) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Vehicle", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if vehicle := data.Order.Vehicle; vehicle != nil {
		line := vehicle.Brand + " " + vehicle.Model
		if vehicle.Year != nil {
			line = fmt.Sprintf("%s (%d)", line, *vehicle.Year)
		}
		pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, "Registration: "+vehicle.RegistrationNumber, "", 1, "L", false, 0, "")
		if vehicle.VIN != nil {
			pdf.CellFormat(0, 5, "VIN: "+*vehicle.VIN, "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)
}

func (r *Renderer) partsTable(pdf *gofpdf.Fpdf, data *orders.InvoiceData) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Parts", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(80, 6, "Name", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, "Unit price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, "Total", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, orderPart := range data.Parts {
		name := fmt.Sprintf("part #%d", orderPart.PartID)
		if orderPart.Part != nil {
			name = orderPart.Part.Name
		}
		pdf.CellFormat(80, 6, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", orderPart.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, orderPart.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, orderPart.Total().StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

func (r *Renderer) costSummary(pdf *gofpdf.Fpdf, data *orders.InvoiceData) {
	partsTotal := decimal.Zero
	for _, orderPart := range data.Parts {
		partsTotal = partsTotal.Add(orderPart.Total())
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(140, 6, "Labor", "", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, data.LaborCost.StringFixed(2), "", 1, "R", false, 0, "")
	if len(data.Parts) > 0 {
		pdf.CellFormat(140, 6, "Parts", "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, partsTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(140, 7, "Total due", "", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, data.Invoice.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")
}
