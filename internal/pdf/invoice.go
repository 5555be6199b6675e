package pdf

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"billing/internal/domain"

	"github.com/go-pdf/fpdf"
)

const (
	margin     = 12.7
	fontFamily = "Helvetica"
)

var (
	accent       = [3]int{0x2B, 0x7C, 0xFF}
	columnWidths = []float64{12.7, 88.9, 19.05, 29.2, 29.2}
)

// FileName is the suggested download name for a bill document.
func FileName(bill domain.Bill) string {
	return fmt.Sprintf("Invoice_%s_%d.pdf", bill.Kind, bill.SequenceNo)
}

// WriteBill renders one bill as an A4 invoice.
func WriteBill(w io.Writer, bill domain.Bill, profile domain.BusinessProfile, currency string) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, margin+5)
	doc.SetTitle(FileName(bill), true)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFooterFunc(func() {
		doc.SetY(-margin)
		doc.SetFont(fontFamily, "", 9)
		doc.SetTextColor(0, 0, 0)
		doc.CellFormat(0, 6, tr(fmt.Sprintf("Page %d | %s", doc.PageNo(), profile.Name)), "", 0, "C", false, 0, "")
	})
	doc.AddPage()

	pageW, _ := doc.GetPageSize()
	half := (pageW - 2*margin) / 2

	doc.SetFont(fontFamily, "B", 20)
	doc.SetTextColor(accent[0], accent[1], accent[2])
	doc.CellFormat(half, 10, tr(profile.Name), "", 0, "L", false, 0, "")
	doc.SetFont(fontFamily, "B", 12)
	doc.SetTextColor(0, 0, 0)
	doc.CellFormat(half, 10, tr("INVOICE / "+strings.ToUpper(string(bill.Kind))), "", 1, "R", false, 0, "")

	header := [][2]string{
		{profile.Address, "Bill No: " + strconv.Itoa(bill.SequenceNo)},
		{"Phone: " + profile.Phone, "Date: " + orNA(bill.Date)},
		{"GSTIN: " + profile.TaxID, "Mode: " + bill.Mode},
	}
	doc.SetFont(fontFamily, "", 10)
	for _, row := range header {
		doc.CellFormat(half, 5.5, tr(row[0]), "", 0, "L", false, 0, "")
		doc.CellFormat(half, 5.5, tr(row[1]), "", 1, "R", false, 0, "")
	}
	doc.Ln(6)

	boxW := pageW - 2*margin
	doc.SetDrawColor(128, 128, 128)
	doc.SetFont(fontFamily, "B", 10)
	doc.CellFormat(boxW, 6, "BILL TO:", "LTR", 1, "L", false, 0, "")
	doc.SetFont(fontFamily, "", 10)
	doc.CellFormat(boxW, 6, tr(bill.Counterparty), "LBR", 1, "L", false, 0, "")
	doc.Ln(6)

	writeLines(doc, tr, bill, currency)

	doc.Ln(5)
	doc.SetFont(fontFamily, "B", 12)
	labelW := columnWidths[0] + columnWidths[1] + columnWidths[2] + columnWidths[3]
	doc.CellFormat(labelW, 8, "Grand Total:", "", 0, "R", false, 0, "")
	doc.SetTextColor(accent[0], accent[1], accent[2])
	doc.CellFormat(columnWidths[4], 8, tr(domain.FormatMoney(currency, bill.GrandTotal)), "", 1, "R", false, 0, "")
	doc.SetTextColor(0, 0, 0)

	doc.Ln(12)
	doc.SetFont(fontFamily, "", 9)
	doc.CellFormat(0, 6, "THANK YOU FOR YOUR BUSINESS!", "", 1, "C", false, 0, "")

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("render bill %d: %w", bill.ID, err)
	}
	return nil
}

func writeLines(doc *fpdf.Fpdf, tr func(string) string, bill domain.Bill, currency string) {
	headers := []string{"S.No", "Item Description", "Qty", "Price (" + currency + ")", "Total (" + currency + ")"}

	doc.SetFont(fontFamily, "B", 10)
	doc.SetFillColor(accent[0], accent[1], accent[2])
	doc.SetTextColor(245, 245, 245)
	for idx, h := range headers {
		doc.CellFormat(columnWidths[idx], 8, tr(h), "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont(fontFamily, "", 10)
	doc.SetTextColor(0, 0, 0)
	for idx, line := range bill.Lines {
		doc.CellFormat(columnWidths[0], 7, strconv.Itoa(idx+1), "1", 0, "C", false, 0, "")
		doc.CellFormat(columnWidths[1], 7, tr(fit(doc, line.Name, columnWidths[1]-2)), "1", 0, "L", false, 0, "")
		doc.CellFormat(columnWidths[2], 7, strconv.Itoa(line.Quantity), "1", 0, "C", false, 0, "")
		doc.CellFormat(columnWidths[3], 7, tr(domain.FormatMoney(currency, line.Price)), "1", 0, "R", false, 0, "")
		doc.CellFormat(columnWidths[4], 7, tr(domain.FormatMoney(currency, line.Total)), "1", 1, "R", false, 0, "")
	}
}

// fit shortens text that would overflow a table cell.
func fit(doc *fpdf.Fpdf, text string, width float64) string {
	if doc.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && doc.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "N/A"
	}
	return value
}
