package payroll

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"nomina/internal/domain/timeconv"
)

// RenderPDF produces a printable summary of a stored nómina.
func RenderPDF(n Nomina, employeeName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	title := "Nómina"
	if n.Type == TypeExtra {
		title = "Paga extra"
	}
	pdf.Cell(40, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	if employeeName != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", employeeName))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", n.EmployeeEmail))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s %d", capitalize(n.Month), n.Year))
	pdf.Ln(10)

	line := func(label string, amount float64) {
		pdf.Cell(0, 8, fmt.Sprintf("%s: %s", label, timeconv.FormatCurrency(amount)))
		pdf.Ln(7)
	}

	line("Base salary", n.BaseSalary)
	if n.Type == TypeMonthly {
		line("Trienios", n.Trienios)
		for _, c := range n.OtherComplements {
			line(c.Concept, c.Amount)
		}
		if n.Overtime.TotalHours > 0 {
			pdf.Cell(0, 8, fmt.Sprintf("Overtime (%s): %s",
				timeconv.FormatDecimalHours(n.Overtime.TotalHours),
				timeconv.FormatCurrency(n.Overtime.TotalAmount)))
			pdf.Ln(7)
		}
		if n.Extra.Amount != 0 {
			line("Extra: "+n.Extra.Concept, n.Extra.Amount)
		}
		if n.Deduction.Amount != 0 {
			line("Deduction: "+n.Deduction.Concept, -n.Deduction.Amount)
		}
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %s", timeconv.FormatCurrency(n.Total)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
