package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"

	"lg/nutrition-plan-api/nutrition"
)

// exportPlanPDF renders a saved plan as a downloadable PDF.
// GET /api/plans/:id/pdf.
func (h *Handler) exportPlanPDF(c *gin.Context) {
	row, ok := h.loadPlan(c)
	if !ok {
		return
	}

	now := time.Now()
	// The projection is dated from when the plan was saved.
	startedAt := now
	if row.CreatedAt != nil {
		startedAt = *row.CreatedAt
	}
	var buf bytes.Buffer
	if err := renderPlanPDF(&buf, row.toPlan(), startedAt, now); err != nil {
		log.Printf("[exportPlanPDF] render failed for plan %d: %v", row.ID, err)
		apiError(c, http.StatusInternalServerError, "failed to render pdf")
		return
	}

	filename := fmt.Sprintf("daily_plan_%d_%s.pdf", row.ID, now.Format("20060102_1504"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// renderPlanPDF writes a one-page A4 summary of p to w. startedAt anchors the
// projected target date; generatedAt is only printed.
func renderPlanPDF(w io.Writer, p nutrition.Plan, startedAt, generatedAt time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Daily plan", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Daily plan", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generated "+generatedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	section := func(title string) {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}
	row := func(label, value string) {
		pdf.CellFormat(70, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}

	section("Profile")
	row("Sex", string(p.Profile.Sex))
	row("Age", fmt.Sprintf("%d years", p.Profile.AgeYears))
	row("Height", fmt.Sprintf("%.1f cm", p.Profile.HeightCM))
	row("Weight", fmt.Sprintf("%.1f kg", p.Profile.WeightKG))
	row("Activity level", string(p.Activity))
	row("Goal", fmt.Sprintf("%s (%+d%%)", p.Goal, p.AdjustmentPercent))

	section("Energy")
	row("BMR (Mifflin-St Jeor)", fmt.Sprintf("%.0f kcal/day", p.BMR))
	row("TDEE", fmt.Sprintf("%.0f kcal/day", p.TDEE))
	row("Calorie target", fmt.Sprintf("%.0f kcal/day", p.KcalTarget))
	row("Water", fmt.Sprintf("%.2f L/day", p.WaterML/1000))

	section("Macros")
	row("Protein", fmt.Sprintf("%.0f g (%.0f kcal, %.1f%%)",
		p.Macros.ProteinG, p.Macros.ProteinG*nutrition.KcalPerGramProtein, p.Split.ProteinPct))
	row("Carbohydrates", fmt.Sprintf("%.0f g (%.0f kcal, %.1f%%)",
		p.Macros.CarbG, p.Macros.CarbG*nutrition.KcalPerGramCarb, p.Split.CarbPct))
	row("Fat", fmt.Sprintf("%.0f g (%.0f kcal, %.1f%%)",
		p.Macros.FatG, p.Macros.FatG*nutrition.KcalPerGramFat, p.Split.FatPct))

	if p.TargetWeightKG != nil {
		section("Projection")
		row("Target weight", fmt.Sprintf("%.1f kg", *p.TargetWeightKG))
		row("Estimated time", estimatedTime(p.WeeksToTarget, startedAt))
	}

	if len(p.Warnings) > 0 {
		section("Warnings")
		for _, wn := range p.Warnings {
			pdf.MultiCell(0, 6, "- "+wn.Message, "", "L", false)
		}
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// estimatedTime formats the weeks to target and the date they land on,
// counted from startedAt.
func estimatedTime(weeks int, startedAt time.Time) string {
	if weeks <= 0 {
		return "at target"
	}
	return fmt.Sprintf("~%d weeks (%s)", weeks, nutrition.TargetDate(startedAt, weeks).Format("2006-01-02"))
}
