package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"creator-growth/internal/domain"
)

// ErrDocumentRenderFailed envuelve cualquier falla de gofpdf.
var ErrDocumentRenderFailed = errors.New("document render failed")

// PageCount es la cantidad fija de páginas del reporte.
const PageCount = 8

const (
	fontFamily   = "Helvetica"
	maxListItems = 14
	maxParagraph = 1400
	lineHeight   = 6.0
)

// contentBottom deja libre la franja del footer (SetY(-15) en A4).
const contentBottom = 275.0

// Renderer arma el Fame Report de 8 páginas a partir de un AnalysisResult.
type Renderer struct {
	brand string
}

func NewRenderer(brand string) *Renderer {
	if strings.TrimSpace(brand) == "" {
		brand = "Fame Report"
	}
	return &Renderer{brand: brand}
}

// Render devuelve los bytes del PDF o ErrDocumentRenderFailed.
func (r *Renderer) Render(result domain.AnalysisResult) ([]byte, error) {
	doc, err := r.build(result)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentRenderFailed, err)
	}
	return buf.Bytes(), nil
}

type page struct {
	doc *gofpdf.Fpdf
	tr  func(string) string
}

func (r *Renderer) build(result domain.AnalysisResult) (*gofpdf.Fpdf, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetTitle(r.brand+" - "+result.Profile.Name, true)
	doc.SetAuthor(r.brand, true)
	doc.SetCreationDate(result.GeneratedAt)
	p := page{doc: doc, tr: doc.UnicodeTranslatorFromDescriptor("")}

	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont(fontFamily, "I", 8)
		doc.SetTextColor(120, 120, 120)
		doc.CellFormat(0, 10, fmt.Sprintf("%s  |  %s  |  page %d of %d", r.brand, result.AgentID, doc.PageNo(), PageCount), "", 0, "C", false, 0, "")
	})

	r.coverPage(p, result)
	r.scorePage(p, result)
	r.positionPage(p, result)
	r.trendsPage(p, result.MarketResearch)
	r.competitorsPage(p, result.MarketResearch)
	r.monetizationPage(p, result.MarketResearch)
	r.recommendationsPage(p, result.Analysis)
	r.growthPlanPage(p, result.GrowthPlan)

	if doc.Err() {
		return nil, fmt.Errorf("%w: %v", ErrDocumentRenderFailed, doc.Error())
	}
	return doc, nil
}

func (p page) title(text string) {
	p.doc.AddPage()
	p.doc.SetFillColor(34, 34, 59)
	p.doc.Rect(0, 0, 210, 28, "F")
	p.doc.SetXY(15, 9)
	p.doc.SetFont(fontFamily, "B", 18)
	p.doc.SetTextColor(255, 255, 255)
	p.doc.CellFormat(0, 10, p.tr(text), "", 1, "L", false, 0, "")
	p.doc.SetTextColor(30, 30, 30)
	p.doc.SetXY(15, 38)
}

func (p page) heading(text string) {
	p.doc.SetFont(fontFamily, "B", 13)
	p.doc.CellFormat(0, 8, p.tr(text), "", 1, "L", false, 0, "")
	p.doc.SetFont(fontFamily, "", 11)
}

func (p page) paragraph(text string) {
	p.doc.SetFont(fontFamily, "", 11)
	lines := p.doc.SplitLines([]byte(p.tr(clip(text, maxParagraph))), p.textWidth())
	if room := p.linesLeft(); len(lines) > room {
		lines = lines[:room]
	}
	p.doc.MultiCell(0, lineHeight, string(bytes.Join(lines, []byte("\n"))), "", "L", false)
	p.doc.Ln(3)
}

// bullets corta la lista cuando el próximo ítem ya no entra sobre el footer.
func (p page) bullets(items []string) {
	p.doc.SetFont(fontFamily, "", 11)
	for i, it := range items {
		if i == maxListItems {
			break
		}
		text := p.tr("- " + clip(it, 300))
		lines := p.doc.SplitLines([]byte(text), p.textWidth())
		if len(lines) > p.linesLeft() {
			break
		}
		p.doc.MultiCell(0, lineHeight, text, "", "L", false)
		p.doc.Ln(1)
	}
	p.doc.Ln(2)
}

func (p page) textWidth() float64 {
	width, _ := p.doc.GetPageSize()
	_, _, right, _ := p.doc.GetMargins()
	return width - right - p.doc.GetX()
}

// linesLeft es cuántas líneas de texto entran antes del footer.
func (p page) linesLeft() int {
	left := int((contentBottom - p.doc.GetY()) / lineHeight)
	if left < 0 {
		return 0
	}
	return left
}

func (p page) keyValue(key, value string) {
	p.doc.SetFont(fontFamily, "B", 11)
	p.doc.CellFormat(60, 7, p.tr(key), "", 0, "L", false, 0, "")
	p.doc.SetFont(fontFamily, "", 11)
	p.doc.CellFormat(0, 7, p.tr(value), "", 1, "L", false, 0, "")
}

func (r *Renderer) coverPage(p page, res domain.AnalysisResult) {
	p.title(r.brand)
	p.doc.Ln(20)
	p.doc.SetFont(fontFamily, "B", 26)
	p.doc.CellFormat(0, 14, p.tr(orDash(res.Profile.Name)), "", 1, "C", false, 0, "")
	p.doc.SetFont(fontFamily, "", 14)
	p.doc.CellFormat(0, 10, p.tr(fmt.Sprintf("%s creator on %s", orDash(res.Profile.Niche), orDash(res.Profile.Platform))), "", 1, "C", false, 0, "")
	p.doc.Ln(30)
	p.doc.SetFont(fontFamily, "B", 60)
	p.doc.CellFormat(0, 30, fmt.Sprintf("%d", res.Analysis.FameScore), "", 1, "C", false, 0, "")
	p.doc.SetFont(fontFamily, "", 14)
	p.doc.CellFormat(0, 10, p.tr("Fame Score - "+res.Analysis.Tier), "", 1, "C", false, 0, "")
	p.doc.Ln(30)
	p.doc.SetFont(fontFamily, "", 10)
	p.doc.CellFormat(0, 6, p.tr("Generated "+res.GeneratedAt.UTC().Format("January 2, 2006")), "", 1, "C", false, 0, "")
}

func (r *Renderer) scorePage(p page, res domain.AnalysisResult) {
	p.title("Your Fame Score")
	p.heading(fmt.Sprintf("%d / 100 (%s)", res.Analysis.FameScore, res.Analysis.Tier))
	p.doc.Ln(2)
	p.keyValue("Followers", fmt.Sprintf("%d", res.Profile.Followers))
	p.keyValue("Engagement rate", fmt.Sprintf("%.2f%%", res.Profile.EngagementRate*100))
	p.keyValue("Monthly views", fmt.Sprintf("%d", res.Profile.MonthlyViews))
	p.doc.Ln(4)
	p.heading("Adaptation factors")
	f := res.Analysis.Factors
	p.keyValue("Risk tolerance", fmt.Sprintf("%.1f / 10", f.RiskTolerance))
	p.keyValue("Content quality", fmt.Sprintf("%.1f / 10", f.ContentQuality))
	p.keyValue("Community engagement", fmt.Sprintf("%.1f / 10", f.CommunityEngagement))
	p.keyValue("Time to monetize", f.TimeToMonetize)
	p.doc.Ln(4)
	b := res.Analysis.EngagementBenchmark
	p.heading("Engagement benchmark")
	status := "below"
	if b.AboveBenchmark {
		status = "above"
	}
	p.paragraph(fmt.Sprintf("Your engagement of %.2f%% is %s the %s average of %.2f%%.", b.CreatorRate*100, status, orDash(b.Platform), b.AverageRate*100))
}

func (r *Renderer) positionPage(p page, res domain.AnalysisResult) {
	p.title("Market Position")
	p.paragraph(res.Analysis.MarketPosition)
	if strings.TrimSpace(res.Analysis.Narrative) != "" {
		p.heading("Analyst notes")
		p.paragraph(res.Analysis.Narrative)
	}
}

func (r *Renderer) trendsPage(p page, m domain.MarketResearchData) {
	p.title("Trends & Insights")
	p.heading("Trends in your niche")
	p.bullets(m.Trends)
	p.heading("Industry insights")
	p.bullets(m.IndustryInsights)
}

func (r *Renderer) competitorsPage(p page, m domain.MarketResearchData) {
	p.title("Competitor Landscape")
	p.doc.SetFont(fontFamily, "B", 10)
	p.doc.SetFillColor(230, 230, 240)
	widths := []float64{50, 30, 30, 70}
	for i, h := range []string{"Name", "Followers", "Engagement", "Strategy"} {
		p.doc.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	p.doc.Ln(-1)
	p.doc.SetFont(fontFamily, "", 10)
	for _, c := range m.CompetitorAnalysis.TopCompetitors {
		p.doc.CellFormat(widths[0], 8, p.tr(clip(c.Name, 28)), "1", 0, "L", false, 0, "")
		p.doc.CellFormat(widths[1], 8, fmt.Sprintf("%d", c.Followers), "1", 0, "R", false, 0, "")
		p.doc.CellFormat(widths[2], 8, fmt.Sprintf("%.1f%%", c.AvgEngagement*100), "1", 0, "R", false, 0, "")
		p.doc.CellFormat(widths[3], 8, p.tr(clip(c.MonetizationStrategy, 40)), "1", 0, "L", false, 0, "")
		p.doc.Ln(-1)
	}
}

func (r *Renderer) monetizationPage(p page, m domain.MarketResearchData) {
	p.title("Monetization Opportunities")
	for i, o := range m.MonetizationOpportunities {
		if i == 8 {
			break
		}
		p.heading(o.Type)
		if o.EstimatedEarnings != "" {
			p.keyValue("Estimated earnings", clip(o.EstimatedEarnings, 60))
		}
		if o.Requirements != "" {
			p.paragraph("Requirements: " + o.Requirements)
		}
	}
}

func (r *Renderer) recommendationsPage(p page, a domain.Analysis) {
	p.title("Recommendations")
	p.bullets(a.Recommendations)
}

func (r *Renderer) growthPlanPage(p page, g domain.GrowthPlan) {
	p.title("Growth Plan")
	p.heading("Next 30 days")
	p.bullets(g.NextMonth)
	p.heading("Next 90 days")
	p.bullets(g.NextQuarter)
	p.heading("Next 12 months")
	p.bullets(g.NextYear)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
