package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gofit/models"
)

// Renderer produces human-readable fit reports, as markdown text or
// rendered HTML.
type Renderer struct{}

// NewRenderer creates a report renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// EvaluationMarkdown renders an evaluation report as markdown
func (r *Renderer) EvaluationMarkdown(report *models.EvaluationReport) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Fit report: %s\n\n", report.Analysis)
	fmt.Fprintf(&sb, "- Log-likelihood: `%g`\n", report.LogLikelihood)
	fmt.Fprintf(&sb, "- Observations: %d\n\n", report.Observations)

	sb.WriteString("## Parameters\n\n")
	sb.WriteString("| Name | Value | Min | Central | Max |\n")
	sb.WriteString("|------|-------|-----|---------|-----|\n")
	for _, p := range report.Parameters {
		fmt.Fprintf(&sb, "| %s | %g | %g | %g | %g |\n", p.Name, p.Value, p.Min, p.Central, p.Max)
	}

	sb.WriteString("\n## Constraints\n\n")
	sb.WriteString("| Constraint | Block | Log-density | Significance |\n")
	sb.WriteString("|------------|-------|-------------|--------------|\n")
	for _, c := range report.Constraints {
		for _, b := range c.Blocks {
			significance := "n/a"
			if b.Significance != nil {
				significance = fmt.Sprintf("%.3f", *b.Significance)
			}
			fmt.Fprintf(&sb, "| %s | %s | %g | %s |\n",
				c.Name, escapePipes(b.Description), b.LogDensity, significance)
		}
	}

	return sb.String()
}

// BootstrapMarkdown renders a bootstrap report as markdown
func (r *Renderer) BootstrapMarkdown(report *models.BootstrapReport) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Goodness of fit: %s\n\n", report.Analysis)
	fmt.Fprintf(&sb, "- p-value: `%.4f +- %.4f`\n", report.PValue, report.Uncertainty)
	fmt.Fprintf(&sb, "- Simulated datasets: %d (over %d workers)\n", report.Datasets, report.Workers)
	fmt.Fprintf(&sb, "- Observed test statistic: `%g`\n\n", report.Observed)

	sb.WriteString("## Toy distribution\n\n")
	sb.WriteString("| Mean | Std dev | Median | 5% | 95% |\n")
	sb.WriteString("|------|---------|--------|----|-----|\n")
	fmt.Fprintf(&sb, "| %g | %g | %g | %g | %g |\n",
		report.Toys.Mean, report.Toys.StdDev, report.Toys.Median, report.Toys.P5, report.Toys.P95)

	return sb.String()
}

// HTML renders markdown produced by this package into a standalone HTML
// fragment.
func (r *Renderer) HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

// escapePipes keeps block descriptions from breaking table cells
func escapePipes(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
