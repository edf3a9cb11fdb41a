// Package report renders a run's reconciliation results for the terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/eitrtech/azurestate/internal/engine"
	"github.com/eitrtech/azurestate/internal/model"
)

// Renderer formats a RunReport. With styling disabled every line is plain
// text, suitable for non-TTY output.
type Renderer struct {
	styled bool
}

// NewRenderer creates a Renderer. Pass styled=false when stdout is not a
// terminal.
func NewRenderer(styled bool) *Renderer {
	return &Renderer{styled: styled}
}

// Render returns the full report: title, per-resource lines, and a summary.
func (r *Renderer) Render(report *engine.RunReport) string {
	var sections []string

	title := fmt.Sprintf("azurestate • %s", r.title(report))
	sections = append(sections, r.style(titleStyle, title))

	if len(report.Results) > 0 {
		sections = append(sections, r.style(sectionStyle, "Resources"))
		sections = append(sections, r.renderResults(report.Results))
	}

	sections = append(sections,
		r.style(sectionStyle, "Summary"),
		r.style(summaryStyle, r.renderSummary(report)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (r *Renderer) title(report *engine.RunReport) string {
	name := strings.TrimSpace(report.Name)
	if name == "" {
		name = "Run"
	}
	if report.DryRun {
		return name + " (dry-run)"
	}
	return name
}

func (r *Renderer) renderResults(results []model.ReconcileResult) string {
	var lines []string
	for i := range results {
		lines = append(lines, r.renderResult(&results[i])...)
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) renderResult(res *model.ReconcileResult) []string {
	line := fmt.Sprintf(" %s %s", r.icon(res), res.Identity.String())
	if strings.TrimSpace(res.Comment) != "" {
		line = fmt.Sprintf("%s — %s", line, res.Comment)
	}
	if res.Duration > 0 {
		line = fmt.Sprintf("%s (%s)", line, res.Duration.Truncate(10*time.Millisecond))
	}

	lines := []string{line}
	for _, change := range res.Diff.Changes {
		lines = append(lines, r.style(diffStyle, "     "+change.String()))
	}
	return lines
}

func (r *Renderer) renderSummary(report *engine.RunReport) string {
	var created, updated, deleted, unchanged, failed int
	for i := range report.Results {
		res := &report.Results[i]
		switch {
		case res.Failed():
			failed++
		case !res.Changed:
			unchanged++
		case res.Action == model.ActionCreate:
			created++
		case res.Action == model.ActionUpdate:
			updated++
		case res.Action == model.ActionDelete:
			deleted++
		}
	}

	total := created + updated + deleted
	var line string
	if report.DryRun {
		line = fmt.Sprintf("%d planned: %d to create, %d to update, %d to delete, %d unchanged",
			total, created, updated, deleted, unchanged)
	} else {
		line = fmt.Sprintf("%d applied: %d created, %d updated, %d deleted, %d unchanged",
			total, created, updated, deleted, unchanged)
	}
	if failed > 0 {
		line = fmt.Sprintf("%s, %s", line, r.style(failureStyle, fmt.Sprintf("%d failed", failed)))
	}
	return line
}

// icon returns the glyph for a result's outcome and action.
func (r *Renderer) icon(res *model.ReconcileResult) string {
	switch {
	case res.Failed():
		return r.style(failureStyle, "✗")
	case res.Outcome == model.OutcomePlanned && res.Changed:
		return r.style(plannedStyle, "±")
	case !res.Changed:
		return r.style(noopStyle, "=")
	case res.Action == model.ActionDelete:
		return r.style(convergedStyle, "-")
	case res.Action == model.ActionCreate:
		return r.style(convergedStyle, "+")
	default:
		return r.style(convergedStyle, "~")
	}
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return s.Render(text)
}
