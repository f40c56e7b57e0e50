// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/uab-informatics/adrenal-extract/internal/annotate"
	"github.com/uab-informatics/adrenal-extract/internal/batch"
	"github.com/uab-informatics/adrenal-extract/internal/conll"
	"github.com/uab-informatics/adrenal-extract/internal/section"
	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Show the section, findings, and decisions for one note",
	Long: `Inspect runs the annotator on a single note and prints the located
adrenal section and every candidate match with its measurements, the size
decision, and negation. Use --conll to print the CoNLL rows instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	doc, err := batch.ReadDocument(args[0])
	if err != nil {
		return err
	}

	p, err := newPipeline()
	if err != nil {
		return err
	}
	res := p.Process(doc)

	asCoNLL, _ := cmd.Flags().GetBool("conll")
	if asCoNLL {
		w := conll.Writer{SilenceOutside: true, WithModifiers: true}
		if err := w.Write(cmd.OutOrStdout(), res.Records); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderInspect(p, doc, res))
	return nil
}

var (
	inspectTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	inspectBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	inspectKept    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50"))
	inspectDropped = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	inspectNegated = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFB347"))
	inspectMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
)

// renderInspect lays out the decision trail for one document.
func renderInspect(p *annotate.Pipeline, doc types.Document, res types.DocumentResult) string {
	var head strings.Builder
	head.WriteString(inspectTitle.Render("ADRENAL · " + doc.ID))
	head.WriteString("\n")
	if res.Section.Found {
		fmt.Fprintf(&head, "section %s at %s\n", res.Section.Title, res.Section.Span)
		head.WriteString(inspectMuted.Render(strings.Join(strings.Fields(section.Text(doc.Text, res.Section)), " ")))
	} else {
		head.WriteString(inspectMuted.Render("no adrenal section"))
	}

	lines := []string{inspectBox.Render(head.String())}

	if len(res.Findings) == 0 && res.Section.Found {
		lines = append(lines, inspectMuted.Render("no candidate matches"))
	}

	threshold := p.Lexicon().ThresholdCM()
	for _, f := range res.Findings {
		lines = append(lines, renderFinding(doc.Text, f, threshold))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderFinding(text string, f types.Finding, threshold float64) string {
	var status string
	switch {
	case !f.Retained:
		status = inspectDropped.Render("dropped")
	case f.Modifiers.Negated:
		status = inspectNegated.Render("negated")
	default:
		status = inspectKept.Render("kept")
	}

	var sizes []string
	for _, m := range f.Measurements {
		sizes = append(sizes, fmt.Sprintf("%s (%.2g cm)", m.Text, m.MaxCM()))
	}
	sizeText := "no measurement"
	if len(sizes) > 0 {
		sizeText = strings.Join(sizes, ", ")
		if !f.Significant {
			sizeText += fmt.Sprintf(" < %.2g cm", threshold)
		}
	}

	return fmt.Sprintf("%-8s %-12s %-9s %s\n         %s",
		status, f.Match.Term, f.Match.Span, sizeText,
		inspectMuted.Render(batch.Context(text, f.Match.Span, batch.DefaultContextWidth)))
}

func init() {
	inspectCmd.Flags().Bool("conll", false, "print matched CoNLL rows with modifier columns")

	rootCmd.AddCommand(inspectCmd)
}
