// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"fmt"
	"strings"

	"github.com/mhprogram/evidence-engine/pkg/types"
)

// Disclaimer is appended to every synthesized answer.
const Disclaimer = "This information is for educational purposes only and is not a " +
	"substitute for professional medical advice. If you are in crisis, please seek immediate help."

const systemPrompt = "You are an evidence-based mental health research assistant. " +
	"Use ONLY the provided research papers; do not invent studies or data. " +
	"Answer in a clear, supportive, practical way and avoid technical jargon."

const maxAbstractLen = 300

// BuildPrompt renders the question and the supplied papers into the user
// message. The required output schema is stated inline so the json_object
// response format has something to satisfy.
func BuildPrompt(question string, papers []types.ScoredPaper) string {
	var b strings.Builder

	fmt.Fprintf(&b, "User question: %s\n\n", question)
	b.WriteString("Relevant research papers:\n")
	for i, p := range papers {
		fmt.Fprintf(&b, "Paper %d: %s\n", i+1, Citation(p.PaperRecord))
		if abstract := shortAbstract(p.Abstract); abstract != "" {
			fmt.Fprintf(&b, "Abstract: %s\n", abstract)
		}
		if p.StudyType != "" {
			fmt.Fprintf(&b, "Study type: %s\n", p.StudyType)
		}
		if p.SampleSize > 0 {
			fmt.Fprintf(&b, "Sample size: %d\n", p.SampleSize)
		}
		b.WriteByte('\n')
	}

	b.WriteString(`Based only on the papers above, respond with valid JSON:
{
  "executive_summary": "a narrative summary addressing the question, citing papers by title",
  "key_findings": ["evidence-backed findings with study details"],
  "recommendations": ["practical, actionable advice"],
  "citations": ["exact titles of the papers you relied on"],
  "warnings": ["note any missing effect sizes or sample sizes"]
}
If a section cannot be answered from the papers, state "Insufficient data from provided papers."
Always include this disclaimer in the executive summary: ` + Disclaimer + "\n")

	return b.String()
}

// Citation renders a paper as a compact APA-style reference line.
func Citation(p types.PaperRecord) string {
	var b strings.Builder

	b.WriteString(formatAuthors(p.Authors))
	if p.Year > 0 {
		fmt.Fprintf(&b, " (%d).", p.Year)
	}
	if p.Title != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.TrimRight(p.Title, "."))
		b.WriteByte('.')
	}
	if p.Venue != "" {
		fmt.Fprintf(&b, " %s.", p.Venue)
	}
	return strings.TrimSpace(b.String())
}

// formatAuthors renders "Family, G." style author lists, truncated to
// three names plus "et al.".
func formatAuthors(authors []string) string {
	var parts []string
	for i, name := range authors {
		if i == 3 {
			parts = append(parts, "et al.")
			break
		}
		parts = append(parts, apaName(name))
	}
	return strings.Join(parts, ", ")
}

// apaName splits on the last space: the final token is the family name,
// preceding tokens contribute initials.
func apaName(name string) string {
	name = strings.TrimSpace(name)
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return name
	}

	family := name[idx+1:]
	var initials []string
	for _, given := range strings.Fields(name[:idx]) {
		initials = append(initials, string([]rune(given)[0])+".")
	}
	return family + ", " + strings.Join(initials, " ")
}

// shortAbstract truncates an abstract to roughly maxAbstractLen runes,
// preferring to cut at the first sentence boundary past the limit.
func shortAbstract(abstract string) string {
	if len(abstract) <= maxAbstractLen {
		return abstract
	}
	if cut := strings.Index(abstract[maxAbstractLen:], "."); cut >= 0 {
		return abstract[:maxAbstractLen+cut+1]
	}
	return abstract[:maxAbstractLen] + "..."
}
