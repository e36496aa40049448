package adr

import "strings"

// defaultBody follows the header of documents created without a template.
const defaultBody = "\n## Context\n\nDescribe the context and forces at play.\n\n" +
	"## Decision\n\nState the decision that was made and why.\n\n" +
	"## Consequences\n\nList the trade-offs and follow-ups.\n"

// ExpandTemplate substitutes {{NUMBER}}, {{TITLE}}, {{DATE}}, {{STATUS}} and
// {{SUPERSEDES}} in tpl. SUPERSEDES becomes a link when links knows the
// number, a bare number otherwise, and "" when rec supersedes nothing.
func ExpandTemplate(tpl string, rec Record, links map[uint32]string) string {
	supersedes := ""
	if rec.Supersedes != 0 {
		supersedes = reference(rec.Supersedes, links)
	}

	return strings.NewReplacer(
		"{{NUMBER}}", FormatNumber(rec.Number),
		"{{TITLE}}", rec.Title,
		"{{DATE}}", rec.Date,
		"{{STATUS}}", rec.Status,
		"{{SUPERSEDES}}", supersedes,
	).Replace(tpl)
}
