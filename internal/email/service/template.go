package service

import (
	"html"
	"regexp"
	"strings"
)

// Vars are the placeholder values available to subject and body templates.
type Vars struct {
	Tier          string
	EmployeeName  string
	CustomMessage string
	SenderName    string
	CompanyName   string
}

// Substitute replaces every occurrence of each placeholder token. Tokens do
// not overlap so the replacement order does not matter.
func Substitute(tmpl string, v Vars) string {
	return strings.NewReplacer(
		"{tier}", v.Tier,
		"{employee_name}", v.EmployeeName,
		"{custom_message}", v.CustomMessage,
		"{sender_name}", v.SenderName,
		"{company_name}", v.CompanyName,
	).Replace(tmpl)
}

// Unescape turns the stored two-character "\n" sequence into real line breaks.
func Unescape(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

// HTMLBody wraps each line of text in its own paragraph. Blank lines keep
// their vertical space with a non-breaking space.
func HTMLBody(text string) string {
	lines := strings.Split(text, "\n")
	var b strings.Builder
	for _, l := range lines {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			b.WriteString("<p>&nbsp;</p>")
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(l))
		b.WriteString("</p>")
	}
	return b.String()
}

var whitespace = regexp.MustCompile(`\s+`)

// AttachmentName derives the human-readable PDF filename from the employee name.
func AttachmentName(employeeName string) string {
	name := whitespace.ReplaceAllString(strings.TrimSpace(employeeName), "_")
	if name == "" {
		name = "Recipient"
	}
	return "Certificate_" + name + ".pdf"
}
