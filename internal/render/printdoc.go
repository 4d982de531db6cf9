package render

import "strings"

// baseStylesheet is embedded into every print document alongside the page
// content, standing in for the live page's computed styles.
const baseStylesheet = `
@page { size: A4; margin: 0; }
html, body { margin: 0; padding: 0; }
.resume-page { width: 210mm; min-height: 297mm; background: #ffffff; }
a { color: inherit; text-decoration: none; }
@media print { .resume-page { transform: none !important; } }
`

// PrintDocument builds a standalone print-only HTML document: stylesheet plus
// the rendered subtree, fixed to A4, auto-triggering print and closing after.
func PrintDocument(title, innerHTML string) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	sb.WriteString(htmlTitle(title))
	sb.WriteString("</title>\n<style>")
	sb.WriteString(baseStylesheet)
	sb.WriteString("</style>\n</head>\n<body>\n")
	sb.WriteString(innerHTML)
	sb.WriteString("\n<script>window.onload = function () { window.print(); window.onafterprint = function () { window.close(); }; };</script>\n")
	sb.WriteString("</body>\n</html>\n")
	return sb.String()
}

func htmlTitle(s string) string {
	r := strings.NewReplacer("<", "&lt;", ">", "&gt;", "&", "&amp;")
	if s == "" {
		return "Resume"
	}
	return r.Replace(s)
}
