package rag

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"unicode"
)

// Namespace derives the vector collection name for one piece of ingested
// content. The same (inputType, source, session) triple always resolves to
// the same name, which is how FAQ vectors land next to the content they were
// generated from.
//
// Shapes: "web-{host}-{prefix}", "pdf-{filename}-{prefix}" and
// "unknown-{prefix}", all lowercase, where prefix is the session id up to its
// first dash.
func Namespace(inputType, source, sessionId string) string {
	prefix := sessionId
	if i := strings.Index(sessionId, "-"); i >= 0 {
		prefix = sessionId[:i]
	}

	var name string
	switch inputType {
	case "website":
		host := ""
		if u, err := url.Parse(source); err == nil {
			host = u.Host
		}
		host = strings.ReplaceAll(host, ".", "-")
		host = strings.ReplaceAll(host, ":", "-")
		name = fmt.Sprintf("web-%s-%s", host, prefix)
	case "pdf":
		base := filepath.Base(source)
		// Everything before the first dot, so "report.final.pdf" keeps
		// only "report".
		if i := strings.Index(base, "."); i >= 0 {
			base = base[:i]
		}
		name = fmt.Sprintf("pdf-%s-%s", sanitize(base), prefix)
	default:
		name = fmt.Sprintf("unknown-%s", prefix)
	}
	return strings.ToLower(name)
}

// sanitize maps every non-alphanumeric rune to a dash and trims dashes from
// both ends.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
