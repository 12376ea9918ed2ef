package rdf

import "strings"

// isAbsoluteIRI reports whether value has a scheme (ALPHA *( ALPHA / DIGIT /
// "+" / "-" / "." ) ":") and no whitespace. Blank node identifiers ("_:x")
// are accepted too, matching how expanded JSON-LD treats them.
func isAbsoluteIRI(value string) bool {
	colon := strings.IndexByte(value, ':')
	if colon <= 0 {
		return false
	}
	scheme := value[:colon]
	if scheme != "_" {
		first := scheme[0]
		if !((first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z')) {
			return false
		}
		for i := 1; i < len(scheme); i++ {
			ch := scheme[i]
			if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
				(ch >= '0' && ch <= '9') || ch == '+' || ch == '-' || ch == '.') {
				return false
			}
		}
	}
	return !strings.ContainsAny(value, " \t\r\n")
}
