package chat

import (
	"regexp"
	"strings"
)

var (
	scriptTagPattern  = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	jsProtocolPattern = regexp.MustCompile(`(?i)javascript:`)
	eventAttrPattern  = regexp.MustCompile(`(?i)on\w+\s*=`)
)

// SanitizeInput strips script tags, javascript: protocols, and inline event
// handlers from user-supplied text before it leaves the client.
func SanitizeInput(input string) string {
	out := scriptTagPattern.ReplaceAllString(input, "")
	out = jsProtocolPattern.ReplaceAllString(out, "")
	out = eventAttrPattern.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}
