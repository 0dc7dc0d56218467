package prompt

import (
	"regexp"
	"strconv"
)

// pageSpace matches Unicode space separators as well as ASCII whitespace, so
// model output with non-breaking or thin spaces still yields a page.
const pageSpace = `[\s\p{Zs}]+`

// pagePatterns are tried in order; the first one that matches wins even if
// a later pattern would match earlier in the text.
var pagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)page` + pageSpace + `(\d+)`),
	regexp.MustCompile(`(?i)page` + pageSpace + `(\d+):`),
	regexp.MustCompile(`(?i)on` + pageSpace + `page` + pageSpace + `(\d+)`),
	regexp.MustCompile(`(?i)at` + pageSpace + `page` + pageSpace + `(\d+)`),
	regexp.MustCompile(`(?i)pages?` + pageSpace + `(\d+)`),
	regexp.MustCompile(`(?i)\(page` + pageSpace + `(\d+)\)`),
}

// PageReference finds the page a generated answer cites. It is the single
// place that interprets free-form model output for page numbers.
func PageReference(answer string) (int, bool) {
	for _, re := range pagePatterns {
		m := re.FindStringSubmatch(answer)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}
