package prompt

import "testing"

func TestPageReference(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   int
		wantOK bool
	}{
		{name: "inline", answer: "The definition is found on page 12 of the text.", want: 12, wantOK: true},
		{name: "case insensitive", answer: "See PAGE 7.", want: 7, wantOK: true},
		{name: "parenthesized", answer: "Energy is conserved (page 33).", want: 33, wantOK: true},
		{name: "first occurrence only", answer: "page 3 and later page 9", want: 3, wantOK: true},
		{name: "plural", answer: "Covered in pages 40-42.", want: 40, wantOK: true},
		{name: "first pattern wins over earlier plural", answer: "pages 5 discuss it, see page 8", want: 8, wantOK: true},
		{name: "no-break space", answer: "see page\u00a012 for details", want: 12, wantOK: true},
		{name: "thin space", answer: "(page\u200933)", want: 33, wantOK: true},
		{name: "newline", answer: "see page\n4", want: 4, wantOK: true},
		{name: "no reference", answer: "The textbook does not cover this topic.", wantOK: false},
		{name: "page without number", answer: "Turn the page to continue.", wantOK: false},
		{name: "number too large", answer: "page 99999999999999999999999", wantOK: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := PageReference(tc.answer)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("PageReference(%q) = %d, %v; want %d, %v", tc.answer, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}
