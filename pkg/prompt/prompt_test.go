package prompt

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "abcdef", n: 3, want: "abc"},
		{in: "abc", n: 10, want: "abc"},
		{in: "héllo wörld", n: 5, want: "héllo"},
		{in: "日本語テキスト", n: 3, want: "日本語"},
		{in: "abc", n: 0, want: ""},
	}
	for _, tc := range tests {
		if got := Truncate(tc.in, tc.n); got != tc.want {
			t.Fatalf("Truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestQuestionBoundsContent(t *testing.T) {
	content := strings.Repeat("a", MaxContentChars) + "TAIL-SHOULD-NOT-APPEAR"
	p := Question(content, "What is osmosis?")
	if strings.Contains(p, "TAIL-SHOULD-NOT-APPEAR") {
		t.Fatal("content beyond the budget leaked into the prompt")
	}
	if !strings.Contains(p, strings.Repeat("a", MaxContentChars)) {
		t.Fatal("content within the budget was dropped")
	}
	if !strings.Contains(p, "Question: What is osmosis?") || !strings.HasSuffix(p, "Answer:") {
		t.Fatalf("unexpected prompt shape: %q", p[len(p)-200:])
	}
}

func TestQuestionMultibyteBudget(t *testing.T) {
	content := strings.Repeat("é", MaxContentChars+10)
	p := Question(content, "q")
	if got := strings.Count(p, "é"); got != MaxContentChars {
		t.Fatalf("characters kept = %d, want %d", got, MaxContentChars)
	}
}

func TestExplanationDefaultsQuestion(t *testing.T) {
	p := Explanation("content", "  ", "Mitochondria make ATP.")
	if !strings.Contains(p, "Original Question: Not provided") {
		t.Fatal("missing placeholder question")
	}
	if !strings.Contains(p, "Original Answer: Mitochondria make ATP.") || !strings.HasSuffix(p, "Simple Explanation:") {
		t.Fatal("unexpected explanation prompt")
	}
	if p := Explanation("c", "Why?", "Because."); !strings.Contains(p, "Original Question: Why?") {
		t.Fatal("question not rendered")
	}
}

func TestLectureChapterLine(t *testing.T) {
	with := Lecture("text", "Thermodynamics", "Chapter 4")
	if !strings.Contains(with, "2. Specific Topic/Chapter to cover: Thermodynamics\n3. Chapter: Chapter 4\n\n### TEXTBOOK CONTENT:\ntext") {
		t.Fatalf("chapter line missing:\n%s", with[:400])
	}
	without := Lecture("text", "Thermodynamics", "")
	if strings.Contains(without, "3. Chapter:") {
		t.Fatal("chapter line rendered for empty chapter")
	}
	if !strings.HasSuffix(without, "Now generate the lecture plan for the topic: Thermodynamics") {
		t.Fatal("lecture prompt should end with the topic")
	}
	if !strings.Contains(without, "# THE STUMP QUESTION") {
		t.Fatal("output format section missing")
	}
}

func TestCharCount(t *testing.T) {
	if got := CharCount("héllo"); got != 5 {
		t.Fatalf("CharCount() = %d, want 5", got)
	}
}
