// Package prompt turns textbook content and user input into completion
// prompts.
package prompt

import (
	"strings"
	"unicode/utf8"
)

// MaxContentChars bounds how much textbook text goes into one prompt.
// Counted in characters (runes), not bytes.
const MaxContentChars = 50000

// Truncate keeps the first n characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Question builds the question-answering prompt.
func Question(content, question string) string {
	var b strings.Builder
	b.WriteString("You are an educational AI assistant helping students and teachers with textbook content.\n\n")
	b.WriteString("Textbook Content:\n")
	b.WriteString(Truncate(content, MaxContentChars))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nPlease provide a clear and accurate answer based ONLY on the textbook content provided above. \n")
	b.WriteString("If the answer is not found in the textbook, please state that clearly.\n")
	b.WriteString("Include the page number or chapter reference if possible.\n\n")
	b.WriteString("Answer:")
	return b.String()
}

// Explanation builds the prompt that rewrites an answer in simpler words.
// An empty question is rendered as "Not provided".
func Explanation(content, question, answer string) string {
	if strings.TrimSpace(question) == "" {
		question = "Not provided"
	}
	var b strings.Builder
	b.WriteString("You are an educational AI assistant helping students understand complex textbook content.\n\n")
	b.WriteString("Textbook Content (for reference):\n")
	b.WriteString(Truncate(content, MaxContentChars))
	b.WriteString("\n\nOriginal Question: ")
	b.WriteString(question)
	b.WriteString("\n\nOriginal Answer: ")
	b.WriteString(answer)
	b.WriteString("\n\nPlease explain the above answer in very simple, easy-to-understand words. \n")
	b.WriteString("Break down complex concepts into simpler terms.\n")
	b.WriteString("Use examples if helpful.\n")
	b.WriteString("Make it suitable for students who are struggling to understand the material.\n")
	b.WriteString("Keep the explanation clear and concise.\n\n")
	b.WriteString("Simple Explanation:")
	return b.String()
}

const lectureRole = `### ROLE
You are an expert University Professor and Curriculum Designer with 20 years of experience. Your goal is to convert raw textbook content into a structured, high-energy 45-minute lecture plan.

### INPUT
1. Textbook Content (PDF Text)
2. Specific Topic/Chapter to cover: `

const lectureInstructions = `

### INSTRUCTIONS
Do not summarize. You must build a teaching script. Follow this strict structure:

1. **Learning Objective:** Start with "By the end of this lecture, students will be able to..."

2. **The "Hook" (5 Mins):** Provide a real-world analogy or surprising fact to start the class. (e.g., "Think of Voltage like water pressure...")

3. **Core Concepts (Slide-Ready):**
   - Break the content into 3 main sub-topics.
   - For each sub-topic, provide 4-5 short bullet points (max 10 words per bullet) suitable for a PowerPoint slide.

4. **Speaker Notes:**
   - For each slide, write a "Script" for the teacher to say.
   - Include specific "Check for Understanding" questions to ask the class (e.g., "Raise your hand if you think X...").

5. **The "Stump" Question:** Generate one very difficult critical-thinking question to challenge the smartest students at the end.

### OUTPUT FORMAT
Structure your response as follows:

# LEARNING OBJECTIVE
[Your learning objective here]

# THE HOOK (5 Minutes)
[Your engaging hook here]

# CORE CONCEPTS

## Sub-topic 1: [Name]
### Slide 1:
- [Bullet point 1]
- [Bullet point 2]
- [Bullet point 3]
- [Bullet point 4]
- [Bullet point 5]

**Speaker Notes:**
[Your script here]

**Check for Understanding:**
[Your question here]

### Slide 2:
[Continue pattern...]

## Sub-topic 2: [Name]
[Continue pattern...]

## Sub-topic 3: [Name]
[Continue pattern...]

# THE STUMP QUESTION
[Your challenging question here]

### TONE
Professional, engaging, organized. Use bolding for key terms.

Now generate the lecture plan for the topic: `

// Lecture builds the 45-minute lecture plan prompt. The chapter line is
// omitted when chapter is empty.
func Lecture(content, topic, chapter string) string {
	var b strings.Builder
	b.WriteString(lectureRole)
	b.WriteString(topic)
	b.WriteString("\n")
	if chapter != "" {
		b.WriteString("3. Chapter: ")
		b.WriteString(chapter)
	}
	b.WriteString("\n\n### TEXTBOOK CONTENT:\n")
	b.WriteString(Truncate(content, MaxContentChars))
	b.WriteString(lectureInstructions)
	b.WriteString(topic)
	return b.String()
}

// CharCount reports the length of s in characters.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}
