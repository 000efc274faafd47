package service

import (
	"errors"
	"testing"
)

const validCourseJSON = `{
  "title": "Intro to Go",
  "description": "A short course",
  "subtopics": [
    {"title": "Basics", "description": "d", "content": "c"},
    {"title": "Concurrency", "description": "d", "content": "c"}
  ]
}`

func TestDecodeCourseBareJSON(t *testing.T) {
	course, err := decodeCourse(validCourseJSON)
	if err != nil {
		t.Fatalf("decodeCourse returned error: %v", err)
	}
	if course.Title != "Intro to Go" {
		t.Fatalf("expected title 'Intro to Go', got %q", course.Title)
	}
	if len(course.Subtopics) != 2 {
		t.Fatalf("expected 2 subtopics, got %d", len(course.Subtopics))
	}
}

func TestDecodeCourseFenced(t *testing.T) {
	raw := "Here is your course:\n```json\n" + validCourseJSON + "\n```\nEnjoy!"
	course, err := decodeCourse(raw)
	if err != nil {
		t.Fatalf("decodeCourse returned error: %v", err)
	}
	if course.Title != "Intro to Go" {
		t.Fatalf("expected title 'Intro to Go', got %q", course.Title)
	}
}

func TestDecodeCourseEmbeddedInProse(t *testing.T) {
	raw := "Sure! " + validCourseJSON + " Let me know if you need more."
	if _, err := decodeCourse(raw); err != nil {
		t.Fatalf("decodeCourse returned error: %v", err)
	}
}

func TestDecodeCourseProseOnly(t *testing.T) {
	_, err := decodeCourse("I'm sorry, I can't help with that.")
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if extractionErr.Kind != ExtractionUnparsable {
		t.Fatalf("expected unparsable, got %s", extractionErr.Kind)
	}
}

func TestDecodeCourseMissingTitle(t *testing.T) {
	_, err := decodeCourse(`{"subtopics": [{"title": "A", "content": "c"}]}`)
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if extractionErr.Kind != ExtractionMalformed {
		t.Fatalf("expected malformed, got %s", extractionErr.Kind)
	}
}

func TestDecodeCourseNoSubtopics(t *testing.T) {
	_, err := decodeCourse(`{"title": "T", "subtopics": []}`)
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) || extractionErr.Kind != ExtractionMalformed {
		t.Fatalf("expected malformed ExtractionError, got %v", err)
	}
}

func TestDecodeQuestions(t *testing.T) {
	questions, err := decodeQuestions(`["q1", "q2", "q3", "q4"]`)
	if err != nil {
		t.Fatalf("decodeQuestions returned error: %v", err)
	}
	if len(questions) != 4 || questions[0] != "q1" {
		t.Fatalf("unexpected questions: %v", questions)
	}
}

func TestDecodeQuestionsFenced(t *testing.T) {
	questions, err := decodeQuestions("```json\n[\"a\", \"b\"]\n```")
	if err != nil {
		t.Fatalf("decodeQuestions returned error: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
}

func TestDecodeQuestionsNonStringElement(t *testing.T) {
	_, err := decodeQuestions(`["ok", 42]`)
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if extractionErr.Kind != ExtractionMalformed {
		t.Fatalf("expected malformed, got %s", extractionErr.Kind)
	}
}

func TestDecodeQuestionsEmpty(t *testing.T) {
	_, err := decodeQuestions(`[]`)
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) || extractionErr.Kind != ExtractionMalformed {
		t.Fatalf("expected malformed ExtractionError, got %v", err)
	}
}

const validQuizJSON = `[
  {"question": "Q1", "options": ["a", "b", "c", "d"], "correctAnswer": 0},
  {"question": "Q2", "options": ["a", "b", "c", "d"], "correctAnswer": 3}
]`

func TestDecodeQuiz(t *testing.T) {
	questions, err := decodeQuiz(validQuizJSON)
	if err != nil {
		t.Fatalf("decodeQuiz returned error: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[1].CorrectAnswer != 3 {
		t.Fatalf("expected correctAnswer 3, got %d", questions[1].CorrectAnswer)
	}
}

func TestDecodeQuizOutOfRangeAnswer(t *testing.T) {
	raw := `[{"question": "Q", "options": ["a", "b", "c", "d"], "correctAnswer": 5}]`
	_, err := decodeQuiz(raw)
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if extractionErr.Kind != ExtractionMalformed {
		t.Fatalf("expected malformed, got %s", extractionErr.Kind)
	}
}

func TestDecodeQuizWrongOptionCount(t *testing.T) {
	raw := `[{"question": "Q", "options": ["a", "b", "c"], "correctAnswer": 0}]`
	_, err := decodeQuiz(raw)
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) || extractionErr.Kind != ExtractionMalformed {
		t.Fatalf("expected malformed ExtractionError, got %v", err)
	}
}

func TestDecodeQuizNegativeAnswer(t *testing.T) {
	raw := `[{"question": "Q", "options": ["a", "b", "c", "d"], "correctAnswer": -1}]`
	_, err := decodeQuiz(raw)
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) || extractionErr.Kind != ExtractionMalformed {
		t.Fatalf("expected malformed ExtractionError, got %v", err)
	}
}
