package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"app/internal/model"
)

// ExtractionError reports why model output could not be turned into a typed
// value. Kind distinguishes a JSON syntax failure from a shape failure so
// callers can apply the right fallback policy.
type ExtractionError struct {
	Kind string // ExtractionUnparsable or ExtractionMalformed
	Err  error
}

const (
	ExtractionUnparsable = "unparsable"
	ExtractionMalformed  = "malformed"
)

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed (%s): %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func unparsable(err error) *ExtractionError {
	return &ExtractionError{Kind: ExtractionUnparsable, Err: err}
}

func malformed(err error) *ExtractionError {
	return &ExtractionError{Kind: ExtractionMalformed, Err: err}
}

// Models wrap JSON output in prose or markdown fences more often than not.
// Candidate selection tries a ```json fence first, then the widest brace or
// bracket span, then the whole trimmed text.
var (
	fencedObjectRe = regexp.MustCompile("(?s)```json\\s*(\\{.*\\})\\s*```")
	fencedArrayRe  = regexp.MustCompile("(?s)```json\\s*(\\[.*\\])\\s*```")
)

func extractCandidate(raw string, open, close byte, fenced *regexp.Regexp) string {
	if m := fenced.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	start := strings.IndexByte(raw, open)
	end := strings.LastIndexByte(raw, close)
	if start >= 0 && end > start {
		return strings.TrimSpace(raw[start : end+1])
	}
	return strings.TrimSpace(raw)
}

// decodeCourse extracts and validates a generated course from raw model text.
func decodeCourse(raw string) (*model.GeneratedCourse, error) {
	candidate := extractCandidate(raw, '{', '}', fencedObjectRe)

	var course model.GeneratedCourse
	if err := json.Unmarshal([]byte(candidate), &course); err != nil {
		return nil, unparsable(err)
	}
	if course.Title == "" {
		return nil, malformed(fmt.Errorf("course is missing a title"))
	}
	if len(course.Subtopics) == 0 {
		return nil, malformed(fmt.Errorf("course has no subtopics"))
	}
	for i, st := range course.Subtopics {
		if st.Title == "" || st.Content == "" {
			return nil, malformed(fmt.Errorf("subtopic %d is missing a title or content", i))
		}
	}
	return &course, nil
}

// decodeQuestions extracts a list of suggested question strings. Non-string
// elements make the result malformed rather than being silently skipped.
func decodeQuestions(raw string) ([]string, error) {
	candidate := extractCandidate(raw, '[', ']', fencedArrayRe)

	var questions []string
	if err := json.Unmarshal([]byte(candidate), &questions); err != nil {
		// Distinguish "not JSON at all" from "JSON of the wrong shape".
		var anything interface{}
		if jerr := json.Unmarshal([]byte(candidate), &anything); jerr != nil {
			return nil, unparsable(jerr)
		}
		return nil, malformed(err)
	}
	if len(questions) == 0 {
		return nil, malformed(fmt.Errorf("question list is empty"))
	}
	return questions, nil
}

// decodeQuiz extracts and validates quiz questions. An out-of-range
// correctAnswer is rejected here; it must never reach option-indexing code.
func decodeQuiz(raw string) ([]model.QuizQuestion, error) {
	candidate := extractCandidate(raw, '[', ']', fencedArrayRe)

	var questions []model.QuizQuestion
	if err := json.Unmarshal([]byte(candidate), &questions); err != nil {
		var anything interface{}
		if jerr := json.Unmarshal([]byte(candidate), &anything); jerr != nil {
			return nil, unparsable(jerr)
		}
		return nil, malformed(err)
	}
	if len(questions) == 0 {
		return nil, malformed(fmt.Errorf("quiz has no questions"))
	}
	for i, q := range questions {
		if q.Question == "" {
			return nil, malformed(fmt.Errorf("question %d has no text", i))
		}
		if len(q.Options) != 4 {
			return nil, malformed(fmt.Errorf("question %d has %d options, want 4", i, len(q.Options)))
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return nil, malformed(fmt.Errorf("question %d has out-of-range correctAnswer %d", i, q.CorrectAnswer))
		}
	}
	return questions, nil
}
