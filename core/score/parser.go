package score

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/survey"
)

var (
	segmentBoundaryRegex = regexp.MustCompile(`\s*-\s*\d+\.\s*Pergunta:`)
	questionRegex        = regexp.MustCompile(`(?is)Pergunta:\s*(.*?)\s*Resposta:`)
	answerRegex          = regexp.MustCompile(`(?is)Resposta:\s*(.*)`)
	choiceMarkerRegex    = regexp.MustCompile(`^[a-zA-Z]\)\s*`)
	glyphRegex           = regexp.MustCompile(`[✅♦]\s*`)
)

// ParseDetailedAnswers normalizes a submission's detailed-answers record into
// (question, chosen answer) pairs. Already-structured input is returned
// unchanged; text is decoded through a layered, first-match-wins chain of the
// historical storage formats. It never fails: unrecognized text yields an
// empty list and downstream lookups fall back to NoAnswerText.
func ParseDetailedAnswers(da DetailedAnswers, categoryQuestions []survey.Question) []ParsedAnswer {
	if len(da.Pairs) > 0 {
		return da.Pairs
	}
	if da.Text == "" {
		return []ParsedAnswer{}
	}

	// serialized structured sequence
	if pairs, ok := decodeStructured(da.Text); ok {
		return pairs
	}

	// segmented narrative: "... - 1. Pergunta: ... Resposta: ... - 2. Pergunta: ..."
	if pairs, ok := parseSegmented(da.Text, categoryQuestions); ok {
		return pairs
	}

	// simple delimiter format: "Pergunta: ... Resposta: ... Pergunta: ..."
	if pairs, ok := parseDelimited(da.Text); ok {
		return pairs
	}

	return []ParsedAnswer{}
}

// decodeStructured attempts to decode text as a JSON list of ParsedAnswer
// entries. Only a non-empty list whose first entry carries a questionText key
// is accepted.
func decodeStructured(text string) ([]ParsedAnswer, bool) {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil || len(raw) == 0 {
		return nil, false
	}
	if _, ok := raw[0]["questionText"]; !ok {
		return nil, false
	}

	var pairs []ParsedAnswer
	if err := json.Unmarshal([]byte(text), &pairs); err != nil {
		return nil, false
	}
	return pairs, true
}

// parseSegmented splits the text at every "- N. Pergunta:" boundary. The text
// before the first boundary is the answer to the category's first question by
// position; there is no way to validate that the category's question order
// still matches submission time, the attribution is positional on purpose.
func parseSegmented(text string, categoryQuestions []survey.Question) ([]ParsedAnswer, bool) {
	segments := splitBefore(text, segmentBoundaryRegex)
	if len(segments) < 2 {
		return nil, false
	}

	results := make([]ParsedAnswer, 0, len(segments))
	if len(categoryQuestions) > 0 {
		results = append(results, ParsedAnswer{
			QuestionText:       categoryQuestions[0].Text,
			SelectedAnswerText: cleanAnswer(segments[0]),
		})
	}

	for _, segment := range segments[1:] {
		questionMatch := questionRegex.FindStringSubmatch(segment)
		answerMatch := answerRegex.FindStringSubmatch(segment)
		if questionMatch == nil || answerMatch == nil {
			continue
		}
		results = append(results, ParsedAnswer{
			QuestionText:       strings.TrimSpace(questionMatch[1]),
			SelectedAnswerText: cleanAnswer(answerMatch[1]),
		})
	}
	return results, true
}

// parseDelimited splits on the literal "Pergunta:"; only fragments splitting
// into exactly two parts around "Resposta:" yield a pair.
func parseDelimited(text string) ([]ParsedAnswer, bool) {
	var results []ParsedAnswer
	for _, part := range strings.Split(text, "Pergunta:") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		qaSplit := strings.Split(part, "Resposta:")
		if len(qaSplit) != 2 {
			continue
		}
		results = append(results, ParsedAnswer{
			QuestionText:       strings.TrimSpace(qaSplit[0]),
			SelectedAnswerText: strings.TrimSpace(stripFirstGlyph(qaSplit[1])),
		})
	}
	if len(results) == 0 {
		return nil, false
	}
	return results, true
}

// splitBefore splits s right before each match of re, keeping the matched text
// with its following segment. A match at position 0 does not produce a leading
// empty segment.
func splitBefore(s string, re *regexp.Regexp) []string {
	locs := re.FindAllStringIndex(s, -1)
	starts := make([]int, 0, len(locs))
	for _, loc := range locs {
		if loc[0] > 0 {
			starts = append(starts, loc[0])
		}
	}
	if len(starts) == 0 {
		return []string{s}
	}

	segments := make([]string, 0, len(starts)+1)
	prev := 0
	for _, start := range starts {
		segments = append(segments, s[prev:start])
		prev = start
	}
	return append(segments, s[prev:])
}

// cleanAnswer strips a leading "letter + close-paren" choice marker and the
// first checkmark/diamond glyph from an answer fragment.
func cleanAnswer(s string) string {
	s = choiceMarkerRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(stripFirstGlyph(s))
}

// stripFirstGlyph removes only the first glyph occurrence, as the historical
// formats carried at most one per answer.
func stripFirstGlyph(s string) string {
	if loc := glyphRegex.FindStringIndex(s); loc != nil {
		return s[:loc[0]] + s[loc[1]:]
	}
	return s
}
