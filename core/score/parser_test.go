package score

import (
	"reflect"
	"testing"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/survey"
)

func TestParseDetailedAnswers(t *testing.T) {
	segurancaQuestions := []survey.Question{
		{ID: "q0", CategoryID: "cat1", Text: "Q0"},
		{ID: "q1", CategoryID: "cat1", Text: "Texto P1"},
		{ID: "q2", CategoryID: "cat1", Text: "Texto P2"},
	}

	tests := []struct {
		name      string
		input     DetailedAnswers
		questions []survey.Question
		want      []ParsedAnswer
	}{
		{
			name: "structured input returned unchanged",
			input: DetailedAnswers{Pairs: []ParsedAnswer{
				{QuestionText: "Q1", SelectedAnswerText: "A1"},
				{QuestionText: "Q2", SelectedAnswerText: "A2"},
			}},
			want: []ParsedAnswer{
				{QuestionText: "Q1", SelectedAnswerText: "A1"},
				{QuestionText: "Q2", SelectedAnswerText: "A2"},
			},
		},
		{
			name:  "serialized structured sequence",
			input: DetailedAnswers{Text: `[{"questionText":"Q1","selectedAnswerText":"A1"}]`},
			want:  []ParsedAnswer{{QuestionText: "Q1", SelectedAnswerText: "A1"}},
		},
		{
			name:  "serialized list without questionText key falls through",
			input: DetailedAnswers{Text: `[{"foo":"bar"}]`},
			want:  []ParsedAnswer{},
		},
		{
			name:      "segmented narrative",
			input:     DetailedAnswers{Text: "a) Resposta inicial - 1. Pergunta: Texto P1 Resposta: ✅ R1 - 2. Pergunta: Texto P2 Resposta: ♦ R2"},
			questions: segurancaQuestions,
			want: []ParsedAnswer{
				{QuestionText: "Q0", SelectedAnswerText: "Resposta inicial"},
				{QuestionText: "Texto P1", SelectedAnswerText: "R1"},
				{QuestionText: "Texto P2", SelectedAnswerText: "R2"},
			},
		},
		{
			name:  "segmented narrative without category questions drops the leading answer",
			input: DetailedAnswers{Text: "a) Resposta inicial - 1. Pergunta: Texto P1 Resposta: R1"},
			want:  []ParsedAnswer{{QuestionText: "Texto P1", SelectedAnswerText: "R1"}},
		},
		{
			name:      "segment lacking markers is skipped",
			input:     DetailedAnswers{Text: "intro - 1. Pergunta: Texto P1 Resposta: R1 - 2. Pergunta: sem resposta"},
			questions: segurancaQuestions,
			want: []ParsedAnswer{
				{QuestionText: "Q0", SelectedAnswerText: "intro"},
				{QuestionText: "Texto P1", SelectedAnswerText: "R1"},
			},
		},
		{
			name:  "simple delimiter format",
			input: DetailedAnswers{Text: "Pergunta: Q1 Resposta: ✅ A1 Pergunta: Q2 Resposta: A2"},
			want: []ParsedAnswer{
				{QuestionText: "Q1", SelectedAnswerText: "A1"},
				{QuestionText: "Q2", SelectedAnswerText: "A2"},
			},
		},
		{
			name:  "delimiter fragment without exactly one answer is discarded",
			input: DetailedAnswers{Text: "Pergunta: Q1 Resposta: A1 Resposta: A1bis Pergunta: Q2 Resposta: A2"},
			want:  []ParsedAnswer{{QuestionText: "Q2", SelectedAnswerText: "A2"}},
		},
		{
			name:  "unrecognized text yields empty sequence",
			input: DetailedAnswers{Text: "just some free text notes"},
			want:  []ParsedAnswer{},
		},
		{
			name:  "empty input",
			input: DetailedAnswers{},
			want:  []ParsedAnswer{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDetailedAnswers(tt.input, tt.questions)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseDetailedAnswers() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseDetailedAnswersNeverMutatesStructuredInput(t *testing.T) {
	pairs := []ParsedAnswer{{QuestionText: "Q1", SelectedAnswerText: "A1"}}
	got := ParseDetailedAnswers(DetailedAnswers{Pairs: pairs}, nil)
	if !reflect.DeepEqual(got, pairs) {
		t.Errorf("identity pass-through broken: got %+v", got)
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	pairs := []ParsedAnswer{
		{QuestionText: "Texto P1", SelectedAnswerText: "R1"},
		{QuestionText: "Texto P2", SelectedAnswerText: "R2"},
	}
	rendered := RenderDetailedAnswers(pairs)
	got := ParseDetailedAnswers(DetailedAnswers{Text: rendered}, nil)
	if !reflect.DeepEqual(got, pairs) {
		t.Errorf("round trip failed: rendered %q, parsed %+v", rendered, got)
	}
}
