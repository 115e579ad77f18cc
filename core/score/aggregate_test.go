package score

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/survey"
)

func TestAggregateEmptySelection(t *testing.T) {
	if got := Aggregate(nil, ModeCompanies, nil, nil, nil, nil); got != nil {
		t.Errorf("Aggregate() with empty selection = %+v, want nil", got)
	}
}

func TestAggregateTwoCompanyScenario(t *testing.T) {
	entities := []Entity{
		{ID: "c1", Name: "Maria", CompanyName: "Alpha Motors", DisplayName: "Alpha Motors", PhotoURL: "alpha.png"},
		{ID: "c2", Name: "João", CompanyName: "Beta Auto", DisplayName: "Beta Auto"},
	}
	categories := []survey.Category{
		{ID: "cat1", Name: "Segurança"},
		{ID: "cat2", Name: "Gestão"}, // no submissions, must be excluded
	}
	questions := []survey.Question{
		{ID: "q1", CategoryID: "cat1", Text: "Possui extintores?"},
	}
	submissions := []Submission{
		{
			ID: "s1", UserName: "Maria", CompanyName: "Alpha Motors",
			CategoryID: "cat1", CategoryName: "Segurança",
			TotalScore: 80, MaxScore: 100,
			DetailedAnswers: "Pergunta: Possui extintores?\nResposta: Sim, revisados",
		},
	}

	// selection order reversed on purpose; output must still be alphabetical
	got := Aggregate([]string{"c2", "c1"}, ModeCompanies, entities, submissions, categories, questions)
	if got == nil {
		t.Fatal("Aggregate() = nil")
	}

	wantOverall := []EntityScore{
		{EntityName: "Alpha Motors", Percentage: 80, PhotoURL: "alpha.png"},
		{EntityName: "Beta Auto", Percentage: 0},
	}
	assert.Equal(t, wantOverall, got.Overall)

	wantSeguranca := []EntityScore{
		{EntityName: "Alpha Motors", Percentage: 80},
		{EntityName: "Beta Auto", Percentage: 0},
	}
	assert.Equal(t, wantSeguranca, got.PerCategory["Segurança"])

	if _, ok := got.PerCategory["Gestão"]; ok {
		t.Error("category without submissions must be excluded from comparison")
	}

	answers := got.PerQuestionAnswers["Segurança"]
	if len(answers) != 1 {
		t.Fatalf("expected 1 question entry, got %d", len(answers))
	}
	wantAnswers := []EntityAnswer{
		{EntityName: "Beta Auto", AnswerText: NoAnswerText},
		{EntityName: "Alpha Motors", AnswerText: "Sim, revisados"},
	}
	assert.ElementsMatch(t, wantAnswers, answers[0].AnswersByEntity)
}

func TestAggregateAccentedOrdering(t *testing.T) {
	entities := []Entity{
		{ID: "c1", CompanyName: "Zebra Motors", DisplayName: "Zebra Motors"},
		{ID: "c2", CompanyName: "Água Limpa", DisplayName: "Água Limpa"},
		{ID: "c3", CompanyName: "Auto Center", DisplayName: "Auto Center"},
	}
	categories := []survey.Category{{ID: "cat1", Name: "Gestão"}}
	submissions := []Submission{
		{ID: "s1", CompanyName: "Zebra Motors", CategoryID: "cat1", TotalScore: 10, MaxScore: 100},
	}

	got := Aggregate([]string{"c1", "c2", "c3"}, ModeCompanies, entities, submissions, categories, nil)
	if got == nil {
		t.Fatal("Aggregate() = nil")
	}

	wantOrder := []string{"Água Limpa", "Auto Center", "Zebra Motors"}
	for i, want := range wantOrder {
		if got.Overall[i].EntityName != want {
			t.Fatalf("overall order = %+v, want %v", got.Overall, wantOrder)
		}
	}
	for i, want := range wantOrder {
		if got.PerCategory["Gestão"][i].EntityName != want {
			t.Fatalf("category order = %+v, want %v", got.PerCategory["Gestão"], wantOrder)
		}
	}
}

func TestAggregateIdempotence(t *testing.T) {
	entities := []Entity{
		{ID: "c1", CompanyName: "Alpha", DisplayName: "Alpha"},
		{ID: "c2", CompanyName: "Beta", DisplayName: "Beta"},
	}
	categories := []survey.Category{{ID: "cat1", Name: "Segurança"}}
	questions := []survey.Question{{ID: "q1", CategoryID: "cat1", Text: "Q1"}}
	submissions := []Submission{
		{ID: "s1", CompanyName: "Alpha", CategoryID: "cat1", TotalScore: 40, MaxScore: 80},
		{ID: "s2", CompanyName: "Beta", CategoryID: "cat1", TotalScore: 10, MaxScore: 80},
	}
	selected := []string{"c1", "c2"}

	first := Aggregate(selected, ModeCompanies, entities, submissions, categories, questions)
	second := Aggregate(selected, ModeCompanies, entities, submissions, categories, questions)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Aggregate() not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAggregateZeroMaxScore(t *testing.T) {
	entities := []Entity{{ID: "c1", CompanyName: "Alpha", DisplayName: "Alpha"}}
	categories := []survey.Category{{ID: "cat1", Name: "Segurança"}}
	submissions := []Submission{
		{ID: "s1", CompanyName: "Alpha", CategoryID: "cat1", TotalScore: 0, MaxScore: 0},
	}

	got := Aggregate([]string{"c1"}, ModeCompanies, entities, submissions, categories, nil)
	if got == nil {
		t.Fatal("Aggregate() = nil")
	}
	if p := got.Overall[0].Percentage; p != 0 {
		t.Errorf("zero max score percentage = %v, want 0", p)
	}
	if p := got.PerCategory["Segurança"][0].Percentage; p != 0 {
		t.Errorf("zero max category percentage = %v, want 0", p)
	}
}

func TestAggregateEmployeeCompositeKey(t *testing.T) {
	// two employees share a name at different companies
	entities := []Entity{
		{ID: "e1", Name: "Pedro", CompanyName: "Alpha", DisplayName: "Pedro (Alpha)"},
		{ID: "e2", Name: "Pedro", CompanyName: "Beta", DisplayName: "Pedro (Beta)"},
	}
	categories := []survey.Category{{ID: "cat1", Name: "Atendimento"}}
	submissions := []Submission{
		{ID: "s1", UserName: "Pedro", CompanyName: "Alpha", CategoryID: "cat1", TotalScore: 90, MaxScore: 100},
		{ID: "s2", UserName: "Pedro", CompanyName: "Beta", CategoryID: "cat1", TotalScore: 30, MaxScore: 100},
	}

	got := Aggregate([]string{"e1", "e2"}, ModeEmployees, entities, submissions, categories, nil)
	if got == nil {
		t.Fatal("Aggregate() = nil")
	}
	want := []EntityScore{
		{EntityName: "Pedro (Alpha)", Percentage: 90},
		{EntityName: "Pedro (Beta)", Percentage: 30},
	}
	assert.Equal(t, want, got.Overall)
}

func TestAggregateSkipsUnknownSelection(t *testing.T) {
	entities := []Entity{{ID: "c1", CompanyName: "Alpha", DisplayName: "Alpha"}}
	got := Aggregate([]string{"c1", "ghost"}, ModeCompanies, entities, nil, nil, nil)
	if got == nil {
		t.Fatal("Aggregate() = nil")
	}
	if len(got.Overall) != 1 {
		t.Errorf("expected the unknown id to be skipped, got %+v", got.Overall)
	}
}

func TestAggregateAnswerMatrixParsesHistoricalFormats(t *testing.T) {
	entities := []Entity{
		{ID: "c1", CompanyName: "Alpha", DisplayName: "Alpha"},
		{ID: "c2", CompanyName: "Beta", DisplayName: "Beta"},
	}
	categories := []survey.Category{{ID: "cat1", Name: "Segurança"}}
	questions := []survey.Question{
		{ID: "q0", CategoryID: "cat1", Text: "Q0"},
		{ID: "q1", CategoryID: "cat1", Text: "Texto P1"},
	}
	submissions := []Submission{
		{
			ID: "s1", CompanyName: "Alpha", CategoryID: "cat1", TotalScore: 5, MaxScore: 10,
			// segmented narrative generation
			DetailedAnswers: "a) Resposta inicial - 1. Pergunta: Texto P1 Resposta: ✅ R1",
		},
		{
			ID: "s2", CompanyName: "Beta", CategoryID: "cat1", TotalScore: 5, MaxScore: 10,
			// structured generation
			DetailedAnswers: `[{"questionText":"Texto P1","selectedAnswerText":"R1 beta"}]`,
		},
	}

	got := Aggregate([]string{"c1", "c2"}, ModeCompanies, entities, submissions, categories, questions)
	if got == nil {
		t.Fatal("Aggregate() = nil")
	}

	entries := got.PerQuestionAnswers["Segurança"]
	if len(entries) != 2 {
		t.Fatalf("expected 2 question entries, got %d", len(entries))
	}

	byQuestion := make(map[string]map[string]string)
	for _, entry := range entries {
		byQuestion[entry.QuestionText] = make(map[string]string)
		for _, ans := range entry.AnswersByEntity {
			byQuestion[entry.QuestionText][ans.EntityName] = ans.AnswerText
		}
	}

	assert.Equal(t, "Resposta inicial", byQuestion["Q0"]["Alpha"])
	assert.Equal(t, "R1", byQuestion["Texto P1"]["Alpha"])
	assert.Equal(t, "R1 beta", byQuestion["Texto P1"]["Beta"])
	assert.Equal(t, NoAnswerText, byQuestion["Q0"]["Beta"])
}
