package reportsvc

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"
	"github.com/tealeg/xlsx/v2"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/score"
)

// WriteComparison renders a comparison snapshot as an xlsx workbook: one
// overview sheet, one sheet per category and one answer sheet per category.
func WriteComparison(w io.Writer, result *score.AggregationResult) error {
	f := xlsx.NewFile()

	if err := addOverviewSheet(f, result.Overall); err != nil {
		return err
	}

	catNames := make([]string, 0, len(result.PerCategory))
	for name := range result.PerCategory {
		catNames = append(catNames, name)
	}
	sort.Strings(catNames)

	for _, name := range catNames {
		if err := addCategorySheet(f, name, result.PerCategory[name]); err != nil {
			return err
		}
	}
	for _, name := range catNames {
		if err := addAnswerSheet(f, name, result.PerQuestionAnswers[name]); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

func addOverviewSheet(f *xlsx.File, overall []score.EntityScore) error {
	sheet, err := f.AddSheet("Visão Geral")
	if err != nil {
		return errors.Wrap(err, "adding overview sheet")
	}

	header := sheet.AddRow()
	header.AddCell().SetString("Participante")
	header.AddCell().SetString("Pontuação (%)")
	header.AddCell().SetString("Nível de Maturidade")

	for _, es := range overall {
		level := score.MaturityForPercentage(es.Percentage)
		row := sheet.AddRow()
		row.AddCell().SetString(es.EntityName)
		row.AddCell().SetFloatWithFormat(es.Percentage, "0.0")
		row.AddCell().SetString(level.Level)
	}
	return nil
}

func addCategorySheet(f *xlsx.File, category string, scores []score.EntityScore) error {
	sheet, err := f.AddSheet(sheetName(category))
	if err != nil {
		return errors.Wrap(err, "adding category sheet")
	}

	header := sheet.AddRow()
	header.AddCell().SetString("Participante")
	header.AddCell().SetString("Pontuação (%)")

	for _, es := range scores {
		row := sheet.AddRow()
		row.AddCell().SetString(es.EntityName)
		row.AddCell().SetFloatWithFormat(es.Percentage, "0.0")
	}
	return nil
}

func addAnswerSheet(f *xlsx.File, category string, questions []score.QuestionAnswers) error {
	sheet, err := f.AddSheet(sheetName("Respostas - " + category))
	if err != nil {
		return errors.Wrap(err, "adding answer sheet")
	}

	header := sheet.AddRow()
	header.AddCell().SetString("Pergunta")
	if len(questions) > 0 {
		for _, ea := range questions[0].AnswersByEntity {
			header.AddCell().SetString(ea.EntityName)
		}
	}

	for _, qa := range questions {
		row := sheet.AddRow()
		row.AddCell().SetString(qa.QuestionText)
		for _, ea := range qa.AnswersByEntity {
			row.AddCell().SetString(ea.AnswerText)
		}
	}
	return nil
}

// sheetName keeps names within the xlsx 31-char limit and unique enough.
func sheetName(name string) string {
	runes := []rune(name)
	if len(runes) <= 31 {
		return name
	}
	return fmt.Sprintf("%s…", string(runes[:30]))
}
