package score

import (
	"sort"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/survey"
)

// Aggregate computes the side-by-side comparison of the selected entities over
// the given submission/category/question snapshot. Returns nil when nothing is
// selected. Pure and deterministic: the same snapshot always yields the same
// result, and the inputs are never mutated.
func Aggregate(
	selectedIDs []string,
	mode string,
	entities []Entity,
	submissions []Submission,
	categories []survey.Category,
	questions []survey.Question,
) *AggregationResult {
	if len(selectedIDs) == 0 {
		return nil
	}

	entityByID := make(map[string]Entity, len(entities))
	for _, e := range entities {
		entityByID[e.ID] = e
	}

	// categories never submitted against are excluded from comparison
	relevantCategories := make([]survey.Category, 0, len(categories))
	for _, cat := range categories {
		for _, sub := range submissions {
			if sub.CategoryID == cat.ID {
				relevantCategories = append(relevantCategories, cat)
				break
			}
		}
	}

	result := &AggregationResult{
		Overall:            make([]EntityScore, 0, len(selectedIDs)),
		PerCategory:        make(map[string][]EntityScore, len(relevantCategories)),
		PerQuestionAnswers: make(map[string][]QuestionAnswers),
	}
	for _, cat := range relevantCategories {
		result.PerCategory[cat.Name] = []EntityScore{}
	}

	entitySubs := func(entity Entity) []Submission {
		var subs []Submission
		for _, sub := range submissions {
			if mode == ModeEmployees {
				if sub.UserName == entity.Name && sub.CompanyName == entity.CompanyName {
					subs = append(subs, sub)
				}
			} else if sub.CompanyName == entity.CompanyName {
				subs = append(subs, sub)
			}
		}
		return subs
	}

	// scores
	for _, id := range selectedIDs {
		entity, ok := entityByID[id]
		if !ok {
			continue
		}
		subs := entitySubs(entity)

		// explicit zero-fill so comparison cards always render for every selection
		if len(subs) == 0 {
			result.Overall = append(result.Overall, EntityScore{EntityName: entity.DisplayName, PhotoURL: entity.PhotoURL})
			for _, cat := range relevantCategories {
				result.PerCategory[cat.Name] = append(result.PerCategory[cat.Name], EntityScore{EntityName: entity.DisplayName})
			}
			continue
		}

		var totalScore, maxScore int
		for _, sub := range subs {
			totalScore += sub.TotalScore
			maxScore += sub.MaxScore
		}
		var overallPercentage float64
		if maxScore > 0 {
			overallPercentage = float64(totalScore) / float64(maxScore) * 100
		}
		result.Overall = append(result.Overall, EntityScore{
			EntityName: entity.DisplayName,
			Percentage: overallPercentage,
			PhotoURL:   entity.PhotoURL,
		})

		for _, cat := range relevantCategories {
			var catScore float64
			if catSub, ok := findCategorySubmission(subs, cat.ID); ok && catSub.MaxScore > 0 {
				catScore = float64(catSub.TotalScore) / float64(catSub.MaxScore) * 100
			}
			result.PerCategory[cat.Name] = append(result.PerCategory[cat.Name], EntityScore{
				EntityName: entity.DisplayName,
				Percentage: catScore,
			})
		}
	}

	// answer matrix over the union of relevant-category questions, deduplicated by ID
	categoryNameByID := make(map[string]string, len(categories))
	for _, cat := range categories {
		categoryNameByID[cat.ID] = cat.Name
	}
	seenQuestions := make(map[string]bool)
	for _, cat := range relevantCategories {
		for _, q := range questions {
			if q.CategoryID != cat.ID || seenQuestions[q.ID] {
				continue
			}
			seenQuestions[q.ID] = true

			catName, ok := categoryNameByID[q.CategoryID]
			if !ok {
				continue
			}

			entry := QuestionAnswers{QuestionText: q.Text, AnswersByEntity: []EntityAnswer{}}
			for _, id := range selectedIDs {
				entity, ok := entityByID[id]
				if !ok {
					continue
				}

				answerText := NoAnswerText
				if catSub, ok := findCategorySubmission(entitySubs(entity), q.CategoryID); ok && catSub.DetailedAnswers != "" {
					categoryQuestions := questionsForCategory(questions, catSub.CategoryID)
					parsed := ParseDetailedAnswers(DetailedAnswers{Text: catSub.DetailedAnswers}, categoryQuestions)
					for _, pa := range parsed {
						if pa.QuestionText == q.Text {
							answerText = pa.SelectedAnswerText
							break
						}
					}
				}
				entry.AnswersByEntity = append(entry.AnswersByEntity, EntityAnswer{
					EntityName: entity.DisplayName,
					AnswerText: answerText,
				})
			}
			result.PerQuestionAnswers[catName] = append(result.PerQuestionAnswers[catName], entry)
		}
	}

	coll := newNameCollator()
	sort.SliceStable(result.Overall, func(i, j int) bool {
		return coll.CompareString(result.Overall[i].EntityName, result.Overall[j].EntityName) < 0
	})
	for _, scores := range result.PerCategory {
		sort.SliceStable(scores, func(i, j int) bool {
			return coll.CompareString(scores[i].EntityName, scores[j].EntityName) < 0
		})
	}

	return result
}

// findCategorySubmission returns the entity's single submission for the
// category; at most one is assumed per entity per category in comparison scope.
func findCategorySubmission(subs []Submission, categoryID string) (Submission, bool) {
	for _, sub := range subs {
		if sub.CategoryID == categoryID {
			return sub, true
		}
	}
	return Submission{}, false
}

func questionsForCategory(questions []survey.Question, categoryID string) []survey.Question {
	var out []survey.Question
	for _, q := range questions {
		if q.CategoryID == categoryID {
			out = append(out, q)
		}
	}
	return out
}
