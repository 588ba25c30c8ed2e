// Package sourcematerial loads category-specific seed questions from an xlsx
// workbook. Each sheet is named after a category; the first row is a header.
//
//	question_type | question_text | question_value | question_image | correct_choice | choice_1 ... choice_n
//
// correct_choice holds either the text of the right choice or its 1-based
// position among the choice columns.
package sourcematerial

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	colQuestionType  = "question_type"
	colQuestionText  = "question_text"
	colQuestionValue = "question_value"
	colQuestionImage = "question_image"
	colCorrectChoice = "correct_choice"
	choicePrefix     = "choice_"
)

// RowIssue describes a row that was skipped while loading.
type RowIssue struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Catalog holds the parsed questions per category.
type Catalog struct {
	questions map[models.Category][]models.Question
	Issues    []RowIssue
}

// Empty returns a catalog without questions.
func Empty() *Catalog {
	return &Catalog{questions: map[models.Category][]models.Question{}}
}

// LoadFile opens path and parses it.
func LoadFile(path string) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source material %s: %w", path, err)
	}
	defer f.Close()
	return LoadWorkbook(f)
}

// LoadReader parses a workbook from r.
func LoadReader(r io.Reader) (*Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open source material: %w", err)
	}
	defer f.Close()
	return LoadWorkbook(f)
}

// LoadWorkbook parses every sheet whose name matches a category. Other sheets
// are ignored.
func LoadWorkbook(f *excelize.File) (*Catalog, error) {
	catalog := Empty()

	for _, sheet := range f.GetSheetList() {
		category, ok := models.NormalizeCategory(sheet)
		if !ok {
			continue
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}

		header := parseHeader(rows[0])
		if _, ok := header.columns[colQuestionText]; !ok {
			catalog.Issues = append(catalog.Issues, RowIssue{Sheet: sheet, Row: 1, Message: "missing question_text column"})
			continue
		}

		for i, row := range rows[1:] {
			rowNumber := i + 2
			if isBlank(row) {
				continue
			}
			question, err := header.parseRow(row)
			if err != nil {
				catalog.Issues = append(catalog.Issues, RowIssue{Sheet: sheet, Row: rowNumber, Message: err.Error()})
				continue
			}
			catalog.questions[category] = append(catalog.questions[category], question)
		}
	}

	return catalog, nil
}

// QuestionsFor returns a copy of the category's questions with fresh ids so
// plans seeded from the same material never share question ids.
func (c *Catalog) QuestionsFor(category models.Category) []models.Question {
	if c == nil {
		return []models.Question{}
	}
	source := c.questions[category]
	out := make([]models.Question, 0, len(source))
	for _, q := range source {
		q.ID = uuid.NewString()
		q.Choices = append([]models.Choice(nil), q.Choices...)
		out = append(out, q)
	}
	return out
}

// Count returns the number of loaded questions across all categories.
func (c *Catalog) Count() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, qs := range c.questions {
		total += len(qs)
	}
	return total
}

type header struct {
	columns map[string]int
	choices []int
}

func parseHeader(row []string) header {
	h := header{columns: map[string]int{}}

	type choiceCol struct{ n, idx int }
	var choices []choiceCol
	for i, cell := range row {
		name := strings.ToLower(strings.TrimSpace(cell))
		if strings.HasPrefix(name, choicePrefix) {
			n, err := strconv.Atoi(strings.TrimPrefix(name, choicePrefix))
			if err == nil {
				choices = append(choices, choiceCol{n: n, idx: i})
			}
			continue
		}
		h.columns[name] = i
	}

	sort.Slice(choices, func(a, b int) bool { return choices[a].n < choices[b].n })
	for _, c := range choices {
		h.choices = append(h.choices, c.idx)
	}
	return h
}

func (h header) cell(row []string, column string) string {
	idx, ok := h.columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (h header) parseRow(row []string) (models.Question, error) {
	text := h.cell(row, colQuestionText)
	if text == "" {
		return models.Question{}, fmt.Errorf("question_text is empty")
	}

	q := models.Question{
		QuestionType:  models.ParseQuestionType(h.cell(row, colQuestionType)),
		QuestionText:  text,
		QuestionValue: optional(h.cell(row, colQuestionValue)),
		QuestionImage: optional(h.cell(row, colQuestionImage)),
	}

	for _, idx := range h.choices {
		if idx >= len(row) {
			continue
		}
		if option := strings.TrimSpace(row[idx]); option != "" {
			q.Choices = append(q.Choices, models.Choice{OptionText: option})
		}
	}
	if len(q.Choices) == 0 {
		return models.Question{}, fmt.Errorf("question has no choices")
	}

	correct := h.cell(row, colCorrectChoice)
	if !markCorrect(q.Choices, correct) {
		return models.Question{}, fmt.Errorf("correct_choice %q does not match any choice", correct)
	}
	return q, nil
}

// markCorrect flags the choice named by correct, by text or by position.
func markCorrect(choices []models.Choice, correct string) bool {
	if correct == "" {
		return false
	}
	for i := range choices {
		if strings.EqualFold(choices[i].OptionText, correct) {
			choices[i].IsCorrect = true
			return true
		}
	}
	if n, err := strconv.Atoi(correct); err == nil && n >= 1 && n <= len(choices) {
		choices[n-1].IsCorrect = true
		return true
	}
	return false
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
