package models

import (
	"math"
	"strings"
)

// Category is one of the five literacy skill areas that are assessed and remediated.
type Category string

const (
	CategoryAlphabetKnowledge     Category = "Alphabet Knowledge"
	CategoryPhonologicalAwareness Category = "Phonological Awareness"
	CategoryWordRecognition       Category = "Word Recognition"
	CategoryDecoding              Category = "Decoding"
	CategoryReadingComprehension  Category = "Reading Comprehension"
)

// TaxonomyVersion identifies the category list below. Bump it when the list changes.
const TaxonomyVersion = "2024.1"

// Categories returns the fixed taxonomy in assessment order.
func Categories() []Category {
	return []Category{
		CategoryAlphabetKnowledge,
		CategoryPhonologicalAwareness,
		CategoryWordRecognition,
		CategoryDecoding,
		CategoryReadingComprehension,
	}
}

// Key returns the lowercase, underscored storage form ("alphabet_knowledge").
func (c Category) Key() string {
	return strings.ReplaceAll(strings.ToLower(string(c)), " ", "_")
}

func (c Category) IsValid() bool {
	for _, v := range Categories() {
		if v == c {
			return true
		}
	}
	return false
}

// NormalizeCategory maps a category name in any of the formats in circulation
// ("Alphabet Knowledge", "alphabet_knowledge", "ALPHABET-KNOWLEDGE",
// "alphabetknowledge") onto the taxonomy. Matching ignores case, spaces,
// underscores and hyphens.
func NormalizeCategory(name string) (Category, bool) {
	folded := foldCategoryName(name)
	if folded == "" {
		return "", false
	}
	for _, c := range Categories() {
		if foldCategoryName(string(c)) == folded {
			return c, true
		}
	}
	return "", false
}

// NormalizeCategoryName returns the canonical display name of name, or name
// unchanged when it is not part of the taxonomy.
func NormalizeCategoryName(name string) string {
	if c, ok := NormalizeCategory(name); ok {
		return string(c)
	}
	return name
}

func foldCategoryName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch r {
		case ' ', '_', '-', '\t', '\n':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// QuestionType is the closed set of remediation question formats. Anything
// outside the known five parses to QuestionTypeOther.
type QuestionType string

const (
	QuestionTypePatinig    QuestionType = "patinig"
	QuestionTypeKatinig    QuestionType = "katinig"
	QuestionTypeMalapantig QuestionType = "malapantig"
	QuestionTypeWord       QuestionType = "word"
	QuestionTypeSentence   QuestionType = "sentence"
	QuestionTypeOther      QuestionType = "other"
)

func QuestionTypes() []QuestionType {
	return []QuestionType{
		QuestionTypePatinig,
		QuestionTypeKatinig,
		QuestionTypeMalapantig,
		QuestionTypeWord,
		QuestionTypeSentence,
	}
}

func ParseQuestionType(s string) QuestionType {
	v := QuestionType(strings.ToLower(strings.TrimSpace(s)))
	for _, qt := range QuestionTypes() {
		if qt == v {
			return qt
		}
	}
	return QuestionTypeOther
}

// ReadingLevel is the ordered reading-level scale, lowest first.
type ReadingLevel string

const (
	ReadingLevelNotAssessed   ReadingLevel = "Not Assessed"
	ReadingLevelLowEmerging   ReadingLevel = "Low Emerging"
	ReadingLevelHighEmerging  ReadingLevel = "High Emerging"
	ReadingLevelDeveloping    ReadingLevel = "Developing"
	ReadingLevelTransitioning ReadingLevel = "Transitioning"
	ReadingLevelAtGradeLevel  ReadingLevel = "At Grade Level"
)

func ReadingLevels() []ReadingLevel {
	return []ReadingLevel{
		ReadingLevelNotAssessed,
		ReadingLevelLowEmerging,
		ReadingLevelHighEmerging,
		ReadingLevelDeveloping,
		ReadingLevelTransitioning,
		ReadingLevelAtGradeLevel,
	}
}

func (l ReadingLevel) IsValid() bool {
	for _, v := range ReadingLevels() {
		if v == l {
			return true
		}
	}
	return false
}

// Rank orders levels; Not Assessed ranks 0 and unknown values rank -1.
func (l ReadingLevel) Rank() int {
	for i, v := range ReadingLevels() {
		if v == l {
			return i
		}
	}
	return -1
}

type AssessmentType string

const (
	AssessmentPre          AssessmentType = "pre-assessment"
	AssessmentPost         AssessmentType = "post-assessment"
	AssessmentIntervention AssessmentType = "intervention"
)

func (t AssessmentType) IsValid() bool {
	switch t {
	case AssessmentPre, AssessmentPost, AssessmentIntervention:
		return true
	}
	return false
}

// DefaultPassThreshold applies to plans and category scores that do not set one.
const DefaultPassThreshold = 75

// RoundPercent returns round(num/den*100) with halves rounded up, or 0 when den is 0.
func RoundPercent(num, den int) int {
	if den <= 0 {
		return 0
	}
	return int(math.Floor(float64(num)*100/float64(den) + 0.5))
}
