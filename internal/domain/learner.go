package domain

import (
	"strconv"
	"strings"
)

// ClassBand is a coarse grouping of school grades such as "4-6".
type ClassBand string

// Known class bands in ascending order.
var ClassBands = []ClassBand{"1-3", "4-6", "7-8", "9-10", "11-12"}

// ParseClassBand accepts a band ("4-6"), a bare grade ("5"), or "class 5" /
// "grade 5" and returns the band containing it.
func ParseClassBand(s string) (ClassBand, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "class")
	s = strings.TrimPrefix(s, "grade")
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, b := range ClassBands {
		if string(b) == s {
			return b, true
		}
	}
	grade, err := strconv.Atoi(s)
	if err != nil {
		return "", false
	}
	return BandForGrade(grade)
}

// BandForGrade returns the band containing grade.
func BandForGrade(grade int) (ClassBand, bool) {
	for _, b := range ClassBands {
		lo, hi := b.Bounds()
		if grade >= lo && grade <= hi {
			return b, true
		}
	}
	return "", false
}

// Bounds returns the lowest and highest grade in the band, or 0, 0 when unparseable.
func (b ClassBand) Bounds() (int, int) {
	lo, hi, ok := strings.Cut(string(b), "-")
	if !ok {
		n, err := strconv.Atoi(string(b))
		if err != nil {
			return 0, 0
		}
		return n, n
	}
	l, err1 := strconv.Atoi(lo)
	h, err2 := strconv.Atoi(hi)
	if err1 != nil || err2 != nil {
		return 0, 0
	}
	return l, h
}

// MaxGrade returns the highest grade in the band, or 0 when unknown.
func (b ClassBand) MaxGrade() int {
	_, hi := b.Bounds()
	return hi
}

// Language is the tutoring persona's teaching language.
type Language string

const (
	LanguageEnglish  Language = "english"
	LanguageHindi    Language = "hindi"
	LanguageHinglish Language = "hinglish"
)

// LearnerContext carries what the tutoring session knows about the learner.
type LearnerContext struct {
	Subject    string
	ClassLevel ClassBand
	GradeBand  string
	Language   Language
}

// Band returns the learner's class band, preferring ClassLevel and falling back to GradeBand.
func (c LearnerContext) Band() ClassBand {
	if b, ok := ParseClassBand(string(c.ClassLevel)); ok {
		return b
	}
	if b, ok := ParseClassBand(c.GradeBand); ok {
		return b
	}
	return c.ClassLevel
}

// IsYoungLearner reports whether the learner's highest grade is at most maxGrade.
func (c LearnerContext) IsYoungLearner(maxGrade int) bool {
	g := c.Band().MaxGrade()
	return g > 0 && g <= maxGrade
}
