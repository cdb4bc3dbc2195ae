// Package scoring computes the weighted feed completeness score from an
// auto-filled attribute set and its validation issues.
package scoring

import (
	"math"
	"strings"

	"feedsync/internal/catalog/schema"
	"feedsync/internal/models"
)

// Config carries the scoring policy. Injected rather than read from package
// globals so callers and tests can vary it.
type Config struct {
	// Weights biases the score toward the requirement levels that most
	// affect feed acceptance.
	Weights map[schema.Requirement]float64

	// Grade thresholds, inclusive lower bounds.
	ExcellentAt int
	GoodAt      int
	NeedsWorkAt int

	// CountMissingInDenominator keeps issue-free missing fields in the
	// weight denominator, so absence costs completeness even when it is not
	// a correctness problem.
	CountMissingInDenominator bool
}

func DefaultConfig() Config {
	return Config{
		Weights: map[schema.Requirement]float64{
			schema.Required:    3,
			schema.Recommended: 2,
			schema.Conditional: 1.5,
			schema.Optional:    1,
		},
		ExcellentAt:               80,
		GoodAt:                    60,
		NeedsWorkAt:               40,
		CountMissingInDenominator: true,
	}
}

type FieldScore struct {
	Field  string  `json:"field"`
	Status string  `json:"status"` // passed, warning, error, missing
	Points float64 `json:"points"`
	Weight float64 `json:"weight"`
}

type CategoryScore struct {
	Key    string       `json:"key"`
	Label  string       `json:"label"`
	Order  int          `json:"order"`
	Score  int          `json:"score"`
	Fields []FieldScore `json:"fields"`
}

type Result struct {
	Overall            int             `json:"overall"`
	Grade              string          `json:"grade"`
	ErrorCount         int             `json:"errorCount"`
	WarningCount       int             `json:"warningCount"`
	PassedCount        int             `json:"passedCount"`
	TotalFieldsChecked int             `json:"totalFieldsChecked"`
	CategoryScores     []CategoryScore `json:"categoryScores"`
	NoDataFound        bool            `json:"noDataFound"`
}

// Compute scores the attribute set. skipFields excludes attributes from both
// numerator and denominator entirely (checkout-only fields on a shop with
// checkout off, for instance).
func Compute(cfg Config, attrs map[string]interface{}, errors, warnings []models.FieldIssue, skipFields []string) Result {
	skip := make(map[string]bool, len(skipFields))
	for _, f := range skipFields {
		skip[f] = true
	}
	errorFields := issueFields(errors)
	warningFields := issueFields(warnings)

	fieldsWithValue := 0
	for _, attr := range schema.Attributes {
		if !skip[attr.Name] && hasValue(attrs[attr.Name]) {
			fieldsWithValue++
		}
	}
	// Nothing recoverable at all is a distinct outcome from a low score;
	// upstream messaging treats it differently.
	if fieldsWithValue == 0 {
		return Result{
			Overall:        0,
			Grade:          gradePoor,
			CategoryScores: []CategoryScore{},
			NoDataFound:    true,
		}
	}

	byCategory := make(map[string][]FieldScore)
	result := Result{}
	var totalPoints, totalWeight float64

	for _, attr := range schema.Attributes {
		if skip[attr.Name] {
			continue
		}
		weight := cfg.Weights[attr.Requirement]
		present := hasValue(attrs[attr.Name])

		fs := FieldScore{Field: attr.Name, Weight: weight}
		switch {
		case errorFields[attr.Name]:
			fs.Status = "error"
			fs.Points = 0
			result.ErrorCount++
		case warningFields[attr.Name]:
			fs.Status = "warning"
			fs.Points = 0.5 * weight
			result.WarningCount++
		case present:
			fs.Status = "passed"
			fs.Points = weight
			result.PassedCount++
		default:
			// Missing with no issue: costs completeness, not correctness.
			fs.Status = "missing"
			fs.Points = 0
			if !cfg.CountMissingInDenominator {
				fs.Weight = 0
			}
		}

		totalPoints += fs.Points
		totalWeight += fs.Weight
		result.TotalFieldsChecked++
		byCategory[attr.Category] = append(byCategory[attr.Category], fs)
	}

	result.CategoryScores = make([]CategoryScore, 0, len(schema.Categories))
	for _, cat := range schema.Categories {
		fields := byCategory[cat.Key]
		if len(fields) == 0 {
			continue
		}
		var points, weight float64
		for _, fs := range fields {
			points += fs.Points
			weight += fs.Weight
		}
		score := 0
		if weight > 0 {
			score = roundPercent(points, weight)
		}
		result.CategoryScores = append(result.CategoryScores, CategoryScore{
			Key:    cat.Key,
			Label:  cat.Label,
			Order:  cat.Order,
			Score:  score,
			Fields: fields,
		})
	}

	if totalWeight > 0 {
		result.Overall = roundPercent(totalPoints, totalWeight)
	}
	result.Grade = grade(cfg, result.Overall)
	return result
}

const (
	gradeExcellent = "Excellent"
	gradeGood      = "Good"
	gradeNeedsWork = "Needs Work"
	gradePoor      = "Poor"
)

func grade(cfg Config, overall int) string {
	switch {
	case overall >= cfg.ExcellentAt:
		return gradeExcellent
	case overall >= cfg.GoodAt:
		return gradeGood
	case overall >= cfg.NeedsWorkAt:
		return gradeNeedsWork
	default:
		return gradePoor
	}
}

func roundPercent(points, weight float64) int {
	return int(math.Round(100 * points / weight))
}

func issueFields(issues []models.FieldIssue) map[string]bool {
	fields := make(map[string]bool, len(issues))
	for _, issue := range issues {
		fields[issue.Field] = true
	}
	return fields
}

func hasValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case []interface{}:
		return len(v) > 0
	default:
		return true
	}
}
