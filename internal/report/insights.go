package report

import (
	"fmt"

	"fintrack/internal/core"
)

const (
	Informational InsightKind = "informational"
	Caution       InsightKind = "caution"
	Critical      InsightKind = "critical"
)

type (
	InsightKind string

	// Insight is one derived observation about a report.
	Insight struct {
		Kind       InsightKind `json:"kind"`
		Title      string      `json:"title"`
		Message    string      `json:"message"`
		Suggestion string      `json:"suggestion"`
	}
)

// Thresholds for the insight rules, as percentages.
const (
	topCategoryShareLimit = 40.0
	expenseChangeLimit    = 10.0
	lowSavingsRate        = 10.0
	excellentSavingsRate  = 30.0
)

// DeriveInsights evaluates the insight rules in fixed order against the
// current report, comparing with the previous one where a rule needs it.
// All matching rules emit; a period without transactions emits nothing.
// Deterministic: identical inputs always produce identical output.
func DeriveInsights(current Report, previous *Report) []Insight {
	if !current.HasTransactions {
		return nil
	}

	var insights []Insight
	if in, ok := topCategoryInsight(current); ok {
		insights = append(insights, in)
	}
	if in, ok := expenseChangeInsight(current, previous); ok {
		insights = append(insights, in)
	}
	if in, ok := savingsRateInsight(current); ok {
		insights = append(insights, in)
	}
	return insights
}

// topCategoryInsight flags how concentrated expenses are in the single
// largest category.
func topCategoryInsight(current Report) (Insight, bool) {
	if len(current.CategoryBreakdown) == 0 || current.Totals.Expense.Cents <= 0 {
		return Insight{}, false
	}
	top := current.CategoryBreakdown[0]
	share := Percent(top.Amount.Cents, current.Totals.Expense.Cents)

	in := Insight{
		Kind:  Caution,
		Title: "Top spending category",
		Message: fmt.Sprintf("%s accounts for %.1f%% of your expenses this period (%s).",
			top.Category, share, top.Amount),
	}
	if share > topCategoryShareLimit {
		in.Suggestion = fmt.Sprintf("Look for ways to reduce spending on %s to balance your budget.", top.Category)
	} else {
		in.Suggestion = "Your spending is reasonably spread across categories."
	}
	return in, true
}

// expenseChangeInsight compares expenses with the previous period. It stays
// silent when there is no usable previous period or the change is within
// the ±10% band.
func expenseChangeInsight(current Report, previous *Report) (Insight, bool) {
	if previous == nil || !previous.HasTransactions {
		return Insight{}, false
	}
	if previous.Totals.Expense.Cents == 0 {
		// No baseline to compare against.
		return Insight{}, false
	}

	delta := current.Totals.Expense.Cents - previous.Totals.Expense.Cents
	deltaPct := Percent(delta, previous.Totals.Expense.Cents)
	if deltaPct <= expenseChangeLimit && deltaPct >= -expenseChangeLimit {
		return Insight{}, false
	}

	in := Insight{Title: "Spending compared to last period"}
	if delta > 0 {
		in.Kind = Caution
		in.Message = fmt.Sprintf("Your expenses increased by %.1f%% (%s) compared to the previous period.",
			deltaPct, core.Money{Cents: delta})
		in.Suggestion = "Review recent expenses to see what drove the increase."
	} else {
		in.Kind = Informational
		in.Message = fmt.Sprintf("Your expenses decreased by %.1f%% (%s) compared to the previous period.",
			-deltaPct, core.Money{Cents: -delta})
		in.Suggestion = "Nice trend - keep it up."
	}
	return in, true
}

// savingsRateInsight emits at most one of critical/caution/informational
// depending on how income covers expenses; an acceptable rate stays silent.
func savingsRateInsight(current Report) (Insight, bool) {
	savings := current.Totals.Income.Cents - current.Totals.Expense.Cents
	rate := Percent(savings, current.Totals.Income.Cents)

	switch {
	case savings < 0:
		return Insight{
			Kind:  Critical,
			Title: "Overspending",
			Message: fmt.Sprintf("You spent %s more than you earned this period.",
				core.Money{Cents: -savings}),
			Suggestion: "Cut back on non-essential expenses to get back in balance.",
		}, true
	case rate < lowSavingsRate:
		return Insight{
			Kind:       Caution,
			Title:      "Low savings rate",
			Message:    fmt.Sprintf("You are saving only %.1f%% of your income this period.", rate),
			Suggestion: "Aim for a savings rate of at least 10%.",
		}, true
	case rate > excellentSavingsRate:
		return Insight{
			Kind:       Informational,
			Title:      "Excellent savings rate",
			Message:    fmt.Sprintf("You are saving %.1f%% of your income this period.", rate),
			Suggestion: "Consider putting the surplus to work in savings or investments.",
		}, true
	default:
		return Insight{}, false
	}
}
