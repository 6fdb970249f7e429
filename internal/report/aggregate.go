// Package report computes periodic aggregate reports and derived insights
// from a user's transactions.
//
// Aggregation is a pure function of its inputs: it reads a transaction
// snapshot, never mutates it, and holds no state between calls.
package report

import (
	"sort"

	"fintrack/internal/core"
	"fintrack/internal/period"
)

type (
	Totals struct {
		Income  core.Money `json:"income"`
		Expense core.Money `json:"expense"`
	}

	// CategoryAmount is one expense category with its summed amount.
	CategoryAmount struct {
		Category string     `json:"category"`
		Amount   core.Money `json:"amount"`
	}

	// Bucket is one calendar day or month within the interval.
	Bucket struct {
		Label   string     `json:"label"`
		Income  core.Money `json:"income"`
		Expense core.Money `json:"expense"`
	}

	// Report is the aggregate for one interval. HasTransactions
	// distinguishes a genuinely empty period from an error: an empty period
	// is a normal result.
	Report struct {
		Interval          period.Interval  `json:"interval"`
		Totals            Totals           `json:"totals"`
		CategoryBreakdown []CategoryAmount `json:"categoryBreakdown"`
		SubPeriods        []Bucket         `json:"subPeriodBreakdown"`
		HasTransactions   bool             `json:"hasTransactions"`
	}
)

// Aggregate filters transactions to the interval and computes totals by
// kind, the expense-only category breakdown (descending by amount, stable
// first-seen tie-break), and the zero-filled sub-period breakdown.
func Aggregate(transactions []core.Transaction, iv period.Interval) Report {
	rep := Report{Interval: iv}

	var inPeriod []core.Transaction
	for _, tx := range transactions {
		if iv.Contains(tx.OccurredOn) {
			inPeriod = append(inPeriod, tx)
		}
	}
	if len(inPeriod) == 0 {
		return rep
	}
	rep.HasTransactions = true

	byCategory := map[string]int64{}
	var categoryOrder []string
	for _, tx := range inPeriod {
		switch tx.Kind {
		case core.Income:
			rep.Totals.Income.Cents += tx.Amount.Cents
		case core.Expense:
			rep.Totals.Expense.Cents += tx.Amount.Cents
			if _, seen := byCategory[tx.Category]; !seen {
				categoryOrder = append(categoryOrder, tx.Category)
			}
			byCategory[tx.Category] += tx.Amount.Cents
		}
	}

	rep.CategoryBreakdown = make([]CategoryAmount, 0, len(categoryOrder))
	for _, name := range categoryOrder {
		rep.CategoryBreakdown = append(rep.CategoryBreakdown, CategoryAmount{
			Category: name,
			Amount:   core.Money{Cents: byCategory[name]},
		})
	}
	// Stable sort keeps first-seen order among equal sums.
	sort.SliceStable(rep.CategoryBreakdown, func(i, j int) bool {
		return rep.CategoryBreakdown[i].Amount.Cents > rep.CategoryBreakdown[j].Amount.Cents
	})

	rep.SubPeriods = bucketize(inPeriod, iv)
	return rep
}

// bucketize enumerates every calendar bucket of the interval in
// chronological order, emitting zero-filled entries for empty buckets.
// A full calendar year gets monthly buckets, everything else daily ones.
func bucketize(transactions []core.Transaction, iv period.Interval) []Bucket {
	if iv.IsFullYear() {
		buckets := make([]Bucket, 12)
		index := map[string]int{}
		for m := 1; m <= 12; m++ {
			label := core.NewDate(iv.Start.Year(), m, 1).Format("2006-01")
			buckets[m-1] = Bucket{Label: label}
			index[label] = m - 1
		}
		for _, tx := range transactions {
			i := index[tx.OccurredOn.Format("2006-01")]
			addToBucket(&buckets[i], tx)
		}
		return buckets
	}

	days := iv.Days()
	buckets := make([]Bucket, days)
	index := map[string]int{}
	for i := 0; i < days; i++ {
		label := iv.Start.AddDays(i).String()
		buckets[i] = Bucket{Label: label}
		index[label] = i
	}
	for _, tx := range transactions {
		i := index[tx.OccurredOn.String()]
		addToBucket(&buckets[i], tx)
	}
	return buckets
}

func addToBucket(b *Bucket, tx core.Transaction) {
	switch tx.Kind {
	case core.Income:
		b.Income.Cents += tx.Amount.Cents
	case core.Expense:
		b.Expense.Cents += tx.Amount.Cents
	}
}

// Percent returns part/total as a percentage, with 0 when total is 0 so
// callers never see NaN or infinity.
func Percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
