package report

import (
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/period"
)

func tx(kind core.Kind, category string, cents int64, year, month, day int) core.Transaction {
	return core.Transaction{
		OwnerID:    "user-1",
		Kind:       kind,
		Category:   category,
		Amount:     core.Money{Cents: cents},
		OccurredOn: core.NewDate(year, month, day),
	}
}

func monthInterval(t *testing.T, year, month int) period.Interval {
	t.Helper()
	w, err := period.Resolve(period.Spec{Granularity: period.Month, Year: year, MonthNum: month}, core.NewDate(year, 12, 31))
	if err != nil {
		t.Fatalf("resolve month interval: %v", err)
	}
	return w.Current
}

func TestAggregate_EmptyInput(t *testing.T) {
	rep := Aggregate(nil, monthInterval(t, 2024, 3))

	if rep.HasTransactions {
		t.Error("HasTransactions = true for empty input")
	}
	if rep.Totals.Income.Cents != 0 || rep.Totals.Expense.Cents != 0 {
		t.Errorf("totals = %+v, want zero", rep.Totals)
	}
	if len(rep.CategoryBreakdown) != 0 || len(rep.SubPeriods) != 0 {
		t.Error("breakdowns not empty for empty input")
	}
}

func TestAggregate_FiltersToInterval(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Expense, "Food", 1000, 2024, 2, 29), // day before
		tx(core.Expense, "Food", 2000, 2024, 3, 1),  // interval start
		tx(core.Expense, "Food", 3000, 2024, 3, 31), // interval end
		tx(core.Expense, "Food", 4000, 2024, 4, 1),  // day after
	}
	rep := Aggregate(txs, monthInterval(t, 2024, 3))

	if rep.Totals.Expense.Cents != 5000 {
		t.Errorf("expense total = %d, want 5000 (inclusive bounds)", rep.Totals.Expense.Cents)
	}
}

func TestAggregate_MonthScenario(t *testing.T) {
	// Income 5000, two Food expenses of 2000 and 500 in March 2024.
	txs := []core.Transaction{
		tx(core.Income, "Salary", 500000, 2024, 3, 1),
		tx(core.Expense, "Food", 200000, 2024, 3, 5),
		tx(core.Expense, "Food", 50000, 2024, 3, 10),
	}
	rep := Aggregate(txs, monthInterval(t, 2024, 3))

	if !rep.HasTransactions {
		t.Fatal("HasTransactions = false")
	}
	if rep.Totals.Income.Cents != 500000 || rep.Totals.Expense.Cents != 250000 {
		t.Errorf("totals = %+v, want income 500000 expense 250000", rep.Totals)
	}
	if len(rep.CategoryBreakdown) != 1 {
		t.Fatalf("category breakdown has %d entries, want 1", len(rep.CategoryBreakdown))
	}
	if got := rep.CategoryBreakdown[0]; got.Category != "Food" || got.Amount.Cents != 250000 {
		t.Errorf("top category = %+v, want Food 250000", got)
	}
	if len(rep.SubPeriods) != 31 {
		t.Errorf("sub-period breakdown has %d buckets, want 31", len(rep.SubPeriods))
	}
}

func TestAggregate_CategoryOrdering(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Expense, "Transport", 1000, 2024, 3, 1),
		tx(core.Expense, "Food", 3000, 2024, 3, 2),
		tx(core.Expense, "Fun", 1000, 2024, 3, 3), // ties with Transport, seen later
		tx(core.Expense, "Transport", 500, 2024, 3, 4),
	}
	rep := Aggregate(txs, monthInterval(t, 2024, 3))

	want := []struct {
		category string
		cents    int64
	}{
		{"Food", 3000},
		{"Transport", 1500},
		{"Fun", 1000},
	}
	if len(rep.CategoryBreakdown) != len(want) {
		t.Fatalf("breakdown has %d entries, want %d", len(rep.CategoryBreakdown), len(want))
	}
	var sum int64
	for i, w := range want {
		got := rep.CategoryBreakdown[i]
		if got.Category != w.category || got.Amount.Cents != w.cents {
			t.Errorf("breakdown[%d] = %s/%d, want %s/%d", i, got.Category, got.Amount.Cents, w.category, w.cents)
		}
		sum += got.Amount.Cents
	}
	if sum != rep.Totals.Expense.Cents {
		t.Errorf("breakdown sum %d != expense total %d", sum, rep.Totals.Expense.Cents)
	}
}

func TestAggregate_StableTieBreak(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Expense, "Books", 1000, 2024, 3, 1),
		tx(core.Expense, "Games", 1000, 2024, 3, 2),
		tx(core.Expense, "Music", 1000, 2024, 3, 3),
	}
	rep := Aggregate(txs, monthInterval(t, 2024, 3))

	want := []string{"Books", "Games", "Music"}
	for i, name := range want {
		if rep.CategoryBreakdown[i].Category != name {
			t.Errorf("breakdown[%d] = %s, want %s (first-seen order)", i, rep.CategoryBreakdown[i].Category, name)
		}
	}
}

func TestAggregate_SubPeriodsZeroFilled(t *testing.T) {
	// Custom 3-day range with a transaction only on day 2.
	iv := period.Interval{Start: core.NewDate(2024, 3, 10), End: core.NewDate(2024, 3, 12)}
	txs := []core.Transaction{tx(core.Expense, "Food", 700, 2024, 3, 11)}
	rep := Aggregate(txs, iv)

	if len(rep.SubPeriods) != 3 {
		t.Fatalf("sub-period breakdown has %d buckets, want 3", len(rep.SubPeriods))
	}
	if rep.SubPeriods[0].Expense.Cents != 0 || rep.SubPeriods[2].Expense.Cents != 0 {
		t.Error("edge buckets not zero-filled")
	}
	if rep.SubPeriods[1].Label != "2024-03-11" || rep.SubPeriods[1].Expense.Cents != 700 {
		t.Errorf("middle bucket = %+v, want 2024-03-11/700", rep.SubPeriods[1])
	}
}

func TestAggregate_YearUsesMonthlyBuckets(t *testing.T) {
	iv := period.Interval{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 12, 31)}
	txs := []core.Transaction{
		tx(core.Income, "Salary", 100000, 2024, 1, 15),
		tx(core.Expense, "Rent", 40000, 2024, 1, 2),
		tx(core.Expense, "Rent", 40000, 2024, 7, 2),
	}
	rep := Aggregate(txs, iv)

	if len(rep.SubPeriods) != 12 {
		t.Fatalf("sub-period breakdown has %d buckets, want 12", len(rep.SubPeriods))
	}
	if rep.SubPeriods[0].Label != "2024-01" || rep.SubPeriods[11].Label != "2024-12" {
		t.Errorf("bucket labels = %s..%s", rep.SubPeriods[0].Label, rep.SubPeriods[11].Label)
	}
	if rep.SubPeriods[0].Income.Cents != 100000 || rep.SubPeriods[0].Expense.Cents != 40000 {
		t.Errorf("january bucket = %+v", rep.SubPeriods[0])
	}
	if rep.SubPeriods[6].Expense.Cents != 40000 {
		t.Errorf("july bucket = %+v", rep.SubPeriods[6])
	}

	var income, expense int64
	for _, b := range rep.SubPeriods {
		income += b.Income.Cents
		expense += b.Expense.Cents
	}
	if income != rep.Totals.Income.Cents || expense != rep.Totals.Expense.Cents {
		t.Errorf("bucket sums %d/%d do not reconcile with totals %+v", income, expense, rep.Totals)
	}
}

func TestAggregate_WeekBucketCount(t *testing.T) {
	w, err := period.Resolve(period.Spec{Granularity: period.Week, Reference: core.NewDate(2024, 3, 13)}, core.NewDate(2024, 3, 20))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	rep := Aggregate([]core.Transaction{tx(core.Expense, "Food", 100, 2024, 3, 12)}, w.Current)
	if len(rep.SubPeriods) != 7 {
		t.Errorf("week breakdown has %d buckets, want 7", len(rep.SubPeriods))
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(1, 0); got != 0 {
		t.Errorf("Percent(1, 0) = %v, want 0 (division guard)", got)
	}
	if got := Percent(25, 100); got != 25 {
		t.Errorf("Percent(25, 100) = %v, want 25", got)
	}
	if got := Percent(-30, 100); got != -30 {
		t.Errorf("Percent(-30, 100) = %v, want -30", got)
	}
}
