package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSummarize(t *testing.T) {
	d := decimal.RequireFromString

	accounts := []*Account{
		{Type: AccountTypeAsset, Balance: d("5000.00")},
		{Type: AccountTypeAsset, Balance: d("250.50")},
		{Type: AccountTypeLiability, Balance: d("1200.00")},
		{Type: AccountTypeEquity, Balance: d("9999.99")},
		{Type: AccountTypeRevenue, Balance: d("3000.00")},
		{Type: AccountTypeExpense, Balance: d("1800.25")},
	}

	s := Summarize(accounts)

	checks := map[string]struct {
		got  decimal.Decimal
		want decimal.Decimal
	}{
		"TotalAssets":      {s.TotalAssets, d("5250.50")},
		"TotalLiabilities": {s.TotalLiabilities, d("1200.00")},
		"NetWorth":         {s.NetWorth, d("4050.50")},
		"MonthlyIncome":    {s.MonthlyIncome, d("3000.00")},
		"MonthlyExpenses":  {s.MonthlyExpenses, d("1800.25")},
		"MonthlySavings":   {s.MonthlySavings, d("1199.75")},
	}

	for name, c := range checks {
		if !c.got.Equal(c.want) {
			t.Errorf("%s: expected %s, got %s", name, c.want, c.got)
		}
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	for name, v := range map[string]decimal.Decimal{
		"TotalAssets":      s.TotalAssets,
		"TotalLiabilities": s.TotalLiabilities,
		"NetWorth":         s.NetWorth,
		"MonthlyIncome":    s.MonthlyIncome,
		"MonthlyExpenses":  s.MonthlyExpenses,
		"MonthlySavings":   s.MonthlySavings,
	} {
		if !v.IsZero() {
			t.Errorf("%s: expected zero, got %s", name, v)
		}
	}
}

func TestSummarize_EquityIgnored(t *testing.T) {
	s := Summarize([]*Account{{Type: AccountTypeEquity, Balance: decimal.NewFromInt(100)}})

	if !s.NetWorth.IsZero() || !s.MonthlySavings.IsZero() {
		t.Errorf("equity must not contribute, got %+v", s)
	}
}
