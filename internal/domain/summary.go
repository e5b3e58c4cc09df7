package domain

import "github.com/shopspring/decimal"

// Summary holds the dashboard figures derived from account balances.
//
// MonthlyIncome and MonthlyExpenses are the accumulated balances of revenue
// and expense accounts. They are not restricted to a calendar month.
type Summary struct {
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	NetWorth         decimal.Decimal
	MonthlyIncome    decimal.Decimal
	MonthlyExpenses  decimal.Decimal
	MonthlySavings   decimal.Decimal
}

// Summarize folds account balances by classification. Equity accounts do not
// contribute to any figure.
func Summarize(accounts []*Account) Summary {
	s := Summary{
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		MonthlyIncome:    decimal.Zero,
		MonthlyExpenses:  decimal.Zero,
	}

	for _, a := range accounts {
		switch a.Type {
		case AccountTypeAsset:
			s.TotalAssets = s.TotalAssets.Add(a.Balance)
		case AccountTypeLiability:
			s.TotalLiabilities = s.TotalLiabilities.Add(a.Balance)
		case AccountTypeRevenue:
			s.MonthlyIncome = s.MonthlyIncome.Add(a.Balance)
		case AccountTypeExpense:
			s.MonthlyExpenses = s.MonthlyExpenses.Add(a.Balance)
		}
	}

	s.NetWorth = s.TotalAssets.Sub(s.TotalLiabilities)
	s.MonthlySavings = s.MonthlyIncome.Sub(s.MonthlyExpenses)

	return s
}
