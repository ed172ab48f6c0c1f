package dto

import (
	"time"

	"github.com/StayBooks/stay_ledger_app/internal/core/domain"
	"github.com/StayBooks/stay_ledger_app/internal/utils"
	"github.com/shopspring/decimal"
)

const reportDateFormat = "2006-01-02"

// AccountAmountResponse represents an account with its amount in a financial
// report. Display carries the amount formatted in the configured currency.
type AccountAmountResponse struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Display   string          `json:"display"`
}

func toAccountAmountResponses(rows []domain.AccountBalance, currency string) []AccountAmountResponse {
	res := make([]AccountAmountResponse, len(rows))
	for i, row := range rows {
		res[i] = AccountAmountResponse{
			AccountID: row.AccountID,
			Code:      row.Code,
			Name:      row.Name,
			Amount:    row.Amount,
			Display:   utils.FormatAmount(row.Amount, currency),
		}
	}
	return res
}

// IncomeStatementResponse represents the income statement report response.
type IncomeStatementResponse struct {
	FromDate string                  `json:"fromDate"`
	ToDate   string                  `json:"toDate"`
	Revenue  []AccountAmountResponse `json:"revenue"`
	Expenses []AccountAmountResponse `json:"expenses"`
	Summary  struct {
		TotalRevenue  decimal.Decimal `json:"totalRevenue"`
		TotalExpenses decimal.Decimal `json:"totalExpenses"`
		NetIncome     decimal.Decimal `json:"netIncome"`
	} `json:"summary"`
}

// ToIncomeStatementResponse converts a domain income statement to its DTO.
func ToIncomeStatementResponse(report *domain.IncomeStatement, from, to time.Time, currency string) IncomeStatementResponse {
	resp := IncomeStatementResponse{
		FromDate: from.Format(reportDateFormat),
		ToDate:   to.Format(reportDateFormat),
		Revenue:  toAccountAmountResponses(report.Revenue, currency),
		Expenses: toAccountAmountResponses(report.Expenses, currency),
	}
	resp.Summary.TotalRevenue = report.TotalRevenue
	resp.Summary.TotalExpenses = report.TotalExpenses
	resp.Summary.NetIncome = report.NetIncome
	return resp
}

// BalanceSheetResponse represents the balance sheet report response.
type BalanceSheetResponse struct {
	AsOf        string                  `json:"asOf"`
	Assets      []AccountAmountResponse `json:"assets"`
	Liabilities []AccountAmountResponse `json:"liabilities"`
	Equity      []AccountAmountResponse `json:"equity"`
	Summary     struct {
		TotalAssets      decimal.Decimal `json:"totalAssets"`
		TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
		TotalEquity      decimal.Decimal `json:"totalEquity"`
	} `json:"summary"`
}

// ToBalanceSheetResponse converts a domain balance sheet to its DTO.
func ToBalanceSheetResponse(report *domain.BalanceSheet, asOf time.Time, currency string) BalanceSheetResponse {
	resp := BalanceSheetResponse{
		AsOf:        asOf.Format(reportDateFormat),
		Assets:      toAccountAmountResponses(report.Assets, currency),
		Liabilities: toAccountAmountResponses(report.Liabilities, currency),
		Equity:      toAccountAmountResponses(report.Equity, currency),
	}
	resp.Summary.TotalAssets = report.TotalAssets
	resp.Summary.TotalLiabilities = report.TotalLiabilities
	resp.Summary.TotalEquity = report.TotalEquity
	return resp
}

// CashFlowResponse represents the cash flow statement report response.
type CashFlowResponse struct {
	FromDate string                  `json:"fromDate"`
	ToDate   string                  `json:"toDate"`
	Inflows  []AccountAmountResponse `json:"inflows"`
	Outflows []AccountAmountResponse `json:"outflows"`
	Summary  struct {
		TotalInflows         decimal.Decimal `json:"totalInflows"`
		TotalOutflows        decimal.Decimal `json:"totalOutflows"`
		NetOperatingCashFlow decimal.Decimal `json:"netOperatingCashFlow"`
	} `json:"summary"`
}

// ToCashFlowResponse converts a domain cash flow statement to its DTO.
func ToCashFlowResponse(report *domain.CashFlowStatement, from, to time.Time, currency string) CashFlowResponse {
	resp := CashFlowResponse{
		FromDate: from.Format(reportDateFormat),
		ToDate:   to.Format(reportDateFormat),
		Inflows:  toAccountAmountResponses(report.Inflows, currency),
		Outflows: toAccountAmountResponses(report.Outflows, currency),
	}
	resp.Summary.TotalInflows = report.TotalInflows
	resp.Summary.TotalOutflows = report.TotalOutflows
	resp.Summary.NetOperatingCashFlow = report.NetOperatingCashFlow
	return resp
}

// TrialBalanceRowResponse represents a row in the trial balance report response.
type TrialBalanceRowResponse struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	AccountName string          `json:"accountName"`
	AccountType string          `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceResponse represents the trial balance report response.
type TrialBalanceResponse struct {
	AsOf   string                    `json:"asOf"`
	Rows   []TrialBalanceRowResponse `json:"rows"`
	Totals struct {
		Debit  decimal.Decimal `json:"debit"`
		Credit decimal.Decimal `json:"credit"`
	} `json:"totals"`
}

// ToTrialBalanceResponse converts domain trial balance rows to a DTO response.
func ToTrialBalanceResponse(rows []domain.TrialBalanceRow, asOf time.Time) TrialBalanceResponse {
	response := TrialBalanceResponse{
		AsOf: asOf.Format(reportDateFormat),
		Rows: make([]TrialBalanceRowResponse, len(rows)),
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i, row := range rows {
		response.Rows[i] = TrialBalanceRowResponse{
			AccountID:   row.AccountID,
			Code:        row.Code,
			AccountName: row.AccountName,
			AccountType: string(row.AccountType),
			Debit:       row.Debit,
			Credit:      row.Credit,
		}
		totalDebit = totalDebit.Add(row.Debit)
		totalCredit = totalCredit.Add(row.Credit)
	}

	response.Totals.Debit = totalDebit
	response.Totals.Credit = totalCredit
	return response
}
