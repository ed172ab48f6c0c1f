package accounting

import (
	"fmt"

	"github.com/StayBooks/stay_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount applies the account's normal side to a line, returning the
// signed contribution of the line to the account balance.
// DEBIT-normal accounts (Asset/Expense): debit positive, credit negative.
// CREDIT-normal accounts (Liability/Equity/Revenue): credit positive, debit negative.
func SignedAmount(line domain.JournalLine, accountType domain.AccountType) (decimal.Decimal, error) {
	if !accountType.IsValid() {
		return decimal.Zero, fmt.Errorf("unknown account type '%s' for account ID %s", accountType, line.AccountID)
	}
	net := line.Debit.Sub(line.Credit)
	if accountType.NormalSide() == domain.CreditSide {
		net = net.Neg()
	}
	return net, nil
}

// ValidateLineSided checks that exactly one of debit/credit is set and the
// set side is strictly positive.
func ValidateLineSided(line domain.JournalLine) error {
	debitSet := !line.Debit.IsZero()
	creditSet := !line.Credit.IsZero()
	if debitSet == creditSet {
		return fmt.Errorf("line must be exactly one-sided")
	}
	if line.Debit.IsNegative() || line.Credit.IsNegative() {
		return fmt.Errorf("line amount must be positive")
	}
	return nil
}

// ValidateEntryBalance checks the double-entry invariant over a set of lines:
// at least two lines, each exactly one-sided, and total debits equal to total
// credits in exact decimal arithmetic.
func ValidateEntryBalance(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("entry must have at least two lines")
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, line := range lines {
		if err := ValidateLineSided(line); err != nil {
			return err
		}
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
	}

	if !totalDebit.Equal(totalCredit) {
		return fmt.Errorf("entry not balanced: debit %s != credit %s", totalDebit.String(), totalCredit.String())
	}
	return nil
}

// EntryAmount computes the economic value of a balanced entry: the sum of its
// debit side (which equals the credit side once balanced).
func EntryAmount(lines []domain.JournalLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Debit)
	}
	return total
}
