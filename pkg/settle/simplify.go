package settle

import "github.com/shopspring/decimal"

// Payment is one transfer in a simplified plan. Amount is always strictly
// positive.
type Payment struct {
	From   PersonID
	To     PersonID
	Amount decimal.Decimal
}

// Simplify nets out the given transactions into a payment plan. It builds
// the full graph, takes net balances, and greedily pairs net debtors with
// net creditors: each step transfers the smaller of the two open amounts
// and moves past whichever side reached zero (both, on an exact tie). Both
// sides are worked in ascending PersonID order, so the plan is a pure
// function of the input.
//
// Each participant appears on at most one side of the plan, every payment
// amount is positive, and per person the plan moves exactly their net
// balance, so applying the plan settles the group. The returned graph is
// the plan re-accumulated through Apply: it keeps an outer entry for every
// participant, including the ones the plan never touches.
func Simplify(ts []Transaction) ([]Payment, Graph, error) {
	full, err := BuildGraph(ts)
	if err != nil {
		return nil, nil, err
	}
	balances, err := full.NetBalances()
	if err != nil {
		return nil, nil, err
	}

	plan := match(balances)

	simplified := NewGraph()
	for person := range full {
		simplified.ensure(person)
	}
	for _, p := range plan {
		simplified.apply(Transaction{Debtor: p.From, Creditor: p.To, Amount: p.Amount})
	}
	return plan, simplified, nil
}

// match runs the two-cursor greedy walk over net debtors and net creditors.
// balances must be sorted by PersonID; zero balances take no part.
func match(balances []Balance) []Payment {
	var debtors, creditors []Balance
	for _, b := range balances {
		switch {
		case b.Total.GreaterThan(decimal.Zero):
			debtors = append(debtors, b)
		case b.Total.LessThan(decimal.Zero):
			creditors = append(creditors, Balance{Person: b.Person, Total: b.Total.Neg()})
		}
	}

	var plan []Payment
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := &debtors[i], &creditors[j]
		amount := decimal.Min(debtor.Total, creditor.Total)
		plan = append(plan, Payment{From: debtor.Person, To: creditor.Person, Amount: amount})
		debtor.Total = debtor.Total.Sub(amount)
		creditor.Total = creditor.Total.Sub(amount)
		if debtor.Total.IsZero() {
			i++
		}
		if creditor.Total.IsZero() {
			j++
		}
	}
	return plan
}
