// Package settle nets out group debts. Pairwise transactions accumulate
// into an antisymmetric adjacency graph, net positions are read off per
// person, and a greedy matching turns those positions into a short payment
// plan. The package holds no state and does no I/O; amounts are
// decimal.Decimal throughout, so sums are exact and conservation checks
// compare against true zero.
package settle

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PersonID identifies one participant. The namespace is the caller's
// business: Discord IDs, database IDs and display names all work. Ordering
// of balances and payment plans follows bytewise comparison of these IDs.
type PersonID string

// Transaction is one recorded debt: Debtor owes Creditor Amount.
type Transaction struct {
	Debtor   PersonID
	Creditor PersonID
	Amount   decimal.Decimal
}

func (t Transaction) validate(index int) error {
	if !t.Amount.GreaterThan(decimal.Zero) {
		return &InvalidTransactionError{Index: index, Tx: t, Err: ErrNonPositiveAmount}
	}
	if t.Debtor == t.Creditor {
		return &InvalidTransactionError{Index: index, Tx: t, Err: ErrSelfDebt}
	}
	return nil
}

// Validate reports whether the transaction can be applied to a graph:
// the amount must be strictly positive and the parties distinct.
func (t Transaction) Validate() error { return t.validate(-1) }

// Graph is a weighted adjacency map over everyone seen so far.
// Graph[A][B] > 0 means A owes B that much net; every stored edge has a
// mirror with the opposite sign, and every participant has an outer entry
// even when all their edges net to zero.
type Graph map[PersonID]map[PersonID]decimal.Decimal

// NewGraph returns an empty graph ready for Apply.
func NewGraph() Graph { return make(Graph) }

func (g Graph) ensure(p PersonID) map[PersonID]decimal.Decimal {
	row, ok := g[p]
	if !ok {
		row = make(map[PersonID]decimal.Decimal)
		g[p] = row
	}
	return row
}

// apply accumulates an already validated transaction into both directions.
func (g Graph) apply(t Transaction) {
	debtorRow := g.ensure(t.Debtor)
	creditorRow := g.ensure(t.Creditor)
	debtorRow[t.Creditor] = debtorRow[t.Creditor].Add(t.Amount)
	creditorRow[t.Debtor] = creditorRow[t.Debtor].Sub(t.Amount)
}

// Apply records one transaction in place: the debtor's edge toward the
// creditor grows by the amount and the mirror edge shrinks by the same
// amount, creating entries as needed. On error the graph is unchanged.
func (g Graph) Apply(t Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	g.apply(t)
	return nil
}

// BuildGraph validates every transaction up front, then accumulates them in
// order into a fresh graph. The first invalid transaction wins and carries
// its index. Nil or empty input yields an empty, non-nil graph.
func BuildGraph(ts []Transaction) (Graph, error) {
	for i, t := range ts {
		if err := t.validate(i); err != nil {
			return nil, err
		}
	}
	g := NewGraph()
	for _, t := range ts {
		g.apply(t)
	}
	return g, nil
}

// People lists every participant in the graph in ascending PersonID order.
func (g Graph) People() []PersonID {
	people := make([]PersonID, 0, len(g))
	for p := range g {
		people = append(people, p)
	}
	sort.Slice(people, func(i, j int) bool { return people[i] < people[j] })
	return people
}

// Edge returns the net amount from owes to, reading absent edges as zero.
func (g Graph) Edge(from, to PersonID) decimal.Decimal {
	return g[from][to]
}

// Balance is one participant's net position: the sum of their outgoing
// row. Total > 0 means they owe the group, Total < 0 means the group owes
// them.
type Balance struct {
	Person PersonID
	Total  decimal.Decimal
}

// NetBalances checks the graph's mirror edges, then returns one balance per
// participant in ascending PersonID order. For any graph produced by Apply
// or BuildGraph the totals sum to exactly zero.
func (g Graph) NetBalances() ([]Balance, error) {
	if err := g.checkMirrors(); err != nil {
		return nil, err
	}
	balances := make([]Balance, 0, len(g))
	for person, row := range g {
		total := decimal.Zero
		for _, amount := range row {
			total = total.Add(amount)
		}
		balances = append(balances, Balance{Person: person, Total: total})
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].Person < balances[j].Person })
	return balances, nil
}

// checkMirrors walks edges in sorted order so a malformed graph always
// reports the same violation.
func (g Graph) checkMirrors() error {
	for _, from := range g.People() {
		row := g[from]
		peers := make([]PersonID, 0, len(row))
		for to := range row {
			peers = append(peers, to)
		}
		sort.Slice(peers, func(i, j int) bool { return peers[i] < peers[j] })
		for _, to := range peers {
			forward := row[to]
			if from == to {
				if forward.IsZero() {
					continue
				}
				return &MalformedGraphError{From: from, To: to, Forward: forward, Reverse: forward}
			}
			reverse := g[to][from]
			if !forward.Equal(reverse.Neg()) {
				return &MalformedGraphError{From: from, To: to, Forward: forward, Reverse: reverse}
			}
		}
	}
	return nil
}
