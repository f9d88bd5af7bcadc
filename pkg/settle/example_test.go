package settle_test

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/oatsaysai/settle-up-in-discord/pkg/settle"
)

func ExampleSimplify() {
	ts := []settle.Transaction{
		{Debtor: "alice", Creditor: "carol", Amount: decimal.NewFromInt(10)},
		{Debtor: "bob", Creditor: "carol", Amount: decimal.NewFromInt(5)},
		{Debtor: "carol", Creditor: "alice", Amount: decimal.NewFromInt(4)},
	}

	plan, _, err := settle.Simplify(ts)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, p := range plan {
		fmt.Printf("%s pays %s %s\n", p.From, p.To, p.Amount)
	}

	// Output:
	// alice pays carol 6
	// bob pays carol 5
}

func ExampleGraph_NetBalances() {
	g := settle.NewGraph()
	_ = g.Apply(settle.Transaction{Debtor: "alice", Creditor: "bob", Amount: decimal.NewFromInt(25)})
	_ = g.Apply(settle.Transaction{Debtor: "bob", Creditor: "alice", Amount: decimal.NewFromInt(10)})

	balances, err := g.NetBalances()
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, b := range balances {
		fmt.Printf("%s: %s\n", b.Person, b.Total)
	}

	// Output:
	// alice: 15
	// bob: -15
}
