package settle

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helper functions
// ---------------------------------------------------------------------------

// assertPlan compares payment plans by value.
func assertPlan(t *testing.T, want []Payment, got []Payment) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].From, got[i].From, "payment %d payer", i)
		assert.Equal(t, want[i].To, got[i].To, "payment %d payee", i)
		assert.True(t, got[i].Amount.Equal(want[i].Amount),
			"payment %d amount: want %s, got %s", i, want[i].Amount, got[i].Amount)
	}
}

// planDeltas folds a plan into the net movement per person: positive for
// payers, negative for payees.
func planDeltas(plan []Payment) map[PersonID]decimal.Decimal {
	deltas := make(map[PersonID]decimal.Decimal)
	for _, p := range plan {
		deltas[p.From] = deltas[p.From].Add(p.Amount)
		deltas[p.To] = deltas[p.To].Sub(p.Amount)
	}
	return deltas
}

// assertPlanSettles verifies the heart of the exercise: paying the plan
// moves every participant by exactly their net balance in the full graph.
func assertPlanSettles(t *testing.T, ts []Transaction, plan []Payment) {
	t.Helper()

	full, err := BuildGraph(ts)
	require.NoError(t, err)
	balances, err := full.NetBalances()
	require.NoError(t, err)

	deltas := planDeltas(plan)
	for _, b := range balances {
		assert.True(t, b.Total.Equal(deltas[b.Person]),
			"%s: balance %s but plan moves %s", b.Person, b.Total, deltas[b.Person])
	}
}

func pay(from, to, amount string) Payment {
	return Payment{From: PersonID(from), To: PersonID(to), Amount: dec(amount)}
}

// ---------------------------------------------------------------------------
// Simplify
// ---------------------------------------------------------------------------

func TestSimplifySingleCreditor(t *testing.T) {
	t.Parallel()

	ts := groupTransactions()
	plan, simplified, err := Simplify(ts)
	require.NoError(t, err)

	// one net creditor, so everyone pays Xander directly
	assertPlan(t, []Payment{
		pay("John", "Xander", "830"),
		pay("Kevin", "Xander", "762.5"),
		pay("William", "Xander", "727.5"),
	}, plan)
	assertPlanSettles(t, ts, plan)

	// the simplified graph carries the plan and its mirrors
	assertDec(t, "762.5", simplified.Edge("Kevin", "Xander"))
	assertDec(t, "-762.5", simplified.Edge("Xander", "Kevin"))
	assertDec(t, "-830", simplified.Edge("Xander", "John"))
	assertDec(t, "-727.5", simplified.Edge("Xander", "William"))
	assertDec(t, "0", simplified.Edge("Kevin", "William"))

	balances, err := simplified.NetBalances()
	require.NoError(t, err)
	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b.Total)
	}
	assert.True(t, sum.IsZero())
}

func TestSimplifyMultipleCreditors(t *testing.T) {
	t.Parallel()

	ts := []Transaction{
		tx("Kevin", "Xander", "800"),
		tx("John", "Xander", "750"),
		tx("John", "William", "700"),
		tx("Kevin", "William", "800"),
		tx("Xander", "Kevin", "30"),
		tx("Kevin", "Xander", "20"),
		tx("John", "William", "100"),
		tx("William", "Kevin", "40"),
		tx("Xander", "John", "20"),
		tx("Kevin", "William", "12.5"),
	}

	plan, _, err := Simplify(ts)
	require.NoError(t, err)

	// John clears first and William's remainder falls to Kevin
	assertPlan(t, []Payment{
		pay("John", "William", "1530"),
		pay("Kevin", "William", "42.5"),
		pay("Kevin", "Xander", "1520"),
	}, plan)
	assertPlanSettles(t, ts, plan)
}

func TestSimplifyDistributesOneDebtorAcrossCreditors(t *testing.T) {
	t.Parallel()

	ts := []Transaction{
		tx("Kevin", "Xander", "50"),
		tx("Kevin", "Xander", "30"),
		tx("Xander", "Kevin", "20"),
		tx("Xander", "Kevin", "75"),
		tx("John", "Kevin", "10"),
		tx("John", "Kevin", "14"),
		tx("Kevin", "John", "29"),
		tx("Kevin", "John", "7"),
	}

	plan, _, err := Simplify(ts)
	require.NoError(t, err)

	assertPlan(t, []Payment{
		pay("Xander", "John", "12"),
		pay("Xander", "Kevin", "3"),
	}, plan)
	assertPlanSettles(t, ts, plan)
}

func TestSimplifyExactTieAdvancesBothSides(t *testing.T) {
	t.Parallel()

	// A and C square off exactly, so B must be matched with D, never C
	ts := []Transaction{
		tx("A", "C", "10"),
		tx("B", "D", "5"),
	}

	plan, _, err := Simplify(ts)
	require.NoError(t, err)

	assertPlan(t, []Payment{
		pay("A", "C", "10"),
		pay("B", "D", "5"),
	}, plan)
}

func TestSimplifyEmptyInput(t *testing.T) {
	t.Parallel()

	plan, simplified, err := Simplify(nil)
	require.NoError(t, err)
	assert.Empty(t, plan)
	require.NotNil(t, simplified)
	assert.Empty(t, simplified)
}

func TestSimplifyOffsettingDebtsYieldEmptyPlan(t *testing.T) {
	t.Parallel()

	plan, simplified, err := Simplify([]Transaction{
		tx("A", "B", "10"),
		tx("B", "A", "10"),
	})
	require.NoError(t, err)

	assert.Empty(t, plan)
	// settled participants keep their entries
	assert.Equal(t, []PersonID{"A", "B"}, simplified.People())
}

func TestSimplifyRejectsInvalidTransactions(t *testing.T) {
	t.Parallel()

	plan, simplified, err := Simplify([]Transaction{
		tx("A", "B", "10"),
		tx("B", "B", "1"),
	})
	assert.Nil(t, plan)
	assert.Nil(t, simplified)
	assertInvalidTransaction(t, err, 1, ErrSelfDebt)
}

func TestSimplifyPlanProperties(t *testing.T) {
	t.Parallel()

	ts := []Transaction{
		tx("Ana", "Boon", "120.75"),
		tx("Cara", "Boon", "80"),
		tx("Dan", "Ana", "45.5"),
		tx("Boon", "Emma", "300"),
		tx("Emma", "Cara", "17.25"),
		tx("Dan", "Cara", "64"),
		tx("Ana", "Emma", "12"),
	}

	plan, simplified, err := Simplify(ts)
	require.NoError(t, err)
	assertPlanSettles(t, ts, plan)

	payers := make(map[PersonID]bool)
	payees := make(map[PersonID]bool)
	for _, p := range plan {
		assert.True(t, p.Amount.GreaterThan(decimal.Zero), "amount %s must be positive", p.Amount)
		assert.NotEqual(t, p.From, p.To)
		payers[p.From] = true
		payees[p.To] = true
	}
	for person := range payers {
		assert.False(t, payees[person], "%s both pays and receives", person)
	}

	// simplified positions match full positions person by person
	full, err := BuildGraph(ts)
	require.NoError(t, err)
	fullBalances, err := full.NetBalances()
	require.NoError(t, err)
	simplifiedBalances, err := simplified.NetBalances()
	require.NoError(t, err)
	require.Len(t, simplifiedBalances, len(fullBalances))
	for i := range fullBalances {
		assert.Equal(t, fullBalances[i].Person, simplifiedBalances[i].Person)
		assert.True(t, fullBalances[i].Total.Equal(simplifiedBalances[i].Total),
			"%s: full %s, simplified %s", fullBalances[i].Person, fullBalances[i].Total, simplifiedBalances[i].Total)
	}
}

func TestSimplifyDeterministic(t *testing.T) {
	t.Parallel()

	ts := groupTransactions()
	first, _, err := Simplify(ts)
	require.NoError(t, err)
	second, _, err := Simplify(ts)
	require.NoError(t, err)

	assertPlan(t, first, second)
}
