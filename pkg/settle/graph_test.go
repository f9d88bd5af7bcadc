package settle

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helper functions
// ---------------------------------------------------------------------------

// dec parses a decimal literal, failing the build on typos in fixtures.
func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// tx builds a transaction from string fixtures.
func tx(debtor, creditor, amount string) Transaction {
	return Transaction{Debtor: PersonID(debtor), Creditor: PersonID(creditor), Amount: dec(amount)}
}

// assertDec compares decimals by value, not representation: equal amounts
// may carry different exponents depending on how they were computed.
func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "want %s, got %s", want, got)
}

// assertInvalidTransaction extracts an InvalidTransactionError and verifies
// its index and cause.
func assertInvalidTransaction(t *testing.T, err error, index int, cause error) {
	t.Helper()
	require.Error(t, err)

	var invalidErr *InvalidTransactionError
	require.True(t, errors.As(err, &invalidErr), "expected InvalidTransactionError, got %T: %v", err, err)
	assert.Equal(t, index, invalidErr.Index)
	assert.True(t, errors.Is(err, cause), "expected cause %v, got %v", cause, invalidErr.Err)
}

// groupTransactions is a night out between four friends where everyone
// fronted something: repeated pairs, both directions, one fractional split.
func groupTransactions() []Transaction {
	return []Transaction{
		tx("Kevin", "Xander", "800"),
		tx("John", "Xander", "750"),
		tx("William", "Xander", "800"),
		tx("Xander", "Kevin", "30"),
		tx("Kevin", "Xander", "20"),
		tx("John", "William", "100"),
		tx("William", "Kevin", "40"),
		tx("Xander", "John", "20"),
		tx("Kevin", "William", "12.5"),
	}
}

// ---------------------------------------------------------------------------
// Transaction validation
// ---------------------------------------------------------------------------

func TestTransactionValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		tx    Transaction
		cause error
	}{
		{name: "valid", tx: tx("A", "B", "10")},
		{name: "fractional valid", tx: tx("A", "B", "0.01")},
		{name: "zero amount", tx: tx("A", "B", "0"), cause: ErrNonPositiveAmount},
		{name: "negative amount", tx: tx("A", "B", "-5"), cause: ErrNonPositiveAmount},
		{name: "self debt", tx: tx("A", "A", "10"), cause: ErrSelfDebt},
		{name: "zero self debt reports amount first", tx: tx("A", "A", "0"), cause: ErrNonPositiveAmount},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.tx.Validate()
			if tc.cause == nil {
				require.NoError(t, err)
				return
			}
			assertInvalidTransaction(t, err, -1, tc.cause)
		})
	}
}

// ---------------------------------------------------------------------------
// Apply / BuildGraph
// ---------------------------------------------------------------------------

func TestApplyAccumulatesBothDirections(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	require.NoError(t, g.Apply(tx("A", "B", "50")))
	require.NoError(t, g.Apply(tx("A", "B", "30")))
	require.NoError(t, g.Apply(tx("B", "A", "20")))

	assertDec(t, "60", g.Edge("A", "B"))
	assertDec(t, "-60", g.Edge("B", "A"))
}

func TestApplyInvalidLeavesGraphUntouched(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	require.NoError(t, g.Apply(tx("A", "B", "10")))

	err := g.Apply(tx("C", "C", "5"))
	assertInvalidTransaction(t, err, -1, ErrSelfDebt)

	assert.Equal(t, []PersonID{"A", "B"}, g.People())
	assertDec(t, "10", g.Edge("A", "B"))
}

func TestBuildGraphEmptyInput(t *testing.T) {
	t.Parallel()

	for name, ts := range map[string][]Transaction{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			g, err := BuildGraph(ts)
			require.NoError(t, err)
			require.NotNil(t, g)
			assert.Empty(t, g)

			balances, err := g.NetBalances()
			require.NoError(t, err)
			assert.Empty(t, balances)
		})
	}
}

func TestBuildGraphReportsFirstInvalidIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ts    []Transaction
		index int
		cause error
	}{
		{name: "zero amount first", ts: []Transaction{tx("A", "B", "0"), tx("A", "A", "5")}, index: 0, cause: ErrNonPositiveAmount},
		{name: "self debt later", ts: []Transaction{tx("A", "B", "10"), tx("B", "B", "5")}, index: 1, cause: ErrSelfDebt},
		{name: "negative in the middle", ts: []Transaction{tx("A", "B", "10"), tx("B", "C", "-1"), tx("C", "A", "3")}, index: 1, cause: ErrNonPositiveAmount},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			g, err := BuildGraph(tc.ts)
			assert.Nil(t, g)
			assertInvalidTransaction(t, err, tc.index, tc.cause)
		})
	}
}

func TestBuildGraphPairwiseNetting(t *testing.T) {
	t.Parallel()

	g, err := BuildGraph(groupTransactions())
	require.NoError(t, err)

	assert.Equal(t, []PersonID{"John", "Kevin", "William", "Xander"}, g.People())

	assertDec(t, "790", g.Edge("Kevin", "Xander"))
	assertDec(t, "-790", g.Edge("Xander", "Kevin"))
	assertDec(t, "-27.5", g.Edge("Kevin", "William"))
	assertDec(t, "27.5", g.Edge("William", "Kevin"))
	assertDec(t, "730", g.Edge("John", "Xander"))
	assertDec(t, "100", g.Edge("John", "William"))
	assertDec(t, "0", g.Edge("John", "Kevin"))
}

func TestBuildGraphRepeatedPairCollapsesToOneEdge(t *testing.T) {
	t.Parallel()

	g, err := BuildGraph([]Transaction{
		tx("Kevin", "Xander", "50"),
		tx("Kevin", "Xander", "30"),
		tx("Xander", "Kevin", "20"),
		tx("Xander", "Kevin", "75"),
		tx("John", "Kevin", "10"),
		tx("John", "Kevin", "14"),
		tx("Kevin", "John", "29"),
		tx("Kevin", "John", "7"),
	})
	require.NoError(t, err)

	// four same-pair transactions, one edge each way
	assertDec(t, "-15", g.Edge("Kevin", "Xander"))
	assertDec(t, "15", g.Edge("Xander", "Kevin"))
	assertDec(t, "12", g.Edge("Kevin", "John"))
	assertDec(t, "-12", g.Edge("John", "Kevin"))

	balances, err := g.NetBalances()
	require.NoError(t, err)
	require.Len(t, balances, 3)
	assertDec(t, "-12", balances[0].Total) // John
	assertDec(t, "-3", balances[1].Total)  // Kevin
	assertDec(t, "15", balances[2].Total)  // Xander
}

// ---------------------------------------------------------------------------
// NetBalances
// ---------------------------------------------------------------------------

func TestNetBalancesSortedAndConserved(t *testing.T) {
	t.Parallel()

	g, err := BuildGraph(groupTransactions())
	require.NoError(t, err)

	balances, err := g.NetBalances()
	require.NoError(t, err)
	require.Len(t, balances, 4)

	want := []struct {
		person PersonID
		total  string
	}{
		{"John", "830"},
		{"Kevin", "762.5"},
		{"William", "727.5"},
		{"Xander", "-2320"},
	}
	sum := decimal.Zero
	for i, w := range want {
		assert.Equal(t, w.person, balances[i].Person)
		assertDec(t, w.total, balances[i].Total)
		sum = sum.Add(balances[i].Total)
	}
	assert.True(t, sum.IsZero(), "net balances must sum to zero, got %s", sum)
}

func TestNetBalancesMalformedGraph(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		graph   Graph
		from    PersonID
		to      PersonID
		forward string
		reverse string
	}{
		{
			name:    "unequal mirror",
			graph:   Graph{"A": {"B": dec("5")}, "B": {"A": dec("-4")}},
			from:    "A", to: "B", forward: "5", reverse: "-4",
		},
		{
			name:    "missing mirror",
			graph:   Graph{"A": {"B": dec("5")}, "B": {}},
			from:    "A", to: "B", forward: "5", reverse: "0",
		},
		{
			name:    "missing person",
			graph:   Graph{"A": {"B": dec("5")}},
			from:    "A", to: "B", forward: "5", reverse: "0",
		},
		{
			name:    "same sign mirror",
			graph:   Graph{"A": {"B": dec("5")}, "B": {"A": dec("5")}},
			from:    "A", to: "B", forward: "5", reverse: "5",
		},
		{
			name:    "nonzero self edge",
			graph:   Graph{"A": {"A": dec("3")}},
			from:    "A", to: "A", forward: "3", reverse: "3",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			balances, err := tc.graph.NetBalances()
			assert.Nil(t, balances)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrAsymmetry))

			var malformedErr *MalformedGraphError
			require.True(t, errors.As(err, &malformedErr), "expected MalformedGraphError, got %T: %v", err, err)
			assert.Equal(t, tc.from, malformedErr.From)
			assert.Equal(t, tc.to, malformedErr.To)
			assertDec(t, tc.forward, malformedErr.Forward)
			assertDec(t, tc.reverse, malformedErr.Reverse)
		})
	}
}

func TestNetBalancesToleratesZeroEdges(t *testing.T) {
	t.Parallel()

	// a zero edge without a mirror still satisfies antisymmetry
	g := Graph{
		"A": {"B": dec("0")},
		"B": {},
	}
	balances, err := g.NetBalances()
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assertDec(t, "0", balances[0].Total)
	assertDec(t, "0", balances[1].Total)
}

func TestOffsettingDebtsNetToZero(t *testing.T) {
	t.Parallel()

	g, err := BuildGraph([]Transaction{
		tx("A", "B", "10"),
		tx("B", "A", "10"),
	})
	require.NoError(t, err)

	assert.Equal(t, []PersonID{"A", "B"}, g.People())
	assertDec(t, "0", g.Edge("A", "B"))
	assertDec(t, "0", g.Edge("B", "A"))

	balances, err := g.NetBalances()
	require.NoError(t, err)
	for _, b := range balances {
		assert.True(t, b.Total.IsZero(), "%s should net to zero, got %s", b.Person, b.Total)
	}
}
