package scenario

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphabill-org/auctionhouse/keyvaluedb/memorydb"
	"github.com/alphabill-org/auctionhouse/localnet"
	testlogger "github.com/alphabill-org/auctionhouse/testutils/logger"
	"github.com/alphabill-org/auctionhouse/txsystem/auctionhouse"
	"github.com/alphabill-org/auctionhouse/txsystem/tokens"
)

func TestBuiltinScenarios(t *testing.T) {
	for _, name := range BuiltinNames() {
		t.Run(name, func(t *testing.T) {
			s, err := Builtin(name)
			require.NoError(t, err)
			out := &bytes.Buffer{}
			res, err := NewRunner(testlogger.New(t), WithOutput(out)).Execute(s)
			require.NoError(t, err)

			report := &bytes.Buffer{}
			res.Report(report)
			require.True(t, res.Passed(), report.String())
			require.Empty(t, res.Defects())
			require.Len(t, res.Steps, len(s.Steps))
			require.Contains(t, report.String(), "RESULT: passed")
			require.Contains(t, out.String(), "=== "+name)
		})
	}

	_, err := Builtin("unknown")
	require.ErrorContains(t, err, `unknown scenario "unknown"`)
}

func TestResurrectionScenario_Outcomes(t *testing.T) {
	s, err := Builtin("resurrection")
	require.NoError(t, err)
	db := memorydb.New()
	res, err := NewRunner(testlogger.New(t), WithRecordStore(db)).Execute(s)
	require.NoError(t, err)

	codes := make([]auctionhouse.ErrorCode, len(res.Steps))
	for i, sr := range res.Steps {
		codes[i] = sr.Outcome.Code
	}
	require.Equal(t, []auctionhouse.ErrorCode{
		auctionhouse.Success, auctionhouse.Success, auctionhouse.Success, auctionhouse.Success,
		auctionhouse.Success, auctionhouse.NotOpen, auctionhouse.Success, auctionhouse.NotOpen,
	}, codes)

	// every batch was recorded
	recs, err := localnet.OpenRecordRun(db, 1).List(0, 0)
	require.NoError(t, err)
	require.Len(t, recs, len(s.Steps))
	require.False(t, recs[len(recs)-1].Success)
}

func TestRun_TokensMoved(t *testing.T) {
	s, err := Builtin("trade-state-switch")
	require.NoError(t, err)
	run, err := NewRunner(testlogger.New(t)).Start(s)
	require.NoError(t, err)
	defer run.Close()

	for _, step := range s.Steps {
		_, err := run.Step(step)
		require.NoError(t, err)
	}
	acc, err := run.Env.Account(tokens.AssociatedTokenAddress(Buyer.Address(), Mint))
	require.NoError(t, err)
	ta, err := tokens.DecodeTokenAccount(acc)
	require.NoError(t, err)
	require.EqualValues(t, 1, ta.Amount)
}

func TestVerdict(t *testing.T) {
	ok := &localnet.Outcome{Success: true}
	notOpen := &localnet.Outcome{Code: auctionhouse.NotOpen}
	invalid := &localnet.Outcome{Code: auctionhouse.InvalidTradeState}

	tests := []struct {
		expect  string
		outcome *localnet.Outcome
		want    Verdict
	}{
		{"", ok, VerdictMet},
		{"ok", notOpen, VerdictDeviation},
		{"NotOpen", notOpen, VerdictMet},
		{"NotOpen", invalid, VerdictDeviation},
		{"NotOpen", ok, VerdictDefect},
		{"fail", invalid, VerdictMet},
		{"fail", ok, VerdictDefect},
	}
	for _, tt := range tests {
		step := Step{Op: OpExecuteSale, Expect: tt.expect}
		exp, err := step.expectation()
		require.NoError(t, err)
		res := &Result{}
		res.add(step, exp, tt.outcome)
		require.Equal(t, tt.want, res.Steps[0].Verdict, "expect %q", tt.expect)
		require.Equal(t, tt.want == VerdictMet, res.Passed())
	}

	res := &Result{Scenario: "broken"}
	exp, _ := Step{Expect: "NotOpen"}.expectation()
	res.add(Step{Op: OpExecuteSale}, exp, ok)
	out := &bytes.Buffer{}
	res.Report(out)
	require.Contains(t, out.String(), "resurrection defect present")
	require.Contains(t, out.String(), "DEFECT")
}

func TestLoad(t *testing.T) {
	s, err := LoadFile("testdata/resurrection.yaml")
	require.NoError(t, err)
	require.Equal(t, "resurrection-yaml", s.Name)
	require.EqualValues(t, 8_000_000_000, s.Price)
	require.EqualValues(t, 250, s.FeeBps)
	require.Len(t, s.Steps, 9)
	require.Equal(t, RoleBuyer, s.Steps[2].Wallet)
	require.EqualValues(t, 2_000_000, s.Steps[6].Amount)

	res, err := NewRunner(testlogger.New(t)).Execute(s)
	require.NoError(t, err)
	out := &bytes.Buffer{}
	res.Report(out)
	require.True(t, res.Passed(), out.String())

	_, err = LoadFile("testdata/missing.yaml")
	require.ErrorContains(t, err, "opening scenario file")

	invalid := []struct {
		yaml string
		err  string
	}{
		{"name: x\nsize: 1\nsteps: [{op: fly}]", `unknown operation "fly"`},
		{"name: x\nsize: 1\nsteps: [{op: sell, expect: Resurrected}]", `unknown expectation "Resurrected"`},
		{"name: x\nsize: 1\nsteps: [{op: sell, wallet: carol}]", `unknown wallet "carol"`},
		{"name: x\nsize: 1\nsteps: []", "has no steps"},
		{"name: x\nsteps: [{op: sell}]", "size is zero"},
		{"size: 1\nsteps: [{op: sell}]", "name is empty"},
		{"name: x\nsize: 1\ncolor: red\nsteps: [{op: sell}]", "field color not found"},
	}
	for _, tt := range invalid {
		_, err := Load(strings.NewReader(tt.yaml))
		require.ErrorContains(t, err, tt.err, tt.yaml)
	}
}
