package scenario

import (
	"fmt"
	"io"

	"github.com/alphabill-org/auctionhouse/localnet"
)

type (
	// Result is the verdict of a scenario run.
	Result struct {
		Scenario string
		Steps    []*StepResult
	}

	StepResult struct {
		Step     Step
		Expected string
		Outcome  *localnet.Outcome
		Verdict  Verdict
	}

	Verdict int
)

const (
	// VerdictMet means the batch ended as expected.
	VerdictMet Verdict = iota
	/*
	VerdictDefect means a batch which must have been rejected succeeded: a
	consumed authorization was used again.
	*/
	VerdictDefect
	// VerdictDeviation means the batch failed unexpectedly or with another code.
	VerdictDeviation
)

func (v Verdict) String() string {
	switch v {
	case VerdictMet:
		return "met"
	case VerdictDefect:
		return "DEFECT"
	case VerdictDeviation:
		return "deviation"
	}
	return fmt.Sprintf("Verdict(%d)", int(v))
}

func (r *Result) add(step Step, exp expectation, o *localnet.Outcome) {
	sr := &StepResult{Step: step, Expected: exp.String(), Outcome: o}
	switch {
	case exp.ok && o.Success:
		sr.Verdict = VerdictMet
	case exp.ok:
		sr.Verdict = VerdictDeviation
	case o.Success:
		sr.Verdict = VerdictDefect
	case exp.any || exp.code == o.Code:
		sr.Verdict = VerdictMet
	default:
		sr.Verdict = VerdictDeviation
	}
	r.Steps = append(r.Steps, sr)
}

func (r *Result) Defects() []*StepResult { return r.filter(VerdictDefect) }

func (r *Result) Deviations() []*StepResult { return r.filter(VerdictDeviation) }

func (r *Result) Passed() bool {
	return len(r.Defects()) == 0 && len(r.Deviations()) == 0
}

func (r *Result) filter(v Verdict) []*StepResult {
	var res []*StepResult
	for _, sr := range r.Steps {
		if sr.Verdict == v {
			res = append(res, sr)
		}
	}
	return res
}

// Report prints one line per step and the verdict of the scenario.
func (r *Result) Report(w io.Writer) {
	fmt.Fprintf(w, "scenario %s\n", r.Scenario)
	for i, sr := range r.Steps {
		got := "ok"
		if !sr.Outcome.Success {
			got = sr.Outcome.Code.String()
		}
		fmt.Fprintf(w, "  %2d %-28s expected %-20s got %-20s %s\n", i, sr.Step.title(), sr.Expected, got, sr.Verdict)
	}
	switch {
	case len(r.Defects()) > 0:
		fmt.Fprintf(w, "RESULT: %d consumed trade state(s) accepted again, resurrection defect present\n", len(r.Defects()))
	case len(r.Deviations()) > 0:
		fmt.Fprintf(w, "RESULT: %d step(s) deviated from the expectation\n", len(r.Deviations()))
	default:
		fmt.Fprintln(w, "RESULT: passed")
	}
}
