// Package challenge implements the arithmetic human-verification gate that
// must pass once per session before any pipeline work runs.
package challenge

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"crypto-narrator/internal/types"
)

const (
	minOperand = 1
	maxOperand = 9
)

// Gate issues and verifies challenges. It holds no session state; the
// ChallengeState lives in the session.
type Gate struct {
	rng *rand.Rand
}

// New returns a gate drawing operands from rng. A nil rng uses a randomly
// seeded PCG source.
func New(rng *rand.Rand) *Gate {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Gate{rng: rng}
}

func (g *Gate) operand() int {
	return minOperand + g.rng.IntN(maxOperand-minOperand+1)
}

// NewState returns an unverified challenge with fresh operands.
func (g *Gate) NewState() types.ChallengeState {
	return types.ChallengeState{OperandA: g.operand(), OperandB: g.operand()}
}

// Verify checks input against st. A passed state is returned unchanged.
// A wrong answer returns ErrChallengeFailed and a state with new operands.
func (g *Gate) Verify(input string, st types.ChallengeState) (types.ChallengeState, error) {
	if st.Passed {
		return st, nil
	}
	if strings.TrimSpace(input) == strconv.Itoa(st.Answer()) {
		st.Passed = true
		return st, nil
	}
	return g.NewState(), types.ErrChallengeFailed
}

// Require guards pipeline entry points.
func Require(st types.ChallengeState) error {
	if !st.Passed {
		return types.ErrChallengeRequired
	}
	return nil
}
