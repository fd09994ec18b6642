package expression

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssemble(t *testing.T) {
	assert.Equal(t, "7+3=10", Assemble([]string{"7", "+", "3", "=", "1", "0"}))
	assert.Equal(t, "7+3=10", Assemble([]string{"7", "", "+", "3", "=", "1", "", "0"}))
	assert.Equal(t, "", Assemble(nil))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		expr     string
		status   Status
		expected float64
	}{
		{"7+3=10", StatusCorrect, 10},
		{"7+3=9", StatusIncorrect, 10},
		{"2+3*4=14", StatusCorrect, 14},
		{"9/3=3", StatusCorrect, 3},
		{"7/2=3.5", StatusCorrect, 3.5},
		{"1/3=0.33", StatusIncorrect, 1.0 / 3},
		{"5-9=-4", StatusCorrect, -4},
		{"6*7=042", StatusCorrect, 42},
		{"7--3=10", StatusCorrect, 10},
		{"7+-3=4", StatusCorrect, 4},
		{"2*-3=-6", StatusCorrect, -6},
		{"8/-2=-4", StatusCorrect, -4},
		{"7--3=4", StatusIncorrect, 10},
		{"10-2-3=5", StatusCorrect, 5},
		{"8/2/2=2", StatusCorrect, 2},
		{"100/10/5*2=4", StatusCorrect, 4},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			r := Validate(tt.expr)
			assert.Equal(t, tt.status, r.Status, "reason: %v", r.Reason)
			assert.True(t, r.HasExpected)
			assert.InDelta(t, tt.expected, r.Expected, 1e-12)
			assert.NoError(t, r.Reason)
			assert.True(t, r.Graded())
		})
	}
}

func TestValidateInvalidFormat(t *testing.T) {
	for _, expr := range []string{
		"7+3",
		"=5",
		"4/0=0",
		"0/0=0",
		"",
		"+=-",
		"7+=10",
		"7+3=",
		"1=2=3",
		"7+3=1-0",
		"7+3=/",
		"2**3=8",
		"7x3=21",
		"(7)=7",
	} {
		t.Run(expr, func(t *testing.T) {
			r := Validate(expr)
			assert.Equal(t, StatusInvalidFormat, r.Status)
			assert.False(t, r.HasExpected)
			assert.False(t, r.Graded())
			assert.True(t, errors.Is(r.Reason, ErrParseOrEval), "reason: %v", r.Reason)
		})
	}
}

func TestResultMessage(t *testing.T) {
	assert.Equal(t, "✅ Correct: 7+3=10", Validate("7+3=10").Message())
	assert.Equal(t, "❌ Incorrect. The answer was: 10", Validate("7+3=9").Message())
	assert.Equal(t, "❌ Incorrect. The answer was: 3.5", Validate("7/2=3").Message())
	assert.Equal(t, "⚠️ No valid exercise detected.", Validate("7+3").Message())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "CORRECT", StatusCorrect.String())
	assert.Equal(t, "INCORRECT", StatusIncorrect.String())
	assert.Equal(t, "INVALID_FORMAT", StatusInvalidFormat.String())
}
