package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreHigherIsBetter(t *testing.T) {
	assert.Positive(t, NewScore(9).Compare(NewScore(3)))
	assert.Negative(t, NewScore(3).Compare(NewScore(9)))
	assert.Zero(t, NewScore(4).Compare(NewScore(4)))
	assert.True(t, Improves(NewScore(2.5), NewScore(2.0)))
	assert.False(t, Improves(NewScore(2.0), NewScore(2.0)))
}

func TestErrorLowerIsBetter(t *testing.T) {
	assert.Positive(t, NewError[uint64](3).Compare(NewError[uint64](9)))
	assert.Negative(t, NewError[uint64](9).Compare(NewError[uint64](3)))
	assert.True(t, Improves(NewError(1), NewError(2)))
	assert.False(t, Improves(NewError(2), NewError(1)))
}

func TestBestIndexFirstMaximumWins(t *testing.T) {
	scores := []Score[int]{NewScore(1), NewScore(7), NewScore(3), NewScore(7)}
	assert.Equal(t, 1, BestIndex(scores))

	errs := []Error[int]{NewError(5), NewError(2), NewError(2)}
	assert.Equal(t, 1, BestIndex(errs))

	assert.Equal(t, -1, BestIndex[Score[int]](nil))
}

func TestStringPrintsBareValue(t *testing.T) {
	assert.Equal(t, "42", NewScore(42).String())
	assert.Equal(t, "0.5", NewError(0.5).String())
}
