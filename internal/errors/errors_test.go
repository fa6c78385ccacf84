package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"gostreak/domain/core"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{core.ErrEmptySequence, CodeDomainError},
		{core.NewNoGamesError("BOS"), CodeDomainError},
		{core.NewUnknownMeasureError("hot hand"), CodeConfigurationError},
		{core.ErrInvalidTrials, CodeConfigurationError},
		{core.NewDegenerateVarianceError(5, 0), CodeNumericError},
		{core.NewUnknownMethodError("output format", "xml"), CodeConfigurationError},
		{ConfigInvalid("bad"), CodeConfigInvalid},
		{InvalidInput("bad"), CodeInvalidInput},
		{stderrors.New("plain"), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err))
	}
}

func TestFromCorePreservesCause(t *testing.T) {
	err := FromCore(core.NewNoGamesError("BOS"), "measure failed")
	assert.Equal(t, CodeDomainError, GetCode(err))
	assert.ErrorIs(t, err, core.ErrNoGames)
	assert.Contains(t, err.Error(), "measure failed")

	plain := FromCore(stderrors.New("disk"), "load failed")
	assert.Equal(t, CodeInternalError, GetCode(plain))

	assert.Nil(t, FromCore(nil, "unused"))
}

func TestWrapKeepsCode(t *testing.T) {
	base := ConfigInvalid("MC_TRIALS must be positive")
	wrapped := Wrap(base, "configuration validation failed")
	assert.Equal(t, CodeConfigInvalid, GetCode(wrapped))
	assert.True(t, stderrors.Is(wrapped, base))

	assert.Equal(t, CodeInternalError, GetCode(Wrap(stderrors.New("x"), "y")))
	assert.Equal(t, CodeInvalidInput, GetCode(Wrap(InvalidInput("--bins must be positive"), "simulate")))
}
