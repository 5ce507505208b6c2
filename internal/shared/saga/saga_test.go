package saga

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/tracksync/internal/shared/logger"
)

type recorder struct {
	calls []string
}

func (r *recorder) step(name string, doErr, undoErr error) Step {
	return Step{
		Name: name,
		Do: func(ctx context.Context) error {
			r.calls = append(r.calls, "do:"+name)
			return doErr
		},
		Undo: func(ctx context.Context) error {
			r.calls = append(r.calls, "undo:"+name)
			return undoErr
		},
	}
}

func TestSaga_AllStepsSucceed(t *testing.T) {
	rec := &recorder{}
	s := New("create", logger.NewNopLogger(),
		rec.step("a", nil, nil),
		rec.step("b", nil, nil),
	)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []string{"do:a", "do:b"}, rec.calls)
}

func TestSaga_FailureCompensatesInReverse(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	s := New("create", logger.NewNopLogger(),
		rec.step("a", nil, nil),
		rec.step("b", nil, nil),
		rec.step("c", boom, nil),
		rec.step("d", nil, nil),
	)

	err := s.Run(context.Background())

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "c", stepErr.Step)
	assert.True(t, stepErr.Compensated())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"do:a", "do:b", "do:c", "undo:b", "undo:a"}, rec.calls)
}

func TestSaga_NilUndoIsSkipped(t *testing.T) {
	rec := &recorder{}
	s := New("create", logger.NewNopLogger(),
		rec.step("a", nil, nil),
		Step{Name: "irreversible", Do: func(ctx context.Context) error { return nil }},
		rec.step("c", errors.New("fail"), nil),
	)

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"do:a", "do:c", "undo:a"}, rec.calls)
}

func TestSaga_UndoFailureIsReported(t *testing.T) {
	rec := &recorder{}
	undoErr := errors.New("delete failed")
	s := New("create", logger.NewNopLogger(),
		rec.step("a", nil, undoErr),
		rec.step("b", errors.New("fail"), nil),
	)

	err := s.Run(context.Background())

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.False(t, stepErr.Compensated())
	assert.ErrorIs(t, stepErr.CompensationErr, undoErr)
	assert.Contains(t, err.Error(), "compensation failed")
}

func TestSaga_UndoRunsAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var undoCtxErr error = errors.New("unset")

	s := New("create", logger.NewNopLogger(),
		Step{
			Name: "insert",
			Do:   func(ctx context.Context) error { return nil },
			Undo: func(ctx context.Context) error {
				undoCtxErr = ctx.Err()
				return nil
			},
		},
		Step{
			Name: "remote",
			Do: func(ctx context.Context) error {
				cancel()
				return ctx.Err()
			},
		},
	)

	require.Error(t, s.Run(ctx))
	assert.NoError(t, undoCtxErr)
}
