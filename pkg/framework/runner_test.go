package framework

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunnerCancelsOnFailure(t *testing.T) {
	failure := errors.New("failure")
	blocked := RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	failing := NamedRun("failing", RunFunc(func(context.Context) error {
		return failure
	}))
	err := NewRunner().Go(blocked, failing).Wait()
	require.Error(t, err)
	require.Equal(t, failure, err.(*AggregatedError).Errors[0])
}

func TestRunnerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunnerWith(ctx).Go(RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	cancel()
	require.NoError(t, r.Wait())
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	errs.Add(errors.New("a"))
	require.Equal(t, "a", errs.Aggregate().Error())
	errs.Add(errors.New("b"), nil)
	require.Equal(t, "multiple errors:\na\nb", errs.Aggregate().Error())
}

type blockingReader struct {
	closed chan struct{}
}

func (r *blockingReader) Read([]byte) (int, error) {
	<-r.closed
	return 0, io.EOF
}

func (r *blockingReader) Close() error {
	close(r.closed)
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	r := &blockingReader{closed: make(chan struct{})}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := RunWithContextCloser(ctx, r, func() error {
		_, err := r.Read(nil)
		return err
	})
	require.Equal(t, context.DeadlineExceeded, err)
}
