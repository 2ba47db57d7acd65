package content

import "context"

// RefreshTask tracks a background revalidation. Callers may wait on it or
// ignore it; failures are logged by the store either way.
type RefreshTask struct {
	done chan struct{}
	err  error
}

func newRefreshTask() *RefreshTask {
	return &RefreshTask{done: make(chan struct{})}
}

func (t *RefreshTask) finish(err error) {
	t.err = err
	close(t.done)
}

// Done is closed once the refresh has finished
func (t *RefreshTask) Done() <-chan struct{} {
	return t.done
}

// Err returns the refresh error; it is only meaningful after Done is closed
func (t *RefreshTask) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the refresh finishes or ctx is done
func (t *RefreshTask) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
