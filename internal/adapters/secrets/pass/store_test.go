package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRun struct {
	calls  [][]string
	inputs []string
	stdout string
	err    error
	stderr string
}

func (f *fakeRun) run(_ context.Context, input string, args ...string) (string, string, error) {
	f.calls = append(f.calls, args)
	f.inputs = append(f.inputs, input)
	return f.stdout, f.stderr, f.err
}

func TestPutInsertsMultiline(t *testing.T) {
	fake := &fakeRun{}
	store := &Store{run: fake.run}

	require.NoError(t, store.Put(context.Background(), "blog/access_token", "token-1"))

	require.Len(t, fake.calls, 1)
	assert.Equal(t, []string{"insert", "-m", "-f", "blog/access_token"}, fake.calls[0])
	assert.Equal(t, "token-1\n", fake.inputs[0])
}

func TestGetTrimsTrailingNewline(t *testing.T) {
	fake := &fakeRun{stdout: "token-1\n"}
	store := &Store{run: fake.run}

	value, err := store.Get(context.Background(), "blog/access_token")
	require.NoError(t, err)
	assert.Equal(t, "token-1", value)
	assert.Equal(t, []string{"show", "blog/access_token"}, fake.calls[0])
}

func TestDeleteForcesRemoval(t *testing.T) {
	fake := &fakeRun{}
	store := &Store{run: fake.run}

	require.NoError(t, store.Delete(context.Background(), "blog/access_token"))
	assert.Equal(t, []string{"rm", "-f", "blog/access_token"}, fake.calls[0])
}

func TestErrorsIncludeStderr(t *testing.T) {
	fake := &fakeRun{err: errors.New("exit status 1"), stderr: "gpg: decryption failed"}
	store := &Store{run: fake.run}

	_, err := store.Get(context.Background(), "blog/access_token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gpg: decryption failed")
}

func TestUnavailableCommandSurfacesSentinel(t *testing.T) {
	fake := &fakeRun{err: ErrUnavailable}
	store := &Store{run: fake.run}

	err := store.Put(context.Background(), "blog/access_token", "token-1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCancelledContextShortCircuits(t *testing.T) {
	fake := &fakeRun{}
	store := &Store{run: fake.run}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, "blog/access_token")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fake.calls)
}
