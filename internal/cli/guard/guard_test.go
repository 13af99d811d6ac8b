package guard

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snackshop-dev/snackadmin/internal/cli/auth"
	"github.com/snackshop-dev/snackadmin/internal/cli/client"
)

// fakeSession lets tests decide when bootstrapping ends
type fakeSession struct {
	mu    sync.Mutex
	s     auth.Session
	ready chan struct{}
}

func newFakeSession() *fakeSession {
	return &fakeSession{s: auth.Session{Loading: true}, ready: make(chan struct{})}
}

func (f *fakeSession) Snapshot() auth.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.s
}

func (f *fakeSession) Ready() <-chan struct{} { return f.ready }

func (f *fakeSession) resolve(user *client.User) {
	f.mu.Lock()
	f.s = auth.Session{User: user}
	if user != nil {
		f.s.Token = "abc"
	}
	f.mu.Unlock()
	close(f.ready)
}

type countingIndicator struct {
	mu     sync.Mutex
	starts int
	stops  int
}

func (c *countingIndicator) Start() { c.mu.Lock(); c.starts++; c.mu.Unlock() }
func (c *countingIndicator) Stop()  { c.mu.Lock(); c.stops++; c.mu.Unlock() }

func TestGuard_NeverRendersWhileLoading(t *testing.T) {
	for _, user := range []*client.User{nil, {ID: "1", Role: client.RoleAdmin}} {
		sess := newFakeSession()
		ind := &countingIndicator{}
		g := New(sess, ind)

		var rendered sync.WaitGroup
		rendered.Add(1)
		renderedWhileLoading := false
		done := make(chan error, 1)

		go func() {
			done <- g.Render(context.Background(), func(ctx context.Context) error {
				renderedWhileLoading = sess.Snapshot().Loading
				rendered.Done()
				return nil
			})
		}()

		select {
		case <-done:
			t.Fatal("guard decided while loading")
		case <-time.After(20 * time.Millisecond):
		}

		sess.resolve(user)
		err := <-done

		if user == nil {
			assert.ErrorIs(t, err, ErrLoginRequired)
		} else {
			require.NoError(t, err)
			rendered.Wait()
			assert.False(t, renderedWhileLoading)
		}
		assert.Equal(t, 1, ind.starts)
		assert.Equal(t, 1, ind.stops)
	}
}

func TestGuard_CheckAfterResolution(t *testing.T) {
	sess := newFakeSession()
	sess.resolve(&client.User{ID: "1", Role: client.RoleAdmin})
	ind := &countingIndicator{}

	d, err := New(sess, ind).Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Allow, d)
	assert.Equal(t, 0, ind.starts)
}

func TestGuard_ReevaluatedOnEveryCheck(t *testing.T) {
	sess := newFakeSession()
	sess.resolve(&client.User{ID: "1"})
	g := New(sess, nil)

	d, _ := g.Check(context.Background())
	assert.Equal(t, Allow, d)

	sess.mu.Lock()
	sess.s = auth.Session{}
	sess.mu.Unlock()

	d, _ = g.Check(context.Background())
	assert.Equal(t, RedirectLogin, d)
}

func TestGuard_ContextCanceledWhileLoading(t *testing.T) {
	g := New(newFakeSession(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	called := false
	err := g.Render(ctx, func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, called)
}

func TestLoading_PrintsOncePerWait(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoading(&buf, "Checking session...")

	l.Start()
	l.Start()
	l.Stop()

	assert.Equal(t, "Checking session...\n", buf.String())
}
