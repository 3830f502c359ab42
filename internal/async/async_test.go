package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/domain"
)

func TestFuture_ResolvesOnce(t *testing.T) {
	f := NewFuture[int]()

	assert.True(t, f.Resolve(1, nil))
	assert.False(t, f.Resolve(2, errors.New("late")))

	select {
	case <-f.Done():
	default:
		t.Fatal("future not done after Resolve")
	}
	v, err := f.Await(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestFuture_ThenDeliversOnceAndDetaches(t *testing.T) {
	q := NewQueue()
	f := NewFuture[string]()

	var calls int
	f.Then(q, func(v string, err error) {
		calls++
		assert.Equal(t, "done", v)
	})

	f.Resolve("done", nil)
	f.Resolve("again", nil)

	assert.Equal(t, 1, q.RunPending())
	assert.Equal(t, 1, calls)
	assert.Empty(t, f.waiters)
}

func TestFuture_ThenAfterResolvePostsImmediately(t *testing.T) {
	q := NewQueue()
	f := Resolved(7, nil)

	var got int
	f.Then(q, func(v int, err error) { got = v })

	require.Equal(t, 1, q.Len())
	q.RunPending()
	assert.Equal(t, 7, got)
}

func TestFuture_AwaitHonoursContext(t *testing.T) {
	f := NewFuture[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSubmit_RecoversPanic(t *testing.T) {
	p := NewPool(1, nil)
	f := Submit(p, func() (int, error) { panic("boom") })

	_, err := f.Await(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestPool_LimitsConcurrency(t *testing.T) {
	p := NewPool(2, nil)

	var running, peak int32
	for i := 0; i < 8; i++ {
		p.Go(func() {
			n := atomic.AddInt32(&running, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
		})
	}
	p.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestSignal_LastWriteWins(t *testing.T) {
	s := NewSignal("")

	var seen []string
	cancel := s.Subscribe(func(v string) { seen = append(seen, v) })

	s.Set("first")
	s.Set("second")
	cancel()
	s.Set("third")

	assert.Equal(t, []string{"first", "second"}, seen)
	assert.Equal(t, "third", s.Get())
}

func TestSerial_RunsInOrder(t *testing.T) {
	s := NewSerial(nil)
	defer s.Close()

	var mu sync.Mutex
	var order []int
	for i := 0; i < 50; i++ {
		i := i
		require.NoError(t, s.Enqueue(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}
	require.NoError(t, s.Flush())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 50)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestSerial_CallAndClose(t *testing.T) {
	s := NewSerial(nil)

	v, err := Call(s, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	s.Close()
	assert.ErrorIs(t, s.Enqueue(func() {}), domain.ErrClosed)
	_, err = Call(s, func() (int, error) { return 0, nil })
	assert.ErrorIs(t, err, domain.ErrClosed)
}

func TestQueue_RunNextTimesOut(t *testing.T) {
	q := NewQueue()
	assert.False(t, q.RunNext(5*time.Millisecond))

	go q.Post(func() {})
	assert.True(t, q.RunNext(time.Second))
}

func TestQueue_ReadyAfterPost(t *testing.T) {
	q := NewQueue()
	var ran []int
	go func() {
		q.Post(func() { ran = append(ran, 1) })
		q.Post(func() { ran = append(ran, 2) })
	}()

	select {
	case <-q.Ready():
	case <-time.After(time.Second):
		t.Fatal("queue never signalled")
	}
	require.Eventually(t, func() bool { return q.Len() == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, 2, q.RunPending())
	assert.Equal(t, []int{1, 2}, ran)
}
