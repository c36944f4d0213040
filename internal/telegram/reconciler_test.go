package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarybala/bot/internal/service"
)

type push struct {
	text  string
	final bool
}

// pushRecorder captures every display update and optionally fails pushes.
type pushRecorder struct {
	pushes []push
	fail   map[int]error // call index -> error
	calls  int
}

func (p *pushRecorder) fn(_ context.Context, text string, final bool) error {
	idx := p.calls
	p.calls++
	if err, ok := p.fail[idx]; ok {
		return err
	}
	p.pushes = append(p.pushes, push{text: text, final: final})
	return nil
}

// fakeClock returns each scheduled time in order, then keeps returning the
// last one. The reconciler reads the clock once per considered snapshot and
// once more after a successful push.
type fakeClock struct {
	times []time.Time
	idx   int
}

func (c *fakeClock) now() time.Time {
	if c.idx < len(c.times) {
		t := c.times[c.idx]
		c.idx++
		return t
	}
	return c.times[len(c.times)-1]
}

var testBase = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func at(offsets ...time.Duration) *fakeClock {
	clk := &fakeClock{}
	for _, off := range offsets {
		clk.times = append(clk.times, testBase.Add(off))
	}
	return clk
}

func newTestReconciler(rec *pushRecorder, clk *fakeClock) *Reconciler {
	return &Reconciler{
		minInterval: time.Second,
		burstChars:  100,
		push:        rec.fn,
		now:         clk.now,
	}
}

func feed(snaps ...service.Snapshot) <-chan service.Snapshot {
	ch := make(chan service.Snapshot, len(snaps))
	for _, s := range snaps {
		ch <- s
	}
	close(ch)
	return ch
}

func TestReconcilerThrottlesWithinInterval(t *testing.T) {
	t.Parallel()

	rec := &pushRecorder{}
	r := newTestReconciler(rec, at(0))

	// All snapshots arrive inside one interval with small growth: only the
	// first is pushed live, the rest collapse into the final flush.
	final := r.Run(context.Background(), feed(
		service.Snapshot{Text: "пр"},
		service.Snapshot{Text: "прив"},
		service.Snapshot{Text: "привет"},
	))

	require.NoError(t, final.Err)
	assert.Equal(t, "привет", final.Text)
	require.Len(t, rec.pushes, 2)
	assert.Equal(t, push{text: "пр", final: false}, rec.pushes[0])
	assert.Equal(t, push{text: "привет", final: true}, rec.pushes[1])
}

func TestReconcilerPushesAfterInterval(t *testing.T) {
	t.Parallel()

	rec := &pushRecorder{}
	// First snapshot is pushed at t=0; the second arrives 500ms later and
	// is skipped; the third arrives past the interval and is pushed.
	clk := at(0, 0, 500*time.Millisecond, 1100*time.Millisecond, 1100*time.Millisecond)
	r := newTestReconciler(rec, clk)

	final := r.Run(context.Background(), feed(
		service.Snapshot{Text: "a"},
		service.Snapshot{Text: "ab"},
		service.Snapshot{Text: "abc"},
	))

	require.NoError(t, final.Err)
	assert.Equal(t, "abc", final.Text)
	require.Len(t, rec.pushes, 3)
	assert.Equal(t, "a", rec.pushes[0].text)
	assert.Equal(t, "abc", rec.pushes[1].text)
	assert.False(t, rec.pushes[1].final)
	assert.True(t, rec.pushes[2].final)
}

func TestReconcilerBurstOverridesInterval(t *testing.T) {
	t.Parallel()

	rec := &pushRecorder{}
	r := newTestReconciler(rec, at(0))

	big := make([]rune, 150)
	for i := range big {
		big[i] = 'я'
	}

	// Second snapshot arrives instantly but grows past burstChars runes, so
	// it is pushed despite the interval not having elapsed.
	final := r.Run(context.Background(), feed(
		service.Snapshot{Text: "a"},
		service.Snapshot{Text: "a" + string(big)},
	))

	require.NoError(t, final.Err)
	require.Len(t, rec.pushes, 3)
	assert.Equal(t, "a", rec.pushes[0].text)
	assert.Equal(t, "a"+string(big), rec.pushes[1].text)
	assert.False(t, rec.pushes[1].final)
	assert.True(t, rec.pushes[2].final)
}

func TestReconcilerAlwaysFlushesFinal(t *testing.T) {
	t.Parallel()

	rec := &pushRecorder{}
	r := newTestReconciler(rec, at(0))

	// A single snapshot is pushed live and then flushed again as final, so
	// the terminal render can drop the cursor.
	final := r.Run(context.Background(), feed(service.Snapshot{Text: "готово"}))

	assert.Equal(t, "готово", final.Text)
	require.Len(t, rec.pushes, 2)
	assert.Equal(t, push{text: "готово", final: false}, rec.pushes[0])
	assert.Equal(t, push{text: "готово", final: true}, rec.pushes[1])
}

func TestReconcilerPushFailureIsSkip(t *testing.T) {
	t.Parallel()

	rec := &pushRecorder{fail: map[int]error{0: errors.New("flood control")}}
	// First push fails; the second snapshot arrives past the interval and
	// retries with the newer text.
	clk := at(0, 2*time.Second, 2*time.Second)
	r := newTestReconciler(rec, clk)

	final := r.Run(context.Background(), feed(
		service.Snapshot{Text: "a"},
		service.Snapshot{Text: "ab"},
	))

	assert.Equal(t, "ab", final.Text)
	require.Len(t, rec.pushes, 2)
	assert.Equal(t, "ab", rec.pushes[0].text)
	assert.True(t, rec.pushes[1].final)
}

func TestReconcilerErrorSnapshotReachesFinalFlush(t *testing.T) {
	t.Parallel()

	rec := &pushRecorder{}
	r := newTestReconciler(rec, at(0))

	errAPI := errors.New("quota exceeded")
	final := r.Run(context.Background(), feed(
		service.Snapshot{Text: "Ошибка API: quota exceeded", Err: errAPI},
	))

	assert.ErrorIs(t, final.Err, errAPI)
	assert.Equal(t, "Ошибка API: quota exceeded", final.Text)
	// No live push for the error snapshot, only the final flush.
	require.Len(t, rec.pushes, 1)
	assert.True(t, rec.pushes[0].final)
	assert.Equal(t, "Ошибка API: quota exceeded", rec.pushes[0].text)
}
