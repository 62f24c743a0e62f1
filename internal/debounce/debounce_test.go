package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLastWriterWins(t *testing.T) {
	d := New(time.Millisecond)

	t1 := d.Schedule("a")
	t2 := d.Schedule("ab")
	t3 := d.Schedule("abc")

	_, ok := d.Fire(t1)
	assert.False(t, ok)
	_, ok = d.Fire(t2)
	assert.False(t, ok)

	v, ok := d.Fire(t3)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	_, ok = d.Fire(t3)
	assert.False(t, ok, "a ticket fires at most once")
}

func TestCancel(t *testing.T) {
	d := New(time.Millisecond)
	tk := d.Schedule("x")
	d.Cancel()

	_, ok := d.Fire(tk)
	assert.False(t, ok)
}

func TestAfterOnlyLatestRuns(t *testing.T) {
	d := New(20 * time.Millisecond)

	var mu sync.Mutex
	var got []string
	done := make(chan struct{}, 3)
	record := func(v string) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
		done <- struct{}{}
	}

	d.After("a", record)
	d.After("ab", record)
	d.After("abc", record)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced callback never ran")
	}
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"abc"}, got)
}
