package calendar

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nvkalinin/week-of-month/source"
	"github.com/nvkalinin/week-of-month/store"
	"github.com/nvkalinin/week-of-month/week"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type SrcMock map[int]store.Months

func (s SrcMock) GetYear(y int) (store.Months, error) {
	months, ok := s[y]
	if !ok {
		return nil, fmt.Errorf("no such year: %d", y)
	}
	return months, nil
}

type StoreMock struct {
	mu    sync.Mutex
	years map[int]store.Months
}

func (s *StoreMock) PutYear(y int, m store.Months) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.years[y] = m
	return nil
}

func (s *StoreMock) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.years)
}

func newStoreMock() *StoreMock {
	return &StoreMock{years: map[int]store.Months{}}
}

func TestProcessor_UpdateCalendar(t *testing.T) {
	tmpStore := newStoreMock()

	p, stop := makeProcessor(ProcOpts{
		Src:   source.NewISO(),
		Store: tmpStore,
	})
	defer stop()

	err := p.UpdateCalendar(2023)
	require.NoError(t, err)

	require.Contains(t, tmpStore.years, 2023)
	jan := tmpStore.years[2023][time.January]
	assert.Len(t, jan, 31)
	assert.Equal(t, store.Day{
		WeekDay: store.Sunday,
		Week:    week.Result{Year: 2022, Month: time.December, Week: 5},
	}, jan[1])
}

func TestProcessor_UpdateCalendar_errors(t *testing.T) {
	tmpStore := newStoreMock()
	src := SrcMock{2023: {}}

	p, stop := makeProcessor(ProcOpts{Src: src, Store: tmpStore})
	defer stop()

	err := p.UpdateCalendar(2022)
	assert.ErrorContains(t, err, "no such year")

	err = p.UpdateCalendar(2023)
	assert.ErrorContains(t, err, "empty year")

	err = p.UpdateCalendar(0)
	assert.ErrorContains(t, err, "invalid year")

	assert.Equal(t, 0, tmpStore.len())
}

func TestProcessor_RunUpdates(t *testing.T) {
	tmpStore := newStoreMock()

	p, stop := makeProcessor(ProcOpts{
		Src:      source.NewISO(),
		Store:    tmpStore,
		UpdateAt: time.Now().Add(500 * time.Millisecond),
	})
	defer stop()

	go p.RunUpdates()
	assert.Equal(t, 0, tmpStore.len())

	time.Sleep(1000 * time.Millisecond)
	assert.Equal(t, 2, tmpStore.len())
}

func TestProcessor_Shutdown(t *testing.T) {
	p := NewProcessor(ProcOpts{Src: source.NewISO(), Store: newStoreMock()})
	go p.RunUpdates()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))

	// Повторный вызов не должен паниковать.
	require.NoError(t, p.Shutdown(ctx))
}

func makeProcessor(opts ProcOpts) (p *Processor, stop func()) {
	p = NewProcessor(opts)
	return p, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_ = p.Shutdown(ctx)
	}
}
