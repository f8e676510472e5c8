package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nvkalinin/week-of-month/log"
	"github.com/nvkalinin/week-of-month/store"
)

type Source interface {
	GetYear(y int) (store.Months, error)
}

type Store interface {
	PutYear(y int, data store.Months) error
}

type ProcOpts struct {
	Src      Source    // Откуда брать календарь на год.
	Store    Store     // Куда сохранять календарь (необязательно, если нужен только метод MakeCalendar).
	UpdateAt time.Time // Используется только время, остальное игнорируется.
}

type Processor struct {
	ProcOpts
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewProcessor(opts ProcOpts) *Processor {
	return &Processor{
		ProcOpts: opts,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// RunUpdates раз в сутки (UpdateAt) пересчитывает календари за текущий и следующий год.
// Блокируется до вызова Shutdown.
func (p *Processor) RunUpdates() {
	defer close(p.done)

	t := time.NewTimer(p.untilNextRun())
	defer t.Stop()

	for {
		select {
		case <-t.C:
			p.UpdateCurrentYears()
			t.Reset(p.untilNextRun())

		case <-p.stopCh:
			return
		}
	}
}

// Shutdown останавливает RunUpdates и ждет его завершения.
func (p *Processor) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() { close(p.stopCh) })

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		log.Printf("[WARN] calendar/proc shutdown timeout")
		return ctx.Err()
	}
}

func (p *Processor) untilNextRun() time.Duration {
	now := time.Now()

	nextRun := time.Date(
		now.Year(), now.Month(), now.Day(),
		p.UpdateAt.Hour(), p.UpdateAt.Minute(), p.UpdateAt.Second(), p.UpdateAt.Nanosecond(),
		time.Local,
	)

	d := time.Until(nextRun)
	if d < 0 {
		d += 24 * time.Hour
	}
	return d
}

func (p *Processor) UpdateCurrentYears() {
	y := time.Now().Year()

	if err := p.UpdateCalendar(y); err != nil {
		log.Printf("[WARN] calendar/proc cannot update %d: %+v", y, err)
	}

	if err := p.UpdateCalendar(y + 1); err != nil {
		log.Printf("[WARN] calendar/proc cannot update %d: %+v", y+1, err)
	}
}

func (p *Processor) UpdateCalendar(y int) error {
	cal, err := p.MakeCalendar(y)
	if err != nil {
		return err
	}

	if err := p.Store.PutYear(y, cal); err != nil {
		return fmt.Errorf("calendar/proc cannot store year %d: %w", y, err)
	}
	log.Printf("[DEBUG] calendar/proc year %d updated", y)
	return nil
}

// MakeCalendar строит календарь на год y.
func (p *Processor) MakeCalendar(y int) (store.Months, error) {
	if y <= 0 {
		return nil, fmt.Errorf("calendar/proc invalid year %d", y)
	}

	cal, err := p.Src.GetYear(y)
	if err != nil {
		return nil, fmt.Errorf("calendar/proc source %T cannot make year %d: %w", p.Src, y, err)
	}
	if len(cal) == 0 {
		return nil, fmt.Errorf("calendar/proc source %T returned empty year %d", p.Src, y)
	}
	return cal, nil
}
