package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/nvkalinin/week-of-month/calendar"
	"github.com/nvkalinin/week-of-month/log"
	"github.com/nvkalinin/week-of-month/rest"
	"github.com/nvkalinin/week-of-month/source"
	"github.com/nvkalinin/week-of-month/store"
	"github.com/nvkalinin/week-of-month/store/engine"
	"golang.org/x/sync/errgroup"
)

type EngineType string

var (
	EngineMemory EngineType = "memory"
	EngineBolt   EngineType = "bolt"
)

type ServerCmd struct {
	SyncAt      string   `long:"sync-at" env:"SYNC_AT" value-name:"hh:mm[:ss]" description:"В какое время ежедневно пересчитывать календари за текущий и следующий год. Если не указано, автоматический пересчет отключен."`
	SyncOnStart []string `long:"sync-on-start" env:"SYNC_ON_START" env-delim:"," value-name:"year" default:"current" default:"next" description:"За какие годы посчитать календари при запуске. Можно указывать числа, 'current' — текущий год, 'next' — следующий год. 'none' — не считать при запуске."`

	Web struct {
		Listen      string `long:"listen" env:"LISTEN" value-name:"addr" default:"0.0.0.0:80" description:"Сетевой адрес для веб-сервера."`
		AccessLog   bool   `long:"access-log" env:"ACCESS_LOG" description:"Логировать все HTTP-запросы."`
		AdminPasswd string `long:"admin-passwd" env:"ADMIN_PASSWD" description:"Пароль пользователя admin для вызова /api/admin/*. Если не задан, /api/admin/* отключено."`

		ReadTimeout       time.Duration `long:"read-timeout" env:"READ_TIMEOUT" value-name:"duration" default:"5s" description:"http.Server ReadTimeout"`
		ReadHeaderTimeout time.Duration `long:"read-header-timeout" env:"READ_HEADER_TIMEOUT" value-name:"duration" default:"5s" description:"http.Server ReadHeaderTimeout"`
		IdleTimeout       time.Duration `long:"idle-timeout" env:"IDLE_TIMEOUT" value-name:"duration" default:"30s" description:"http.Server IdleTimeout"`

		// Бекап bolt может отдаваться долго, поэтому WriteTimeout должен быть достаточно большим.
		WriteTimeout time.Duration `long:"write-timeout" env:"WRITE_TIMEOUT" value-name:"duration" default:"60s" description:"http.Server WriteTimeout"`

		RateLimiter struct {
			ReqLimit    int           `long:"reqs" env:"REQS" value-name:"num" default:"100" description:"Количество запросов с одного IP. Если 0 — rate limiter отключен."`
			LimitWindow time.Duration `long:"window" env:"WINDOW" value-name:"duration" default:"1s" description:"Интервал времени, за который разрешено указанное кол-во запросов."`
		} `group:"Rate Limiter" namespace:"ratelim" env-namespace:"RATE_LIM"`
	} `group:"Web" namespace:"web" env-namespace:"WEB"`

	Store struct {
		Engine EngineType `long:"engine" env:"ENGINE" value-name:"type" choice:"memory" choice:"bolt" default:"bolt" description:"Где хранить посчитанные календари."`

		Bolt struct {
			File string `long:"file" env:"FILE" value-name:"path" default:"cal.bolt" description:"Путь к файлу БД."`
		} `group:"Настройки хранилища bolt" namespace:"bolt" env-namespace:"BOLT"`
	} `group:"Хранилище" namespace:"store" env-namespace:"STORE"`
}

func (s *ServerCmd) Execute(args []string) error {
	a, err := s.makeApp()
	if err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			a.shutdown()
		case <-a.stopped:
		}
	}()

	runErr := a.run()
	a.wait()
	return runErr
}

type Store interface {
	FindDay(y int, mon time.Month, d int) (*store.Day, bool)
	FindMonth(y int, mon time.Month) (store.Days, bool)
	FindYear(y int) (store.Months, bool)
	PutYear(y int, data store.Months) error
}

type app struct {
	srv             *rest.Server
	proc            *calendar.Processor
	store           Store
	autoSync        bool
	syncYears       []int
	syncYearsFinish chan struct{}

	stopOnce sync.Once
	stopped  chan struct{}
}

func (s *ServerCmd) makeApp() (*app, error) {
	a := &app{
		syncYearsFinish: make(chan struct{}),
		stopped:         make(chan struct{}),
	}

	var syncAt time.Time
	var err error
	if s.SyncAt != "" {
		syncAt, err = parseSyncAt(s.SyncAt)
		if err != nil {
			return nil, fmt.Errorf("sync at: %w", err)
		}
		a.autoSync = true
	}

	syncYears, err := parseYears(s.SyncOnStart)
	if err != nil {
		return nil, fmt.Errorf("sync on start: %w", err)
	}
	a.syncYears = syncYears

	a.store, err = s.makeStore()
	if err != nil {
		return nil, err
	}

	a.proc = calendar.NewProcessor(calendar.ProcOpts{
		Src:      source.NewISO(),
		Store:    a.store,
		UpdateAt: syncAt,
	})

	a.srv = &rest.Server{
		Store:   a.store,
		Updater: a.proc,
		Opts: rest.Opts{
			Listen:      s.Web.Listen,
			LogRequests: s.Web.AccessLog,
			AdminPasswd: s.Web.AdminPasswd,

			ReadTimeout:       s.Web.ReadTimeout,
			ReadHeaderTimeout: s.Web.ReadHeaderTimeout,
			WriteTimeout:      s.Web.WriteTimeout,
			IdleTimeout:       s.Web.IdleTimeout,

			RateLimiter: s.Web.RateLimiter.ReqLimit > 0,
			ReqLimit:    s.Web.RateLimiter.ReqLimit,
			LimitWindow: s.Web.RateLimiter.LimitWindow,
		},
	}

	return a, nil
}

func (s *ServerCmd) makeStore() (Store, error) {
	switch s.Store.Engine {
	case EngineMemory:
		return engine.NewMemory(), nil
	case EngineBolt:
		return engine.NewBolt(s.Store.Bolt.File)
	default:
		return nil, fmt.Errorf("unknown store engine %s", s.Store.Engine)
	}
}

func parseSyncAt(val string) (time.Time, error) {
	if t, err := time.Parse("15:04", val); err == nil {
		return t, nil
	}

	t, err := time.Parse("15:04:05", val)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time '%s', it must match pattern hh:mm[:ss]", val)
	}
	return t, nil
}

func parseYears(vals []string) ([]int, error) {
	if len(vals) == 1 && vals[0] == "none" {
		return nil, nil
	}

	years := make(map[int]bool, len(vals))
	ylist := make([]int, 0, len(vals))
	for _, val := range vals {
		var y int
		switch val {
		case "current":
			y = time.Now().Year()
		case "next":
			y = time.Now().Year() + 1
		default:
			var err error
			y, err = strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("invalid year '%s': %w", val, err)
			}
			if y <= 0 {
				return nil, fmt.Errorf("invalid year %d", y)
			}
		}

		if !years[y] {
			years[y] = true
			ylist = append(ylist, y)
		}
	}

	return ylist, nil
}

// run блокируется до остановки приложения. Если веб-сервер не смог запуститься,
// приложение останавливается целиком и run возвращает ошибку запуска.
func (a *app) run() error {
	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		select {
		case <-ctx.Done():
			a.shutdown()
		case <-a.stopped:
		}
		return nil
	})

	if a.autoSync {
		g.Go(func() error {
			a.proc.RunUpdates()
			return nil
		})
	}

	g.Go(func() error {
		syncOnRun(a.proc, a.syncYears, a.syncYearsFinish)
		return nil
	})

	g.Go(func() error {
		if err := a.srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] startup: %v", err)
			return fmt.Errorf("startup: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (a *app) shutdown() {
	a.stopOnce.Do(func() {
		defer close(a.stopped)
		log.Printf("[INFO] shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		g, _ := errgroup.WithContext(ctx)

		if a.autoSync {
			g.Go(func() error {
				return a.proc.Shutdown(ctx)
			})
		}
		g.Go(func() error {
			return a.srv.Shutdown(ctx)
		})
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return fmt.Errorf("sync on run: %w", ctx.Err())
			case <-a.syncYearsFinish:
				return nil
			}
		})

		if err := g.Wait(); err != nil {
			log.Printf("[ERROR] app shutdown: %v", err)
		}

		// Bolt закрываем последним, когда запросы к нему уже завершены.
		if c, ok := a.store.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.Printf("[WARN] app shutdown: %v", err)
			}
		}
	})
}

func (a *app) wait() {
	<-a.stopped
}

func syncOnRun(proc *calendar.Processor, years []int, finished chan<- struct{}) {
	defer close(finished)
	for _, y := range years {
		if err := proc.UpdateCalendar(y); err != nil {
			log.Printf("[WARN] sync on run, year %d: %+v", y, err)
		}
	}
}
