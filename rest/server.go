package rest

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/nvkalinin/week-of-month/log"
	"github.com/nvkalinin/week-of-month/store"
	"github.com/nvkalinin/week-of-month/week"
)

type Store interface {
	FindDay(y int, mon time.Month, d int) (*store.Day, bool)
	FindMonth(y int, mon time.Month) (store.Days, bool)
	FindYear(y int) (store.Months, bool)
}

// Backuper реализуют хранилища, которые умеют делать резервную копию (bolt).
type Backuper interface {
	Backup(w io.Writer) error
}

type Updater interface {
	UpdateCalendar(y int) error
}

type Server struct {
	Store   Store
	Updater Updater
	Opts    Opts

	mu     sync.Mutex
	srv    *http.Server
	closed bool // Shutdown вызван раньше Run.
}

type Opts struct {
	Listen      string
	LogRequests bool
	AdminPasswd string // Если пусто, /api/admin/* недоступно.

	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	RateLimiter bool
	ReqLimit    int
	LimitWindow time.Duration
}

func (s *Server) Run() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return http.ErrServerClosed
	}
	s.srv = &http.Server{
		Addr:              s.Opts.Listen,
		Handler:           s.routes(),
		ReadTimeout:       s.Opts.ReadTimeout,
		ReadHeaderTimeout: s.Opts.ReadHeaderTimeout,
		WriteTimeout:      s.Opts.WriteTimeout,
		IdleTimeout:       s.Opts.IdleTimeout,
	}
	srv := s.srv
	s.mu.Unlock()

	log.Printf("[INFO] rest server listening on %s", s.Opts.Listen)
	return srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.closed = true
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("rest shutdown: %w", err)
	}
	log.Printf("[DEBUG] rest server stopped")
	return nil
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()

	if s.Opts.LogRequests {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	r.Route("/api", func(r chi.Router) {
		if s.Opts.RateLimiter {
			r.Use(httprate.LimitByIP(s.Opts.ReqLimit, s.Opts.LimitWindow))
		}

		r.Get("/week", s.weekCtrl)
		r.Get("/weeks/{y}/{m}", s.weeksCtrl)

		r.Get("/cal/{y}", s.yearCtrl)
		r.Get("/cal/{y}/{m}", s.monthCtrl)
		r.Get("/cal/{y}/{m}/{d}", s.dayCtrl)

		if s.Opts.AdminPasswd != "" {
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.BasicAuth("admin", map[string]string{"admin": s.Opts.AdminPasswd}))
				r.Post("/sync", s.syncCtrl)
				r.Get("/backup", s.backupCtrl)
			})
		}
	})

	return r
}

func (s *Server) weekCtrl(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		sendErrorJson(w, 400, "date is required")
		return
	}

	res, err := week.OfString(date)
	if err != nil {
		sendErrorJson(w, 400, err.Error())
		return
	}

	sendJsonResponse(w, res)
}

type weekSpan struct {
	Week  int    `json:"week"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func (s *Server) weeksCtrl(w http.ResponseWriter, r *http.Request) {
	y, err1 := yearParam(r)
	m, err2 := monthParam(r)
	if err := errors.Join(err1, err2); err != nil {
		sendErrorJson(w, 400, "invalid date")
		return
	}

	weeks := week.Weeks(y, m)
	resp := make([]weekSpan, len(weeks))
	for i, wk := range weeks {
		resp[i] = weekSpan{
			Week:  wk.Week,
			Start: wk.Start.Format("2006-01-02"),
			End:   wk.End.Format("2006-01-02"),
		}
	}

	sendJsonResponse(w, resp)
}

func (s *Server) yearCtrl(w http.ResponseWriter, r *http.Request) {
	y, err := yearParam(r)
	if err != nil {
		sendErrorJson(w, 400, "invalid year")
		return
	}

	year, found := s.Store.FindYear(y)
	if !found {
		sendErrorJson(w, 404, "year not found")
		return
	}

	sendJsonResponse(w, year)
}

func (s *Server) monthCtrl(w http.ResponseWriter, r *http.Request) {
	y, err1 := yearParam(r)
	m, err2 := monthParam(r)
	if err := errors.Join(err1, err2); err != nil {
		sendErrorJson(w, 400, "invalid date")
		return
	}

	month, found := s.Store.FindMonth(y, m)
	if !found {
		sendErrorJson(w, 404, "month not found")
		return
	}

	sendJsonResponse(w, month)
}

func (s *Server) dayCtrl(w http.ResponseWriter, r *http.Request) {
	y, err1 := yearParam(r)
	m, err2 := monthParam(r)
	d, err3 := dayParam(r)
	if err := errors.Join(err1, err2, err3); err != nil {
		sendErrorJson(w, 400, "invalid date")
		return
	}

	day, found := s.Store.FindDay(y, m, d)
	if !found {
		sendErrorJson(w, 404, "date not found")
		return
	}

	sendJsonResponse(w, day)
}

// syncCtrl пересчитывает календари за годы из параметров y и возвращает результат по каждому году.
func (s *Server) syncCtrl(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		sendErrorJson(w, 400, "invalid form")
		return
	}

	years := r.PostForm["y"]
	if len(years) == 0 {
		sendErrorJson(w, 400, "no years to sync")
		return
	}

	res := make(map[string]string, len(years))
	for _, ystr := range years {
		y, err := strconv.Atoi(ystr)
		if err != nil || y <= 0 {
			res[ystr] = "invalid year"
			continue
		}

		if err := s.Updater.UpdateCalendar(y); err != nil {
			log.Printf("[WARN] rest sync year %d: %+v", y, err)
			res[ystr] = err.Error()
			continue
		}
		res[ystr] = "ok"
	}

	sendJsonResponse(w, res)
}

func (s *Server) backupCtrl(w http.ResponseWriter, r *http.Request) {
	b, ok := s.Store.(Backuper)
	if !ok {
		sendErrorJson(w, 501, "store engine does not support backups")
		return
	}

	fname := fmt.Sprintf("cal_%s.bolt.gz", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/gzip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fname))
	w.WriteHeader(200)

	gz := gzip.NewWriter(w)
	if err := b.Backup(gz); err != nil {
		// Заголовки уже отправлены, остается только оборвать ответ.
		log.Printf("[ERROR] rest backup: %+v", err)
		return
	}
	if err := gz.Close(); err != nil {
		log.Printf("[WARN] rest cannot finish backup: %+v", err)
	}
}

func intParam(r *http.Request, param string) (int, error) {
	strVal := chi.URLParam(r, param)
	return strconv.Atoi(strVal)
}

func yearParam(r *http.Request) (int, error) {
	y, err := intParam(r, "y")
	if err != nil {
		return 0, err
	}

	if y <= 0 {
		return 0, fmt.Errorf("invalid year")
	}
	return y, nil
}

func monthParam(r *http.Request) (time.Month, error) {
	m, err := intParam(r, "m")
	if err != nil {
		return 0, err
	}

	if m < int(time.January) || m > int(time.December) {
		return 0, fmt.Errorf("invalid month number")
	}
	return time.Month(m), nil
}

func dayParam(r *http.Request) (int, error) {
	d, err := intParam(r, "d")
	if err != nil {
		return 0, err
	}

	if d < 1 || d > 31 {
		return 0, fmt.Errorf("invalid day number")
	}
	return d, nil
}

func sendJsonResponse(w http.ResponseWriter, data any) {
	respJson, err := json.Marshal(data)
	if err != nil {
		log.Printf("[WARN] cannot marshal response data: %+v", err)
		sendErrorJson(w, 500, "cannot marshal response data")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)

	if _, err = w.Write(respJson); err != nil {
		log.Printf("[WARN] cannot write response data: %+v", err)
	}
}

func sendErrorJson(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	restErr := &struct {
		Msg string `json:"msg"`
	}{msg}

	errJson, err := json.Marshal(restErr)
	if err != nil {
		log.Printf("[WARN] cannot marshal rest error: %+v", err)
		return
	}

	if _, err = w.Write(errJson); err != nil {
		log.Printf("[WARN] cannot write rest error: %+v", err)
	}
}
