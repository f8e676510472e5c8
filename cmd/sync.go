package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nvkalinin/week-of-month/log"
)

type SyncCmd struct {
	ServerUrl   string        `long:"server-url" short:"s" env:"SERVER_URL" value-name:"str" default:"http://localhost" description:"URL сервера с REST API."`
	AdminPasswd string        `long:"passwd" short:"p" env:"WEB_ADMIN_PASSWD" value-name:"str" description:"Пароль пользователя admin."`
	Timeout     time.Duration `long:"timeout" short:"t" env:"TIMEOUT" value-name:"duration" default:"60s" description:"Макс. время выполнения запроса."`
	Years       []int         `long:"year" short:"y" env:"YEAR" env-delim:"," value-name:"int" required:"true" description:"Год, за который нужно пересчитать календарь. Можно указывать несколько раз."`
}

func (s *SyncCmd) Execute(args []string) error {
	ystr := make([]string, len(s.Years))
	for i, y := range s.Years {
		ystr[i] = strconv.Itoa(y)
	}
	form := url.Values{"y": ystr}

	cl := adminClient{serverUrl: s.ServerUrl, passwd: s.AdminPasswd, timeout: s.Timeout}
	resp, err := cl.do(http.MethodPost, "/api/admin/sync", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sync error: %w", err)
	}
	defer closeBody(resp)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("cannot read response: %w", err)
	}
	log.Printf("[DEBUG] sync resp body=%s", respBody)

	// Ключ — год в том виде, как его получил сервер, значение — "ok" или текст ошибки.
	res := map[string]string{}
	if err := json.Unmarshal(respBody, &res); err != nil {
		return fmt.Errorf("cannot parse response: %w", err)
	}

	years := make([]string, 0, len(res))
	for y := range res {
		years = append(years, y)
	}
	sort.Strings(years)

	failed := 0
	for _, y := range years {
		if res[y] == "ok" {
			log.Printf("[INFO] year %s: ok", y)
		} else {
			log.Printf("[ERROR] year %s: %s", y, res[y])
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d years failed to sync", failed, len(years))
	}
	return nil
}
