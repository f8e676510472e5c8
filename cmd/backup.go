package cmd

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"time"

	"github.com/nvkalinin/week-of-month/log"
)

type BackupCmd struct {
	ServerUrl   string        `long:"server-url" short:"s" env:"SERVER_URL" default:"http://localhost" description:"URL сервера с REST API."`
	AdminPasswd string        `long:"passwd" short:"p" env:"WEB_ADMIN_PASSWD" description:"Пароль пользователя admin."`
	OutFile     string        `long:"out" short:"o" env:"OUT" description:"Путь к файлу, куда сохранить бекап. По умолчанию — имя, предложенное сервером, или cal_YYYY-MM-DD.bolt.gz"`
	Timeout     time.Duration `long:"timeout" short:"t" env:"TIMEOUT" default:"600s" description:"Макс. время выполнения запроса."`
}

func (b *BackupCmd) Execute(args []string) error {
	cl := adminClient{serverUrl: b.ServerUrl, passwd: b.AdminPasswd, timeout: b.Timeout}
	resp, err := cl.do(http.MethodGet, "/api/admin/backup", "", http.NoBody)
	if err != nil {
		return fmt.Errorf("backup error: %w", err)
	}
	defer closeBody(resp)

	fname := b.outFile(resp.Header)
	if err := saveTo(fname, resp.Body); err != nil {
		// Недописанный бекап хуже, чем никакого.
		if rmErr := os.Remove(fname); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("[WARN] cannot remove partial backup %s: %v", fname, rmErr)
		}
		return err
	}
	return nil
}

func saveTo(fname string, r io.Reader) error {
	f, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", fname, err)
	}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("cannot save backup to %s: %w", fname, err)
	}

	log.Printf("[INFO] backup saved to %s (%d bytes)", fname, n)
	return nil
}

// outFile выбирает имя файла: --out, затем filename из Content-Disposition, затем имя по текущей дате.
func (b *BackupCmd) outFile(h http.Header) string {
	if b.OutFile != "" {
		return b.OutFile
	}

	if _, params, err := mime.ParseMediaType(h.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	return fmt.Sprintf("cal_%s.bolt.gz", time.Now().Format("2006-01-02"))
}
