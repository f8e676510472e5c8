package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nvkalinin/week-of-month/week"
	"gopkg.in/yaml.v3"
)

type FormatType string

var (
	FormatJson FormatType = "json"
	FormatYaml FormatType = "yaml"
)

// ResolveCmd считает недели месяца локально, сервер не нужен.
type ResolveCmd struct {
	Format FormatType `long:"format" short:"f" env:"FORMAT" value-name:"type" choice:"json" choice:"yaml" default:"json" description:"Формат вывода."`

	Args struct {
		Dates []string `positional-arg-name:"date" required:"1" description:"Дата: YYYY-MM-DD, YYYYMMDD, YYYY-MM-DDThh:mm:ss, RFC 3339 или unix timestamp в миллисекундах."`
	} `positional-args:"yes" required:"yes"`

	out io.Writer
}

type resolved struct {
	Date string `json:"date" yaml:"date"`
	week.Result `yaml:",inline"`
}

func (r *ResolveCmd) Execute(args []string) error {
	res := make([]resolved, 0, len(r.Args.Dates))
	for _, d := range r.Args.Dates {
		wr, err := week.OfString(d)
		if err != nil {
			return err
		}
		res = append(res, resolved{Date: d, Result: wr})
	}

	return r.print(res)
}

func (r *ResolveCmd) print(res []resolved) error {
	out := r.out
	if out == nil {
		out = os.Stdout
	}

	switch r.Format {
	case FormatYaml:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("cannot write yaml: %w", err)
		}
		return enc.Close()
	case FormatJson, "":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("cannot write json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %s", r.Format)
	}
}
