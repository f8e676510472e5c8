package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/nvkalinin/week-of-month/cmd"
	"github.com/nvkalinin/week-of-month/log"
)

type CLI struct {
	Debug bool `short:"d" long:"debug" env:"DEBUG" description:"Выводить отладочные сообщения в лог."`

	Server  cmd.ServerCmd  `command:"server" description:"Запустить сервер (rest + периодический пересчет календарей)."`
	Resolve cmd.ResolveCmd `command:"resolve" description:"Посчитать неделю месяца для указанных дат."`
	Sync    cmd.SyncCmd    `command:"sync" description:"Пересчитать календари на сервере за указанные годы."`
	Backup  cmd.BackupCmd  `command:"backup" description:"Сделать резервную копию хранилища bolt."`
}

func main() {
	cli := &CLI{}
	// Без flags.PrintErrors: ошибки выводятся ниже, через log.
	parser := flags.NewParser(cli, flags.HelpFlag|flags.PassDoubleDash)
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		log.Setup(cli.Debug)

		if cmd != nil {
			return cmd.Execute(args)
		}
		return nil
	}

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) {
			if flagsErr.Type == flags.ErrHelp {
				fmt.Fprintln(os.Stdout, flagsErr.Message)
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, flagsErr.Message)
			os.Exit(1)
		}
		log.Fatalf("[ERROR] %v", err)
	}
}
