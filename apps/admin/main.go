package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/preskool/core"
	"github.com/trezcool/preskool/services/logger"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	cli := newCommandLine(conf, logger, os.Stdin, os.Stdout)
	if err := cli.run(os.Args); err != nil {
		switch {
		case err == errHelp:
		case errors.Cause(err) == errCancelled:
			fmt.Fprintln(os.Stderr, "Cancelled.")
		default:
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
