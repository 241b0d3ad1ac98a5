package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/maseology/mmio"
	"github.com/rs/zerolog"

	coastal "github.com/taddyb/coastal-tools"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: coastal-build <controlfile>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	lg := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	tt := mmio.NewTimer()
	if err := coastal.BuildCoastal(flag.Arg(0), lg); err != nil {
		lg.Fatal().Err(err).Msg("build failed")
	}
	tt.Print("build complete!")
}
