package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/corvid-chess/corvid/pkg/engine"
	"github.com/corvid-chess/corvid/pkg/engine/uci"
	"github.com/corvid-chess/corvid/pkg/nnue"
	"github.com/seekerror/logw"
)

var (
	network = flag.String("network", "corvid.nnue", "Path to the NNUE network file")
	hash    = flag.Uint("hash", 16, "Transposition table size in MiB")
	threads = flag.Uint("threads", 1, "Number of lazy-SMP search threads")
	bench   = flag.Bool("bench", false, "Run the fixed benchmark suite and exit")
	version = flag.Bool("version", false, "Print version and exit")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: corvid [options]

CORVID is a UCI chess engine with an NNUE evaluator.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	net, err := nnue.LoadNetwork(*network)
	if err != nil {
		logw.Exitf(ctx, "failed to load network %v: %v", *network, err)
	}

	e := engine.New(ctx, "corvid", "corvid-chess", net, engine.WithOptions(engine.Options{
		Hash:    *hash,
		Threads: *threads,
	}))

	if *version {
		fmt.Println(e.Name())
		return
	}

	if *bench {
		start := time.Now()
		results := engine.Bench(ctx, net, *hash)
		fmt.Println(engine.FormatBenchSummary(results, time.Since(start)))
		return
	}

	in := engine.ReadStdinLines(ctx)
	first, ok := <-in
	if !ok {
		return
	}
	if first != uci.ProtocolName {
		flag.Usage()
		logw.Exitf(ctx, "unsupported protocol %q: only %q is supported", first, uci.ProtocolName)
	}

	driver, out := uci.NewDriver(ctx, e, in)
	go engine.WriteStdoutLines(ctx, out)

	<-driver.Closed()
}
