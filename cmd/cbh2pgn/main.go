package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/herohde/cbh2pgn/pkg/convert"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(1, 0, 0)

var (
	input    = flag.String("input", "", "Filename of the .cbh database (base name or .cbh)")
	output   = flag.String("output", "", "Filename of the output .pgn file")
	parallel = flag.Int("parallel", -1, "Number of parallel workers. Omit for sequential mode; 0 = cpu count minus 2")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: cbh2pgn -input PATH -output PATH [options]

CBH2PGN converts a ChessBase database (.cbh/.cbg/.cbp/.cbt) into a PGN file.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	if *input == "" || *output == "" {
		flag.Usage()
		logw.Exitf(ctx, "Input and output filenames are required")
	}

	base := strings.TrimSuffix(*input, ".cbh")
	out := *output
	if !strings.HasSuffix(out, ".pgn") {
		out += ".pgn"
	}

	logw.Infof(ctx, "cbh2pgn %v", version)
	logw.Infof(ctx, "input file...: %v", base)
	logw.Infof(ctx, "output file..: %v", out)

	t0 := time.Now()

	var sum *convert.Summary
	var err error
	if *parallel >= 0 {
		sum, err = convert.RunParallel(ctx, base, out, *parallel)
	} else {
		sum, err = convert.RunSequential(ctx, base, out)
	}
	if err != nil {
		logw.Exitf(ctx, "Conversion failed: %v", err)
	}

	elapsed := time.Since(t0)
	rate := float64(sum.Games) / elapsed.Seconds()

	logw.Infof(ctx, "done!")
	logw.Infof(ctx, "  total games.: %v", sum.Games)
	logw.Infof(ctx, "  total time..: %.1fs (%.0f games/sec)", elapsed.Seconds(), rate)
	if fi, err := os.Stat(out); err == nil {
		logw.Infof(ctx, "  output size.: %.2f GB", float64(fi.Size())/(1<<30))
	}
	logw.Infof(ctx, "  errors logged: %v", len(sum.Issues))
	for _, issue := range sum.Issues {
		logw.Infof(ctx, "  %v", issue)
	}
}
