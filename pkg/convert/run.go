package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/mathx"
	"golang.org/x/exp/mmap"
)

// Summary is the outcome of a conversion: games written, deleted/non-game
// records passed over, and the issue list for skipped and failed games.
type Summary struct {
	Games   int
	Skipped int
	Issues  []Issue
}

func (s *Summary) merge(o *Summary) {
	s.Games += o.Games
	s.Skipped += o.Skipped
	s.Issues = append(s.Issues, o.Issues...)
}

// Open opens the four database files for the given base path as read-only
// memory maps.
func Open(base string) (*Source, func() error, error) {
	var readers []*mmap.ReaderAt
	closeAll := func() error {
		var ret error
		for _, r := range readers {
			if err := r.Close(); err != nil {
				ret = err
			}
		}
		return ret
	}

	for _, ext := range []string{".cbh", ".cbg", ".cbp", ".cbt"} {
		r, err := mmap.Open(base + ext)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("open %v: %w", base+ext, err)
		}
		readers = append(readers, r)
	}

	src := NewSource(readers[0], int64(readers[0].Len()), readers[1], readers[2], readers[3])
	return src, closeAll, nil
}

// ReportMagic logs the database header id and the producer it implies, if
// recognized. An unknown id is a warning only; conversion proceeds.
func ReportMagic(ctx context.Context, src *Source) {
	magic, err := src.Magic()
	if err != nil {
		logw.Warningf(ctx, "Unreadable database header: %v", err)
		return
	}
	logw.Infof(ctx, "header id: %v", magic)
	switch magic {
	case "00002c002e01":
		logw.Infof(ctx, "created by CB9+?!")
	case "000024002e01":
		logw.Infof(ctx, "created by Chess Program X/CB Light?!")
	default:
		logw.Warningf(ctx, "unknown database header id: %v", magic)
	}
}

// Run converts records [start;end) from the source, writing PGN to out.
func Run(ctx context.Context, src *Source, start, end int, out io.Writer) (*Summary, error) {
	sum := &Summary{}

	var buf bytes.Buffer
	for i := start; i < end; i++ {
		game, issue := src.ConvertRecord(i)
		if issue != nil {
			sum.Issues = append(sum.Issues, *issue)
			continue
		}
		if game == nil {
			sum.Skipped++
			logw.Debugf(ctx, "record %v: deleted or not a game", i)
			continue
		}

		buf.Reset()
		if err := game.Write(&buf); err != nil {
			sum.Issues = append(sum.Issues, Issue{Index: i, Reason: fmt.Sprintf("emit: %v", err)})
			continue
		}
		if _, err := out.Write(buf.Bytes()); err != nil {
			return sum, fmt.Errorf("write output: %w", err)
		}
		sum.Games++

		if sum.Games%100000 == 0 {
			logw.Infof(ctx, "converted %v games", sum.Games)
		}
	}
	return sum, nil
}

// RunSequential converts the whole database in record order.
func RunSequential(ctx context.Context, base, out string) (*Summary, error) {
	src, closeFn, err := Open(base)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	ReportMagic(ctx, src)

	f, err := os.Create(out)
	if err != nil {
		return nil, fmt.Errorf("create %v: %w", out, err)
	}

	sum, runErr := Run(ctx, src, 1, src.NumRecords(), f)
	if err := f.Close(); runErr == nil && err != nil {
		runErr = fmt.Errorf("close %v: %w", out, err)
	}
	return sum, runErr
}

// chunk is one contiguous record range converted by a single worker into a
// private shard file.
type chunk struct {
	id         int
	start, end int
	path       string

	sum *Summary
	err error
}

// RunParallel converts the database using the given number of workers, each
// writing a private shard that is concatenated in record order afterwards.
// workers <= 0 selects the CPU-count default.
func RunParallel(ctx context.Context, base, out string, workers int) (*Summary, error) {
	src, closeFn, err := Open(base)
	if err != nil {
		return nil, err
	}
	ReportMagic(ctx, src)
	records := src.NumRecords()
	if err := closeFn(); err != nil {
		return nil, err
	}

	if workers <= 0 {
		workers = mathx.Max(1, runtime.NumCPU()-2)
	}
	perChunk := mathx.Max(1, (records-1)/workers)

	tempDir, err := os.MkdirTemp("", "cbh2pgn_")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	var chunks []*chunk
	for id := 0; id < workers; id++ {
		start := 1 + id*perChunk
		end := start + perChunk
		if id == workers-1 || end > records {
			end = records
		}
		if start >= records {
			break
		}
		chunks = append(chunks, &chunk{
			id:    id,
			start: start,
			end:   end,
			path:  filepath.Join(tempDir, fmt.Sprintf("chunk_%04d.pgn", id)),
		})
	}
	logw.Infof(ctx, "split into %v chunks of ~%v records each", len(chunks), perChunk)

	t0 := time.Now()

	var wg sync.WaitGroup
	for _, c := range chunks {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.sum, c.err = runChunk(ctx, base, c)
			if c.err == nil {
				logw.Infof(ctx, "  chunk %4d done: %v games, %v errors  [%.0fs elapsed]",
					c.id, c.sum.Games, len(c.sum.Issues), time.Since(t0).Seconds())
			}
		}()
	}
	wg.Wait()

	for _, c := range chunks {
		if c.err != nil {
			return nil, fmt.Errorf("chunk %v: %w", c.id, c.err)
		}
	}

	// Concatenate in chunk order to restore the original game order.
	logw.Infof(ctx, "concatenating %v chunks...", len(chunks))
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].id < chunks[j].id })

	f, err := os.Create(out)
	if err != nil {
		return nil, fmt.Errorf("create %v: %w", out, err)
	}

	total := &Summary{}
	for _, c := range chunks {
		total.merge(c.sum)

		shard, err := os.Open(c.path)
		if err == nil {
			_, err = io.Copy(f, shard)
			_ = shard.Close()
		}
		if err == nil {
			err = os.Remove(c.path)
		}
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("concatenate chunk %v: %w", c.id, err)
		}
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close %v: %w", out, err)
	}
	return total, nil
}

func runChunk(ctx context.Context, base string, c *chunk) (*Summary, error) {
	src, closeFn, err := Open(base)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	f, err := os.Create(c.path)
	if err != nil {
		return nil, fmt.Errorf("create shard: %w", err)
	}

	sum, runErr := Run(ctx, src, c.start, c.end, f)
	if err := f.Close(); runErr == nil && err != nil {
		runErr = fmt.Errorf("close shard: %w", err)
	}
	return sum, runErr
}
