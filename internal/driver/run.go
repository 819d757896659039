package driver

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/jonseale44/Clarafi/internal/diag"
	"github.com/jonseale44/Clarafi/internal/fix"
	"github.com/jonseale44/Clarafi/internal/journal"
	"github.com/jonseale44/Clarafi/internal/observ"
	"github.com/jonseale44/Clarafi/internal/relation"
	"github.com/jonseale44/Clarafi/internal/source"
	"github.com/jonseale44/Clarafi/internal/trace"
)

var (
	// ErrRead marks a file that could not be read; nothing was written.
	ErrRead = errors.New("cannot read file")
	// ErrWrite marks a file whose new content could not be saved; the
	// original is left untouched.
	ErrWrite = errors.New("cannot write file")
	// ErrJournal marks a file that was not written because its backup failed.
	ErrJournal = errors.New("cannot record backup")
)

// Options configures Run and Watch.
type Options struct {
	Fields  relation.FieldSet
	Callees []string
	Keys    []string
	Marker  string

	// DryRun computes the rewrite but never touches the file system.
	DryRun bool
	// Journal, when set, records the original content before every write.
	Journal     *journal.Journal
	JournalKeep int

	Jobs           int
	MaxDiagnostics int
	BaseDir        string

	Progress ProgressSink
	Timer    *observ.Timer
}

// FileResult содержит результат обработки одного файла.
type FileResult struct {
	Path    string
	FileID  source.FileID
	File    *source.File
	Result  *fix.Result
	Bag     *diag.Bag
	Written bool
	Err     error
}

// Run rewrites every distinct path. Files are independent and processed in
// parallel; a failure of one file is recorded in its FileResult and does not
// stop the others. The returned error is only set when ctx is cancelled.
func Run(ctx context.Context, paths []string, opts Options) (*source.FileSet, []FileResult, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "run")
	defer span.End("")

	fileSet := source.NewFileSetWithBase(opts.BaseDir)
	paths = dedupPaths(paths)
	span.WithExtra("files", strconv.Itoa(len(paths)))
	if len(paths) == 0 {
		return fileSet, nil, nil
	}

	for _, p := range paths {
		emit(opts.Progress, Event{File: p, Stage: StageLoad, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = processFile(gctx, fileSet, path, &opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

// ErrorCode classifies Err for reports; UnknownCode when there is none.
func (r *FileResult) ErrorCode() diag.Code {
	switch {
	case r.Err == nil:
		return diag.UnknownCode
	case errors.Is(r.Err, ErrRead):
		return diag.IOReadFailed
	case errors.Is(r.Err, ErrJournal):
		return diag.IOJournal
	case errors.Is(r.Err, ErrWrite):
		return diag.IOWriteFailed
	}
	return diag.UnknownCode
}

func processFile(ctx context.Context, fileSet *source.FileSet, path string, opts *Options) (res FileResult) {
	ctx, span := trace.Start(ctx, trace.ScopeFile, "file:"+path)
	res = FileResult{Path: path, Bag: diag.NewBag(opts.MaxDiagnostics)}
	defer func() {
		status := StatusDone
		if res.Err != nil {
			status = StatusError
			trace.Error(ctx, "file:"+path, res.Err)
		}
		matched := 0
		if res.Result != nil {
			matched = res.Result.Report.Matched
		}
		span.WithExtra("matched", strconv.Itoa(matched)).
			WithExtra("written", strconv.FormatBool(res.Written)).
			End(string(status))
		emit(opts.Progress, Event{File: path, Status: status, Err: res.Err, Matched: matched})
	}()

	// load
	stop := phase(ctx, opts, path, StageLoad)
	id, err := fileSet.Load(path)
	stop()
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrRead, err)
		return res
	}
	res.FileID = id
	res.File = fileSet.Get(id)

	// rewrite
	stop = phase(ctx, opts, path, StageRewrite)
	rw, err := fix.Rewrite(res.File, fix.RewriteOptions{
		Fields:   opts.Fields,
		Callees:  opts.Callees,
		Keys:     opts.Keys,
		Marker:   opts.Marker,
		Reporter: diag.BagReporter{Bag: res.Bag},
	})
	stop()
	if err != nil {
		res.Err = err
		return res
	}
	res.Result = rw
	traceBlocks(ctx, rw.Report.Blocks)

	if !rw.Changed || opts.DryRun {
		return res
	}

	if opts.Journal != nil {
		stop = phase(ctx, opts, path, StageJournal)
		err = recordBackup(opts, res.File, rw)
		stop()
		if err != nil {
			res.Err = fmt.Errorf("%w: %w", ErrJournal, err)
			return res
		}
	}

	stop = phase(ctx, opts, path, StageWrite)
	err = fix.WriteFileAtomic(path, rw.Text)
	stop()
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrWrite, err)
		return res
	}
	res.Written = true
	return res
}

// phase emits progress, opens a trace span and starts the timer for one stage.
func phase(ctx context.Context, opts *Options, path string, stage Stage) func() {
	emit(opts.Progress, Event{File: path, Stage: stage, Status: StatusWorking})
	_, span := trace.Start(ctx, trace.ScopePhase, string(stage))
	stopTimer := opts.Timer.Track(string(stage))
	return func() {
		stopTimer()
		span.End("")
	}
}

func recordBackup(opts *Options, f *source.File, rw *fix.Result) error {
	var mode uint32
	if info, err := os.Stat(f.Path); err == nil {
		mode = uint32(info.Mode().Perm())
	}
	err := opts.Journal.Record(&journal.Entry{
		Path:       f.Path,
		Before:     f.Content,
		BeforeHash: f.Hash,
		AfterHash:  sha256.Sum256(rw.Text),
		Mode:       mode,
		Fields:     matchedFields(rw.Report.Blocks),
		Matched:    rw.Report.Matched,
	})
	if err != nil {
		return err
	}
	if opts.JournalKeep > 0 {
		if _, err := opts.Journal.Prune(f.Path, opts.JournalKeep); err != nil {
			return err
		}
	}
	return nil
}

func matchedFields(blocks []fix.Block) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, 4)
	for _, b := range blocks {
		if b.Action != fix.ActionCommented {
			continue
		}
		if _, ok := seen[b.Field]; ok {
			continue
		}
		seen[b.Field] = struct{}{}
		out = append(out, b.Field)
	}
	return out
}

func traceBlocks(ctx context.Context, blocks []fix.Block) {
	if !trace.FromContext(ctx).Level().ShouldEmit(trace.ScopeCandidate) {
		return
	}
	for _, b := range blocks {
		extra := map[string]string{
			"line":   strconv.FormatUint(uint64(b.Line), 10),
			"action": b.Action.String(),
		}
		if b.Field != "" {
			extra["field"] = b.Field
		}
		trace.Point(ctx, trace.ScopeCandidate, b.Name, b.Reason, extra)
	}
}

// dedupPaths drops repeated paths (compared in absolute form), keeping the
// first spelling and order.
func dedupPaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		key := p
		if abs, err := filepath.Abs(p); err == nil {
			key = abs
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}
