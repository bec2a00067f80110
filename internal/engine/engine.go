// Package engine is the traversal engine. It walks a resolved document once,
// dispatches node rules in parallel batches, builds the indices the group
// rules need and then runs those rules once per qualifying group.
//
// Traversal order is irrelevant to the result: every diagnostic carries a
// deterministic sequence and the collector sorts on freeze.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ebacheck/internal/config"
	"ebacheck/internal/diag"
	"ebacheck/internal/errors"
	"ebacheck/internal/index"
	"ebacheck/internal/logger"
	"ebacheck/internal/model"
	"ebacheck/internal/observ"
	"ebacheck/internal/rules"
	"ebacheck/internal/source"
)

// DefaultBatchSize is the number of work items a worker takes at once.
// Cancellation is observed between batches.
const DefaultBatchSize = 512

const (
	phaseNodes  uint8 = 1
	phaseGroups uint8 = 2
)

// Options tune a run. The zero value validates with the default registry on
// GOMAXPROCS workers.
type Options struct {
	Registry  *rules.Registry
	Jobs      int
	BatchSize int
	Progress  ProgressSink
	Timer     *observ.Timer
}

func (o Options) withDefaults() Options {
	if o.Registry == nil {
		o.Registry = rules.Default()
	}
	if o.Jobs <= 0 {
		o.Jobs = runtime.GOMAXPROCS(0)
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	return o
}

// Validate runs every selected rule against doc and returns the frozen
// report.
//
// Invalid configuration and model-access failures are fatal and return no
// report. When ctx ends between batches Validate returns the diagnostics
// gathered so far in a report with Complete == false together with an error
// marked errors.ErrIncomplete that wraps ctx.Err().
func Validate(ctx context.Context, doc *model.Document, cfg config.Options, opts Options) (*diag.Report, error) {
	if doc == nil {
		return nil, errors.NewModelError("no document to validate")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := doc.Check(); err != nil {
		return nil, err
	}
	r := newRun(doc, cfg, opts.withDefaults())
	return r.execute(ctx)
}

type run struct {
	doc     *model.Document
	cfg     config.Options
	opts    Options
	col     *diag.Collector
	workers chan *worker
	metrics runMetrics
	log     *zap.SugaredLogger
}

// worker is the per-goroutine state reused across batches.
type worker struct {
	bag   *diag.Bag
	check *rules.Check
}

type groupTask struct {
	rule  *rules.Rule
	group index.Group
}

func newRun(doc *model.Document, cfg config.Options, opts Options) *run {
	r := &run{
		doc:     doc,
		cfg:     cfg,
		opts:    opts,
		col:     diag.NewCollector(),
		workers: make(chan *worker, opts.Jobs),
		log:     logger.Named("engine"),
	}
	for range opts.Jobs {
		bag := diag.NewBag(64)
		r.workers <- &worker{bag: bag, check: rules.NewCheck(doc, cfg, diag.BagReporter{Bag: bag})}
	}
	return r
}

func (r *run) execute(ctx context.Context) (*diag.Report, error) {
	started := time.Now()
	nodes := r.doc.Nodes()
	plan := r.plan()

	t := r.opts.Timer.Begin(string(StageNodes))
	err := r.parallel(ctx, StageNodes, len(nodes), func(w *worker, i int) {
		n := nodes[i]
		for _, rule := range plan[n.Kind] {
			w.node(r, rule, n)
		}
	})
	r.opts.Timer.End(t, fmt.Sprintf("nodes=%d", len(nodes)))
	if err != nil {
		return r.interrupted(err)
	}

	// единственный барьер: группы видят только полностью построенные индексы
	t = r.opts.Timer.Begin(string(StageIndex))
	set := index.Build(r.doc, nodes, r.opts.Registry.Indices()...)
	tasks := r.groupTasks(set)
	r.opts.Timer.End(t, fmt.Sprintf("groups=%d keys=%d", set.Total(), set.Interned()))
	r.progress(Event{Stage: StageIndex, Status: StatusDone, Done: set.Total(), Total: set.Total(), Elapsed: time.Since(started)})

	t = r.opts.Timer.Begin(string(StageGroups))
	err = r.parallel(ctx, StageGroups, len(tasks), func(w *worker, i int) {
		w.group(r, tasks[i].rule, tasks[i].group)
	})
	r.opts.Timer.End(t, fmt.Sprintf("tasks=%d", len(tasks)))
	if err != nil {
		return r.interrupted(err)
	}

	report := r.col.Freeze()
	r.log.Debugw("validation finished",
		"diagnostics", report.Len(),
		"elapsed", time.Since(started),
		"metrics", r.metrics.String())
	return report, nil
}

// plan returns, per node kind present in the document, the rules that
// declared it.
func (r *run) plan() [][]*rules.Rule {
	kinds := model.Kinds()
	plan := make([][]*rules.Rule, len(kinds))
	for _, k := range kinds {
		n := r.doc.Count(k)
		if n == 0 {
			continue
		}
		plan[k] = r.opts.Registry.ForKind(k)
		r.log.Debugw("dispatch plan", "kind", k.String(), "nodes", n, "rules", len(plan[k]))
	}
	return plan
}

func (r *run) groupTasks(set *index.Set) []groupTask {
	var tasks []groupTask
	for _, rule := range r.opts.Registry.GroupRules() {
		for _, g := range set.Groups(rule.Index) {
			if rule.Fires(g) {
				tasks = append(tasks, groupTask{rule: rule, group: g})
			}
		}
	}
	r.metrics.groups.Add(int64(len(tasks)))
	return tasks
}

// parallel runs do over [0,total) in batches on at most Jobs goroutines.
// Each batch merges its diagnostics into the collector once, so a batch
// contributes either everything or nothing.
func (r *run) parallel(ctx context.Context, stage Stage, total int, do func(w *worker, i int)) error {
	start := time.Now()
	r.progress(Event{Stage: stage, Status: StatusWorking, Total: total})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Jobs)
	var done atomic.Int64
	for lo := 0; lo < total; lo += r.opts.BatchSize {
		if gctx.Err() != nil {
			break
		}
		hi := min(lo+r.opts.BatchSize, total)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w := <-r.workers
			defer func() { r.workers <- w }()
			r.metrics.workersActive.Add(1)
			defer r.metrics.workersActive.Add(-1)

			for i := lo; i < hi; i++ {
				do(w, i)
			}
			r.flush(w)
			r.metrics.batch(hi - lo)
			n := done.Add(int64(hi - lo))
			r.progress(Event{Stage: stage, Status: StatusWorking, Done: int(n), Total: total, Elapsed: time.Since(start)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.progress(Event{Stage: stage, Status: StatusDone, Done: total, Total: total, Elapsed: time.Since(start)})
	return nil
}

func (r *run) flush(w *worker) {
	items := w.bag.Items()
	r.metrics.diagnostics.Add(int64(len(items)))
	r.col.AddAll(items)
	w.bag.Reset()
}

func (r *run) progress(evt Event) {
	if r.opts.Progress != nil {
		r.opts.Progress.OnEvent(evt)
	}
}

func (r *run) interrupted(err error) (*diag.Report, error) {
	r.progress(Event{Status: StatusCanceled})
	report := r.col.Snapshot()
	r.log.Infow("validation interrupted",
		"diagnostics", report.Len(),
		"error", err,
		"metrics", r.metrics.String())
	return report, errors.Mark(errors.Wrap(err, "validation interrupted"), errors.ErrIncomplete)
}

func (w *worker) node(r *run, rule *rules.Rule, n model.Node) {
	mark := w.bag.Len()
	w.check.Reset(rule, phaseNodes, n.Ordinal)
	r.metrics.invocations.Add(1)
	defer w.recoverRule(r, rule, phaseNodes, n.Ordinal, n.Loc(), mark)
	rule.Single(w.check, n)
}

func (w *worker) group(r *run, rule *rules.Rule, g index.Group) {
	mark := w.bag.Len()
	w.check.Reset(rule, phaseGroups, g.Ordinal)
	r.metrics.invocations.Add(1)
	defer w.recoverRule(r, rule, phaseGroups, g.Ordinal, g.Loc(), mark)
	rule.Group(w.check, g)
}

// recoverRule turns a panicking invocation into one internal-rule-error and
// drops whatever the invocation emitted before it failed.
func (w *worker) recoverRule(r *run, rule *rules.Rule, phase uint8, item uint32, loc source.Location, mark int) {
	p := recover()
	if p == nil {
		return
	}
	w.bag.Truncate(mark)
	r.metrics.failures.Add(1)
	r.log.Warnw("rule failed",
		"rule", rule.Name,
		"code", rule.Code.ID(),
		"location", loc.String(),
		"panic", p)

	d := diag.NewError(diag.EngInternalRuleError, loc,
		fmt.Sprintf("rule %s (%s) failed: %v", rule.Name, rule.Code.ID(), p))
	d.Rule = rule.Name
	d.Value = rule.Code.ID()
	d.Seq = diag.Seq{Phase: phase, Item: item, Rule: rule.Ordinal()}
	w.bag.Add(d)
}
