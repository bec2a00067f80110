package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ebacheck/internal/cache"
	"ebacheck/internal/config"
	"ebacheck/internal/diag"
	"ebacheck/internal/emit"
	"ebacheck/internal/engine"
	"ebacheck/internal/errors"
	"ebacheck/internal/logger"
	"ebacheck/internal/model"
	"ebacheck/internal/observ"
	"ebacheck/internal/profile"
	"ebacheck/internal/rules"
	"ebacheck/internal/version"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flags] <model.json|model.msgpack>",
	Short: "Validate a resolved XBRL instance model against the EBA filing rules",
	Long: `Validate a resolved XBRL instance model against the EBA filing rules.
Exit status is 0 when no errors were found, 1 when errors were found
(or warnings with --warnings-as-errors) and 2 on fatal failures.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringArrayP("param", "p", nil, "validation parameter key:value (max-string-length, max-id-length)")
	validateCmd.Flags().String("config", "", "config file (default: nearest ebacheck.toml)")
	validateCmd.Flags().String("profile", "", "rule profile (.toml or .yaml)")
	validateCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	validateCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	validateCmd.Flags().Duration("timeout", 0, "stop after this long and report what was found (0=none)")
	validateCmd.Flags().Bool("cache", false, "reuse reports of unchanged inputs from the disk cache")
	validateCmd.Flags().String("cache-dir", "", "cache directory (default: $XDG_CACHE_HOME/ebacheck)")
	validateCmd.Flags().Bool("watch", false, "re-validate when the input or profile changes")
	validateCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	validateCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	validateCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	validateCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	validateCmd.Flags().Bool("fullpath", false, "print document URIs as given")
}

// validateRequest is a fully resolved validate invocation.
type validateRequest struct {
	input            string
	configParams     map[string]string // defaults, ebacheck.toml, environment
	params           map[string]string // --param
	profilePath      string
	format           string
	jobs             int
	timeout          time.Duration
	cacheDir         string // empty = no cache
	ui               uiMode
	noWarnings       bool
	warningsAsErrors bool
	withNotes        bool
	pathMode         emit.PathMode
	color            bool
	maxDiagnostics   int
	timings          bool
	args             []string
}

func runValidate(cmd *cobra.Command, args []string) error {
	req, err := readValidateRequest(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("failed to get watch flag: %w", err)
	}
	if watch {
		return watchAndValidate(ctx, req, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	code, err := runValidation(ctx, req, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if code != exitClean {
		return exitCode(code)
	}
	return nil
}

func readValidateRequest(cmd *cobra.Command, args []string) (validateRequest, error) {
	flags := cmd.Flags()
	req := validateRequest{input: args[0], args: os.Args[1:]}

	configPath, err := flags.GetString("config")
	if err != nil {
		return req, fmt.Errorf("failed to get config flag: %w", err)
	}
	v, usedConfig, err := config.NewViper(configPath, filepath.Dir(req.input))
	if err != nil {
		return req, err
	}
	if usedConfig != "" {
		logger.Debugw("config loaded", "path", usedConfig)
	}
	for key, flag := range map[string]string{
		"run.profile":   "profile",
		"run.format":    "format",
		"run.jobs":      "jobs",
		"run.timeout":   "timeout",
		"run.cache_dir": "cache-dir",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return req, fmt.Errorf("failed to bind %s flag: %w", flag, err)
		}
	}
	settings, err := config.LoadSettings(v)
	if err != nil {
		return req, err
	}
	req.profilePath = settings.Profile
	req.format = strings.ToLower(settings.Format)
	req.jobs = settings.Jobs
	req.timeout = settings.Timeout

	switch req.format {
	case "pretty", "short", "json", "sarif":
	default:
		return req, errors.NewConfigError("unknown format: %s", req.format)
	}

	pairs, err := flags.GetStringArray("param")
	if err != nil {
		return req, fmt.Errorf("failed to get param flag: %w", err)
	}
	if req.params, err = config.ParsePairs(pairs); err != nil {
		return req, err
	}
	req.configParams = config.ParamsFromViper(v)

	useCache, err := flags.GetBool("cache")
	if err != nil {
		return req, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if useCache {
		req.cacheDir = settings.CacheDir
		if req.cacheDir == "" {
			if req.cacheDir, err = cache.DefaultDir("ebacheck"); err != nil {
				return req, fmt.Errorf("failed to locate cache dir: %w", err)
			}
		}
	}

	uiValue, err := flags.GetString("ui")
	if err != nil {
		return req, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if req.ui, err = readUIMode(uiValue); err != nil {
		return req, err
	}

	if req.noWarnings, err = flags.GetBool("no-warnings"); err != nil {
		return req, fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	if req.warningsAsErrors, err = flags.GetBool("warnings-as-errors"); err != nil {
		return req, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if req.noWarnings && req.warningsAsErrors {
		return req, fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	if req.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return req, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := flags.GetBool("fullpath")
	if err != nil {
		return req, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if fullPath {
		req.pathMode = emit.PathModeURI
	}
	if req.color, err = useColor(cmd); err != nil {
		return req, err
	}
	if req.maxDiagnostics, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return req, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if req.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return req, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return req, nil
}

// runValidation performs one validation and writes the report. It returns
// the exit code for a finished run; a non-nil error is fatal.
func runValidation(ctx context.Context, req validateRequest, stdout, stderr io.Writer) (int, error) {
	var timer *observ.Timer
	if req.timings {
		timer = observ.NewTimer()
	}

	loadIdx := timer.Begin("load")
	doc, raw, err := model.Load(req.input)
	timer.End(loadIdx, "")
	if err != nil {
		return exitFatal, err
	}

	reg := rules.Default()
	var prof *profile.Profile
	if req.profilePath != "" {
		if prof, err = profile.Load(req.profilePath); err != nil {
			return exitFatal, err
		}
		if err = prof.CheckRulebook(rules.RulebookVersion); err != nil {
			return exitFatal, err
		}
		if reg, err = prof.Registry(reg); err != nil {
			return exitFatal, err
		}
		prof.Apply(doc)
	}

	cfg, unknown, err := config.Parse(mergeParams(req.configParams, prof, req.params))
	if err != nil {
		return exitFatal, err
	}
	for _, key := range unknown {
		logger.Warnw("ignoring unknown parameter", "key", key)
	}

	var (
		dc  *cache.DiskCache
		key cache.Digest
		rep *diag.Report
	)
	if req.cacheDir != "" {
		if dc, err = cache.Open(req.cacheDir); err != nil {
			logger.Warnw("disk cache disabled", "error", err)
		}
		key = cache.KeyFor(raw, cfg.String(), reg.Fingerprint(), prof.Key())
		var entry cache.Entry
		hit, getErr := dc.Get(key, &entry)
		if getErr != nil {
			logger.Warnw("cache entry unreadable", "key", key.String(), "error", getErr)
		}
		if hit {
			logger.Infow("cache hit", "key", key.String())
			rep = entry.Report()
		}
	}

	var runErr error
	if rep == nil {
		runCtx := ctx
		if req.timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, req.timeout)
			defer cancel()
		}
		opts := engine.Options{Registry: reg, Jobs: req.jobs, Timer: timer}
		if progressUI(req.ui, stderr) {
			rep, runErr = validateWithUI(runCtx, stderr, doc.URI, doc, cfg, opts)
		} else {
			rep, runErr = engine.Validate(runCtx, doc, cfg, opts)
		}
		if runErr != nil && !errors.Is(runErr, errors.ErrIncomplete) {
			return exitFatal, runErr
		}
		if entry, ok := cache.NewEntry(rep, rules.RulebookVersion, reg.Fingerprint(), cfg.String()); ok && dc != nil {
			if err := dc.Put(key, entry); err != nil {
				logger.Warnw("failed to store report", "error", err)
			}
		}
	}

	shown := rep
	if req.noWarnings {
		shown = rep.Filter(func(d *diag.Diagnostic) bool { return d.Severity != diag.SevWarning })
	}

	emitIdx := timer.Begin("emit")
	sum, err := emit.Emit(shown, newSink(req, stdout), emit.Options{Max: req.maxDiagnostics})
	timer.End(emitIdx, "")
	if err != nil {
		return exitFatal, fmt.Errorf("failed to format diagnostics: %w", err)
	}
	if sum.Truncated {
		fmt.Fprintf(stderr, "... %d more diagnostics not shown\n", shown.Len()-sum.Written)
	}
	if req.timings {
		fmt.Fprint(stderr, timer.Summary())
	}
	logger.Infow("validation finished",
		"uri", doc.URI,
		"errors", rep.Counts.Errors,
		"warnings", rep.Counts.Warnings,
		"inconsistencies", rep.Counts.Inconsistencies,
		"complete", rep.Complete)

	if runErr != nil {
		fmt.Fprintf(stderr, "ebacheck: %v (report is partial)\n", runErr)
		return exitFatal, nil
	}
	return exitFor(shown, req.warningsAsErrors), nil
}

// mergeParams layers, lowest first: config and environment, the profile,
// then --param.
func mergeParams(base map[string]string, prof *profile.Profile, explicit map[string]string) map[string]string {
	out := maps.Clone(base)
	if out == nil {
		out = make(map[string]string, len(explicit))
	}
	maps.Copy(out, prof.MergeParams(explicit))
	return out
}

func exitFor(r *diag.Report, warningsAsErrors bool) int {
	if r.HasErrors() || (warningsAsErrors && r.HasWarnings()) {
		return exitFound
	}
	return exitClean
}

func newSink(req validateRequest, w io.Writer) emit.Sink {
	switch req.format {
	case "short":
		return &emit.ShortSink{W: w, PathMode: req.pathMode, WithNotes: req.withNotes}
	case "json":
		return emit.NewJSONSink(w, emit.JSONOpts{PathMode: req.pathMode, IncludeNotes: req.withNotes})
	case "sarif":
		return emit.NewSarifSink(w, emit.SarifRunMeta{
			ToolName:       "ebacheck",
			ToolVersion:    version.Number,
			InvocationArgs: req.args,
		})
	default:
		return emit.NewPrettySink(w, emit.PrettyOpts{
			Color:      req.color,
			PathMode:   req.pathMode,
			ValueWidth: 60,
			ShowNotes:  req.withNotes,
			ShowRule:   true,
		})
	}
}
