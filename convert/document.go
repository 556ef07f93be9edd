package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pscss/config"
	"pscss/css"
	"pscss/loader"
	"pscss/preprocess"
	"pscss/state"
)

var (
	stdoutMu sync.Mutex
	stdout   io.Writer = os.Stdout
)

// convertAll converts sources concurrently. Failure of a single source does
// not stop the others, all failures are returned together.
func convertAll(ctx context.Context, sources []source, l preprocess.Loader, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	workers := env.Cfg.Conversion.Workers
	if env.Stdout {
		// keep output in source order
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var (
		mu   sync.Mutex
		errs error
	)
	for _, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := processSource(gctx, src, l, dst, log); err != nil {
				log.Error("Unable to process source", zap.String("source", src.name), zap.Error(err))
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if c, ok := l.(*loader.Cached); ok {
		hits, misses := c.Stats()
		log.Debug("Resource cache", zap.Int64("hits", hits), zap.Int64("misses", misses))
	}
	return errs
}

// processSource converts single top-level style sheet and writes the result.
func processSource(ctx context.Context, src source, l preprocess.Loader, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)
	conf := &env.Cfg.Conversion

	outputName := "STDOUT"
	if !env.Stdout {
		outputName = buildOutputPath(src.name, dst, env)
	}

	log.Info("Conversion starting", zap.String("from", src.name))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else if rerr == nil {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	conv := preprocess.NewConverter(log,
		preprocess.WithLoader(l),
		preprocess.WithNestedComments(conf.NestedComments),
		preprocess.WithRuleTreeDump(env.Rpt != nil),
	)
	res, err := conv.ConvertResource(src.id, conf.RootSelector)
	if err != nil {
		return err
	}
	for _, d := range res.Diagnostics {
		log.Warn("Suspicious construct",
			zap.String("source", src.name), zap.Stringer("kind", d.Kind), zap.Int("line", d.Line),
			zap.String("construct", d.Construct), zap.String("message", d.Message))
	}

	out := []byte(res.CSS)
	checker := css.NewChecker(log)
	if conf.Check.Enabled() {
		if err := checkOutput(checker.Check(out, src.name), conf.Check, log); err != nil {
			return err
		}
	}
	if conf.Minify {
		if out, err = checker.Minify(out, src.name); err != nil {
			return err
		}
	}

	if env.Rpt != nil {
		storeResults(env.Rpt, src, l, res, out)
	}

	if env.Stdout {
		stdoutMu.Lock()
		defer stdoutMu.Unlock()
		if _, err := stdout.Write(out); err != nil {
			return fmt.Errorf("unable to write output: %w", err)
		}
		return nil
	}
	return writeOutput(outputName, out, env.Overwrite, log)
}

// checkOutput logs grammar problems found in produced CSS, in strict mode
// any problem fails the conversion.
func checkOutput(rpt *css.Report, mode config.CheckMode, log *zap.Logger) error {
	for _, e := range rpt.Errors {
		log.Warn("Produced CSS has syntax problem",
			zap.String("source", rpt.Source), zap.Int("line", e.Line), zap.Int("column", e.Column),
			zap.String("message", e.Message), zap.String("context", e.Context))
	}
	log.Debug("Produced CSS checked",
		zap.String("source", rpt.Source), zap.Int("rulesets", rpt.Rulesets), zap.Int("declarations", rpt.Declarations),
		zap.Int("custom", rpt.CustomProperties), zap.Int("at-rules", rpt.AtRules), zap.Strings("imports", rpt.Imports))

	if mode == config.CheckModeStrict && !rpt.Valid() {
		return fmt.Errorf("produced CSS for %s has %d syntax error(s), first at %s", rpt.Source, len(rpt.Errors), rpt.Errors[0])
	}
	return nil
}

func storeResults(rpt *config.Report, src source, l preprocess.Loader, res *preprocess.Result, out []byte) {
	// loader is cached, source is not fetched twice unless cache is disabled
	if text, err := l.Load(src.id); err == nil {
		rpt.StoreData(path.Join("source", src.name), []byte(text))
	}
	rpt.StoreData(path.Join("result", src.name+".css"), out)
	if len(res.Tree) > 0 {
		rpt.StoreData(path.Join("tree", src.name+".txt"), []byte(res.Tree))
	}
}

func writeOutput(outputName string, data []byte, overwrite bool, log *zap.Logger) error {
	if _, err := os.Stat(outputName); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := os.WriteFile(outputName, data, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	return nil
}
