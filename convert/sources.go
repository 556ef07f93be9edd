package convert

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pscss/loader"
	"pscss/preprocess"
	"pscss/state"
)

// source is a single top-level style sheet. Every source is converted as
// separate document with its own set of loaded resources.
type source struct {
	// path relative to processed directory or archive, slash separated,
	// used to name the output
	name string
	// resource identifier passed to the loader
	id string
}

// process determines the input type (directory, archive, path inside
// archive or single file) and processes it accordingly.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			return processDir(ctx, head, dst, log)
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		arc, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if arc {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			return processArchive(ctx, head, filepath.ToSlash(tail), "", dst, log)
		}

		if len(tail) != 0 {
			return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}
		return processFile(ctx, head, dst, log)
	}
	return fmt.Errorf("input source was not found (%s)", src)
}

// processFile converts single file. Explicitly named file is converted
// whatever its extension is.
func processFile(ctx context.Context, file, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	l, err := newLoader(env, loader.NewFile(log, filepath.Dir(file), env.Charset), log)
	if err != nil {
		return err
	}
	name := filepath.Base(file)
	return convertAll(ctx, []source{{name: name, id: name}}, l, dst, log)
}

// processDir walks directory tree finding style sheets and archives and
// processes them. Symbolic links are not followed.
func processDir(ctx context.Context, dir, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	var (
		sources  []source
		archives []string
	)
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", p), zap.Error(err))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			log.Warn("Skipping path", zap.String("path", p), zap.Error(err))
			return nil
		}
		rel = filepath.ToSlash(rel)

		if isSourceFile(rel, env.Cfg.Conversion.Extensions) {
			sources = append(sources, source{name: rel, id: rel})
			return nil
		}

		arc, err := isArchiveFile(p)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", p), zap.Error(err))
			return nil
		}
		if arc {
			archives = append(archives, p)
			return nil
		}
		log.Debug("Skipping file, not recognized as style sheet or archive", zap.String("file", p))
		return nil
	})
	if err != nil {
		return err
	}
	if len(sources)+len(archives) == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
		return nil
	}

	sortSources(sources)

	l, err := newLoader(env, loader.NewFile(log, dir, env.Charset), log)
	if err != nil {
		return err
	}
	errs := convertAll(ctx, sources, l, dst, log)

	sort.Sort(natural.StringSlice(archives))
	for _, arc := range archives {
		rel, _ := filepath.Rel(dir, filepath.Dir(arc))
		if err := processArchive(ctx, arc, "", filepath.ToSlash(rel), dst, log); err != nil {
			log.Error("Unable to process archive", zap.String("file", arc), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// processArchive converts all style sheets inside archive under "pathIn",
// outputs are placed under "pathOut".
func processArchive(ctx context.Context, file, pathIn, pathOut, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	arc, err := loader.NewArchive(log, file, env.Charset)
	if err != nil {
		return err
	}
	defer arc.Close()

	pathIn = strings.Trim(pathIn, "/")

	var sources []source
	for _, name := range arc.Reader().Names(pathIn) {
		var out string
		switch {
		case name == pathIn:
			// single entry explicitly named
			out = path.Base(name)
		case pathIn != "" && !strings.HasPrefix(name, pathIn+"/"):
			continue
		case !isSourceFile(name, env.Cfg.Conversion.Extensions):
			continue
		default:
			out = strings.TrimPrefix(name, pathIn+"/")
		}
		sources = append(sources, source{name: path.Join(pathOut, out), id: name})
	}
	if len(sources) == 0 {
		if pathIn != "" {
			return fmt.Errorf("nothing to process in archive %s under %q", file, pathIn)
		}
		log.Debug("Nothing to process", zap.String("archive", file))
		return nil
	}

	l, err := newLoader(env, arc, log)
	if err != nil {
		return err
	}
	return convertAll(ctx, sources, l, dst, log)
}

// processURL converts remote style sheet, relative imports are fetched
// relative to its location.
func processURL(ctx context.Context, src, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)
	if !env.Cfg.Loader.AllowRemote {
		return fmt.Errorf("unable to process %s: %w", src, loader.ErrRemoteDisabled)
	}

	u, err := url.Parse(src)
	if err != nil {
		return fmt.Errorf("bad source URL: %w", err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		name = u.Hostname()
	}

	l, err := newLoader(env, nil, log)
	if err != nil {
		return err
	}
	return convertAll(ctx, []source{{name: name, id: src}}, l, dst, log)
}

// newLoader puts local resource loader, remote one (when allowed) and
// content cache together.
func newLoader(env *state.LocalEnv, local preprocess.Loader, log *zap.Logger) (preprocess.Loader, error) {
	mux := &loader.Mux{Local: local}
	if env.Cfg.Loader.AllowRemote {
		mux.Remote = loader.NewHTTP(log, env.Cfg.Loader.HTTPTimeout, env.Cfg.Loader.UserAgent, env.Charset)
	}
	l, err := loader.NewCached(log, mux, env.Cfg.Loader.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("unable to create resource cache: %w", err)
	}
	return l, nil
}

// isSourceFile reports whether file with the name has to be converted when
// processing directory or archive. Partials (base name starting with "_")
// are only ever imported.
func isSourceFile(name string, extensions []string) bool {
	base := path.Base(name)
	if strings.HasPrefix(base, "_") {
		return false
	}
	ext := path.Ext(base)
	for _, e := range extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func sortSources(sources []source) {
	sort.Slice(sources, func(i, j int) bool {
		return natural.Less(sources[i].name, sources[j].name)
	})
}
