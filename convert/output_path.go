package convert

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	"pscss/config"
	"pscss/state"
)

// buildOutputPath returns constructed output file path/name for source
// "src" (slash separated, relative to processed directory or archive). It
// takes into account whether to preserve source directory structure on the
// output, cleans up path and if requested transliterates it.
func buildOutputPath(src, dst string, env *state.LocalEnv) string {
	dirParts := []string{determineOutputDir(src, dst, env)}
	fileName := cleanPathSegment(strings.TrimSuffix(path.Base(src), path.Ext(src)), env)
	dirParts = append(dirParts, fileName+getFileExtension(env.Cfg.Conversion.Minify))
	return filepath.Join(dirParts...)
}

func determineOutputDir(src, dst string, env *state.LocalEnv) string {
	dir := path.Dir(src)
	if env.NoDirs || dir == "." || dir == "/" {
		return dst
	}

	dirParts := []string{dst}
	for _, segment := range strings.Split(strings.Trim(dir, "/"), "/") {
		dirParts = append(dirParts, cleanPathSegment(segment, env))
	}
	return filepath.Join(dirParts...)
}

func getFileExtension(minified bool) string {
	if minified {
		return ".min.css"
	}
	return ".css"
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Conversion.Transliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
