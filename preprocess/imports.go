package preprocess

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var (
	importRe = regexp.MustCompile(`@import\s*\x{E000}Q(\d+)\x{E001}(\s*;)?`)
	// partials start with "_", everything else has to carry one of our extensions
	inlineImportRe = regexp.MustCompile(`^_|\.p?[sn]css$`)
)

// resolveImports inlines eligible @import statements. Imported text goes
// through the same early passes (quotes, comments, imports) with its own path
// as base, so nested imports are resolved relative to the importing resource.
func (c *Context) resolveImports(text, base string) string {
	return replaceAllSubmatchFunc(importRe, text, func(m []string, offset int) string {
		n, _ := strconv.Atoi(m[1])
		literal, ok := c.vault.Literal(n)
		if !ok {
			return m[0]
		}
		target := unquote(literal)
		if !inlineImportRe.MatchString(target) {
			// plain CSS import, left for the consumer
			return m[0]
		}

		id := resourceID(resolvePath(base, strings.TrimPrefix(target, "_")))
		if !c.conv.loaded.Claim(id) {
			c.log.Debug("Skipping already loaded import", zap.String("import", id))
			return ""
		}

		data, err := c.conv.load(id)
		if err != nil {
			c.conv.loaded.Release(id)
			c.report(KindImportFailed, lineAt(text, offset), literal, "failed to load: %s: %v", id, err)
			return ""
		}
		c.log.Debug("Inlining import", zap.String("import", id), zap.Int("bytes", len(data)))

		data = c.vault.Protect(normalizeNewlines(data))
		data = stripComments(data, c.conv.nested)
		return c.resolveImports(data, id)
	})
}

// resolvePath replaces final segment of base with target. Without directory
// in base target is resolved against the root, absolute URLs are kept.
func resolvePath(base, target string) string {
	if strings.Contains(target, "://") {
		return target
	}
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		target = base[:i+1] + target
	}
	return strings.TrimPrefix(target, "/")
}
