// Package preprocess converts pscss, a small superset of CSS with nesting,
// variables, mixins and imports, into plain CSS.
//
// Conversion is an ordered pipeline of textual passes over a single
// Context: quoted literals are vaulted first so that no pass can mis-parse
// their content, comments are stripped, eligible imports inlined, mixins
// registered and expanded, variables rewritten to custom properties and
// finally nested blocks are flattened into plain rules.
package preprocess

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Converter holds configuration shared by conversions. It is safe for
// concurrent use as long as plugins are not modified after creation.
type Converter struct {
	log      *zap.Logger
	loader   Loader
	loaded   *LoadedSet
	plugins  *Plugins
	nested   bool
	dumpTree bool
}

// Option configures Converter.
type Option func(*Converter)

// WithLoader sets capability used to fetch imported resources.
func WithLoader(l Loader) Option {
	return func(c *Converter) {
		c.loader = l
	}
}

// WithLoadedSet replaces set of already loaded resources. By default every
// converter has its own set shared by all conversions it performs.
func WithLoadedSet(s *LoadedSet) Option {
	return func(c *Converter) {
		if s != nil {
			c.loaded = s
		}
	}
}

// WithPlugins sets converter and function plugins.
func WithPlugins(p *Plugins) Option {
	return func(c *Converter) {
		if p != nil {
			c.plugins = p
		}
	}
}

// WithNestedComments allows nested block comments ("nc" flag).
func WithNestedComments(nested bool) Option {
	return func(c *Converter) {
		c.nested = nested
	}
}

// WithRuleTreeDump makes conversion results carry text dump of the rule tree.
func WithRuleTreeDump(dump bool) Option {
	return func(c *Converter) {
		c.dumpTree = dump
	}
}

// NewConverter creates a converter.
func NewConverter(log *zap.Logger, options ...Option) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Converter{
		log:     log.Named("preprocess"),
		loaded:  NewLoadedSet(),
		plugins: &Plugins{},
	}
	for _, setOpt := range options {
		setOpt(c)
	}
	return c
}

// Result of a conversion.
type Result struct {
	CSS         string
	Diagnostics []Diagnostic
	Tree        string // rule tree dump, only when requested
}

// Convert turns pscss source into CSS. Non-empty rootSelector wraps top-level
// declarations instead of the implicit document root, basePath anchors
// import resolution and labels diagnostics. Malformed input never fails
// conversion, problems are reported as diagnostics.
func (c *Converter) Convert(source, rootSelector, basePath string) *Result {
	start := time.Now()
	ctx := newContext(c, basePath)

	text := ctx.vault.Protect(normalizeNewlines(source))
	text = stripComments(text, c.nested)
	text = ctx.resolveImports(text, basePath)
	text = ctx.fixMissingSemicolons(text)
	text = flattenNestedProperties(text)
	text = ctx.registerMixins(text)
	text = ctx.substituteVariables(text)
	text = ctx.expandIncludes(text, nil)
	text = c.plugins.runConverters(text, ctx)
	text = c.plugins.runFunctions(text)

	tree := ctx.buildRules(tokenize(text), rootSelector)

	res := &Result{
		CSS:         ctx.vault.Restore(tree.render(rootSelector == "")),
		Diagnostics: ctx.diags,
	}
	if c.dumpTree {
		res.Tree = tree.dump(ctx.vault.Restore)
	}

	ctx.log.Debug("Conversion completed",
		zap.Int("in", len(source)), zap.Int("out", len(res.CSS)), zap.Int("quotes", ctx.vault.Len()),
		zap.Int("mixins", len(ctx.mixins)), zap.Int("diagnostics", len(res.Diagnostics)), zap.Duration("elapsed", time.Since(start)))
	return res
}

// ConvertResource loads resource through configured loader and converts it
// using its path as base path. Resource is claimed in the loaded set first,
// so it cannot import itself. Resource which is already loaded converts to
// empty result.
func (c *Converter) ConvertResource(path, rootSelector string) (*Result, error) {
	id := resourceID(path)
	if !c.loaded.Claim(id) {
		c.log.Debug("Resource already loaded", zap.String("path", id))
		return &Result{}, nil
	}
	data, err := c.load(id)
	if err != nil {
		c.loaded.Release(id)
		return nil, fmt.Errorf("unable to load %s: %w", id, err)
	}
	return c.Convert(data, rootSelector, id), nil
}

// Loaded returns set of loaded resources.
func (c *Converter) Loaded() *LoadedSet {
	return c.loaded
}

func (c *Converter) load(path string) (string, error) {
	if c.loader == nil {
		return "", ErrNoLoader
	}
	return c.loader.Load(path)
}
