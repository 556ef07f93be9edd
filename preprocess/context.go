package preprocess

import (
	"maps"

	"go.uber.org/zap"
)

const defaultSource = "pscss"

// Context is the state of a single top-level conversion: quote vault,
// variable and mixin tables. Inlined imports share the context of the
// including sheet. Converter plugins get read access to it.
type Context struct {
	conv   *Converter
	log    *zap.Logger
	source string

	vault  Vault
	vars   map[string]string
	mixins map[string]*Mixin
	diags  []Diagnostic
}

func newContext(conv *Converter, basePath string) *Context {
	source := basePath
	if source == "" {
		source = defaultSource
	}
	return &Context{
		conv:   conv,
		log:    conv.log.With(zap.String("source", source)),
		source: source,
		vars:   make(map[string]string),
		mixins: make(map[string]*Mixin),
	}
}

// Source returns base path of the conversion or "pscss" when there is none.
func (c *Context) Source() string {
	return c.source
}

// Vault gives access to protected quoted literals.
func (c *Context) Vault() *Vault {
	return &c.vault
}

// Var returns current value of variable (name without "$").
func (c *Context) Var(name string) (string, bool) {
	v, ok := c.vars[name]
	return v, ok
}

// Vars returns a copy of the variable table.
func (c *Context) Vars() map[string]string {
	return maps.Clone(c.vars)
}

// Mixin returns registered mixin, name is normalized the same way as for
// @include.
func (c *Context) Mixin(name string) (*Mixin, bool) {
	m, ok := c.mixins[mixinKey(name)]
	return m, ok
}
