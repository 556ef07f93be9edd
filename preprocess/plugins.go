package preprocess

import (
	"maps"
	"regexp"
	"slices"
)

// ConverterFunc receives the whole text after variable substitution and mixin
// expansion and returns its replacement.
type ConverterFunc func(text string, ctx *Context) string

// Func implements a call-like construct "name(args)". It receives raw,
// unsplit argument text.
type Func func(args string) string

// Plugins are extension points of the conversion. Both registries are empty
// by default and have to be populated before conversions start.
type Plugins struct {
	Converters []ConverterFunc
	Functions  map[string]Func
}

var funcCallRe = regexp.MustCompile(`([\w-]+)\(([^);]*)\)`)

// Clone returns a copy which can be modified without affecting the original.
func (p *Plugins) Clone() *Plugins {
	if p == nil {
		return &Plugins{}
	}
	return &Plugins{Converters: slices.Clone(p.Converters), Functions: maps.Clone(p.Functions)}
}

// Register adds named function.
func (p *Plugins) Register(name string, fn Func) {
	if p.Functions == nil {
		p.Functions = make(map[string]Func)
	}
	p.Functions[name] = fn
}

func (p *Plugins) runConverters(text string, ctx *Context) string {
	for _, conv := range p.Converters {
		text = conv(text, ctx)
	}
	return text
}

// runFunctions replaces registered calls, unknown names are regular CSS
// functions and stay as they are.
func (p *Plugins) runFunctions(text string) string {
	if len(p.Functions) == 0 {
		return text
	}
	return replaceAllSubmatchFunc(funcCallRe, text, func(m []string, _ int) string {
		if fn, ok := p.Functions[m[1]]; ok {
			return fn(m[2])
		}
		return m[0]
	})
}
