package css

import (
	"errors"
	"fmt"

	"github.com/evanw/esbuild/pkg/api"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Minify removes whitespace and applies syntax level shortening to data.
func (c *Checker) Minify(data []byte, source string) ([]byte, error) {
	result := api.Transform(string(data), api.TransformOptions{
		Loader:           api.LoaderCSS,
		Sourcefile:       source,
		MinifyWhitespace: true,
		MinifySyntax:     true,
		LogLevel:         api.LogLevelSilent,
	})
	for _, m := range result.Warnings {
		c.log.Debug("Minifier warning", zap.String("source", source), zap.String("message", formatMessage(m)))
	}
	if len(result.Errors) > 0 {
		errs := make([]error, 0, len(result.Errors))
		for _, m := range result.Errors {
			errs = append(errs, errors.New(formatMessage(m)))
		}
		return nil, fmt.Errorf("unable to minify %s: %w", source, multierr.Combine(errs...))
	}
	return result.Code, nil
}

func formatMessage(m api.Message) string {
	if m.Location == nil {
		return m.Text
	}
	return fmt.Sprintf("%d:%d: %s", m.Location.Line, m.Location.Column, m.Text)
}
