// Package convert implements "convert" sub-command: it finds style sheet
// sources, runs them through preprocessor and writes resulting CSS.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"pscss/config"
	"pscss/loader"
	"pscss/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Logger().Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}

	dst := cmd.Args().Get(1)
	switch {
	case dst == "-":
		env.Stdout = true
	case len(dst) == 0:
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if !env.Stdout {
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	if err := applyFlags(cmd, env, log); err != nil {
		return err
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst),
		zap.Stringer("check", env.Cfg.Conversion.Check), zap.Bool("minify", env.Cfg.Conversion.Minify))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	if loader.IsURL(src) {
		return processURL(ctx, src, dst, log)
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	return process(ctx, src, dst, log)
}

// applyFlags superimposes command line flags on loaded configuration.
func applyFlags(cmd *cli.Command, env *state.LocalEnv, log *zap.Logger) error {
	conv := &env.Cfg.Conversion

	if cmd.IsSet("root") {
		conv.RootSelector = cmd.String("root")
	}
	if cmd.IsSet("nc") {
		conv.NestedComments = cmd.Bool("nc")
	}
	if cmd.IsSet("minify") {
		conv.Minify = cmd.Bool("minify")
	}
	if cmd.IsSet("check") {
		mode, err := config.ParseCheckMode(cmd.String("check"))
		if err != nil {
			return fmt.Errorf("bad --check value: %w", err)
		}
		conv.Check = mode
	}
	if cmd.IsSet("charset") {
		conv.Charset = cmd.String("charset")
	}
	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	name, err := charsetName(conv.Charset)
	if err != nil {
		return err
	}
	env.Charset = name
	if !strings.EqualFold(name, "utf-8") {
		log.Debug("Decoding sources", zap.String("charset", name))
	}
	return nil
}

// charsetName validates IANA character set name and returns its canonical
// form.
func charsetName(label string) (string, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return "", fmt.Errorf("unknown character set %q: %w", label, err)
	}
	if enc == nil {
		return "", fmt.Errorf("character set %q is not supported", label)
	}
	name, err := ianaindex.IANA.Name(enc)
	if err != nil {
		return "", fmt.Errorf("character set %q: %w", label, err)
	}
	return name, nil
}
