// Package navfile runs the NAV codec against files on disk.
package navfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ssargent/navcodec/pkg/codec"
	"github.com/ssargent/navcodec/pkg/journal"
	"github.com/ssargent/navcodec/pkg/logger"
)

// Well-known file names used by auto-processing.
const (
	DecodeInputName  = "wait2decode.nav"
	DecodeOutputName = "already_decode.txt"
	EncodeInputName  = "wait2encode.txt"
	EncodeOutputName = "already_encode.nav"
)

// Operation names as recorded in the journal.
const (
	OperationDecode = journal.OperationDecode
	OperationEncode = journal.OperationEncode
)

// Recorder stores finished runs.
type Recorder interface {
	Record(run journal.Run) (ksuid.KSUID, error)
}

// Option configures a Processor.
type Option func(*Processor)

// WithRecorder records every run in r.
func WithRecorder(r Recorder) Option {
	return func(p *Processor) {
		p.recorder = r
	}
}

// Processor decodes and encodes files with one codec configuration.
type Processor struct {
	cfg      codec.Config
	log      *logger.Logger
	recorder Recorder
}

// NewProcessor validates cfg and returns a Processor logging to log.
func NewProcessor(cfg codec.Config, log *logger.Logger, opts ...Option) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}

	p := &Processor{cfg: cfg, log: log}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

type convertFunc func(c *codec.NavCodec, raw []byte) ([]byte, codec.Stats, error)

// DecodeFile decodes the NAV file at in and writes the text to out.
func (p *Processor) DecodeFile(ctx context.Context, in, out string) error {
	return p.process(ctx, OperationDecode, in, out, func(c *codec.NavCodec, raw []byte) ([]byte, codec.Stats, error) {
		text, stats, err := c.DecodeWithStats(raw)
		if err != nil {
			return nil, stats, err
		}
		data, err := c.FormatText(text)
		return data, stats, err
	})
}

// EncodeFile encodes the text file at in and writes the NAV bytes to out.
func (p *Processor) EncodeFile(ctx context.Context, in, out string) error {
	return p.process(ctx, OperationEncode, in, out, func(c *codec.NavCodec, raw []byte) ([]byte, codec.Stats, error) {
		text, err := c.ParseText(raw)
		if err != nil {
			return nil, codec.Stats{}, err
		}
		return c.EncodeWithStats(text)
	})
}

func (p *Processor) process(ctx context.Context, op, in, out string, convert convertFunc) error {
	run := journal.Run{
		ID:        journal.NewRunID(),
		Operation: op,
		Input:     in,
		Output:    out,
		StartedAt: time.Now().UTC(),
	}
	log := p.log.With(func(c zerolog.Context) zerolog.Context {
		return c.Str("run_id", run.ID.String()).Str("operation", op)
	})

	log.Info().Msgf("Starting %s operation: %s -> %s", op, in, out)

	err := p.convertFile(ctx, log, in, out, convert, &run)

	run.Duration = time.Since(run.StartedAt)
	run.Status = journal.StatusSuccess
	if err != nil {
		run.Status = journal.StatusError
		run.Error = err.Error()
	}
	p.record(log, run)

	if err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}

	log.Info().
		Int("header_bytes", run.HeaderBytes).
		Int("content_bytes", run.ContentBytes).
		Dur("duration", run.Duration).
		Msgf("%s completed successfully. Output: %s", cases.Title(language.English).String(op), out)
	return nil
}

func (p *Processor) convertFile(ctx context.Context, log *logger.Logger, in, out string, convert convertFunc, run *journal.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c, err := codec.NewNavCodec(p.cfg, codec.WithProgress(func(percent int) {
		log.Info().Msgf("Progress: %d%%", percent)
	}))
	if err != nil {
		return err
	}

	raw, err := readInput(in)
	if err != nil {
		return err
	}

	data, stats, err := convert(c, raw)
	run.HeaderBytes = stats.HeaderBytes
	run.ContentBytes = stats.ContentBytes
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return writeAtomic(out, data)
}

func (p *Processor) record(log *logger.Logger, run journal.Run) {
	if p.recorder == nil {
		return
	}
	if _, err := p.recorder.Record(run); err != nil {
		log.Warn().Err(err).Msg("failed to record run in journal")
	}
}

// AutoProcess decodes wait2decode.nav and encodes wait2encode.txt found in
// dir, writing already_decode.txt and already_encode.nav next to them. An
// empty dir means the working directory. It returns how many files were
// processed and stops at the first failure.
func (p *Processor) AutoProcess(ctx context.Context, dir string) (int, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return 0, err
		}
		dir = wd
	}

	p.log.Info().Msgf("Auto-processing files in: %s", dir)

	processed := 0
	for _, name := range []string{DecodeInputName, EncodeInputName} {
		if !fileExists(filepath.Join(dir, name)) {
			continue
		}
		if err := p.processWellKnown(ctx, dir, name); err != nil {
			return processed, err
		}
		processed++
	}

	if processed == 0 {
		p.log.Info().Msgf("No files found for auto-processing (%s or %s)", DecodeInputName, EncodeInputName)
	}
	return processed, nil
}

// OutputName returns the auto-processing output for a well-known input name.
func OutputName(input string) (string, bool) {
	switch input {
	case DecodeInputName:
		return DecodeOutputName, true
	case EncodeInputName:
		return EncodeOutputName, true
	}
	return "", false
}

func (p *Processor) processWellKnown(ctx context.Context, dir, name string) error {
	out, ok := OutputName(name)
	if !ok {
		return fmt.Errorf("no auto-processing rule for %s", name)
	}

	in := filepath.Join(dir, name)
	out = filepath.Join(dir, out)
	if name == DecodeInputName {
		return p.DecodeFile(ctx, in, out)
	}
	return p.EncodeFile(ctx, in, out)
}

func readInput(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", codec.ErrMissingFile, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", codec.ErrEmptyInput, path)
	}
	return raw, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
