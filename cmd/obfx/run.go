package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hengadev/obfx"
	"github.com/hengadev/obfx/internal/audit"
	"github.com/hengadev/obfx/internal/watch"
)

// jobSettings is the merged result of profile values and command-line
// flags. Flags that were set explicitly win over the profile, which wins
// over defaults.
type jobSettings struct {
	fields      []string
	primaryKey  string
	format      string
	mode        string
	maskToken   string
	tokenLength int
	keyEnv      string
	auditDB     string
}

// obfuscationFlags registers the flags shared by run and watch.
type obfuscationFlags struct {
	fields      *string
	primaryKey  *string
	format      *string
	mask        *bool
	maskToken   *string
	tokenLength *int
	keyEnv      *string
	profile     *string
	auditDB     *string
}

func registerObfuscationFlags(fs *flag.FlagSet) *obfuscationFlags {
	return &obfuscationFlags{
		fields:      fs.String("fields", "", "Comma-separated field names to obfuscate"),
		primaryKey:  fs.String("pk", "", "Primary key field seeding each token (default \"id\")"),
		format:      fs.String("format", "", "Input format (default: detect from the filename)"),
		mask:        fs.Bool("mask", false, "Replace values with a fixed mask instead of tokens"),
		maskToken:   fs.String("mask-token", "", "Mask replacement text (default \"***\")"),
		tokenLength: fs.Int("length", 0, "Token length in hex characters (default 16)"),
		keyEnv:      fs.String("key-env", "", "Environment variable holding the key (default "+obfx.EnvKey+")"),
		profile:     fs.String("profile", "", "Path to a YAML redaction profile"),
		auditDB:     fs.String("audit-db", "", "Path to a sqlite run journal"),
	}
}

// settings merges the profile (if any) with explicitly set flags.
func (f *obfuscationFlags) settings(fs *flag.FlagSet) (jobSettings, error) {
	s := jobSettings{}

	if *f.profile != "" {
		profile, err := LoadProfile(*f.profile)
		if err != nil {
			return s, err
		}
		if err := profile.Validate(); err != nil {
			return s, fmt.Errorf("invalid profile %s: %w", *f.profile, err)
		}
		s.fields = profile.Fields
		s.primaryKey = profile.PrimaryKey
		s.format = profile.Format
		s.mode = profile.Mode
		s.maskToken = profile.MaskToken
		s.tokenLength = profile.TokenLength
	}

	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["fields"] {
		s.fields = splitFields(*f.fields)
	}
	if set["pk"] {
		s.primaryKey = *f.primaryKey
	}
	if set["format"] {
		s.format = *f.format
	}
	if set["mask"] {
		s.mode = string(obfx.ModeToken)
		if *f.mask {
			s.mode = string(obfx.ModeMask)
		}
	}
	if set["mask-token"] {
		s.maskToken = *f.maskToken
	}
	if set["length"] {
		s.tokenLength = *f.tokenLength
	}
	s.keyEnv = *f.keyEnv
	s.auditDB = *f.auditDB

	if len(s.fields) == 0 {
		return s, errors.New("at least one field is required (use -fields or a profile)")
	}

	return s, nil
}

// engineOptions translates merged settings into engine options. The format
// is passed separately because run and watch resolve it per file.
func (s jobSettings) engineOptions(format string) []obfx.Option {
	opts := []obfx.Option{obfx.WithFormat(format)}
	if s.primaryKey != "" {
		opts = append(opts, obfx.WithPrimaryKey(s.primaryKey))
	}
	if s.mode != "" {
		opts = append(opts, obfx.WithMode(obfx.Mode(s.mode)))
	}
	if s.maskToken != "" {
		opts = append(opts, obfx.WithMaskToken(s.maskToken))
	}
	if s.tokenLength > 0 {
		opts = append(opts, obfx.WithTokenLength(s.tokenLength))
	}
	if s.keyEnv != "" {
		opts = append(opts, obfx.WithKeySource(obfx.EnvKeySource{Var: s.keyEnv}))
	}
	return opts
}

// resolveFormat picks the format for one input path: explicit setting
// first, then filename detection, then csv for streams with no name.
func (s jobSettings) resolveFormat(inputPath string) (string, error) {
	if s.format != "" {
		return s.format, nil
	}
	if inputPath == "-" {
		return obfx.FormatCSV, nil
	}
	return obfx.DetectFormat(inputPath)
}

func splitFields(list string) []string {
	var fields []string
	for _, f := range strings.Split(list, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

func runCommand(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	flags := registerObfuscationFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s run [options] <input> [output]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Reads <input>, obfuscates the named fields and writes [output]\n")
		fmt.Fprintf(os.Stderr, "(default: <input> with .obfuscated before the extension).\n")
		fmt.Fprintf(os.Stderr, "Use \"-\" to read stdin and write stdout.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	fs.Parse(args)

	input := fs.Arg(0)
	if input == "" {
		fs.Usage()
		os.Exit(1)
	}
	output := fs.Arg(1)
	if output == "" {
		output = defaultOutputPath(input)
	}

	settings, err := flags.settings(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	format, err := settings.resolveFormat(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	journal := openJournal(settings.auditDB)
	if journal != nil {
		defer journal.Close()
	}

	ctx := context.Background()
	count, err := processFile(ctx, input, output, settings.fields, settings.engineOptions(format))
	recordRun(ctx, journal, input, output, format, settings.fields, count, err)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Obfuscation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Processed %d record(s): %s -> %s\n", count, input, output)
}

func watchCommand(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	flags := registerObfuscationFlags(fs)
	extensions := fs.String("ext", "csv", "Comma-separated extensions to process")
	outDir := fs.String("out-dir", "", "Directory for obfuscated output (default: alongside the input)")
	debounce := fs.Duration("debounce", 500*time.Millisecond, "How long a file must stay quiet before processing")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s watch [options] <directory>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Watches <directory> and obfuscates matching files as they arrive.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	fs.Parse(args)

	dir := fs.Arg(0)
	if dir == "" {
		fs.Usage()
		os.Exit(1)
	}

	settings, err := flags.settings(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	journal := openJournal(settings.auditDB)
	if journal != nil {
		defer journal.Close()
	}

	logger := slog.Default()
	process := func(ctx context.Context, path string) error {
		// Skip files this tool produced, they land in the same directory
		// when -out-dir is not set.
		if strings.Contains(filepath.Base(path), ".obfuscated.") {
			return nil
		}

		output := defaultOutputPath(path)
		if *outDir != "" {
			output = filepath.Join(*outDir, filepath.Base(output))
		}

		format, err := settings.resolveFormat(path)
		if err != nil {
			return err
		}

		count, err := processFile(ctx, path, output, settings.fields, settings.engineOptions(format))
		recordRun(ctx, journal, path, output, format, settings.fields, count, err)
		if err != nil {
			return err
		}

		logger.InfoContext(ctx, "file obfuscated", "input", path, "output", output, "records", count)
		return nil
	}

	watcher, err := watch.New(watch.Config{
		Dir:        dir,
		Extensions: splitFields(*extensions),
		Debounce:   *debounce,
		Logger:     logger,
	}, process)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Watch failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintln(os.Stderr, "Watch stopped")
}

// processFile streams one input into one output. "-" means stdin/stdout.
func processFile(ctx context.Context, inputPath, outputPath string, fields []string, opts []obfx.Option) (int, error) {
	in, closeIn, err := openInput(inputPath)
	if err != nil {
		return 0, err
	}
	defer closeIn()

	out, closeOut, err := openOutput(outputPath)
	if err != nil {
		return 0, err
	}

	count, err := obfx.ObfuscateStream(ctx, in, out, fields, opts...)
	if cerr := closeOut(); err == nil && cerr != nil {
		err = fmt.Errorf("closing output '%s': %w", outputPath, cerr)
	}
	return count, err
}

func openInput(path string) (io.Reader, func() error, error) {
	if path == "-" {
		return os.Stdin, func() error { return nil }, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input '%s': %w", path, err)
	}
	return f, f.Close, nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output '%s': %w", path, err)
	}
	return f, f.Close, nil
}

// defaultOutputPath derives "name.obfuscated.ext" from "name.ext". Stdin
// input defaults to stdout output.
func defaultOutputPath(input string) string {
	if input == "-" {
		return "-"
	}
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".obfuscated" + ext
}

func openJournal(path string) *audit.Journal {
	if path == "" {
		return nil
	}

	journal, err := audit.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open audit journal: %v\n", err)
		os.Exit(1)
	}
	return journal
}

func recordRun(ctx context.Context, journal *audit.Journal, source, target, format string, fields []string, records int, runErr error) {
	if journal == nil {
		return
	}

	entry := audit.Entry{
		Source:  source,
		Target:  target,
		Format:  format,
		Fields:  fields,
		Records: records,
		Outcome: audit.OutcomeOK,
	}
	if runErr != nil {
		entry.Outcome = audit.OutcomeError
		entry.Message = runErr.Error()
	}

	if _, err := journal.Record(ctx, entry); err != nil {
		slog.Warn("failed to record run", "error", err)
	}
}
