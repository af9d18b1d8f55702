package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/scribe/internal/engine"
	"github.com/dshills/scribe/internal/script"
	"github.com/dshills/scribe/internal/watch"
)

type docFormat string

const (
	formatJSON     docFormat = "json"
	formatHTML     docFormat = "html"
	formatMarkdown docFormat = "markdown"
	formatText     docFormat = "text"
)

func parseFormat(s string) (docFormat, error) {
	switch strings.ToLower(s) {
	case "json":
		return formatJSON, nil
	case "html", "htm":
		return formatHTML, nil
	case "markdown", "md":
		return formatMarkdown, nil
	case "text", "txt", "plain":
		return formatText, nil
	}
	return "", fmt.Errorf("unknown format %q (must be json, html, markdown or text)", s)
}

// formatFor returns the explicit format if set, else the format implied by
// the path's extension, else text.
func formatFor(explicit, path string) (docFormat, error) {
	if explicit != "" {
		return parseFormat(explicit)
	}
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		if f, err := parseFormat(ext); err == nil {
			return f, nil
		}
	}
	return formatText, nil
}

func readInput(e *env, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(e.stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(e *env, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := e.stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func importDoc(e *env, f docFormat, data []byte) (*engine.Document, error) {
	opts := e.cfg.EngineOptions(e.log)
	switch f {
	case formatJSON:
		return engine.FromJSON(data, opts...)
	case formatHTML:
		return engine.FromHTML(string(data), opts...)
	case formatMarkdown:
		return engine.FromMarkdown(string(data), opts...)
	default:
		return engine.FromText(string(data), opts...)
	}
}

func exportDoc(d *engine.Document, f docFormat, indent bool) ([]byte, error) {
	var (
		s   string
		err error
	)
	switch f {
	case formatJSON:
		if indent {
			return d.ToJSONPretty()
		}
		return d.ToJSON()
	case formatHTML:
		s, err = d.ToHTML()
	case formatMarkdown:
		s, err = d.ToMarkdown()
	default:
		s, err = d.ToPlainText()
	}
	return []byte(s), err
}

// docFlags are the input and output flags shared by convert and run.
type docFlags struct {
	from   string
	to     string
	output string
	pretty bool
	watch  bool
}

func (f *docFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.from, "from", "", "Input format (json, html, markdown, text); default from extension")
	fs.StringVar(&f.to, "to", "", "Output format; default from -o extension, else the input format")
	fs.StringVar(&f.output, "o", "", "Output file (default stdout)")
	fs.BoolVar(&f.pretty, "pretty", false, "Indent JSON output")
	fs.BoolVar(&f.watch, "watch", false, "Rebuild whenever the input file changes")
}

// serve runs build once, and with -watch again after every change to the
// input file or any of extra, until the context is done. Failed rebuilds
// are logged and do not stop the loop.
func (f *docFlags) serve(e *env, fs *flag.FlagSet, build func() error, extra ...string) error {
	if !f.watch {
		return build()
	}
	in := fs.Arg(0)
	if in == "" || in == "-" {
		fmt.Fprintln(e.stderr, "Error: -watch needs an input file")
		fs.Usage()
		return errUsage
	}
	if err := build(); err != nil {
		return err
	}

	w, err := watch.New(watch.DefaultDelay)
	if err != nil {
		return err
	}
	defer w.Close()
	for _, path := range append([]string{in}, extra...) {
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
	e.log.Info("watching %s", in)

	for {
		select {
		case <-e.ctx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			e.log.Debug("%s changed (%v)", ev.Path, ev.Op)
			if err := build(); err != nil {
				e.log.Error("rebuild failed: %v", err)
				continue
			}
			e.log.Info("rebuilt after change to %s", ev.Path)
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			e.log.Warn("watch: %v", err)
		}
	}
}

// load reads and imports the document named by the single positional
// argument, or stdin.
func (f *docFlags) load(e *env, fs *flag.FlagSet) (*engine.Document, docFormat, error) {
	if fs.NArg() > 1 {
		fs.Usage()
		return nil, "", errUsage
	}
	in := fs.Arg(0)
	from, err := formatFor(f.from, in)
	if err != nil {
		return nil, "", err
	}
	data, err := readInput(e, in)
	if err != nil {
		return nil, "", err
	}
	d, err := importDoc(e, from, data)
	if err != nil {
		return nil, "", err
	}
	e.log.Debug("loaded %s document %s (%d characters)", from, d.ID(), d.Len())
	return d, from, nil
}

func (f *docFlags) save(e *env, d *engine.Document, from docFormat) error {
	to := from
	if f.to != "" || filepath.Ext(f.output) != "" {
		var err error
		if to, err = formatFor(f.to, f.output); err != nil {
			return err
		}
	}
	data, err := exportDoc(d, to, f.pretty)
	if err != nil {
		return err
	}
	return writeOutput(e, f.output, data)
}

func newFlagSet(e *env, name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: scribe %s %s\n\nOptions:\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

func convertCmd(e *env, args []string) error {
	var df docFlags
	fs := newFlagSet(e, "convert", "[options] [input]")
	df.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	return df.serve(e, fs, func() error {
		d, from, err := df.load(e, fs)
		if err != nil {
			return err
		}
		defer d.Destroy()
		return df.save(e, d, from)
	})
}

func statsCmd(e *env, args []string) error {
	var (
		from    string
		asJSON  bool
		indent  bool
	)
	fs := newFlagSet(e, "stats", "[options] [input]")
	fs.StringVar(&from, "from", "", "Input format (json, html, markdown, text); default from extension")
	fs.BoolVar(&asJSON, "json", false, "Print statistics as JSON")
	fs.BoolVar(&indent, "pretty", false, "Indent JSON output")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	df := docFlags{from: from}
	d, _, err := df.load(e, fs)
	if err != nil {
		return err
	}
	defer d.Destroy()

	m := d.MemoryStats()
	fields := []struct {
		key   string
		value any
	}{
		{"characters", m.TextLength},
		{"words", d.WordCount()},
		{"lines", d.LineCount()},
		{"blocks", m.BlockCount},
		{"runs", m.RunCount},
		{"bytes", m.TextBytes},
		{"memory", m.EstimatedBytes},
	}

	if !asJSON {
		for _, f := range fields {
			fmt.Fprintf(e.stdout, "%-11s %v\n", f.key+":", f.value)
		}
		return nil
	}

	out := []byte(`{}`)
	for _, f := range fields {
		if out, err = sjson.SetBytes(out, f.key, f.value); err != nil {
			return err
		}
	}
	if indent {
		out = pretty.Pretty(out)
	} else {
		out = append(out, '\n')
	}
	_, err = e.stdout.Write(out)
	return err
}

func runCmd(e *env, args []string) error {
	var (
		df       docFlags
		path     string
		inline   string
		printOut bool
	)
	fs := newFlagSet(e, "run", "(-script file.lua | -e code) [options] [input]")
	df.register(fs)
	fs.StringVar(&path, "script", "", "Lua script file")
	fs.StringVar(&inline, "e", "", "Lua code to run")
	fs.BoolVar(&printOut, "print", false, "Send script print output to stdout instead of stderr")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if (path == "") == (inline == "") {
		fmt.Fprintln(e.stderr, "Error: exactly one of -script or -e is required")
		fs.Usage()
		return errUsage
	}

	timeout, err := e.cfg.ScriptTimeout()
	if err != nil {
		return err
	}
	printTo := e.stderr
	if printOut {
		printTo = e.stdout
	}

	build := func() error {
		name, code := "-e", inline
		if path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			name, code = filepath.Base(path), string(data)
		}

		d, from, err := df.load(e, fs)
		if err != nil {
			return err
		}
		defer d.Destroy()

		st := script.NewState(
			script.WithTimeout(timeout),
			script.WithMaxCalls(int64(e.cfg.Script.MaxCalls)),
			script.WithOutput(printTo),
			script.WithLogger(e.log),
		)
		defer st.Close()
		st.Bind(d)

		if err := st.Run(e.ctx, name, code); err != nil {
			return err
		}
		if printOut && df.output == "" {
			return nil
		}
		return df.save(e, d, from)
	}

	var extra []string
	if path != "" {
		extra = append(extra, path)
	}
	return df.serve(e, fs, build, extra...)
}
