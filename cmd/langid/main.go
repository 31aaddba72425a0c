// Command langid prints the languages of files, PDFs or standard input.
//
//	langid [flags] [file ...]
//
// With no files it reads standard input. Files ending in .pdf have their
// text extracted first.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ledongthuc/pdf"
	flag "github.com/spf13/pflag"

	"langindexer/internal/pkg/detector"
	"langindexer/internal/pkg/langdata"
)

type options struct {
	bestEffort bool
	plainText  bool
	quads      bool
	chunks     bool
	jsonOut    bool
	workers    int
	hints      detector.Hints
	language   string
}

func main() {
	var opts options
	flag.BoolVarP(&opts.bestEffort, "best-effort", "b", false, "report a guess even when it is unreliable")
	flag.BoolVar(&opts.plainText, "plain", false, "treat input as plain text, not HTML")
	flag.BoolVar(&opts.quads, "quads", false, "score every script with quadgrams")
	flag.BoolVarP(&opts.chunks, "chunks", "c", false, "print per-language byte ranges")
	flag.BoolVarP(&opts.jsonOut, "json", "j", false, "print results as JSON lines")
	flag.IntVarP(&opts.workers, "workers", "w", runtime.NumCPU(), "files detected in parallel")
	flag.StringVar(&opts.hints.ContentLanguage, "content-language", "", "Content-Language hint, e.g. \"fr, en;q=0.5\"")
	flag.StringVar(&opts.hints.TLD, "tld", "", "top-level domain hint")
	flag.StringVar(&opts.hints.Charset, "charset", "", "original charset hint, e.g. Shift_JIS")
	flag.StringVarP(&opts.language, "language", "l", "", "language code hint")
	flag.Parse()

	if err := run(context.Background(), opts, flag.Args(), os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "langid:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, paths []string, stdin io.Reader, out io.Writer) error {
	names := paths
	texts := make([][]byte, 0, max(len(paths), 1))
	if len(paths) == 0 {
		text, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		names = []string{"-"}
		texts = append(texts, text)
	}
	for _, path := range paths {
		text, err := readText(path)
		if err != nil {
			return err
		}
		texts = append(texts, text)
	}

	opts.hints.Language = langdata.FromCode(opts.language)
	results, err := detector.Default().DetectBatch(ctx, texts, &opts.hints, opts.flags(), opts.workers)
	if err != nil {
		return err
	}
	for i, res := range results {
		if err := printResult(out, names[i], res, opts.jsonOut); err != nil {
			return err
		}
	}
	return nil
}

func (opts options) flags() detector.Flags {
	var flags detector.Flags
	if opts.bestEffort {
		flags |= detector.FlagBestEffort
	}
	if opts.plainText {
		flags |= detector.FlagPlainText
	}
	if opts.quads {
		flags |= detector.FlagScoreAsQuads
	}
	if opts.chunks {
		flags |= detector.FlagReturnChunks
	}
	return flags
}

func readText(path string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err := pdfText(path)
		if err != nil {
			return nil, err
		}
		return []byte(text), nil
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return text, nil
}

func pdfText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no extractable text found in %s", path)
	}
	return b.String(), nil
}

func printResult(out io.Writer, name string, res detector.Result, jsonOut bool) error {
	if jsonOut {
		line, err := json.Marshal(struct {
			File string `json:"file"`
			detector.Result
		}{name, res})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", line)
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s:", name)
	for i, lang := range res.Top3 {
		if lang == langdata.Unknown {
			break
		}
		fmt.Fprintf(&b, " %s %d%%", lang.Code(), res.Percent3[i])
	}
	if res.Top3[0] == langdata.Unknown {
		b.WriteString(" unknown")
	}
	if !res.IsReliable {
		b.WriteString(" (unreliable)")
	}
	fmt.Fprintf(&b, " [%d bytes]\n", res.TextBytes)
	for _, c := range res.Chunks {
		fmt.Fprintf(&b, "  %d+%d %s\n", c.Offset, c.Bytes, c.Lang.Code())
	}
	_, err := io.WriteString(out, b.String())
	return err
}
