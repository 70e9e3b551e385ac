package scan

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/heshanpadmasiri/lambdaref/java"
	"github.com/heshanpadmasiri/lambdaref/methodref"
)

// Verdict is the analysis outcome for a single lambda
type Verdict struct {
	Location       string
	Lambda         string
	FunctionalType string // empty when the lambda's target type is unknown
	Descriptor     string // fully qualified method reference, empty when not convertible
	Replacement    string
}

// Convertible reports whether the lambda can become a method reference
func (v Verdict) Convertible() bool {
	return v.Descriptor != ""
}

// Explain analyzes every lambda in target, resolving names against the
// sources under roots, and reports a verdict for each of them
func Explain(ctx context.Context, target string, roots []string, opts Options) ([]Verdict, error) {
	target = filepath.Clean(target)
	result, files, err := prepare(ctx, append(append([]string(nil), roots...), target), opts)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	file := findFile(files, target)
	if file == nil {
		return nil, fmt.Errorf("explain %s: file was not loaded", target)
	}
	analyzer := methodref.NewAnalyzer(result.codebase, methodref.Options{Strict: opts.Strict})

	var verdicts []Verdict
	for _, node := range lambdasOf(file) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lambda := methodref.Lambda{File: file, Node: node}
		v := Verdict{Location: lambda.Location(), Lambda: lambda.Text()}
		fi, ok := result.codebase.FunctionalTypeOf(file, node)
		if ok {
			v.FunctionalType = fi.CanonicalText()
			if opts.LanguageLevel >= MinLanguageLevel {
				if d, ok := analyzer.Analyze(lambda, fi); ok {
					v.Descriptor = d.String()
					v.Replacement = analyzer.Rewrite(d).Text
				}
			}
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, nil
}

func findFile(files []*java.JavaFile, target string) *java.JavaFile {
	want, err := filepath.Abs(target)
	if err != nil {
		want = target
	}
	for _, file := range files {
		path, err := filepath.Abs(file.Path)
		if err != nil {
			path = file.Path
		}
		if path == want {
			return file
		}
	}
	return nil
}
