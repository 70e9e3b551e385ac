package scan

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/heshanpadmasiri/lambdaref/diagnostics"
	"github.com/heshanpadmasiri/lambdaref/java"
	"github.com/heshanpadmasiri/lambdaref/methodref"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of a scan. Close releases the parse trees.
type Result struct {
	Files    []string
	Findings []diagnostics.Finding
	Sources  map[string][]byte

	codebase *java.Codebase
}

// Close releases the parse trees held by the result
func (r *Result) Close() {
	if r.codebase != nil {
		r.codebase.Close()
		r.codebase = nil
	}
}

// Run parses every Java file under roots and reports the lambdas that can be
// replaced with method references
func Run(ctx context.Context, roots []string, opts Options) (*Result, error) {
	result, files, err := prepare(ctx, roots, opts)
	if err != nil {
		return nil, err
	}
	if opts.LanguageLevel < MinLanguageLevel {
		log.Infof("language level %d has no method references; nothing to report", opts.LanguageLevel)
		return result, nil
	}
	findings, err := analyze(ctx, result.codebase, files, opts)
	if err != nil {
		result.Close()
		return nil, err
	}
	result.Findings = findings
	return result, nil
}

// prepare discovers, parses and links the sources under roots
func prepare(ctx context.Context, roots []string, opts Options) (*Result, []*java.JavaFile, error) {
	paths, err := Discover(ctx, roots, opts)
	if err != nil {
		return nil, nil, err
	}
	log.Infof("scanning %d files", len(paths))

	cb, err := java.NewCodebase()
	if err != nil {
		return nil, nil, err
	}
	result := &Result{Files: paths, Sources: make(map[string][]byte), codebase: cb}
	files, err := load(ctx, cb, paths, opts.workers())
	if err != nil {
		result.Close()
		return nil, nil, err
	}
	for _, file := range files {
		result.Sources[file.Path] = file.Source
	}
	cb.Link()
	return result, files, nil
}

// load parses the files concurrently; registration in the codebase is serialized by AddFile
func load(ctx context.Context, cb *java.Codebase, paths []string, workers int) ([]*java.JavaFile, error) {
	files := make([]*java.JavaFile, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			source, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			file, err := cb.AddFile(path, source)
			if err != nil {
				return err
			}
			files[i] = file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func analyze(ctx context.Context, cb *java.Codebase, files []*java.JavaFile, opts Options) ([]diagnostics.Finding, error) {
	analyzer := methodref.NewAnalyzer(cb, methodref.Options{Strict: opts.Strict})
	var mu sync.Mutex
	var findings []diagnostics.Finding
	seen := make(map[uint64]bool)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for _, file := range files {
		g.Go(func() error {
			found, err := analyzeFile(gctx, cb, analyzer, file)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, f := range found {
				key := fingerprint(f)
				if seen[key] {
					continue
				}
				seen[key] = true
				findings = append(findings, f)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Path != findings[j].Path {
			return findings[i].Path < findings[j].Path
		}
		return findings[i].Edit.Start < findings[j].Edit.Start
	})
	return findings, nil
}

// analyzeFile checks every lambda in file. Strict mode faults surface as errors.
func analyzeFile(ctx context.Context, cb *java.Codebase, analyzer *methodref.Analyzer, file *java.JavaFile) (findings []diagnostics.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			findings, err = nil, fmt.Errorf("analyze %s: %v", file.Path, r)
		}
	}()
	for _, node := range lambdasOf(file) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lambda := methodref.Lambda{File: file, Node: node}
		fi, ok := cb.FunctionalTypeOf(file, node)
		if !ok {
			log.Debugf("%s: no functional interface type", lambda.Location())
			continue
		}
		d, ok := analyzer.Analyze(lambda, fi)
		if !ok {
			continue
		}
		edit := analyzer.Rewrite(d)
		pos := node.StartPosition()
		findings = append(findings, diagnostics.Finding{
			Path:        file.Path,
			Line:        int(pos.Row) + 1,
			Column:      int(pos.Column) + 1,
			Lambda:      lambda.Text(),
			Replacement: edit.Text,
			Edit:        edit,
		})
	}
	return findings, nil
}

func lambdasOf(file *java.JavaFile) []*tree_sitter.Node {
	var lambdas []*tree_sitter.Node
	java.ForEachMatch(file.Tree.RootNode(), file.Source, "(lambda_expression) @lambda", func(node *tree_sitter.Node) {
		lambdas = append(lambdas, node)
	})
	return lambdas
}

func fingerprint(f diagnostics.Finding) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(f.Path)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(strconv.FormatUint(uint64(f.Edit.Start), 10))
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(f.Edit.Text)
	return h.Sum64()
}

// Fix applies the findings' edits and returns the rewritten source of every
// file that changed. When lambdas nest, the outermost replacement wins.
func Fix(result *Result) (map[string][]byte, error) {
	edits := make(map[string][]diagnostics.Edit)
	for _, f := range result.Findings {
		edits[f.Path] = append(edits[f.Path], f.Edit)
	}
	fixed := make(map[string][]byte, len(edits))
	for path, fileEdits := range edits {
		source, ok := result.Sources[path]
		if !ok {
			return nil, fmt.Errorf("fix %s: source not loaded", path)
		}
		rewritten, dropped, err := diagnostics.ApplyEdits(source, fileEdits)
		if err != nil {
			return nil, fmt.Errorf("fix %s: %w", path, err)
		}
		for _, e := range dropped {
			log.Debugf("%s: skipped nested replacement %q", path, e.Text)
		}
		fixed[path] = rewritten
	}
	return fixed, nil
}
