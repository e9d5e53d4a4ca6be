// Package main implements the trackast CLI: a single executable that
// loads one entry file, builds its call graph, and encodes it as JSON
// or Graphviz DOT.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trackast/trackast/internal/log"
	"github.com/trackast/trackast/pkg/ast"
	"github.com/trackast/trackast/pkg/builder"
	"github.com/trackast/trackast/pkg/cycles"
	"github.com/trackast/trackast/pkg/export"
	"github.com/trackast/trackast/pkg/frontend"
	"github.com/trackast/trackast/pkg/frontend/javascript"
	"github.com/trackast/trackast/pkg/frontend/python"
	"github.com/trackast/trackast/pkg/frontend/rust"
	"github.com/trackast/trackast/pkg/functionid"
	"github.com/trackast/trackast/pkg/graph"
	"github.com/trackast/trackast/pkg/loader"
	"github.com/trackast/trackast/pkg/query"
	"github.com/trackast/trackast/pkg/traversal"
)

var version = "dev"

func newRegistry() *frontend.Registry {
	return frontend.NewRegistry(rust.New(), python.New(), javascript.New())
}

func main() {
	var (
		input      string
		root       string
		language   string
		noDiscover bool
		entries    []string
		format     string
		output     string
		verbose    bool
		logJSON    bool
	)

	cmd := &cobra.Command{
		Use:     "trackast",
		Short:   "Build a call dependency graph across a multi-language source tree",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(runOptions{
				input:      input,
				root:       root,
				language:   language,
				noDiscover: noDiscover,
				entries:    entries,
				format:     format,
				output:     output,
				verbose:    verbose,
				logJSON:    logJSON,
			})
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&input, "input", "", "entry source file (required)")
	cmd.Flags().StringVar(&root, "root", "", "module-resolution root (default: directory of --input)")
	cmd.Flags().StringVar(&language, "language", "", "force language (rust|python|javascript); default: detect by extension")
	cmd.Flags().BoolVar(&noDiscover, "no-discover", false, "disable import-following; translate only the entry file")
	cmd.Flags().StringArrayVar(&entries, "entry", nil, "entry-point FunctionId or module::name shorthand; repeatable")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json|dot")
	cmd.Flags().StringVar(&output, "output", "-", "output file; '-' or absent means stdout")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "emit structured JSON log lines to stderr")

	cmd.MarkFlagRequired("input")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type runOptions struct {
	input      string
	root       string
	language   string
	noDiscover bool
	entries    []string
	format     string
	output     string
	verbose    bool
	logJSON    bool
}

func run(opts runOptions) error {
	logger := log.Default()
	if opts.verbose {
		logger.SetLevel(log.DebugLevel)
	}
	if opts.logJSON {
		logger.SetJSONOutput(true)
	}

	if opts.format != "json" && opts.format != "dot" {
		return fail(logger, fmt.Errorf("unsupported --format %q (want json or dot)", opts.format))
	}

	registry := newRegistry()

	var lang frontend.Language
	var err error
	if opts.language != "" {
		lang = frontend.Language(opts.language)
	} else {
		lang, err = frontend.DetectLanguage(opts.input)
		if err != nil {
			return fail(logger, err)
		}
	}

	fe, err := registry.ForLanguage(lang)
	if err != nil {
		return fail(logger, err)
	}

	trees, err := loader.Load(fe, opts.input, loader.Options{
		Root:     opts.root,
		Discover: !opts.noDiscover,
		Logger:   logger,
	})
	if err != nil {
		return fail(logger, err)
	}

	merged := ast.Merge(trees)

	g, err := builder.Build(merged)
	if err != nil {
		return fail(logger, err)
	}

	if len(opts.entries) > 0 {
		resolved, err := resolveEntries(g, opts.entries, logger.Component("cli"))
		if err != nil {
			return fail(logger, err)
		}
		result, err := traversal.FromEntries(g, resolved)
		if err != nil {
			return fail(logger, err)
		}
		g = subgraph(g, result)
	}

	stats := query.CountStats(g)
	stats.CycleCount = len(cycles.FindCycles(g))
	logger.Component("builder").Info("built call graph", "nodes", stats.NodeCount, "edges", stats.EdgeCount, "external", stats.ExternalCount, "cycles", stats.CycleCount)

	w := os.Stdout
	var closeFn func()
	if opts.output != "" && opts.output != "-" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fail(logger, err)
		}
		w = f
		closeFn = func() { f.Close() }
	}
	if closeFn != nil {
		defer closeFn()
	}

	switch opts.format {
	case "dot":
		err = export.ToDOT(g, w)
	default:
		err = export.ToJSON(g, w)
	}
	if err != nil {
		return fail(logger, err)
	}

	return nil
}

func fail(logger log.Logger, err error) error {
	logger.Error(err.Error())
	return err
}

// resolveEntries implements the fuzzy --entry shorthand: a value is
// used as a literal node ID if it matches exactly, otherwise it is
// treated as a "module::name"-style prefix and matched against every
// node ID in the graph, using every match found.
func resolveEntries(g *graph.CallGraph, raw []string, logger log.Logger) ([]functionid.FunctionId, error) {
	allIDs := make([]functionid.FunctionId, 0, g.NodeCount())
	for id := range g.Nodes {
		allIDs = append(allIDs, id)
	}
	sort.Slice(allIDs, func(i, j int) bool { return allIDs[i] < allIDs[j] })

	var out []functionid.FunctionId
	for _, spec := range raw {
		if _, ok := g.GetNode(functionid.FunctionId(spec)); ok {
			logger.Info("resolved entry", "spec", spec, "match", "exact")
			out = append(out, functionid.FunctionId(spec))
			continue
		}

		var matches []functionid.FunctionId
		for _, id := range allIDs {
			if strings.HasPrefix(string(id), spec) {
				matches = append(matches, id)
			}
		}
		if len(matches) == 0 {
			logger.Warn("entry did not resolve to any node", "spec", spec)
			continue
		}
		for _, m := range matches {
			logger.Info("resolved entry", "spec", spec, "match", string(m))
		}
		out = append(out, matches...)
	}
	return out, nil
}

// subgraph restricts g to the nodes and edges reachable from the
// entry set, preserving external nodes reached along the way.
func subgraph(g *graph.CallGraph, result *traversal.Result) *graph.CallGraph {
	sub := graph.New()
	for id := range result.Reachable {
		n, ok := g.GetNode(id)
		if !ok {
			continue
		}
		sub.InsertNode(n)
	}
	for _, e := range g.Edges {
		if _, ok := result.Reachable[e.From]; !ok {
			continue
		}
		if _, ok := result.Reachable[e.To]; !ok {
			continue
		}
		sub.InsertEdge(e)
	}
	return sub
}
