// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package format invokes external code formatters, selected per file
// extension. Formatters are run with the file path as the final argument
// and their stdout is captured; source files are never rewritten.
package format

import (
	"bytes"
	"io"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/codebinder/pkg/types"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunOutput(name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunOutput(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = io.Discard
	err := cmd.Run()
	return out.Bytes(), err
}

var defaultExec = &osExecutor{}

// DefaultRules returns the built-in extension-to-formatter table used
// when no rules are configured.
func DefaultRules() []types.FormatRule {
	return []types.FormatRule{
		{Name: "gofmt", Command: "gofmt", Extensions: []string{".go"}},
		{Name: "autopep8", Command: "autopep8", Extensions: []string{".py"}},
		{Name: "clang-format", Command: "clang-format", Extensions: []string{".c", ".h", ".cpp"}},
		{Name: "google-java-format", Command: "google-java-format", Extensions: []string{".java"}},
	}
}

// Result is the outcome of formatting one file.
type Result struct {
	// Content is the exported text: formatter stdout when the rule
	// applied, the raw file content otherwise.
	Content string

	// Rule names the matched formatter rule, empty when none matched.
	Rule string

	// Applied reports whether a formatter produced the content.
	Applied bool

	// Fallback describes why raw content was used despite a matching
	// rule. Empty when Applied is true or no rule matched.
	Fallback string
}

// RuleStatus pairs a rule with its binary's availability on PATH.
type RuleStatus struct {
	Rule      types.FormatRule
	Available bool
}

// Invoker dispatches files to formatter commands by extension. Binary
// availability is probed once at construction; absent binaries degrade
// to unformatted passthrough rather than failing the export.
type Invoker struct {
	rules     map[string]types.FormatRule // extension -> rule
	ordered   []types.FormatRule
	available map[string]bool // command -> on PATH
	exec      executor
	logger    *zap.Logger
}

// NewInvoker builds an Invoker from the format configuration. An empty
// rule list falls back to DefaultRules.
func NewInvoker(cfg types.FormatConfig, logger *zap.Logger) *Invoker {
	return newInvoker(cfg, defaultExec, logger)
}

func newInvoker(cfg types.FormatConfig, exec executor, logger *zap.Logger) *Invoker {
	rules := cfg.Rules
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	iv := &Invoker{
		rules:     make(map[string]types.FormatRule),
		ordered:   rules,
		available: make(map[string]bool),
		exec:      exec,
		logger:    logger,
	}

	for _, rule := range rules {
		for _, ext := range rule.Extensions {
			iv.rules[normalizeExt(ext)] = rule
		}
		if _, seen := iv.available[rule.Command]; seen {
			continue
		}
		_, err := exec.LookPath(rule.Command)
		iv.available[rule.Command] = err == nil
		if err != nil {
			logger.Info("formatter not found, files will be exported unformatted",
				zap.String("formatter", rule.Name),
				zap.String("command", rule.Command))
		}
	}

	return iv
}

// Format returns the export content for path. When a rule matches and its
// binary is present, the formatter's stdout is used; any failure falls
// back to the raw content with a recorded reason.
func (iv *Invoker) Format(path string, raw []byte) Result {
	rule, ok := iv.rules[normalizeExt(filepath.Ext(path))]
	if !ok {
		return Result{Content: string(raw)}
	}

	if !iv.available[rule.Command] {
		return Result{
			Content:  string(raw),
			Rule:     rule.Name,
			Fallback: "formatter binary not found",
		}
	}

	args := make([]string, 0, len(rule.Args)+1)
	args = append(args, rule.Args...)
	args = append(args, path)

	out, err := iv.exec.RunOutput(rule.Command, args...)
	if err != nil {
		iv.logger.Warn("formatter failed, using raw content",
			zap.String("formatter", rule.Name),
			zap.String("file", path),
			zap.Error(err))
		return Result{
			Content:  string(raw),
			Rule:     rule.Name,
			Fallback: "formatter exited with error",
		}
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return Result{
			Content:  string(raw),
			Rule:     rule.Name,
			Fallback: "formatter produced no output",
		}
	}

	return Result{Content: string(out), Rule: rule.Name, Applied: true}
}

// Probe reports each configured rule and whether its binary is on PATH,
// sorted by rule name.
func (iv *Invoker) Probe() []RuleStatus {
	statuses := make([]RuleStatus, 0, len(iv.ordered))
	for _, rule := range iv.ordered {
		statuses = append(statuses, RuleStatus{
			Rule:      rule,
			Available: iv.available[rule.Command],
		})
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Rule.Name < statuses[j].Rule.Name
	})
	return statuses
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
