// Package filter narrows and reshapes command output with JMESPath
// expressions or a shell pipeline.
package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/jmespath/go-jmespath"
)

// QueryShellTimeout bounds a $(command) query
const QueryShellTimeout = 30 * time.Second

// shellPattern matches a $(command) query
var shellPattern = regexp.MustCompile(`^\$\((.+)\)$`)

// Pipeline is a compiled --filter/--query pair. The filter narrows the
// result (e.g. [?vintageYear > `2018`]); the query selects from it
// (e.g. [].warehouseUnitId) or pipes it through a shell command.
type Pipeline struct {
	filter *jmespath.JMESPath
	query  *jmespath.JMESPath
	shell  string
}

// Compile validates both expressions. Empty expressions are skipped.
func Compile(filterExpr, queryExpr string) (*Pipeline, error) {
	p := &Pipeline{}

	if filterExpr != "" {
		compiled, err := jmespath.Compile(filterExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression '%s': %w", filterExpr, err)
		}
		p.filter = compiled
	}

	if m := shellPattern.FindStringSubmatch(queryExpr); len(m) > 1 {
		p.shell = m[1]
	} else if queryExpr != "" {
		compiled, err := jmespath.Compile(queryExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid query expression '%s': %w", queryExpr, err)
		}
		p.query = compiled
	}

	return p, nil
}

// Empty reports whether the pipeline leaves values untouched
func (p *Pipeline) Empty() bool {
	return p.filter == nil && p.query == nil && p.shell == ""
}

// Shell reports whether the query is a shell command
func (p *Pipeline) Shell() bool {
	return p.shell != ""
}

// Value applies the JMESPath stages to v and returns the generic result.
// A shell stage is not run; use Render for that.
func (p *Pipeline) Value(v any) (any, error) {
	data, err := normalize(v)
	if err != nil {
		return nil, err
	}

	if p.filter != nil {
		if data, err = p.filter.Search(data); err != nil {
			return nil, fmt.Errorf("failed to apply filter: %w", err)
		}
	}
	if p.query != nil {
		if data, err = p.query.Search(data); err != nil {
			return nil, fmt.Errorf("failed to apply query: %w", err)
		}
	}
	return data, nil
}

// Render runs the whole pipeline and returns indented JSON, or the output
// of the shell command fed with that JSON
func (p *Pipeline) Render(ctx context.Context, v any) (string, error) {
	result, err := p.Value(v)
	if err != nil {
		return "", err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	if p.shell == "" {
		return string(out), nil
	}
	return runShell(ctx, p.shell, out)
}

// normalize turns v into the map/slice shapes JMESPath walks, so field
// names follow the json tags
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return data, nil
}

// runShell pipes input into `sh -c command` and returns its trimmed stdout
func runShell(ctx context.Context, command string, input []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryShellTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := err.Error()
		if stderr.Len() > 0 {
			msg = strings.TrimSpace(stderr.String())
		}
		return "", fmt.Errorf("query command '%s' failed: %s", command, msg)
	}

	return strings.TrimSpace(stdout.String()), nil
}
