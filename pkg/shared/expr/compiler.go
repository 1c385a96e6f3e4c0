/*
Copyright 2022 The Numaproj Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package expr implements the expression engine of calc steps on top of github.com/antonmedv/expr.
//
// Column i of an input record is the identifier _i in an expression, null parameters are
// identifiers bound to nil. The helper functions json, timestamp and the sprig namespace are
// available to every expression, in addition to the builtins of the expression language.
package expr

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/antonmedv/expr"
	"github.com/antonmedv/expr/ast"
	"github.com/antonmedv/expr/parser"
	"github.com/antonmedv/expr/vm"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/numaproj/numacalc/pkg/apis/calc/v1alpha1"
	"github.com/numaproj/numacalc/pkg/calc/applier"
	"github.com/numaproj/numacalc/pkg/metrics"
)

// compiled is a compiled expression shared by every program built from the same request.
type compiled struct {
	program    *vm.Program
	referenced []int
	// base holds the helper functions and null parameters of the environment.
	base map[string]interface{}
}

// Compiler compiles expressions into programs. Compiled expressions are cached, it is safe
// to share a Compiler across evaluator instances.
type Compiler struct {
	cache *lru.Cache[string, *compiled]
	opts  *options
	log   *zap.SugaredLogger
}

var _ applier.Compiler = (*Compiler)(nil)

// NewCompiler returns a new Compiler.
func NewCompiler(inputOpts ...Option) (*Compiler, error) {
	opts := DefaultOptions()
	for _, o := range inputOpts {
		if err := o(opts); err != nil {
			return nil, err
		}
	}
	cache, err := lru.New[string, *compiled](opts.compileCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create the program cache, %w", err)
	}
	return &Compiler{
		cache: cache,
		opts:  opts,
		log:   opts.logger,
	}, nil
}

// Compile compiles the expression of the request against its column types and null parameters.
func (c *Compiler) Compile(req applier.CompileRequest) (applier.Program, error) {
	key := cacheKey(req)
	cp, ok := c.cache.Get(key)
	if ok {
		metrics.CompileCacheHitCount.Inc()
	} else {
		var err error
		if cp, err = compile(req); err != nil {
			return nil, &applier.CompileError{Expression: req.Expression, Err: err}
		}
		c.cache.Add(key, cp)
	}
	c.log.Debugw("Compiled expression", zap.String("name", req.Name), zap.String("expression", req.Expression), zap.Ints("referencedColumns", cp.referenced), zap.Bool("cached", ok))
	return &program{
		name:            req.Name,
		expression:      req.Expression,
		compiled:        cp,
		concurrency:     c.opts.concurrency,
		streamBatchSize: c.opts.streamBatchSize,
		log:             c.log.With("calc", req.Name),
	}, nil
}

func compile(req applier.CompileRequest) (*compiled, error) {
	tz := req.DefaultTimezone
	if tz == "" {
		tz = v1alpha1.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q, %w", tz, err)
	}
	base := getFuncMap(loc)
	for _, p := range req.NullParams {
		if _, ok := base[p.Name]; ok {
			return nil, fmt.Errorf("null param %q conflicts with a function name", p.Name)
		}
		base[p.Name] = nil
	}
	// the type checker sees every column with a sample value of its type
	env := make(map[string]interface{}, len(base)+len(req.ColumnTypes))
	for k, v := range base {
		env[k] = v
	}
	for i, t := range req.ColumnTypes {
		env[applier.ColumnName(i)] = sampleValue(t)
	}
	tree, err := parser.Parse(req.Expression)
	if err != nil {
		return nil, err
	}
	v := &columnVisitor{
		columns:  len(req.ColumnTypes),
		seen:     make(map[int]struct{}),
		names:    make(map[string]struct{}),
		callees:  make(map[string]struct{}),
		declared: make(map[string]struct{}),
	}
	ast.Walk(&tree.Node, v)
	program, err := expr.Compile(req.Expression, expr.Env(env))
	if err != nil {
		// the type checker rejects nil typed operands, retry with them untyped
		var lerr error
		if program, lerr = compileUntyped(req.Expression, env, v); lerr != nil {
			return nil, err
		}
	}
	return &compiled{
		program:    program,
		referenced: v.referenced(),
		base:       base,
	}, nil
}

// compileUntyped compiles the expression leaving the nil typed identifiers of env untyped. Every
// other identifier still has to be known.
func compileUntyped(expression string, env map[string]interface{}, v *columnVisitor) (*vm.Program, error) {
	typed := make(map[string]interface{}, len(env))
	untyped := 0
	for k, val := range env {
		if val == nil {
			untyped++
			continue
		}
		typed[k] = val
	}
	if untyped == 0 {
		return nil, fmt.Errorf("no untyped identifier")
	}
	for name := range v.names {
		if _, ok := env[name]; ok {
			continue
		}
		if _, ok := v.callees[name]; ok {
			continue
		}
		if _, ok := v.declared[name]; ok {
			continue
		}
		return nil, fmt.Errorf("unknown name %s", name)
	}
	return expr.Compile(expression, expr.Env(typed), expr.AllowUndefinedVariables())
}

// columnIndex returns the index of a column identifier, or false if the identifier is not a column.
func columnIndex(name string, columns int) (int, bool) {
	if !strings.HasPrefix(name, v1alpha1.ColumnPrefix) {
		return 0, false
	}
	i, err := strconv.Atoi(strings.TrimPrefix(name, v1alpha1.ColumnPrefix))
	if err != nil || i < 0 || i >= columns || applier.ColumnName(i) != name {
		return 0, false
	}
	return i, true
}

type columnVisitor struct {
	columns int
	seen    map[int]struct{}
	// declared holds the names bound by let.
	names    map[string]struct{}
	callees  map[string]struct{}
	declared map[string]struct{}
}

func (v *columnVisitor) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		v.names[n.Value] = struct{}{}
		if i, ok := columnIndex(n.Value, v.columns); ok {
			v.seen[i] = struct{}{}
		}
	case *ast.CallNode:
		if callee, ok := n.Callee.(*ast.IdentifierNode); ok {
			v.callees[callee.Value] = struct{}{}
		}
	case *ast.VariableDeclaratorNode:
		v.declared[n.Name] = struct{}{}
	}
}

func (v *columnVisitor) referenced() []int {
	result := make([]int, 0, len(v.seen))
	for i := range v.seen {
		result = append(result, i)
	}
	sort.Ints(result)
	return result
}

// sampleValue returns a value of the Go type a field type is evaluated as.
func sampleValue(t v1alpha1.FieldType) interface{} {
	switch t {
	case v1alpha1.FieldTypeInt64:
		return int64(0)
	case v1alpha1.FieldTypeFloat64:
		return float64(0)
	case v1alpha1.FieldTypeString:
		return ""
	case v1alpha1.FieldTypeBool:
		return false
	case v1alpha1.FieldTypeBytes:
		return []byte{}
	case v1alpha1.FieldTypeTimestamp:
		return time.Time{}
	default:
		return nil
	}
}

func cacheKey(req applier.CompileRequest) string {
	var b strings.Builder
	b.WriteString(req.DefaultTimezone)
	b.WriteString("|")
	for _, t := range req.ColumnTypes {
		b.WriteString(string(t))
		b.WriteString(",")
	}
	b.WriteString("|")
	for _, p := range req.NullParams {
		b.WriteString(p.Name)
		b.WriteString(":")
		b.WriteString(string(p.Type))
		b.WriteString(",")
	}
	b.WriteString("|")
	b.WriteString(req.Expression)
	return b.String()
}
