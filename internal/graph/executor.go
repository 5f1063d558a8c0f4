package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"sokoni-be/internal/logger"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.uber.org/zap"
)

const queryType = "Query"

type executor struct {
	resolver *Resolver
	opCtx    *graphql.OperationContext
	errs     gqlerror.List
}

// run resolves the root fields of a validated query operation. A failing root
// field is reported in errs and comes back as null; the others still resolve.
func (e *executor) run(ctx context.Context) (json.RawMessage, error) {
	fields := graphql.CollectFields(e.opCtx, e.opCtx.Operation.SelectionSet, []string{queryType})
	out := newOrderedMap(len(fields))

	for _, f := range fields {
		path := ast.Path{ast.PathName(f.Alias)}

		if f.Name == "__typename" {
			out.set(f.Alias, queryType)
			continue
		}
		if strings.HasPrefix(f.Name, "__") {
			e.errs = append(e.errs, gqlerror.ErrorPathf(path, "introspection is not supported"))
			out.set(f.Alias, nil)
			continue
		}

		v, err := e.resolver.resolveQuery(ctx, f.Name, f.ArgumentMap(e.opCtx.Variables))
		if err != nil {
			logger.FromCtx(ctx).Error("graph field failed",
				zap.String("layer", "graph"),
				zap.String("field", f.Name),
				zap.Error(err),
			)
			e.errs = append(e.errs, gqlerror.ErrorPathf(path, "internal server error"))
			out.set(f.Alias, nil)
			continue
		}
		out.set(f.Alias, e.complete(f, v))
	}

	return json.Marshal(out)
}

// complete projects a resolved value onto the field's selection set.
func (e *executor) complete(f graphql.CollectedField, v any) any {
	switch v := v.(type) {
	case *object:
		if v == nil {
			return nil
		}
		fields := graphql.CollectFields(e.opCtx, f.Selections, []string{v.typename})
		out := newOrderedMap(len(fields))
		for _, sub := range fields {
			if sub.Name == "__typename" {
				out.set(sub.Alias, v.typename)
				continue
			}
			out.set(sub.Alias, e.complete(sub, v.fields[sub.Name]))
		}
		return out
	case []*object:
		list := make([]any, len(v))
		for i, o := range v {
			list[i] = e.complete(f, o)
		}
		return list
	default:
		return v
	}
}

// orderedMap keeps response keys in selection order.
type orderedMap struct {
	keys   []string
	values map[string]any
}

func newOrderedMap(size int) *orderedMap {
	return &orderedMap{keys: make([]string, 0, size), values: make(map[string]any, size)}
}

func (m *orderedMap) set(key string, v any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

func (m *orderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
