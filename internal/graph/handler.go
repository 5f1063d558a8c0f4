package graph

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"sokoni-be/internal/logger"
	"sokoni-be/internal/utils"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator"
	"go.uber.org/zap"
)

//go:embed schema.graphqls
var schemaSource string

const maxBodyBytes = 1 << 20

// Handler serves read-only GraphQL queries over GET and POST.
type Handler struct {
	schema   *ast.Schema
	resolver *Resolver
}

func NewHandler(r *Resolver) *Handler {
	return &Handler{
		schema:   gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphqls", Input: schemaSource}),
		resolver: r,
	}
}

type params struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, err := decodeParams(w, r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, &graphql.Response{
			Errors: gqlerror.List{gqlerror.Errorf("%s", err.Error())},
		})
		return
	}

	status, resp := h.Execute(r.Context(), p.Query, p.OperationName, p.Variables)
	utils.WriteJSON(w, status, resp)
}

// Execute validates and runs one query document. Parse, validation and
// variable errors answer 422 with no data.
func (h *Handler) Execute(ctx context.Context, query, operationName string, variables map[string]any) (int, *graphql.Response) {
	if strings.TrimSpace(query) == "" {
		return http.StatusUnprocessableEntity, errorResponse(gqlerror.Errorf("no query provided"))
	}

	doc, errs := gqlparser.LoadQuery(h.schema, query)
	if len(errs) > 0 {
		return http.StatusUnprocessableEntity, &graphql.Response{Errors: errs}
	}

	op := doc.Operations.ForName(operationName)
	if op == nil {
		return http.StatusUnprocessableEntity, errorResponse(gqlerror.Errorf("operation %q not found", operationName))
	}
	if op.Operation != ast.Query {
		return http.StatusUnprocessableEntity, errorResponse(gqlerror.Errorf("only queries are supported"))
	}

	vars, err := validator.VariableValues(h.schema, op, variables)
	if err != nil {
		var gqlErr *gqlerror.Error
		if !errors.As(err, &gqlErr) {
			gqlErr = gqlerror.Wrap(err)
		}
		return http.StatusUnprocessableEntity, errorResponse(gqlErr)
	}

	e := &executor{
		resolver: h.resolver,
		opCtx: &graphql.OperationContext{
			RawQuery:      query,
			Variables:     vars,
			OperationName: operationName,
			Doc:           doc,
			Operation:     op,
		},
	}

	data, err := e.run(ctx)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to encode graph response",
			zap.String("layer", "graph"),
			zap.Error(err),
		)
		return http.StatusInternalServerError, errorResponse(gqlerror.Errorf("internal server error"))
	}

	return http.StatusOK, &graphql.Response{Data: data, Errors: e.errs}
}

func errorResponse(err *gqlerror.Error) *graphql.Response {
	return &graphql.Response{Errors: gqlerror.List{err}}
}

func decodeParams(w http.ResponseWriter, r *http.Request) (params, error) {
	var p params

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		p.Query = q.Get("query")
		p.OperationName = q.Get("operationName")
		if raw := q.Get("variables"); raw != "" {
			if err := decodeJSON(strings.NewReader(raw), &p.Variables); err != nil {
				return p, fmt.Errorf("variables could not be decoded: %w", err)
			}
		}
		return p, nil

	case http.MethodPost:
		body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := decodeJSON(body, &p); err != nil {
			return p, fmt.Errorf("json request body could not be decoded: %w", err)
		}
		return p, nil
	}

	return p, fmt.Errorf("method %s not supported", r.Method)
}

func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec.Decode(v)
}
