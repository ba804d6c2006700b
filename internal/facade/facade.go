// Package facade maps named marketplace operations onto API client calls.
//
// One builder serves every role: a Facade binds a role to a Catalog of
// endpoint templates, and the typed BuyerAPI, SellerAPI and AdminAPI wrappers
// are thin shells over Invoke so the three roles cannot drift apart in how
// they shape requests.
package facade

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"marketplace-portal/internal/apiclient"
	"marketplace-portal/internal/model"
)

type Requester interface {
	Request(ctx context.Context, d apiclient.Descriptor) (json.RawMessage, error)
}

// Endpoint is one catalog entry. Path may contain {name} placeholders that
// are filled from Call.Params. Query marks list operations whose
// Call.Query is appended to the path.
type Endpoint struct {
	Method string
	Path   string
	Query  bool
}

type Catalog map[string]Endpoint

type Call struct {
	Params map[string]string
	Query  apiclient.Query
	Body   any
}

type Facade struct {
	role    model.Role
	catalog Catalog
	client  Requester
}

func New(role model.Role, catalog Catalog, client Requester) *Facade {
	return &Facade{role: role, catalog: catalog, client: client}
}

func (f *Facade) Role() model.Role {
	return f.role
}

// Invoke runs the named operation and returns the API client's result.
func (f *Facade) Invoke(ctx context.Context, op string, call Call) (json.RawMessage, error) {
	endpoint, ok := f.catalog[op]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", model.ErrUnknownOperation, f.role, op)
	}

	path, err := expandPath(endpoint.Path, call.Params)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", f.role, op, err)
	}
	if endpoint.Query {
		path = call.Query.AppendTo(path)
	}

	method := endpoint.Method
	if method == "" {
		method = http.MethodGet
	}

	return f.client.Request(ctx, apiclient.Descriptor{
		Endpoint: path,
		Method:   method,
		Body:     call.Body,
		Role:     f.role,
	})
}

func expandPath(template string, params map[string]string) (string, error) {
	var b strings.Builder
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("unterminated placeholder in %q", template)
		}

		name := rest[open+1 : open+end]
		value := strings.TrimSpace(params[name])
		if value == "" {
			return "", fmt.Errorf("%w: %s", model.ErrMissingParam, name)
		}

		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(value))
		rest = rest[open+end+1:]
	}
}
