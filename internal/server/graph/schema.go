// Package graph exposes users over GraphQL. Resolvers read the optional
// identity placed in the request context by the HTTP middleware: anonymous
// callers see public fields only.
package graph

import (
	_ "embed"

	graphql "github.com/graph-gophers/graphql-go"
)

//go:embed schema.graphql
var schemaSDL string

//go:embed graphiql.html
var GraphiQLPage []byte

// NewSchema parses the schema and binds it to a resolver over users.
func NewSchema(users UserService, opts ...graphql.SchemaOpt) (*graphql.Schema, error) {
	return graphql.ParseSchema(schemaSDL, NewResolver(users), opts...)
}
