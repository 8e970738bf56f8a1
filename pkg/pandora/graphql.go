package pandora

import (
	"context"
	"encoding/json"
	"fmt"
)

// GraphQL runs a query against the web GraphQL endpoint.
//
// variables may be a JSON string, which is sent as is, or any value, which
// is JSON encoded. nil sends "{}".
//
// A response carrying an errors array is returned as ErrProtocol with the
// first error's message.
func (c *Client) GraphQL(ctx context.Context, operation, query string, variables any) (*GraphQLResponse, error) {
	var vars string
	switch v := variables.(type) {
	case nil:
		vars = "{}"
	case string:
		vars = v
	case json.RawMessage:
		vars = string(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("pandora: encode graphql variables: %w", err)
		}
		vars = string(data)
	}

	return restCall[GraphQLResponse](ctx, c, "/api/v1/graphql/graphql", GraphQLRequest{
		OperationName: operation,
		Query:         query,
		Variables:     vars,
	})
}
