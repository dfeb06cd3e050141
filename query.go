package influxline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Query is a command to execute against a database.
type Query struct {
	Command  string
	Database string
}

// NewQuery creates a query for the given command and database.
func NewQuery(command, database string) Query {
	return Query{Command: command, Database: database}
}

// Pong is the result of a ping: the server version and the observed
// round-trip time.
type Pong struct {
	Version      string
	ResponseTime time.Duration
}

// QueryResult is the parsed response of the /query endpoint.
type QueryResult struct {
	Results []Result `json:"results"`
	Err     string   `json:"error,omitempty"`
}

// Result is one statement's result within a query response.
type Result struct {
	Series []Series `json:"series,omitempty"`
	Err    string   `json:"error,omitempty"`
}

// Series is one series of values within a result.
type Series struct {
	Name    string            `json:"name,omitempty"`
	Tags    map[string]string `json:"tags,omitempty"`
	Columns []string          `json:"columns,omitempty"`
	Values  [][]interface{}   `json:"values,omitempty"`
}

// Error returns the first error recorded in the response, or nil. The
// server reports statement-level failures inside an HTTP 200 body, so
// callers should check this in addition to the error returned by Query.
func (r *QueryResult) Error() error {
	if r.Err != "" {
		return errors.New(r.Err)
	}
	for i := range r.Results {
		if r.Results[i].Err != "" {
			return errors.New(r.Results[i].Err)
		}
	}
	return nil
}

// Query executes a command with the server's default timestamp
// precision for returned values.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - q: The query to execute
//
// Returns:
//   - *QueryResult: Parsed response; check its Error method for
//     statement-level failures
//   - error: Transport-level failure, if any
func (c *Client) Query(ctx context.Context, q Query) (*QueryResult, error) {
	return c.query(ctx, q, "")
}

// QueryWithPrecision executes a command with timestamps in the returned
// values truncated to the given precision (ns/u/ms/s/m/h).
func (c *Client) QueryWithPrecision(ctx context.Context, q Query, precision time.Duration) (*QueryResult, error) {
	return c.query(ctx, q, precisionToken(precision))
}

func (c *Client) query(ctx context.Context, q Query, epoch string) (*QueryResult, error) {
	if q.Command == "" {
		return nil, fmt.Errorf("%w: query command is required", ErrInvalidConfig)
	}

	body, err := c.transport.Query(ctx, q.Database, q.Command, epoch)
	if err != nil {
		return nil, err
	}

	var result QueryResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: parsing response: %w", ErrQueryFailed, err)
	}

	return &result, nil
}
