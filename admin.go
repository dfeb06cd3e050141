package influxline

import (
	"context"
	"fmt"
	"strings"
)

// CreateDatabase creates a database on the server.
//
// Database names must not contain "-"; that fails fast before any
// request is made.
func (c *Client) CreateDatabase(ctx context.Context, name string) error {
	if strings.Contains(name, "-") {
		return fmt.Errorf("%w: database name must not contain %q", ErrInvalidConfig, "-")
	}

	result, err := c.Query(ctx, NewQuery("CREATE DATABASE "+name, ""))
	if err != nil {
		return err
	}
	if err := result.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	return nil
}

// DropDatabase drops a database and all of its data.
func (c *Client) DropDatabase(ctx context.Context, name string) error {
	result, err := c.Query(ctx, NewQuery("DROP DATABASE "+name, ""))
	if err != nil {
		return err
	}
	if err := result.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	return nil
}

// ListDatabases returns the names of all databases on the server.
func (c *Client) ListDatabases(ctx context.Context) ([]string, error) {
	result, err := c.Query(ctx, NewQuery("SHOW DATABASES", ""))
	if err != nil {
		return nil, err
	}
	if err := result.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	var databases []string
	for _, res := range result.Results {
		for _, series := range res.Series {
			for _, row := range series.Values {
				if len(row) == 0 {
					continue
				}
				databases = append(databases, fmt.Sprint(row[0]))
			}
		}
	}

	return databases, nil
}
