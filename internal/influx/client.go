// Package influx wraps the InfluxDB 1.x HTTP client and maps SHOW query
// results into the schema entities used by the differ.
package influx

import (
	"fmt"
	"net/url"
	"time"

	"github.com/influxdata/influxdb1-client/models"
	client "github.com/influxdata/influxdb1-client/v2"
)

const pingTimeout = 5 * time.Second

// Client manages the connection to an InfluxDB server. Every statement
// is a blocking request/response; transport failures and error payloads
// embedded in a response are both fatal to the run.
type Client struct {
	c client.Client
}

// Dial validates the endpoint URL, connects and verifies liveness with a
// ping. Only the plaintext http scheme is supported.
func Dial(endpoint string) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", endpoint, err)
	}
	if u.Scheme != "http" {
		return nil, fmt.Errorf("unsupported protocol %q in %q: only http is supported", u.Scheme, endpoint)
	}

	c, err := client.NewHTTPClient(client.HTTPConfig{Addr: endpoint})
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", endpoint, err)
	}

	if _, _, err := c.Ping(pingTimeout); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to ping server at %s: %w", endpoint, err)
	}

	return &Client{c: c}, nil
}

// Query runs one statement and returns every series row across its
// results. An error field embedded in the response counts as a failure.
func (c *Client) Query(cmd string) ([]models.Row, error) {
	resp, err := c.c.Query(client.NewQuery(cmd, "", ""))
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", cmd, err)
	}
	if err := resp.Error(); err != nil {
		return nil, fmt.Errorf("query %q: %w", cmd, err)
	}

	var rows []models.Row
	for _, result := range resp.Results {
		rows = append(rows, result.Series...)
	}
	return rows, nil
}

// Exec runs a statement for effect only.
func (c *Client) Exec(cmd string) error {
	_, err := c.Query(cmd)
	return err
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.c.Close()
}
