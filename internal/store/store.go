// Package store provides read-only existence checks against the geospatial
// store's metadata tables. Namespace and layer bootstrap happens elsewhere;
// the batch driver only verifies that the per-vintage namespace and the
// required geo layers exist before spending hours on a load, and fails fast
// (machinery fault) when they don't.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Connection pool configuration. The driver is strictly sequential, so a
// small pool is plenty; idle connections are kept warm across phases.
const (
	defaultMaxConns        = 2
	defaultMinConns        = 1
	defaultMaxConnIdleTime = 30 * time.Minute
)

// DSNEnvVar is the environment variable holding the store connection string.
const DSNEnvVar = "PLBATCH_STORE_DSN"

// ResolveDSN returns the store DSN. Precedence: the explicit value, then
// PLBATCH_STORE_DSN (after loading the optional env file). An empty result
// means store verification is disabled.
func ResolveDSN(explicit, envFile string) (string, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return "", fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}
	if dsn := strings.TrimSpace(explicit); dsn != "" {
		return dsn, nil
	}
	return strings.TrimSpace(os.Getenv(DSNEnvVar)), nil
}

// Client is a thin metadata reader over the store's PostgreSQL backend.
type Client struct {
	pool *pgxpool.Pool
}

func Connect(ctx context.Context, dsn string) (*Client, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("store DSN required")
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse store DSN: %w", err)
	}
	poolConfig.MaxConns = defaultMaxConns
	poolConfig.MinConns = defaultMinConns
	poolConfig.MaxConnIdleTime = defaultMaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to store: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}
	return &Client{pool: pool}, nil
}

func (c *Client) Close() {
	c.pool.Close()
}

// NamespaceExists reports whether the namespace (e.g. "census.2020") has been
// bootstrapped.
func (c *Client) NamespaceExists(ctx context.Context, path string) (bool, error) {
	var exists bool
	err := c.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM namespace WHERE path = $1)`, path,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query namespace %s: %w", path, err)
	}
	return exists, nil
}

// LayerExists reports whether a geo layer has been declared in the namespace.
func (c *Client) LayerExists(ctx context.Context, namespace, level string) (bool, error) {
	var exists bool
	err := c.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1
		   FROM geo_layer gl
		   JOIN namespace ns ON ns.namespace_id = gl.namespace_id
		   WHERE ns.path = $1 AND gl.path = $2
		 )`, namespace, level,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query layer %s in %s: %w", level, namespace, err)
	}
	return exists, nil
}

// Verify fails when the namespace or any of the given layers is missing.
func (c *Client) Verify(ctx context.Context, namespace string, levels []string) error {
	ok, err := c.NamespaceExists(ctx, namespace)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("namespace %s has not been bootstrapped", namespace)
	}
	var missing []string
	for _, level := range levels {
		ok, err := c.LayerExists(ctx, namespace, level)
		if err != nil {
			return err
		}
		if !ok {
			missing = append(missing, level)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("namespace %s is missing geo layers: %s", namespace, strings.Join(missing, ", "))
	}
	return nil
}
