package healthcheck

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// DatabaseChecker verifies database connectivity and pool pressure.
type DatabaseChecker struct {
	db *sql.DB
}

// NewDatabaseChecker creates a database health checker.
func NewDatabaseChecker(db *sql.DB) *DatabaseChecker {
	return &DatabaseChecker{db: db}
}

// Check pings the database with a short deadline.
func (c *DatabaseChecker) Check(ctx context.Context) Check {
	start := time.Now()
	check := Check{Status: StatusHealthy, LastChecked: start}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.db.PingContext(pingCtx); err != nil {
		check.Status = StatusUnhealthy
		check.Message = fmt.Sprintf("ping failed: %v", err)
	} else {
		stats := c.db.Stats()
		if stats.MaxOpenConnections > 0 && stats.InUse == stats.MaxOpenConnections {
			check.Status = StatusDegraded
			check.Message = "connection pool exhausted"
		}
	}

	check.Duration = time.Since(start)
	return check
}

// RedisChecker verifies cache connectivity.
type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker creates a Redis health checker.
func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{client: client}
}

// Check pings Redis with a short deadline.
func (c *RedisChecker) Check(ctx context.Context) Check {
	start := time.Now()
	check := Check{Status: StatusHealthy, LastChecked: start}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.client.Ping(pingCtx).Err(); err != nil {
		check.Status = StatusUnhealthy
		check.Message = fmt.Sprintf("ping failed: %v", err)
	}

	check.Duration = time.Since(start)
	return check
}

// HTTPChecker verifies an HTTP dependency answers at all. Any response,
// including an error status, counts as reachable.
type HTTPChecker struct {
	url    string
	client *http.Client
}

// NewHTTPChecker creates a checker for one URL.
func NewHTTPChecker(url string) *HTTPChecker {
	return &HTTPChecker{
		url:    url,
		client: &http.Client{Timeout: 3 * time.Second},
	}
}

// Check issues a GET against the configured URL.
func (c *HTTPChecker) Check(ctx context.Context) Check {
	start := time.Now()
	check := Check{Status: StatusHealthy, LastChecked: start}

	req, err := http.NewRequestWithContext(ctx, "GET", c.url, nil)
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
		check.Duration = time.Since(start)
		return check
	}

	resp, err := c.client.Do(req)
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = fmt.Sprintf("unreachable: %v", err)
	} else {
		resp.Body.Close()
	}

	check.Duration = time.Since(start)
	return check
}
