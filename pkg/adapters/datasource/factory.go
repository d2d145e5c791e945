package datasource

import (
	"fmt"

	"go.uber.org/zap"
)

// Driver names accepted by NewIntrospector.
const (
	DriverMSSQL    = "mssql"
	DriverPostgres = "postgres"
)

// NewIntrospector creates an introspector for the given driver.
func NewIntrospector(driver, dsn string, logger *zap.Logger) (Introspector, error) {
	switch driver {
	case DriverMSSQL:
		return NewMSSQLIntrospector(dsn, logger)
	case DriverPostgres:
		return NewPostgresIntrospector(dsn, logger)
	default:
		return nil, fmt.Errorf("unsupported datasource driver: %q", driver)
	}
}
