package backend

import (
	"fmt"
	"maps"
	"path/filepath"

	"github.com/iiasa/ixmp/internal/platform"
)

// ClassJDBC is the class name of the JDBC backend.
const ClassJDBC = "jdbc"

// JDBC drivers.
const (
	DriverHSQLDB = "hsqldb"
	DriverOracle = "oracle"
)

// JDBC shapes records for the JDBC backend. Accepted positional forms:
//
//	hsqldb [PATH]                         (a "url" keyword may replace PATH)
//	oracle URL USER PASSWORD [JVMARGS]
//
// Positional values override keyword values of the same field.
type JDBC struct{}

// HandleConfig implements Backend.
func (JDBC) HandleConfig(args []string, kwargs map[string]any) (platform.Record, error) {
	info := make(platform.Record, len(kwargs)+2)
	maps.Copy(info, kwargs)

	if len(args) == 0 {
		if d, ok := info["driver"].(string); ok && d != "" {
			args = []string{d}
		} else {
			return nil, fmt.Errorf("%w: jdbc requires a driver (%s or %s)", ErrInvalidConfig, DriverHSQLDB, DriverOracle)
		}
	}

	driver := args[0]
	info["driver"] = driver

	switch driver {
	case DriverOracle:
		if len(args) < 4 {
			return nil, fmt.Errorf("%w: oracle requires url, user and password", ErrInvalidConfig)
		}
		if len(args) > 5 {
			return nil, fmt.Errorf("%w: too many arguments for oracle", ErrInvalidConfig)
		}
		info["url"], info["user"], info["password"] = args[1], args[2], args[3]
		if len(args) == 5 {
			info["jvmargs"] = args[4]
		}

	case DriverHSQLDB:
		if len(args) > 2 {
			return nil, fmt.Errorf("%w: too many positional arguments for hsqldb", ErrInvalidConfig)
		}
		if len(args) == 2 {
			abs, err := filepath.Abs(args[1])
			if err != nil {
				return nil, fmt.Errorf("%w: resolving path %q: %v", ErrInvalidConfig, args[1], err)
			}
			info["path"] = abs
		}
		_, hasURL := info["url"]
		_, hasPath := info["path"]
		if !hasURL && !hasPath {
			return nil, fmt.Errorf("%w: hsqldb requires a path or url", ErrInvalidConfig)
		}

	default:
		return nil, fmt.Errorf("%w: unknown jdbc driver %q", ErrInvalidConfig, driver)
	}

	return info, nil
}
