// Package config handles loading and validating trafficgrid configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// The configuration is immutable after Load returns: components receive the
// sections they need by value and runtime reconfiguration means constructing
// a new Config and rebuilding the components that hold it, never mutating
// shared state.
//
// Performance Characteristics:
//   - Configuration is loaded once at startup
//   - No runtime overhead after initial load
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Simulation.CommandsDir)
package config
