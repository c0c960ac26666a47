// Package aioconf resolves application configuration from multiple sources
// into a single typed, immutable snapshot.
//
// A configuration is described once as a spec tree of option descriptors
// (name, type, default, bound environment variable, bound CLI flag),
// optionally nested into subconfigs. At runtime, source adapters read the
// process environment, command-line arguments, and configuration files
// (JSON, YAML, TOML, INI), and the resolution engine merges their values
// against the spec with a fixed precedence.
//
// Quick Start:
//
//	spec := aioconf.MustSpec([]*aioconf.Option{
//	    {Name: "debug", Type: aioconf.TypeBool, Default: false, EnvVar: "APP_DEBUG", CLIFlag: "--debug"},
//	}, map[string]*aioconf.Spec{
//	    "database": aioconf.MustSpec([]*aioconf.Option{
//	        {Name: "host", Type: aioconf.TypeString, Default: "localhost"},
//	        {Name: "port", Type: aioconf.TypeInt, Default: 3306, EnvVar: "DB_PORT", CLIFlag: "--db-port"},
//	    }, nil),
//	})
//
//	snap, err := aioconf.Quick(spec, "config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	debug, _ := snap.Bool("debug")
//	port, _ := snap.Int64("database.port")
//
// Default Precedence (highest to lowest):
//  1. Command-line arguments (--db-port 5432)
//  2. Environment variables (DB_PORT=5432)
//  3. Configuration files, in the order supplied
//  4. Default values from the spec
//
// Absence is distinct from emptiness: a source that maps an option to "" or
// 0 still wins over every lower-priority source.
//
// Resolution is a pure function of the spec and the supplied sources. All
// I/O happens in the adapter constructors (ParseArgs, Environ, LoadFile)
// before Resolve is called, so concurrent resolutions with distinct inputs
// need no coordination and deterministic tests can inject fake sources.
package aioconf
