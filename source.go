package aioconf

// Origin identifies the tier a source belongs to, used to define resolve
// precedence.
type Origin string

const (
	// OriginCLI represents values parsed from command-line arguments.
	OriginCLI Origin = "cli"
	// OriginEnv represents values read from environment variables.
	OriginEnv Origin = "env"
	// OriginFile represents values loaded from a configuration file.
	OriginFile Origin = "file"
	// OriginDefault represents the descriptors' default values.
	OriginDefault Origin = "default"
)

// Source is a raw value mapping produced by one adapter before Resolve is
// invoked. Implementations hold an already-materialized, immutable mapping;
// Lookup performs no I/O.
//
// The lookup key depends on the origin: the engine queries CLI sources by
// the option's normalized cli_arg, environment sources by its env_var, and
// file sources by the option's dotted path.
type Source interface {
	Origin() Origin
	Lookup(key string) Value
}
