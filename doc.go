// Package xenv binds flat key/value settings, the process environment by
// default, to Go structs described by struct tags.
//
// # Quick Start
//
//	type Config struct {
//	    DatabaseURL string        `env:"CORE_DB_URL" usage:"Database connection string"`
//	    Threads     uint16        `default:"4" test:"1"`
//	    Timeout     time.Duration `default:"5s"`
//	    Tags        []string      `sep:","`
//	    Password    string        `secret:""`
//	    Token       *string       `secret:""`
//	}
//
//	cfg, err := xenv.Load[Config]()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	slog.Info("configuration loaded", "config", xenv.Masked(cfg))
//
// # Resolution
//
// Every field resolves through a fixed chain, first match wins:
//  1. in test mode (WithTestMode), the `test` tag or a SetTestDefaults value
//  2. the settings source; an empty value counts as present
//  3. the `default` tag or a SetDefaults value
//  4. nil for pointer fields, a *NotFoundError otherwise
//
// An empty `default` or `test` tag stands for the zero value of the field.
//
// # Keys
//
// An `env` tag names the key explicitly. Otherwise the field identifier is
// converted with the struct's rename rule (SCREAMING_SNAKE_CASE by default)
// and wrapped by its prefix and suffix. A struct declares its own policy:
//
//	func (Backend) EnvNaming() xenv.Naming {
//	    return xenv.Naming{Prefix: "BACKEND_"}
//	}
//
// WithPrefix, WithSuffix and WithRenameRule override the policy of the root
// struct only.
//
// # Kinds
//
//   - T: a value with a parser (strings, numbers, bools, time.Duration,
//     []byte, encoding.TextUnmarshaler and encoding.BinaryUnmarshaler types)
//   - *T: optional T
//   - []T with a `sep` tag: the raw value is split and every token trimmed
//   - struct: loaded recursively with its own naming policy; a `default` tag
//     on the field falls back to the struct's SetDefaults value when the
//     nested load fails
//
// # Parsing and validation
//
// A `parser:"name"` tag selects a parser registered with WithParser, and
// WithTypeParser registers the parser of a type. `check:"a,b"` runs
// validators registered with WithValidator, and `validate:"rules"` runs
// go-playground/validator rules. Structs with a Validate method are checked
// once assembled.
//
// # Sources
//
// Package source provides the environment, in-memory maps, chains, .env files
// and JSON/YAML files; package source/vault reads HashiCorp Vault KV secrets.
// Sources are read once per load and never written.
package xenv
