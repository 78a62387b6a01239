// Package config holds the options of a remap invocation and the settings
// of the process running it.
//
// Options describe one job and are validated once, before anything runs.
// Settings are read with viper from, in increasing precedence: defaults, a
// config file, REMAPPER_* environment variables (a .env file is loaded
// first) and command-line flags.
package config
