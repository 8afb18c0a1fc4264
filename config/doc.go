// Package config loads ACMS settings with viper.
//
// Values come from built-in defaults, an optional config.yaml (in the
// working directory or ./config, or the file named by ACMS_CONFIG) and
// ACMS_* environment variables, in increasing order of precedence. The
// executor limits also honour the short names ACMS_COMMAND_TIMEOUT,
// ACMS_MAX_CONCURRENT, ACMS_MAX_ARG_LENGTH, ACMS_MAX_ARGS and
// ACMS_SHUTDOWN_TIMEOUT. Configuration is read once at startup.
package config
