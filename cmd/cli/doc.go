// Package cli constructs the gfc command-line interface. The root command is
// the issue checkout itself; this package adds configuration loading through
// Viper, zap logger construction, and version reporting around it.
package cli
