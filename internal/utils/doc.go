// Package utils exposes the ambient helpers shared by the gfc command.
//
// ConfigurationLoader merges embedded defaults, configuration files, and
// GFC_-prefixed environment variables through Viper. LoggerFactory builds zap
// loggers in structured or console form.
package utils
