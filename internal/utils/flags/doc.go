// Package flags provides pflag helpers shared by gfc commands: yes/no toggles,
// choice usage placeholders, and camelCase flag name normalization.
package flags
