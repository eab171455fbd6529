// Package ui renders the terminal output of gfc: the coloured confirmation
// line printed after a checkout and the accent used for relaunch hints.
package ui
