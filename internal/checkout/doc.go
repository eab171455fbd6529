// Package checkout resolves the remote branch that belongs to an issue and
// checks it out locally.
//
// Service drives git through a CommandRunner: it fetches the remote, lists the
// remote-tracking branches, and selects the single branch named
// <remote>/<issue>-<slug>. A missing local branch is created with tracking; an
// existing one is fast-forwarded, or rebased with --autostash on request.
// CommandBuilder exposes the flow as a cobra command.
package checkout
