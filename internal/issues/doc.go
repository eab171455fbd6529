// Package issues holds the naming convention linking issue numbers to branches.
//
// Remote branches are named <remote>/<issue>-<slug>; the local branch drops the
// remote prefix.
package issues
