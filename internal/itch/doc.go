// Package itch resolves node identities of the itch.io work/author graph.
//
// It parses work references (owner + slug) and author ids out of URLs,
// formats canonical URLs from those identities, and derives filesystem-safe
// keys for persisted nodes. Everything here is pure string handling; no
// network access happens in this package.
package itch
