// Package schema names the tables and columns of the relational store.
//
// Repositories build SQL from these values rather than repeating string
// literals, so a column rename is a one-line change.
package schema

// Qualify prefixes column with a table alias.
func Qualify(alias, column string) string {
	return alias + "." + column
}
