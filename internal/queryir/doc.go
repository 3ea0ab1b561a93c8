// Package queryir is a small query representation for reading the durable
// audit log.
//
// Callers describe what they want (a Select over a table with a predicate
// tree); backends such as querysql turn it into executable statements.
// Keeping the description separate lets the CLI and tests build filters
// without writing SQL, and keeps every literal out of the query text.
//
// Query and Predicate are sealed interfaces using the marker method
// pattern, so backends can switch over them exhaustively:
//
//	switch p := pred.(type) {
//	case Equals:
//	case Compare:
//	case And:
//	}
//
// Predicates:
//   - Equals: field = literal
//   - Compare: field <op> literal, for the rule operators <, > and ==
//   - And: every predicate holds (empty And is always true)
//
// Field and table names are interpolated into the statement, so Validate
// only accepts plain identifiers. Values are always parameters.
package queryir
