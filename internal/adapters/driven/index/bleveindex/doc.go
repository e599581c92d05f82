// Package bleveindex stores title and person documents in bleve indexes.
//
// Each build writes one generation directory holding two indexes:
//
//	<root>/<generation>/titles.bleve
//	<root>/<generation>/names.bleve
//
// Field mappings are derived from the schema tables in the domain package,
// so the query translator and the mapping always agree on field names.
package bleveindex
