// Package schema declares the relational shape of the cast-service tables.
//
// Tables are described with plain structs rather than introspected at
// runtime. Each Table value is built once from literals and never mutated;
// accessors hand out copies, so a descriptor can be shared freely across
// goroutines.
//
// Query-building code references columns symbolically:
//
//	rows, err := pool.Query(ctx, schema.Casts.SelectSQL()+" WHERE "+schema.CastID+" = $1", id)
//
// The Cast type mirrors one row of the casts table and carries db tags
// matching the column names, so it can be used with pgx.RowToStructByName.
package schema
