package schema

// Column names of the casts table.
const (
	CastsTable      = "casts"
	CastID          = "id"
	CastName        = "name"
	CastNationality = "nationality"
)

// Maximum lengths enforced by the database for cast string columns.
const (
	CastNameMaxLen        = 50
	CastNationalityMaxLen = 20
)

// Casts describes the casts table.
var Casts = NewTable(CastsTable,
	Column{Name: CastID, Type: ColumnTypeInteger, PrimaryKey: true, Identity: true},
	Column{Name: CastName, Type: ColumnTypeString, Length: CastNameMaxLen},
	Column{Name: CastNationality, Type: ColumnTypeString, Length: CastNationalityMaxLen},
)

// Cast is one row of the casts table.
type Cast struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Nationality string `db:"nationality" json:"nationality"`
}
