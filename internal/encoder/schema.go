package encoder

// SQLTable is the default table targeted by SQL INSERT statements.
const SQLTable = "titles"

// SQLColumns is the fixed column list of the SQL table, in insert order.
// The cast sequence is stored in cast_list because CAST is reserved.
var SQLColumns = []string{"id", "kind", "title", "release_date", "rating", "genres", "overview", "cast_list", "extra"}

// sqlColumnTypes pairs with SQLColumns.
var sqlColumnTypes = []string{
	"INTEGER PRIMARY KEY",
	"VARCHAR(16) NOT NULL",
	"TEXT NOT NULL",
	"DATE",
	"REAL",
	"TEXT NOT NULL",
	"TEXT",
	"TEXT NOT NULL",
	"TEXT NOT NULL",
}

// XML element names.
const (
	XMLRoot      = "catalog"
	XMLEntry     = "entry"
	XMLGenerator = "moviefetch"
)

// CSVHeader is the fixed CSV header row. Extra keys are never promoted to
// columns; they travel as one JSON object in the extra column.
var CSVHeader = []string{"id", "kind", "title", "release_date", "rating", "genres", "overview", "cast", "extra"}

// CSVListSeparator joins genre names inside the genres column.
const CSVListSeparator = "|"

// Placeholders used by the text formats.
const (
	NotAvailable = "N/A"
	UnknownValue = "unknown"
)
