// Package report fills the development report template with the values of a
// single report record.
package report

// Field is a recognised record key.
type Field string

const (
	ChildName          Field = "childName"
	BirthDate          Field = "birthDate"
	TeacherName        Field = "teacherName"
	SchoolStartDate    Field = "schoolStartDate"
	ReportDate         Field = "reportDate"
	AlanBecerileri     Field = "alanBecerileri"
	SosyalDuygusal     Field = "sosyalDuygusal"
	Kavramsal          Field = "kavramsal"
	Okuryazarlik       Field = "okuryazarlik"
	Degerler           Field = "degerler"
	Egilimler          Field = "egilimler"
	GenelDegerlendirme Field = "genelDegerlendirme"
)

// DateLayout is the DD.MM.YYYY layout of the default report date.
const DateLayout = "02.01.2006"

// Placement is the zero-based table, row and column a field is written to.
type Placement struct {
	Field Field
	Table int
	Row   int
	Col   int
}

// Fields is the field-to-cell map, in the order cells are written.
var Fields = []Placement{
	{ChildName, 0, 0, 1},
	{BirthDate, 0, 0, 3},
	{TeacherName, 0, 1, 1},
	{SchoolStartDate, 0, 1, 3},
	{ReportDate, 0, 2, 1},
	{AlanBecerileri, 1, 2, 0},
	{SosyalDuygusal, 1, 4, 0},
	{Kavramsal, 1, 6, 0},
	{Okuryazarlik, 1, 8, 0},
	{Degerler, 1, 10, 0},
	{Egilimler, 1, 12, 0},
	{GenelDegerlendirme, 1, 14, 0},
}
