// internal/signup/model.go
//
// Waitlist signup: data model.
//
// Context
// -------
// A visitor fills four inputs on the landing page: first name, last name,
// email, and a "who are you?" category.  Raw input lives in Fields until
// Validate turns it into a Request, the only shape the persistence layer
// ever sees.
//
// Notes
// -----
//   - Request carries both `db` tags (sqlx) and `json` tags (API replies).
//   - Oxford commas, two spaces after periods.
package signup

// Field names one of the four inputs.  The string value doubles as the
// HTML form key and the key reported in FieldError.
type Field string

const (
	FieldFirstName Field = "first_name"
	FieldLastName  Field = "last_name"
	FieldEmail     Field = "email"
	FieldCategory  Field = "category"
)

// Category is the visitor's self-description.
type Category string

const (
	CategoryBusinessOwner Category = "business-owner"
	CategoryInfluencer    Category = "influencer"
	CategorySoloCreator   Category = "solo-creator"
	CategoryContentTeam   Category = "content-team"
	CategoryAgency        Category = "agency"
	CategoryOther         Category = "other"
)

// Categories lists every accepted value in display order.
var Categories = []Category{
	CategoryBusinessOwner,
	CategoryInfluencer,
	CategorySoloCreator,
	CategoryContentTeam,
	CategoryAgency,
	CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryBusinessOwner: "Business Owner",
	CategoryInfluencer:    "Influencer",
	CategorySoloCreator:   "Solo Creator",
	CategoryContentTeam:   "Content Team",
	CategoryAgency:        "Agency",
	CategoryOther:         "Other",
}

// Label returns the human-readable name, or the raw value when unknown.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Field length limits, counted in runes.
const (
	MaxNameLength  = 100
	MaxEmailLength = 255
)

// Fields holds raw, unvalidated input exactly as the visitor typed it.
type Fields struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Category  string `json:"category"`
}

// Get returns the raw value for f.
func (fs Fields) Get(f Field) string {
	switch f {
	case FieldFirstName:
		return fs.FirstName
	case FieldLastName:
		return fs.LastName
	case FieldEmail:
		return fs.Email
	case FieldCategory:
		return fs.Category
	default:
		return ""
	}
}

// IsZero reports whether every field is empty.
func (fs Fields) IsZero() bool { return fs == Fields{} }

// Request is a validated, normalized signup ready for persistence.
type Request struct {
	FirstName string   `db:"first_name"  json:"firstName" validate:"required,max=100"`
	LastName  string   `db:"last_name"   json:"lastName"  validate:"required,max=100"`
	Email     string   `db:"email"       json:"email"     validate:"required,max=255,waitlist_email"`
	Category  Category `db:"who_are_you" json:"category"  validate:"required,waitlist_category"`
}

// FieldError describes one rejected input.  An empty Field marks a
// form-level problem such as an expired security token.
type FieldError struct {
	Field   Field  `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}
