package domain

// ElementTemplate describes one formwork element family of the generator catalog.
// Dimensions are in meters.
type ElementTemplate struct {
	Type     string  `json:"type" yaml:"type" validate:"required"`
	Length   float64 `json:"length" yaml:"length" validate:"gt=0"`
	Width    float64 `json:"width" yaml:"width" validate:"gt=0"`
	Material string  `json:"material" yaml:"material" validate:"required"`
}

// Well-known formwork materials
const (
	MaterialSteel   = "Steel"
	MaterialAluform = "Aluform"
	MaterialPlywood = "Plywood"
)

// RawRecord is one row of the raw BoQ store as produced by the generator.
// A nil pointer is a missing cell. No field is guaranteed to be valid.
type RawRecord struct {
	ElementID string   `json:"element_id"`
	Material  string   `json:"material"`
	Length    *float64 `json:"length"`
	Width     *float64 `json:"width"`
	// Quantity is a whole number in practice, but the raw store may spell it
	// as a decimal ("10.0"), so it is carried as float64 until imputation.
	Quantity  *float64 `json:"quantity"`
	StartDate *string  `json:"start_date"`
	EndDate   *string  `json:"end_date"`
}

// CleanRecord is one item of the canonical BoQ store.
//
// Every emitted CleanRecord satisfies: Quantity >= 1, EndDate >= StartDate,
// Length, Width and AreaSqm finite and positive, ElementID non-empty,
// trimmed and uppercase. See Validate.
type CleanRecord struct {
	ElementID    string  `json:"element_id" validate:"required,normalized_id"`
	Material     string  `json:"material"`
	Length       float64 `json:"length" validate:"finite,gt=0"`
	Width        float64 `json:"width" validate:"finite,gt=0"`
	AreaSqm      float64 `json:"area_sqm" validate:"finite,gt=0"`
	Quantity     int     `json:"quantity" validate:"min=1"`
	StartDate    Date    `json:"start_date"`
	EndDate      Date    `json:"end_date"`
	DurationDays int     `json:"duration_days" validate:"min=0"`
}

// CanonicalDocument is the top-level object of the canonical store.
type CanonicalDocument struct {
	Items []CleanRecord `json:"items"`
}

// CleaningSummary holds the observational statistics of one cleaning pass.
type CleaningSummary struct {
	InputCount        int            `json:"input_count"`
	OutputCount       int            `json:"output_count"`
	DroppedCount      int            `json:"dropped_count"`
	DropsByReason     map[string]int `json:"drops_by_reason"`
	TotalWeightedArea float64        `json:"total_weighted_area"`
	// Materials lists the distinct materials of surviving records in order of
	// first appearance.
	Materials []string `json:"materials"`
}

// Float64Ptr returns a pointer to v. Handy for building RawRecords.
func Float64Ptr(v float64) *float64 {
	return &v
}

// StringPtr returns a pointer to v.
func StringPtr(v string) *string {
	return &v
}
