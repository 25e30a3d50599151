package config

// Application constants
const (
	AppName    = "BoQ Pipeline"
	AppVersion = "1.0.0"

	// ServiceName identifies the pipeline in traces and metrics
	ServiceName = "boq-pipeline"

	// EnvPrefix namespaces every environment variable, e.g. BOQ_PIPELINE_SEED
	EnvPrefix = "BOQ"

	// Pipeline defaults
	DefaultRecordCount = 1000
	DefaultBaseDate    = "2026-03-01"

	// Store file names
	RawStoreFileName       = "BoQ_Dataset_Raw.csv"
	CanonicalStoreFileName = "BoQ_Data_Cleaned.json"
	WorkbookFileName       = "BoQ_Data_Cleaned.xlsx"
	SummaryFileName        = "cleaning_summary.json"
	MetricsFileName        = "boq_pipeline.prom"

	// Directory layout (relative to the base directory)
	DefaultDataDir  = "data"
	DefaultRawDir   = "data/raw"
	DefaultCleanDir = "data/clean"
	DefaultLogsDir  = "logs"

	// Log settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
