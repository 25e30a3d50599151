// Package config provides configuration management for the BoQ pipeline.
// It loads configuration from multiple sources, validates it, and hands the
// pipeline an explicit value that is never mutated during a run.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// A .env file in the working directory (or configs/.env) is loaded into the
// environment first; variables already set are left untouched.
//
// # Environment Variables
//
// All environment variables follow the pattern BOQ_<SECTION>_<KEY>:
//
//	BOQ_PIPELINE_RECORD_COUNT=10000
//	BOQ_PIPELINE_BASE_DATE=2026-03-01
//	BOQ_PIPELINE_RAW_STORE_PATH=data/raw/BoQ_Dataset_Raw.csv
//	BOQ_LOGGING_LEVEL=debug
//	BOQ_TELEMETRY_TRACE_EXPORTER=stdout
//
// BOQ_CONFIG_FILE names the YAML file explicitly; otherwise config.yaml and
// configs/config.yaml are tried in that order.
//
// # Path Management
//
// Relative store paths are resolved against a base directory through Paths:
//
//	paths, _ := config.GetPaths()
//	pipelineCfg := cfg.Pipeline.ResolvePaths(paths)
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Testing
//
// Default() returns a configuration that validates without any environment
// variables or files.
package config
