// Package files provides the file system operations used by the pipeline's
// writers.
//
// Manager resolves relative paths against the pipeline layout and writes
// every output atomically: content goes to a temporary file next to the
// target and is renamed into place after a successful flush. A run that
// fails halfway leaves the previous canonical store intact.
//
// Example usage:
//
//	manager := files.NewManager(config.NewPaths(baseDir), logger)
//
//	err := manager.WriteAtomic("data/clean/BoQ_Data_Cleaned.json", func(w io.Writer) error {
//	    return json.NewEncoder(w).Encode(doc)
//	})
package files
