package pipeline

import (
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/config"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/dataprocessing"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/generator"
)

// RunState is the data shared by the steps of one run. Each run owns its
// own RunState; nothing in it outlives the run.
type RunState struct {
	RunID  string
	Config config.PipelineConfig

	// Set by the generate step
	Generated      int
	GeneratorStats generator.Stats

	// Set by the clean step
	Cleaning *dataprocessing.Result
}
