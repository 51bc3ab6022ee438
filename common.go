package xaiepy

import (
	"context"

	"github.com/cockroachdb/errors"
)

// runPipeline executes stages in order, stopping at the first failure.
//
// # Process Flow
//
//  1. Create empty BuildResult
//  2. For each stage, check the context and run the stage
//  3. Record the stage name in BuildResult.Steps once it succeeds
//  4. Return BuildResult with Success=true after the last stage
//
// If any stage fails, processing stops and the error is returned with
// Success=false. A cancelled context is reported as ErrToolchain. No later stage runs and nothing already produced is
// removed.
func runPipeline(ctx context.Context, cfg *BuildConfiguration, stages []pipelineStage) (*BuildResult, error) {
	result := &BuildResult{
		Success: false,
		Output:  []string{},
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			err = errors.Mark(err, ErrToolchain)
			result.Error = err
			return result, err
		}

		if err := stage.Run(ctx, cfg, result); err != nil {
			result.Error = err
			return result, err
		}
		result.Steps = append(result.Steps, stage.Name)
	}

	result.Success = true
	return result, nil
}
