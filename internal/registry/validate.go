package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/perfgrid/internal/ctxlog"
)

// ParamPrefix marks dataset names that are satisfied from project parameters.
const ParamPrefix = "params:"

// ParametersDataset is the dataset holding the whole parameter map.
const ParametersDataset = "parameters"

// ValidationError collects every problem found by ValidateRegistry. Each
// problem stays reachable through errors.Is and errors.As.
type ValidationError struct {
	Problems []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return fmt.Sprintf("registry validation failed:\n- %s", strings.Join(msgs, "\n- "))
}

func (e *ValidationError) Unwrap() []error { return e.Problems }

// ValidateRegistry performs a strict parity check between the registered
// pipelines and the project configuration. Every pipeline must be acyclic,
// the default pipeline must be buildable and every "params:" input must name a
// known parameter. Other free inputs without a dataset definition are only
// logged as warnings, since the caller may seed them before the run.
func (r *Registry) ValidateRegistry(ctx context.Context, params map[string]any, datasets []string) error {
	var errs []error
	logger := ctxlog.FromContext(ctx)

	declared := make(map[string]struct{}, len(datasets))
	for _, ds := range datasets {
		declared[ds] = struct{}{}
	}

	for _, name := range r.order {
		p := r.pipelines[name]
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("pipeline '%s': %w", name, err))
		}
	}

	all, err := r.Default()
	if err != nil {
		errs = append(errs, err)
	} else {
		for _, input := range all.Inputs() {
			switch {
			case input == ParametersDataset:
			case strings.HasPrefix(input, ParamPrefix):
				key := strings.TrimPrefix(input, ParamPrefix)
				if !hasParam(params, key) {
					errs = append(errs, fmt.Errorf("input '%s' refers to parameter '%s' which is not defined", input, key))
				}
			default:
				if _, ok := declared[input]; !ok {
					logger.Warn("Pipeline input has no dataset definition and must be seeded by the caller.", "dataset", input)
				}
			}
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Problems: errs}
	}

	logger.Debug("Registry validated.", "pipelines", r.Names())
	return nil
}

// hasParam resolves a parameter key, descending into nested maps on dots the
// way sessions flatten them.
func hasParam(params map[string]any, key string) bool {
	if _, ok := params[key]; ok {
		return true
	}
	head, rest, found := strings.Cut(key, ".")
	if !found {
		return false
	}
	nested, ok := params[head].(map[string]any)
	return ok && hasParam(nested, rest)
}
