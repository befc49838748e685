package dbn

import (
	"github.com/matzehuels/dbnplot/pkg/errors"
)

// Validate checks every template invariant and returns the first violation
// in attach order, always with code [errors.ErrCodeInvalidTemplate].
//
// Checked invariants:
//   - names are non-empty
//   - coordinates are non-negative
//   - a Variable is never continuous
//   - a Variable does not declare both ParentsPrevious and ParentsNow
//   - every parent name refers to a registered template
func (r *Registry) Validate() error {
	for _, t := range r.templates {
		if err := r.validateTemplate(t); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) validateTemplate(t Template) error {
	if t.Name == "" {
		return errors.New(errors.ErrCodeInvalidTemplate, "template name must not be empty")
	}
	if t.X < 0 || t.Y < 0 {
		return errors.New(errors.ErrCodeInvalidTemplate,
			"template %q has negative coordinates (%g, %g)", t.Name, t.X, t.Y)
	}
	if t.Type < Hidden || t.Type > Variable {
		return errors.New(errors.ErrCodeInvalidTemplate, "template %q has unknown type %s", t.Name, t.Type)
	}
	if t.Type == Variable && t.Continuous {
		return errors.New(errors.ErrCodeInvalidTemplate,
			"variable %q cannot be continuous (continuity applies to random variables only)", t.Name)
	}
	if _, err := t.Role(); err != nil {
		return err
	}
	for _, p := range t.Parents() {
		if !r.Has(p) {
			return errors.New(errors.ErrCodeInvalidTemplate, "template %q references unknown parent %q", t.Name, p)
		}
	}
	return nil
}
