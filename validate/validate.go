/*
Package validate checks shaped records against the column types of the output
tables before they are written.

Validation is optional. A record that fails is a fatal error for the import,
records are never skipped.
*/
package validate

import (
	"fmt"
	"sort"

	"github.com/asaskevich/govalidator"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/pkg/errors"

	"github.com/omniscale/osmwrangle/element"
)

// ValidationError reports the first invalid field of a record. Type is the
// name of the table the record belongs to.
type ValidationError struct {
	Type   string
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("element of type '%s' has the following errors: %s: %s", e.Type, e.Field, e.Detail)
}

var rfc3339 = validation.NewStringRuleWithError(
	govalidator.IsRFC3339,
	validation.NewError("validation_is_rfc3339", "must be a valid RFC3339 timestamp"),
)

// Validator is stateless and safe for concurrent use.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Validate checks all records of s. It returns a *ValidationError for the
// first invalid record.
func (v *Validator) Validate(s *element.Shaped) error {
	if s.Node != nil {
		if err := check(element.NodesTable.Name, nodeRules(s.Node)); err != nil {
			return err
		}
		return checkTags(element.NodeTagsTable.Name, s.Tags)
	}
	if s.Way != nil {
		if err := check(element.WaysTable.Name, wayRules(s.Way)); err != nil {
			return err
		}
		for i := range s.WayNodes {
			if err := check(element.WayNodesTable.Name, wayNodeRules(&s.WayNodes[i])); err != nil {
				return err
			}
		}
		return checkTags(element.WayTagsTable.Name, s.Tags)
	}
	return nil
}

func checkTags(table string, tags []element.Tag) error {
	for i := range tags {
		if err := check(table, tagRules(&tags[i])); err != nil {
			return err
		}
	}
	return nil
}

func nodeRules(n *element.Node) error {
	return validation.ValidateStruct(n,
		validation.Field(&n.ID, validation.Required, is.Int),
		validation.Field(&n.Lat, validation.Required, is.Float),
		validation.Field(&n.Lon, validation.Required, is.Float),
		validation.Field(&n.UID, is.Int),
		validation.Field(&n.Version, is.Int),
		validation.Field(&n.Changeset, is.Int),
		validation.Field(&n.Timestamp, validation.Required, rfc3339),
	)
}

func wayRules(w *element.Way) error {
	return validation.ValidateStruct(w,
		validation.Field(&w.ID, validation.Required, is.Int),
		validation.Field(&w.UID, is.Int),
		validation.Field(&w.Version, is.Int),
		validation.Field(&w.Changeset, is.Int),
		validation.Field(&w.Timestamp, validation.Required, rfc3339),
	)
}

// Keys can be empty ("addr:" has the key ""), values can not.
func tagRules(t *element.Tag) error {
	return validation.ValidateStruct(t,
		validation.Field(&t.ID, validation.Required, is.Int),
		validation.Field(&t.Value, validation.Required),
	)
}

func wayNodeRules(wn *element.WayNode) error {
	return validation.ValidateStruct(wn,
		validation.Field(&wn.ID, validation.Required, is.Int),
		validation.Field(&wn.NodeID, validation.Required, is.Int),
		validation.Field(&wn.Position, validation.Min(0)),
	)
}

// check converts the field errors of ozzo-validation into a
// ValidationError. The field that sorts first is reported.
func check(table string, err error) error {
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validation.Errors)
	if !ok || len(fieldErrs) == 0 {
		return errors.Wrapf(err, "validating %s", table)
	}
	fields := make([]string, 0, len(fieldErrs))
	for f := range fieldErrs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return &ValidationError{
		Type:   table,
		Field:  fields[0],
		Detail: fieldErrs[fields[0]].Error(),
	}
}
