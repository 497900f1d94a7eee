package form

import "strings"

// RequiredFieldsMessage is shown to the operator when validation fails.
const RequiredFieldsMessage = "* Please fill all required fields with positive numbers: Rim Width, Rim Diameter, Load 1, Pressure"

// ValidationError lists the required field ids that did not hold a positive
// number.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return RequiredFieldsMessage
}

// Detail names the offending ids.
func (e *ValidationError) Detail() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}
