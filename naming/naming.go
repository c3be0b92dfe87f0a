// Package naming enforces the hierarchical names components carry, such as
// "Bench.Buffer" or "Top.Lane[2].Skid".
package naming

import (
	"fmt"
	"strconv"
	"strings"
)

// Named describes an object that has a name.
type Named interface {
	Name() string
}

// NameMustBeValid panics if the name does not follow the naming convention:
//  1. Tokens are separated by dots, and no token is empty.
//  2. Every token starts with a capital letter.
//  3. Tokens do not contain '_', '-', or quotes.
//  4. Elements of a series use square brackets with an integer index.
func NameMustBeValid(name string) {
	if err := CheckName(name); err != nil {
		panic(err.Error())
	}
}

// CheckName returns an error describing why the name is not valid.
func CheckName(name string) error {
	for _, token := range strings.Split(name, ".") {
		if err := checkToken(token); err != nil {
			return fmt.Errorf("name %q is not valid: %w", name, err)
		}
	}

	return nil
}

func checkToken(token string) error {
	elem, rest, hasIndex := strings.Cut(token, "[")

	if elem == "" {
		return fmt.Errorf("name element must not be empty")
	}

	if strings.ContainsAny(elem, "_-\"'] ") {
		return fmt.Errorf("name element %q contains invalid characters", elem)
	}

	if elem[0] < 'A' || elem[0] > 'Z' {
		return fmt.Errorf("name element %q must start with a capital letter", elem)
	}

	if !hasIndex {
		return nil
	}

	for _, idx := range strings.Split("["+rest, "[")[1:] {
		num, ok := strings.CutSuffix(idx, "]")
		if !ok {
			return fmt.Errorf("brackets in %q must match", token)
		}

		if _, err := strconv.Atoi(num); err != nil {
			return fmt.Errorf("index %q in %q must be an integer", num, token)
		}
	}

	return nil
}

// BuildName joins a parent name and an element name.
func BuildName(parentName, elementName string) string {
	if parentName == "" {
		return elementName
	}

	return parentName + "." + elementName
}

// BuildNameWithIndex builds the name of the index-th element of a series.
func BuildNameWithIndex(parentName, elementName string, index int) string {
	return BuildName(parentName, elementName+"["+strconv.Itoa(index)+"]")
}
