package git

import "fmt"

// TagExistsError is returned when the tag to create already exists
type TagExistsError struct {
	Name string
}

func (e *TagExistsError) Error() string {
	return fmt.Sprintf("tag '%s' already exists", e.Name)
}
