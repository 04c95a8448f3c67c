package cache_sync

import (
	"errors"
	"fmt"
	"strings"

	"github.com/compprog-lecture-tools/problem-list/problem_repository/models"
)

// SlotSeparator joins the key components in slot directory names
const SlotSeparator = "__"

// ErrInvalidSlotName is returned for problem names that cannot be turned into
// an unambiguous slot directory name
var ErrInvalidSlotName = errors.New("invalid cache slot name")

// SlotKey identifies the cache slot of one problem. It is only flattened
// into a string when touching the file system.
type SlotKey struct {
	Course  string
	Contest string
	Name    string
}

// SlotKeyFor validates path and returns its slot key
func SlotKeyFor(path models.Path) (SlotKey, error) {
	for _, component := range []string{path.Course, path.Contest, path.Name} {
		if err := validateComponent(component); err != nil {
			return SlotKey{}, fmt.Errorf("%w: %s: %v", ErrInvalidSlotName, path, err)
		}
	}
	return SlotKey{Course: path.Course, Contest: path.Contest, Name: path.Name}, nil
}

func validateComponent(component string) error {
	switch {
	case component == "":
		return errors.New("empty name component")
	case strings.Contains(component, SlotSeparator):
		return fmt.Errorf("%q contains the separator %q", component, SlotSeparator)
	case strings.HasPrefix(component, "_") || strings.HasSuffix(component, "_"):
		// "a_" + "__" + "b" would read back as "a" + "__" + "_b"
		return fmt.Errorf("%q starts or ends with an underscore", component)
	case strings.ContainsAny(component, `/\`):
		return fmt.Errorf("%q contains a path separator", component)
	}
	return nil
}

// DirName is the flat directory name of the slot, course__contest__name
func (k SlotKey) DirName() string {
	return k.Course + SlotSeparator + k.Contest + SlotSeparator + k.Name
}

// Path converts the key back into a problem path
func (k SlotKey) Path() models.Path {
	return models.Path{Course: k.Course, Contest: k.Contest, Name: k.Name}
}

// ParseSlotName is the inverse of DirName
func ParseSlotName(name string) (SlotKey, error) {
	parts := strings.Split(name, SlotSeparator)
	if len(parts) != 3 {
		return SlotKey{}, fmt.Errorf("%w: %q", ErrInvalidSlotName, name)
	}
	return SlotKeyFor(models.Path{Course: parts[0], Contest: parts[1], Name: parts[2]})
}
