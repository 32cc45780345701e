package dictionary

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// RequiredFiles are the files every compiled MeCab dictionary directory
// must contain. Only their presence is checked.
var RequiredFiles = []string{"char.bin", "dicrc", "matrix.bin", "sys.dic", "unk.dic"}

var (
	// ErrNotFound is returned when the dictionary directory does not exist.
	ErrNotFound = errors.New("dictionary directory not found")
	// ErrIncomplete is returned when the directory cannot be listed or lacks
	// one of RequiredFiles.
	ErrIncomplete = errors.New("dictionary directory incomplete")
)

// MissingFilesError lists the required files absent from Dir.
type MissingFilesError struct {
	Dir     string
	Missing []string
}

func (e *MissingFilesError) Error() string {
	return fmt.Sprintf("%s is missing %s; the minimum viable contents are %s",
		e.Dir, strings.Join(e.Missing, ", "), strings.Join(RequiredFiles, ", "))
}

// Unwrap lets errors.Is match ErrIncomplete.
func (e *MissingFilesError) Unwrap() error { return ErrIncomplete }

// Validate checks that dir exists and holds a compiled dictionary.
func Validate(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrNotFound, "%q doesn't exist", dir)
		}
		return errors.Wrapf(ErrIncomplete, "stat %q: %v", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(ErrIncomplete, "list %q: %v", dir, err)
	}
	found := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		found[e.Name()] = struct{}{}
	}

	var missing []string
	for _, name := range RequiredFiles {
		if _, ok := found[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingFilesError{Dir: dir, Missing: missing}
	}
	return nil
}
