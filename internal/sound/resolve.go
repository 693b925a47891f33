// Package sound resolves the alarm sound and plays it on a loop at full
// volume until stopped.
package sound

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrNoSound is returned when neither the preferred nor the fallback sound exists.
var ErrNoSound = errors.New("no alarm sound available")

// Resolver picks the sound file to ring with.
type Resolver struct {
	Fs        afero.Fs
	Dir       string
	Preferred string
	Fallback  string
}

// Resolve returns the contents of the preferred sound, or the fallback when
// the preferred one is missing or unreadable.
func (r Resolver) Resolve() ([]byte, string, error) {
	var errs []error
	for _, name := range []string{r.Preferred, r.Fallback} {
		if name == "" {
			continue
		}
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.Dir, name)
		}
		data, err := afero.ReadFile(r.Fs, path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return data, path, nil
	}
	return nil, "", fmt.Errorf("%w: %w", ErrNoSound, errors.Join(errs...))
}
