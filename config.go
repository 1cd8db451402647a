package txm

import (
	"io"
	"os"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadOptions decodes an Options value from YAML, starting from
// DefaultOptions so that a config file only needs to name the fields it
// wants to override (spec §2.3 / SPEC_FULL.md ambient-stack config layer).
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && err != io.EOF {
		return Options{}, pkgerrors.Wrap(err, "txm: decode options")
	}
	return opts.normalized()
}

// LoadOptionsFile reads and decodes Options from a YAML file at path.
func LoadOptionsFile(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return Options{}, pkgerrors.Wrap(err, "txm: open options file")
	}
	defer f.Close()
	return LoadOptions(f)
}
