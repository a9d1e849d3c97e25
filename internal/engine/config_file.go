package engine

import (
	"os"

	"github.com/juju/errors"
	"gopkg.in/yaml.v2"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

// LoadConfigFile reads an optional YAML override file for thresholds,
// weights and rules (§6 of spec.md's Configuration), the same way a
// config-driven CLI tool loads its tunables. A missing or unreadable
// file is returned as an error; a caller that treats the file as
// optional falls back to models.DefaultConfiguration in that case.
func LoadConfigFile(path string) (models.Configuration, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.Configuration{}, errors.Annotatef(err, "failed to read config file %q", path)
	}

	var opts models.ConfigOptions
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return models.Configuration{}, errors.Annotatef(err, "failed to parse config file %q", path)
	}
	return opts.Resolve(), nil
}
