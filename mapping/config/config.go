// Package config contains the YAML file format of the normalization maps.
package config

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

type Normalization struct {
	StreetTypes                 Replacements `yaml:"street_types"`
	ExpectedStreetTypes         []string     `yaml:"expected_street_types"`
	HouseNumberSuffixes         Replacements `yaml:"housenumber_suffixes"`
	ExpectedHouseNumberSuffixes []string     `yaml:"expected_housenumber_suffixes"`
}

// Replacements maps a raw token to its canonical form.
type Replacements map[string]string

func (r *Replacements) UnmarshalYAML(unmarshal func(interface{}) error) error {
	if *r == nil {
		*r = make(map[string]string)
	}
	slice := yaml.MapSlice{}
	err := unmarshal(&slice)
	if err != nil {
		return err
	}
	for _, item := range slice {
		k, ok := item.Key.(string)
		if !ok {
			return fmt.Errorf("replacement key '%v' not a string", item.Key)
		}
		v, ok := item.Value.(string)
		if !ok {
			return fmt.Errorf("replacement for '%s' not a string", k)
		}
		if _, ok := (*r)[k]; ok {
			return fmt.Errorf("duplicate replacement for '%s'", k)
		}
		(*r)[k] = v
	}
	return nil
}
