package mapping

import (
	"io/ioutil"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/omniscale/osmwrangle/logging"
	"github.com/omniscale/osmwrangle/mapping/config"
)

var log = logging.NewLogger("mapping")

type Maps struct {
	streetTypes         map[string]string
	expectedStreetTypes map[string]struct{}
	suffixes            map[string]string
	expectedSuffixes    map[string]struct{}
}

// Default returns the built-in normalization maps.
func Default() *Maps {
	m, err := newMaps(&config.Normalization{})
	if err != nil {
		// defaults are static
		panic(err)
	}
	return m
}

// Load reads normalization maps from a YAML file.
func Load(filename string) (*Maps, error) {
	b, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	m, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", filename)
	}
	return m, nil
}

// Parse reads normalization maps from YAML data.
func Parse(data []byte) (*Maps, error) {
	conf := config.Normalization{}
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, err
	}
	return newMaps(&conf)
}

func newMaps(conf *config.Normalization) (*Maps, error) {
	if conf.StreetTypes == nil {
		conf.StreetTypes = defaultStreetTypes
	}
	if conf.ExpectedStreetTypes == nil {
		conf.ExpectedStreetTypes = defaultExpectedStreetTypes
	}
	if conf.HouseNumberSuffixes == nil {
		conf.HouseNumberSuffixes = defaultHouseNumberSuffixes
	}
	if conf.ExpectedHouseNumberSuffixes == nil {
		conf.ExpectedHouseNumberSuffixes = defaultExpectedHouseNumberSuffixes
	}

	m := &Maps{
		streetTypes:         make(map[string]string, len(conf.StreetTypes)),
		expectedStreetTypes: set(conf.ExpectedStreetTypes),
		suffixes:            make(map[string]string, len(conf.HouseNumberSuffixes)),
		expectedSuffixes:    set(conf.ExpectedHouseNumberSuffixes),
	}
	for k, v := range conf.StreetTypes {
		if k == "" || v == "" {
			return nil, errors.Errorf("empty street type replacement '%s': '%s'", k, v)
		}
		m.streetTypes[k] = v
	}
	for k, v := range conf.HouseNumberSuffixes {
		if k == "" || v == "" {
			return nil, errors.Errorf("empty house number suffix replacement '%s': '%s'", k, v)
		}
		m.suffixes[k] = v
	}
	m.checkCanonical()
	return m, nil
}

// checkCanonical warns about replacements that do not result in an
// expected value, these are most likely typos in the maps.
func (m *Maps) checkCanonical() {
	for _, k := range sortedKeys(m.streetTypes) {
		if _, ok := m.expectedStreetTypes[m.streetTypes[k]]; !ok {
			log.Warnf("street type '%s' is replaced with unexpected '%s'", k, m.streetTypes[k])
		}
	}
	for _, k := range sortedKeys(m.suffixes) {
		if _, ok := m.expectedSuffixes[m.suffixes[k]]; !ok {
			log.Warnf("house number suffix '%s' is replaced with unexpected '%s'", k, m.suffixes[k])
		}
	}
}

// StreetType returns the canonical form of a street type token.
func (m *Maps) StreetType(token string) (string, bool) {
	v, ok := m.streetTypes[token]
	return v, ok
}

// ExpectedStreetType returns whether token is already a canonical street type.
func (m *Maps) ExpectedStreetType(token string) bool {
	_, ok := m.expectedStreetTypes[token]
	return ok
}

// HouseNumberSuffix returns the canonical form of a house number suffix.
func (m *Maps) HouseNumberSuffix(suffix string) (string, bool) {
	v, ok := m.suffixes[suffix]
	return v, ok
}

// ExpectedHouseNumberSuffix returns whether suffix is already canonical.
func (m *Maps) ExpectedHouseNumberSuffix(suffix string) bool {
	_, ok := m.expectedSuffixes[suffix]
	return ok
}

func set(values []string) map[string]struct{} {
	s := make(map[string]struct{}, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
