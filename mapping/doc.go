/*
Package mapping provides the static tables used to normalize tag values.

Maps contains the street type replacements (e.g. avenue -> Avenue), the house
number suffix replacements (e.g. B -> bis) and the lists of already canonical
street types and suffixes. Maps are loaded once from a YAML file (or the
built-in defaults) and are read-only afterwards. They are safe for concurrent
use.

Example file:

	street_types:
	  avenue: Avenue
	  Pl: Place
	expected_street_types: [Avenue, Place, Rue]
	housenumber_suffixes:
	  B: bis
	expected_housenumber_suffixes: [bis, ter, quater]

Sections missing from the file use the built-in defaults.
*/
package mapping
