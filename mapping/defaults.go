package mapping

import "github.com/omniscale/osmwrangle/mapping/config"

// Street types found in the Nanterre extract. Not a complete list.
var defaultExpectedStreetTypes = []string{
	"Aire", "Allée", "Avenue", "Boulevard", "Chemin", "Cours",
	"Esplanade", "Ile", "Impasse", "Jardins", "Passage", "Place",
	"Quai", "Résidence", "Route", "Rue", "Square", "Terrasse",
}

var defaultStreetTypes = config.Replacements{
	"allée":     "Allée",
	"avenue":    "Avenue",
	"boulevard": "Boulevard",
	"cours":     "Cours",
	"place":     "Place",
	"Pl":        "Place",
	"quai":      "Quai",
	"rue":       "Rue",
	"RUE":       "Rue",
	"Residence": "Résidence",
	"terrasse":  "Terrasse",
}

var defaultExpectedHouseNumberSuffixes = []string{"bis", "ter", "quater"}

var defaultHouseNumberSuffixes = config.Replacements{
	"B":      "bis",
	"T":      "ter",
	"Q":      "quater",
	"Bis":    "bis",
	"BIS":    "bis",
	"Ter":    "ter",
	"TER":    "ter",
	"quat":   "quater",
	"Quat":   "quater",
	"QUAT":   "quater",
	"Quater": "quater",
	"QUATER": "quater",
}
