package postgis

import (
	"database/sql"
	"strings"
)

// stripParam removes key=value from the space separated connection params
// and returns the value.
func stripParam(params, key string) (string, string) {
	parts := strings.Fields(params)
	var value string
	kept := parts[:0]
	for _, p := range parts {
		if strings.HasPrefix(p, key+"=") {
			value = strings.TrimPrefix(p, key+"=")
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, " "), value
}

func schemaFromConnectionParams(params string) (string, string) {
	params, schema := stripParam(params, "schema")
	if schema == "" {
		schema = "public"
	}
	return params, schema
}

func prefixFromConnectionParams(params string) (string, string) {
	params, prefix := stripParam(params, "prefix")
	if prefix == "" || prefix == "NONE" {
		return params, ""
	}
	if prefix[len(prefix)-1] != '_' {
		prefix = prefix + "_"
	}
	return params, prefix
}

// disableDefaultSsl adds sslmode=disable if no sslmode is set, lib/pq
// requires SSL by default.
func disableDefaultSsl(params string) string {
	if strings.Contains(params, "sslmode=") {
		return params
	}
	return params + " sslmode=disable"
}

func rollbackIfTx(tx **sql.Tx) {
	if *tx != nil {
		if err := (*tx).Rollback(); err != nil {
			log.Errorf("rollback failed: %s", err)
		}
		*tx = nil
	}
}
