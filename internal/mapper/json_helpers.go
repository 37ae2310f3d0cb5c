package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// stringsToJSON marshals a string slice into a jsonb column value.
// A nil slice becomes an empty array, not SQL NULL.
func stringsToJSON(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(b)
}

func jsonToStrings(blob datatypes.JSON) []string {
	if len(blob) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(blob, &out); err != nil {
		return []string{}
	}
	return out
}
