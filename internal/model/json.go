package model

import "encoding/json"

// SectionJSON returns the pretty-printed JSON form of a section, the
// serialization used for token accounting.
func SectionJSON(s Section) string {
	b, _ := json.MarshalIndent(s, "", "    ")
	return string(b)
}

// SectionsJSON returns the pretty-printed JSON form of a section list.
func SectionsJSON(sections []Section) string {
	if sections == nil {
		sections = []Section{}
	}
	b, _ := json.MarshalIndent(sections, "", "    ")
	return string(b)
}
