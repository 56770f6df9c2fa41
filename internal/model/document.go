package model

import (
	"github.com/rotisserie/eris"
)

// Section is one titled, identified unit of document text produced by the
// upstream chunker. Immutable once loaded.
type Section struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Document is a named policy document with its ordered sections.
type Document struct {
	Name     string
	Sections []Section

	byID map[string]*Section
}

// NewDocument creates a Document and indexes its sections by ID.
// Section IDs must be unique within a document.
func NewDocument(name string, sections []Section) (*Document, error) {
	d := &Document{
		Name:     name,
		Sections: sections,
		byID:     make(map[string]*Section, len(sections)),
	}
	for i := range d.Sections {
		s := &d.Sections[i]
		if _, dup := d.byID[s.ID]; dup {
			return nil, eris.Errorf("model: document %s: duplicate section id %s", name, s.ID)
		}
		d.byID[s.ID] = s
	}
	return d, nil
}

// SectionByID returns the section with the given ID, or nil if not found.
func (d *Document) SectionByID(id string) *Section {
	return d.byID[id]
}

// SectionIDs returns the document's section IDs in original order.
func (d *Document) SectionIDs() []string {
	ids := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		ids[i] = s.ID
	}
	return ids
}
