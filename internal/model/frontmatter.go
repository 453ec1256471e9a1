package model

// FrontMatter is the YAML header of an exposed document.
type FrontMatter struct {
	Title        string   `yaml:"title"`
	Source       string   `yaml:"source"`
	Contributors []string `yaml:"contributors,omitempty"`
	Lang         string   `yaml:"lang,omitempty"`
}

// NewFrontMatter builds the header of the document migrated by m.
// French pages are marked with lang "fr".
func NewFrontMatter(m *Migration) FrontMatter {
	fm := FrontMatter{
		Title:        m.Title,
		Source:       m.SourceURL,
		Contributors: m.Contributors,
	}
	if m.Page.IsFrench() {
		fm.Lang = frenchTag
	}
	return fm
}
