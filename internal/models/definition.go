package models

type Definition struct {
	Term          string   `json:"term"`
	Definition    string   `json:"definition"`
	PlainLanguage string   `json:"plainLanguage,omitempty"`
	Jurisdiction  string   `json:"jurisdiction,omitempty"`
	Source        string   `json:"source"`
	Citation      string   `json:"citation,omitempty"`
	RelatedTerms  []string `json:"relatedTerms,omitempty"`
	Examples      []string `json:"examples,omitempty"`
}
