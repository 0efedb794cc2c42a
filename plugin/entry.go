package plugin

import "encoding/json"

// SourceType is the transport used to fetch a plugin's repository. Git is
// the only one this validator understands.
type SourceType string

const SourceGit SourceType = "git"

// Source is a plugin entry's fetch location.
type Source struct {
	Type SourceType `json:"type"`
	URL  string     `json:"url"`
}

// Entry is one record in the marketplace index.
type Entry struct {
	Name   string   `json:"name"`
	Tier   Tier     `json:"tier"`
	Tags   []string `json:"tags,omitempty"`
	Source Source   `json:"source"`
}

// rawEntry mirrors Entry's JSON shape but with both the current and
// legacy field names, so UnmarshalJSON can normalize them in one place.
type rawEntry struct {
	Name     string          `json:"name"`
	Tier     string          `json:"tier"`
	Category string          `json:"category"`
	Tags     []string        `json:"tags"`
	Source   json.RawMessage `json:"source"`
}

type rawSource struct {
	Type   string `json:"type"`
	Source string `json:"source"` // legacy alias for url
	URL    string `json:"url"`
}

// UnmarshalJSON normalizes the two legacy conventions documented for the
// index: category is an alias for tier, and source.source is an alias for
// source.url paired with an implicit type=git (a legacy source type of
// "url" is also read as git). Both aliases are accepted silently;
// official is folded into curated by ParseTier.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var r rawEntry
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}

	e.Name = r.Name
	e.Tags = r.Tags

	tierStr := r.Tier
	if tierStr == "" {
		tierStr = r.Category
	}
	if tier, ok := ParseTier(tierStr); ok {
		e.Tier = tier
	} else {
		e.Tier = Tier(tierStr)
	}

	if len(r.Source) > 0 {
		var rs rawSource
		if err := json.Unmarshal(r.Source, &rs); err != nil {
			return err
		}
		url := rs.URL
		if url == "" {
			url = rs.Source
		}
		typ := SourceType(rs.Type)
		if typ == "" || typ == "url" {
			typ = SourceGit
		}
		e.Source = Source{Type: typ, URL: url}
	}
	return nil
}
