package domain

// StoryPrompt is a seeded prompt suggestion surfaced by the "magic prompt"
// button. Genre and Audience may be the wildcard values GenreAny/AudienceAny,
// meaning the suggestion fits any selection.
type StoryPrompt struct {
	ID       string   `json:"id"`
	Prompt   string   `json:"prompt"`
	Genre    Genre    `json:"genre"`
	Audience Audience `json:"audience"`
	Tags     []string `json:"tags,omitempty"`
}

// Matches reports whether the suggestion fits the given genre and audience,
// treating wildcards on the suggestion side as always matching.
func (p *StoryPrompt) Matches(genre Genre, audience Audience) bool {
	genreOK := p.Genre == GenreAny || p.Genre == genre
	audienceOK := p.Audience == AudienceAny || p.Audience == audience
	return genreOK && audienceOK
}
