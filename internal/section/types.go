// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package section

// Stat is a highlighted figure of the hero section.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Hero struct {
	Name     string `json:"name"`
	Headline string `json:"headline"`
	Subtitle string `json:"subtitle"`
	Stats    []Stat `json:"stats"`
}

type About struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
	Highlights []string `json:"highlights"`
}

// Skill is a single skill with a proficiency level from 0 to 100.
type Skill struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

type SkillCategory struct {
	Name   string  `json:"name"`
	Skills []Skill `json:"skills"`
}

type Skills struct {
	Categories []SkillCategory `json:"categories"`
}

type Project struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	URL         string   `json:"url,omitempty"`
	Repository  string   `json:"repository,omitempty"`
	Featured    bool     `json:"featured"`
}

type Projects struct {
	Projects []Project `json:"projects"`
}

// Position is an entry of the work history. End is empty for the current position.
type Position struct {
	Company    string   `json:"company"`
	Role       string   `json:"role"`
	Location   string   `json:"location,omitempty"`
	Start      string   `json:"start"`
	End        string   `json:"end,omitempty"`
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
}

type Experience struct {
	Positions []Position `json:"positions"`
}

// Channel is a way to get in touch, e.g. a mail address or a social profile.
type Channel struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Value string `json:"value"`
	URL   string `json:"url,omitempty"`
}

type Contact struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Channels    []Channel `json:"channels"`
}
