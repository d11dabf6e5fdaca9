package recipe

import "strings"

// Mode selects the cooking style used for prompts and fallbacks
type Mode string

const (
	ModeHome         Mode = "home"
	ModeProfessional Mode = "professional"
)

// ParseMode maps free-form input onto a Mode. Empty or unknown input is home mode.
func ParseMode(s string) Mode {
	if m, err := ParseModeStrict(s); err == nil {
		return m
	}
	return ModeHome
}

// ParseModeStrict rejects anything other than the two known modes
func ParseModeStrict(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeHome:
		return ModeHome, nil
	case ModeProfessional:
		return ModeProfessional, nil
	default:
		return "", ErrUnknownMode
	}
}

// String implements fmt.Stringer
func (m Mode) String() string {
	return string(m)
}

// IsProfessional reports whether advanced techniques are expected
func (m Mode) IsProfessional() bool {
	return m == ModeProfessional
}

// Preferences are the optional free-text hints forwarded to the prompt
type Preferences struct {
	Servings   int    `json:"servings,omitempty"`
	Dietary    string `json:"dietary,omitempty"`
	Cuisine    string `json:"cuisine,omitempty"`
	Budget     string `json:"budget,omitempty"`
	Appliances string `json:"appliances,omitempty"`
	SkillLevel string `json:"skill_level,omitempty"`
}

// DefaultServings is used when the caller does not ask for a specific count
const DefaultServings = 2

// WithDefaults returns a copy with servings filled in
func (p Preferences) WithDefaults() Preferences {
	if p.Servings <= 0 {
		p.Servings = DefaultServings
	}
	return p
}
