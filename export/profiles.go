package export

import (
	"fmt"

	"github.com/c360studio/semstreams/vocabulary/bfo"

	"github.com/c360studio/mcskg/vocabulary/mcskg"
)

// Profile determines which ontology alignment is included in the export.
type Profile string

const (
	// ProfileMinimal emits rules and entity classes with labels only.
	ProfileMinimal Profile = "minimal"

	// ProfileBFO adds rdfs:subClassOf links from entity classes to BFO.
	ProfileBFO Profile = "bfo"
)

// ProfileConfig contains configuration for an export profile.
type ProfileConfig struct {
	// Name is the profile identifier.
	Name Profile

	// Description describes the profile.
	Description string

	// IncludeBFO adds BFO superclasses for entity classes.
	IncludeBFO bool
}

// Profiles contains the configuration for all available export profiles.
var Profiles = map[Profile]ProfileConfig{
	ProfileMinimal: {
		Name:        ProfileMinimal,
		Description: "Rule entities and labelled entity classes",
	},
	ProfileBFO: {
		Name:        ProfileBFO,
		Description: "Minimal profile plus BFO superclasses",
		IncludeBFO:  true,
	},
}

// GetProfileConfig returns the configuration for a profile, defaulting to
// the minimal profile.
func GetProfileConfig(profile Profile) ProfileConfig {
	if config, ok := Profiles[profile]; ok {
		return config
	}
	return Profiles[ProfileMinimal]
}

// ParseProfile validates a profile name.
func ParseProfile(s string) (Profile, error) {
	if _, ok := Profiles[Profile(s)]; ok {
		return Profile(s), nil
	}
	return "", fmt.Errorf("unsupported profile: %s", s)
}

// SuperClass returns the BFO class an entity of the given slot kind is
// exported under, if the profile includes BFO alignment.
func (c ProfileConfig) SuperClass(kind mcskg.SlotKind) (string, bool) {
	if !c.IncludeBFO {
		return "", false
	}
	class, ok := mcskg.BFOClassMap[kind]
	return class, ok
}

// SuperProperty returns the BFO relation a relation kind's predicate is
// exported as a subproperty of, if the profile includes BFO alignment.
func (c ProfileConfig) SuperProperty(r mcskg.Relation) (string, bool) {
	if !c.IncludeBFO {
		return "", false
	}
	rel, ok := mcskg.StandardRelationMap[r]
	return rel, ok
}

// BFOClassLabels provides labels for the BFO classes used in exports.
var BFOClassLabels = map[string]string{
	bfo.Process:               "process",
	bfo.IndependentContinuant: "independent continuant",
}
