package seed

import (
	"fmt"
	"os"

	"relay/internal/models"

	"gopkg.in/yaml.v3"
)

// Preset describes a seeding scenario. Presets ship as YAML files so demo
// environments can be rebuilt without editing code.
type Preset struct {
	Name            string                  `yaml:"name"`
	Users           int                     `yaml:"users"`
	CommentsPerPost int                     `yaml:"comments_per_post"`
	Communities     []PresetCommunity       `yaml:"communities"`
	PostMix         map[models.PostType]int `yaml:"post_mix"`
}

// PresetCommunity is one community to create, with its creator picked at
// random from the seeded users.
type PresetCommunity struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	College string `yaml:"college,omitempty"`
}

// LoadPreset reads and validates a preset YAML file.
func LoadPreset(path string) (*Preset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	var preset Preset
	if err := yaml.Unmarshal(raw, &preset); err != nil {
		return nil, fmt.Errorf("parse preset %s: %w", path, err)
	}
	if err := preset.Validate(); err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}
	return &preset, nil
}

// Validate checks the preset references only known types.
func (p *Preset) Validate() error {
	if p.Users <= 0 {
		return fmt.Errorf("users must be positive, got %d", p.Users)
	}
	for _, community := range p.Communities {
		if community.Name == "" {
			return fmt.Errorf("community with empty name")
		}
		if !models.ValidCommunityType(models.CommunityType(community.Type)) {
			return fmt.Errorf("community %q has unknown type %q", community.Name, community.Type)
		}
	}
	for postType := range p.PostMix {
		if !models.ValidPostType(postType) {
			return fmt.Errorf("unknown post type %q in post_mix", postType)
		}
	}
	return nil
}

// DefaultPreset is the built-in scenario used when no YAML file is given.
// Post counts are scaled to roughly match opts.Posts.
func DefaultPreset(opts Options) *Preset {
	opts = opts.withDefaults()
	share := opts.Posts / 10
	if share == 0 {
		share = 1
	}
	return &Preset{
		Name:            "default",
		Users:           opts.Users,
		CommentsPerPost: opts.CommentsPerPost,
		Communities: []PresetCommunity{
			{Name: "Robotics Club", Type: string(models.CommunityTypeInterest)},
			{Name: "Debate Society", Type: string(models.CommunityTypeInterest)},
			{Name: "CS Study Group", Type: string(models.CommunityTypeAcademic), College: "CST"},
			{Name: "Engineering Projects", Type: string(models.CommunityTypeAcademic), College: "COE"},
			{Name: "Student Council", Type: string(models.CommunityTypeOfficial)},
		},
		PostMix: map[models.PostType]int{
			models.PostTypeCasual:       share * 3,
			models.PostTypeIdea:         share,
			models.PostTypeEvent:        share,
			models.PostTypeMarketplace:  share,
			models.PostTypeOpportunity:  share,
			models.PostTypeLink:         share,
			models.PostTypeNews:         share,
			models.PostTypeLostAndFound: share,
		},
	}
}
