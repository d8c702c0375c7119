package pagination

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Overscan is the number of raw documents fetched per wanted item.
// Normal is used when materializing a page, Boosted when building cursors
// ahead of the current page.
type Overscan struct {
	Normal  int `yaml:"normal"`
	Boosted int `yaml:"boosted"`
}

// OverscanPolicy maps a category name to its overscan factors.
// Categories without an entry use Default.
type OverscanPolicy struct {
	Default    Overscan            `yaml:"default"`
	Categories map[string]Overscan `yaml:"categories"`
}

// UniformPolicy returns a policy applying the same factors to every category.
func UniformPolicy(normal, boosted int) OverscanPolicy {
	return OverscanPolicy{Default: Overscan{Normal: normal, Boosted: boosted}}
}

// For returns the overscan factors for a category.
func (p OverscanPolicy) For(category string) Overscan {
	if o, ok := p.Categories[category]; ok {
		return o
	}
	return p.Default
}

// BatchSize returns the raw batch size for a scan over category.
func (p OverscanPolicy) BatchSize(category string, pageSize int, boosted bool) int {
	o := p.For(category)
	m := o.Normal
	if boosted {
		m = o.Boosted
	}
	if m < 1 {
		m = 1
	}
	return pageSize * m
}

// LoadOverscanPolicy reads a YAML policy file. Zero factors in the file
// inherit the corresponding factor from base.
//
// Example:
//
//	default:
//	  normal: 5
//	  boosted: 10
//	categories:
//	  comments:
//	    normal: 8
//	    boosted: 16
func LoadOverscanPolicy(path string, base OverscanPolicy) (OverscanPolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return OverscanPolicy{}, fmt.Errorf("read overscan policy: %w", err)
	}
	var p OverscanPolicy
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return OverscanPolicy{}, fmt.Errorf("parse overscan policy: %w", err)
	}
	p.Default = p.Default.inherit(base.Default)
	for name, o := range p.Categories {
		o = o.inherit(p.Default)
		if o.Boosted < o.Normal {
			return OverscanPolicy{}, fmt.Errorf("overscan policy: category %s: boosted %d below normal %d", name, o.Boosted, o.Normal)
		}
		p.Categories[name] = o
	}
	if p.Default.Boosted < p.Default.Normal {
		return OverscanPolicy{}, fmt.Errorf("overscan policy: default boosted %d below normal %d", p.Default.Boosted, p.Default.Normal)
	}
	return p, nil
}

func (o Overscan) inherit(base Overscan) Overscan {
	if o.Normal <= 0 {
		o.Normal = base.Normal
	}
	if o.Boosted <= 0 {
		o.Boosted = base.Boosted
	}
	return o
}
