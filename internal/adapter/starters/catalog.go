package starters

import (
	"strings"

	"create-stencil/internal/domain"
)

// Catalog lists the starters offered by name.
var Catalog = []domain.Starter{
	{
		Name:        "component",
		Repo:        "stenciljs/component-starter",
		Description: "Collection of web components that can be used anywhere",
		Docs:        "https://github.com/stenciljs/component-starter",
	},
	{
		Name:        "components",
		Repo:        "stenciljs/component-starter",
		Description: "Collection of web components that can be used anywhere",
		Docs:        "https://github.com/stenciljs/component-starter",
		Hidden:      true,
	},
	{
		Name:        "app",
		Repo:        "stencil-community/stencil-app-starter",
		Description: "Minimal starter for building a Stencil app or website",
		Docs:        "https://github.com/stencil-community/stencil-app-starter",
		IsCommunity: true,
	},
	{
		Name:        "ionic-pwa",
		Repo:        "stencil-community/stencil-ionic-starter",
		Description: "Ionic PWA starter with tabs layout and routes",
		Docs:        "https://github.com/stencil-community/stencil-ionic-starter",
		IsCommunity: true,
	},
}

// Lookup resolves a starter by name. Names containing a slash are treated
// as "owner/name" repositories outside the catalog.
func Lookup(name string) (domain.Starter, error) {
	if strings.Contains(name, "/") {
		return domain.Starter{Name: name, Repo: name}, nil
	}
	for _, s := range Catalog {
		if s.Name == name {
			return s, nil
		}
	}
	return domain.Starter{}, &domain.StarterNotFoundError{Name: name}
}

// Visible returns the starters that should be offered in prompts.
func Visible() []domain.Starter {
	out := make([]domain.Starter, 0, len(Catalog))
	for _, s := range Catalog {
		if !s.Hidden {
			out = append(out, s)
		}
	}
	return out
}
