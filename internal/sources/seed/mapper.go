package seed

import (
	"errors"
	"net/url"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/sitelist/internal/domain"
)

// ErrNoSites is returned when a seed file holds no usable site.
var ErrNoSites = errors.New("no valid sites found in seed file")

// MapSites converts a seed file into approved websites, in file order.
// Entries without an absolute http(s) href are skipped.
func MapSites(file File) ([]*domain.Website, error) {
	var sites []*domain.Website

	for _, group := range file {
		for _, category := range sortedKeys(group) {
			for _, entry := range group[category] {
				for _, name := range sortedKeys(entry) {
					props := entry[name]
					if !validHref(props.Href) {
						continue
					}

					sites = append(sites, &domain.Website{
						Name:        strings.TrimSpace(name),
						Link:        props.Href,
						Category:    strings.TrimSpace(category),
						SubCategory: props.SubCategory,
						Profession:  props.Profession,
						Description: props.Description,
						Logo:        props.Logo,
						Image:       props.Image,
						Date:        props.Date,
						Email:       props.Email,
					})
				}
			}
		}
	}

	if len(sites) == 0 {
		return nil, ErrNoSites
	}
	return sites, nil
}

func validHref(href string) bool {
	if href == "" {
		return false
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Hostname() != ""
}

// sortedKeys keeps the mapping deterministic when a YAML map holds several keys.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
