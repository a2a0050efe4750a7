package seed

// File is the top-level structure of a seed file: a list of categories, each
// holding a list of sites keyed by display name.
//
//	- Development:
//	    - Go:
//	        href: https://go.dev
//	        description: The Go programming language
type File []map[string][]map[string]SiteProps

// SiteProps are the listing fields of one seeded site.
type SiteProps struct {
	Href        string `yaml:"href"`
	Description string `yaml:"description,omitempty"`
	SubCategory string `yaml:"subCategory,omitempty"`
	Profession  string `yaml:"profession,omitempty"`
	Logo        string `yaml:"logo,omitempty"`
	Image       string `yaml:"image,omitempty"`
	Date        string `yaml:"date,omitempty"`
	Email       string `yaml:"email,omitempty"`
}
