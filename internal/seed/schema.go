package seed

// Entry is one bookmark's properties in a Homepage bookmarks.yaml.
type Entry struct {
	Icon string `yaml:"icon"`
	Abbr string `yaml:"abbr"`
	Href string `yaml:"href"`
}

// Category maps a group name to its bookmarks. The YAML structure is:
//
//	- CategoryName:
//	    - BookmarkName:
//	        - abbr: XX
//	          href: https://...
//
// Each bookmark name maps to a list holding a single entry.
type Category map[string][]map[string][]Entry

// File is the root structure for bookmarks.yaml.
type File []Category
