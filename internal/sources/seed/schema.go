package seed

// Data is the root structure of a seed file:
//
//	categories: [Book, Manga, Video]
//	tags: [scifi, classic]
//	bookmarks:
//	  - title: Dune
//	    url: https://example.com/dune
//	    category: Book
//	    tags: [scifi, classic]
//	    visibility: public
type Data struct {
	Categories []string        `yaml:"categories"`
	Tags       []string        `yaml:"tags"`
	Bookmarks  []BookmarkEntry `yaml:"bookmarks"`
}

// BookmarkEntry mirrors the bookmark JSON field names.
// Missing id, visibility and dateAdded are filled in by the mapper.
type BookmarkEntry struct {
	ID         string   `yaml:"id,omitempty"`
	Title      string   `yaml:"title"`
	URL        string   `yaml:"url"`
	Category   string   `yaml:"category,omitempty"`
	Progress   string   `yaml:"progress,omitempty"`
	Notes      string   `yaml:"notes,omitempty"`
	Tags       []string `yaml:"tags,omitempty"`
	CoverURL   string   `yaml:"coverUrl,omitempty"`
	Visibility string   `yaml:"visibility,omitempty"`
	DateAdded  string   `yaml:"dateAdded,omitempty"`
}
