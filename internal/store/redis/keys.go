package redis

const (
	// KeyPrefixBookmark is the prefix for bookmark keys (JSON values)
	KeyPrefixBookmark = "shelf:bookmark:"
	// KeyBookmarkOrder is the sorted set of bookmark IDs scored by insertion sequence
	KeyBookmarkOrder = "shelf:bookmarks:order"
	// KeyBookmarkSeq is the counter feeding KeyBookmarkOrder scores
	KeyBookmarkSeq = "shelf:bookmarks:seq"
	// KeyTags is the list of tag names
	KeyTags = "shelf:tags"
	// KeyCategories is the list of category names
	KeyCategories = "shelf:categories"
)

// BookmarkKey returns the Redis key for a bookmark.
func BookmarkKey(id string) string {
	return KeyPrefixBookmark + id
}
