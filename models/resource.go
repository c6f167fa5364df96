package models

// Resource names an owned entity type for ownership checks.
type Resource string

const (
	ResourceUser          Resource = "user"
	ResourceCommunityPost Resource = "community_post"
	ResourceComment       Resource = "comment"
	ResourceGameReview    Resource = "game_review"
)

// OwnerColumn locates the owning user id of a resource row.
type OwnerColumn struct {
	Table  string
	Column string
}

var ownerColumns = map[Resource]OwnerColumn{
	ResourceUser:          {Table: "users", Column: "id"}, // a user owns its own row
	ResourceCommunityPost: {Table: "community_posts", Column: "user_id"},
	ResourceComment:       {Table: "comments", Column: "user_id"},
	ResourceGameReview:    {Table: "game_reviews", Column: "user_id"},
}

// Owner returns where the owner id of r is stored.
func (r Resource) Owner() (OwnerColumn, bool) {
	col, ok := ownerColumns[r]
	return col, ok
}
