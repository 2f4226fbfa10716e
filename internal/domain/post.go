package domain

import "time"

// Post is the slice of a forum post owned by the economy core: the single
// optional reward slot, set at most once at creation, and the append-only
// list of reaction drops applied to it.
type Post struct {
	ID           string    `json:"post_id"`
	ThreadID     string    `json:"thread_id"`
	AuthorID     string    `json:"author_id"`
	Body         string    `json:"body"`
	PostDate     time.Time `json:"post_date"`
	RewardDropID *string   `json:"reward_drop_id,omitempty"`
	Reactions    []string  `json:"reactions"`
}
