package entity

import "time"

// Post is a blog, community, schedule or event post.
type Post struct {
	ID        string    `json:"-"`
	AuthorID  string    `json:"authorId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Type      string    `json:"type,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"-"`
}

// User is the public profile of an account.
type User struct {
	ID              string `json:"-"`
	DisplayName     string `json:"displayName"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// Interaction is a like or bookmark record stored under users/{uid}.
// PostID may be empty for records written by older clients.
type Interaction struct {
	ID        string    `json:"-"`
	PostID    string    `json:"postId"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"-"`
}

// Mention references a user tagged in a comment.
type Mention struct {
	UID string `json:"uid"`
}

// Comment is stored under {postCollection}/{postId}/comments.
type Comment struct {
	ID             string    `json:"-"`
	PostID         string    `json:"-"`
	PostCollection string    `json:"-"`
	AuthorID       string    `json:"authorId"`
	Content        string    `json:"content,omitempty"`
	Text           string    `json:"text,omitempty"`
	Message        string    `json:"message,omitempty"`
	Deleted        bool      `json:"deleted,omitempty"`
	Mentions       []Mention `json:"mentions,omitempty"`
	CreatedAt      time.Time `json:"-"`
}

// Body returns the first non-empty of content, text and message.
func (c Comment) Body() string {
	switch {
	case c.Content != "":
		return c.Content
	case c.Text != "":
		return c.Text
	default:
		return c.Message
	}
}

// DecodePost builds a Post from a document in a post collection.
func DecodePost(d Document) (Post, error) {
	var p Post
	if err := d.Decode(&p); err != nil {
		return Post{}, err
	}
	p.ID = d.ID
	p.CreatedAt = d.CreatedAt
	return p, nil
}

// DecodeUser builds a User from a document in the users collection.
func DecodeUser(d Document) (User, error) {
	var u User
	if err := d.Decode(&u); err != nil {
		return User{}, err
	}
	u.ID = d.ID
	return u, nil
}

// DecodeInteraction builds an Interaction from a likes or bookmarks document.
func DecodeInteraction(d Document) (Interaction, error) {
	var in Interaction
	if err := d.Decode(&in); err != nil {
		return Interaction{}, err
	}
	in.ID = d.ID
	in.CreatedAt = d.CreatedAt
	return in, nil
}

// DecodeComment builds a Comment from a comments document.
func DecodeComment(d Document) (Comment, error) {
	var c Comment
	if err := d.Decode(&c); err != nil {
		return Comment{}, err
	}
	c.ID = d.ID
	c.PostID = d.ParentID()
	c.PostCollection = d.ParentCollection()
	c.CreatedAt = d.CreatedAt
	return c, nil
}
