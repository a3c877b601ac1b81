package confluence

// Links carries the hypermedia links Confluence attaches to responses.
type Links struct {
	Base  string `json:"base,omitempty"`
	WebUI string `json:"webui,omitempty"`
	Next  string `json:"next,omitempty"`
}

// Version describes a content version.
type Version struct {
	Number int    `json:"number"`
	When   string `json:"when,omitempty"`
	By     struct {
		DisplayName string `json:"displayName,omitempty"`
	} `json:"by,omitempty"`
}

// History carries creation metadata when the history expand is requested.
type History struct {
	CreatedDate string `json:"createdDate,omitempty"`
	CreatedBy   struct {
		DisplayName string `json:"displayName,omitempty"`
	} `json:"createdBy,omitempty"`
}

// Space is the space summary embedded in content responses.
type Space struct {
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
}

// Body holds the storage-format representation of content.
type Body struct {
	Storage struct {
		Value          string `json:"value"`
		Representation string `json:"representation"`
	} `json:"storage"`
}

// Content represents a Confluence content entity (page, blog post).
type Content struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Status  string   `json:"status"`
	Title   string   `json:"title"`
	Version *Version `json:"version,omitempty"`
	Space   *Space   `json:"space,omitempty"`
	History *History `json:"history,omitempty"`
	Body    *Body    `json:"body,omitempty"`
	Links   Links    `json:"_links,omitempty"`
}

// ContentPage is a paginated content listing.
type ContentPage struct {
	Results []Content `json:"results"`
	Start   int       `json:"start"`
	Limit   int       `json:"limit"`
	Size    int       `json:"size"`
	Links   Links     `json:"_links,omitempty"`
}

// User is a Confluence user as returned by the user and search endpoints.
// Data Center instances key users by username/userKey; accountId shows up on
// instances with Cloud-compatible user management.
type User struct {
	AccountID   string `json:"accountId,omitempty"`
	UserKey     string `json:"userKey,omitempty"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PublicName  string `json:"publicName,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Group is a Confluence group.
type Group struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// SpacePagesQuery selects pages of a space.
type SpacePagesQuery struct {
	SpaceKey string `url:"spaceKey"`
	Type     string `url:"type"`
	Title    string `url:"title,omitempty"`
	Limit    int    `url:"limit"`
	Start    int    `url:"start"`
	Expand   string `url:"expand,omitempty"`
}

// ChildPagesQuery selects direct child pages of a parent page.
type ChildPagesQuery struct {
	Limit  int    `url:"limit"`
	Start  int    `url:"start"`
	Expand string `url:"expand,omitempty"`
}
