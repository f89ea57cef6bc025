package schema

// AuthorTable represents the 'authors' table
type AuthorTable struct {
	Table       string
	Alias       string
	ID          string
	ShortID     string
	Name        string
	Slug        string
	Description string
	Bio         string
	Link        string
	CreatedAt   string
	UpdatedAt   string
	DeletedAt   string
}

// Author is the schema definition for authors
var Author = AuthorTable{
	Table:       "authors",
	Alias:       "a",
	ID:          "id",
	ShortID:     "short_id",
	Name:        "name",
	Slug:        "slug",
	Description: "description",
	Bio:         "bio",
	Link:        "link",
	CreatedAt:   "created_at",
	UpdatedAt:   "updated_at",
	DeletedAt:   "deleted_at",
}

func (t AuthorTable) Columns() []string {
	return []string{t.ID, t.ShortID, t.Name, t.Slug, t.Description, t.Bio, t.Link, t.CreatedAt, t.UpdatedAt}
}

// Col returns column qualified with the table alias.
func (t AuthorTable) Col(column string) string {
	return Qualify(t.Alias, column)
}
