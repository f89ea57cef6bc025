package schema

// QuoteTable represents the 'quotes' table
type QuoteTable struct {
	Table     string
	Alias     string
	ID        string
	ShortID   string
	AuthorID  string
	Content   string
	CreatedAt string
	UpdatedAt string
	DeletedAt string
}

// Quote is the schema definition for quotes
var Quote = QuoteTable{
	Table:     "quotes",
	Alias:     "q",
	ID:        "id",
	ShortID:   "short_id",
	AuthorID:  "author_id",
	Content:   "content",
	CreatedAt: "created_at",
	UpdatedAt: "updated_at",
	DeletedAt: "deleted_at",
}

func (t QuoteTable) Columns() []string {
	return []string{t.ID, t.ShortID, t.AuthorID, t.Content, t.CreatedAt, t.UpdatedAt}
}

// Col returns column qualified with the table alias.
func (t QuoteTable) Col(column string) string {
	return Qualify(t.Alias, column)
}
