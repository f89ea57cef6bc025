package postgres

import sq "github.com/Masterminds/squirrel"

// Builder is the squirrel statement builder configured for PostgreSQL
// positional placeholders ($1, $2, ...).
var Builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
