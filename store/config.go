package store

// Config holds configuration for the Store.
type Config struct {
	// TableName is the name of the todo table. Its partition key is "id".
	// Default: "flask-todo-dev"
	TableName string

	// StatusIndex is the name of the global secondary index keyed on
	// status (HASH) and created_at (RANGE). It must project all attributes.
	// Default: "StatusDateIndex"
	StatusIndex string
}

// DefaultConfig returns the default table layout.
func DefaultConfig() Config {
	return Config{
		TableName:   DefaultTableName,
		StatusIndex: DefaultStatusIndex,
	}
}

// validate fills in defaults for empty values.
func (c *Config) validate() {
	if c.TableName == "" {
		c.TableName = DefaultTableName
	}
	if c.StatusIndex == "" {
		c.StatusIndex = DefaultStatusIndex
	}
}
