package models

// All returns every persisted model in dependency order, for schema sync in
// sqlite mode and in tests.
func All() []any {
	return []any{
		&Customer{},
		&Vehicle{},
		&WorkStation{},
		&Part{},
		&Order{},
		&OrderPart{},
		&Invoice{},
	}
}
