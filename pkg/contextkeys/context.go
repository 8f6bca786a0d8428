package contextkeys

type contextKey string

// DBContextKey carries a *gorm.DB (usually a test transaction) on the request context.
const DBContextKey = contextKey("db")
