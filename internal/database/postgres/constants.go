package postgres

// PostgreSQL error codes checked by the repositories
const (
	pgCodeUniqueViolation      = "23505"
	pgCodeLockNotAvailable     = "55P03"
	pgCodeSerializationFailure = "40001"
)
