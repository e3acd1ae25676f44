package database

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE codes.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	// Class 23: integrity constraint violation
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeNotNullViolation    = "23502"
	CodeCheckViolation      = "23514"
)

// MySQL reports integrity failures under the generic SQLSTATE 23000, so the
// server error number is translated instead.
var mysqlCodes = map[uint16]string{
	1062: CodeUniqueViolation,     // ER_DUP_ENTRY
	1586: CodeUniqueViolation,     // ER_DUP_ENTRY_WITH_KEY_NAME
	1451: CodeForeignKeyViolation, // ER_ROW_IS_REFERENCED_2
	1452: CodeForeignKeyViolation, // ER_NO_REFERENCED_ROW_2
	1048: CodeNotNullViolation,    // ER_BAD_NULL_ERROR
	3819: CodeCheckViolation,      // ER_CHECK_CONSTRAINT_VIOLATED
}

var sqlStateText = regexp.MustCompile(`SQLSTATE[ :]+([0-9A-Z]{5})`)

// SQLState extracts a Postgres-style SQLSTATE from err.  It understands
// pgx, lib/pq, and MySQL driver errors, and falls back to a
// "SQLSTATE xxxxx" marker in the message.  It returns "" when err carries
// no code.
func SQLState(err error) string {
	if err == nil {
		return ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if code, ok := mysqlCodes[myErr.Number]; ok {
			return code
		}
		if state := string(myErr.SQLState[:]); state != "\x00\x00\x00\x00\x00" {
			return state
		}
		return "mysql:" + strconv.Itoa(int(myErr.Number))
	}

	if m := sqlStateText.FindStringSubmatch(err.Error()); m != nil {
		return m[1]
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return SQLState(err) == CodeUniqueViolation
}
