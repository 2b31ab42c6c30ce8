package utils

import (
	"errors"

	mysqlDriver "github.com/go-sql-driver/mysql"
)

var ErrorRecordNotFound = errors.New("record not found")

// ErrorAlreadyActive is returned when a clock-in loses the race on the
// one-open-shift unique index. Mapped to 409 at the HTTP layer.
var ErrorAlreadyActive = errors.New("employee already has an active shift")

// ErrorNotAuthorized is returned when the request identity is outside the
// target store's scope. Checked before any mutation.
var ErrorNotAuthorized = errors.New("not authorized for this store")

// ErrorReadOnly is returned when a submission targets a closeout that has
// already passed or been locked by a manager.
var ErrorReadOnly = errors.New("record is read-only")

// IsDuplicateKeyErr reports whether err is a MySQL duplicate-entry (1062)
// violation. The persistence layer is the authority on uniqueness; callers
// translate this into the matching conflict result.
func IsDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}
