package quota

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func zapErr(err error) []zap.Field {
	return []zap.Field{zap.Error(err)}
}

// isUniqueViolation reports whether err represents a unique-constraint
// conflict, across sqlite (tests) and postgres (production) drivers. Both
// report this as a distinct, driver-specific string; there is no portable
// sentinel in database/sql, so a narrow substring check is the pragmatic
// boundary here rather than a broader string-sniffing dispatch.
func isUniqueViolation(err error) bool {
	if err == nil || errors.Is(err, gorm.ErrDuplicatedKey) {
		return err != nil
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
