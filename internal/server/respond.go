package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const dayLayout = "2006-01-02"

// fail writes an error body the console can show as is
func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

// internalError logs err and answers with a generic 500
func (s *Server) internalError(c *gin.Context, err error, what string) {
	s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg(what)
	fail(c, http.StatusInternalServerError, "Internal server error")
}

// lookupError maps a failed lookup to 404 or 500
func (s *Server) lookupError(c *gin.Context, err error, noun string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusNotFound, noun+" not found")
		return
	}
	s.internalError(c, err, "Failed to load "+strings.ToLower(noun))
}

// bindJSON decodes and validates the body, answering 400 on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		fail(c, http.StatusBadRequest, bindingMessage(err))
		return false
	}
	return true
}

// bindingMessage turns a binding error into one readable sentence
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}

	fe := verrs[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// dayRange reads startDate and endDate (YYYY-MM-DD, both inclusive). The returned end is
// exclusive. Missing bounds are zero.
func (s *Server) dayRange(c *gin.Context) (from, to time.Time, ok bool) {
	loc := s.now().Location()
	if v := c.Query("startDate"); v != "" {
		d, err := time.ParseInLocation(dayLayout, v, loc)
		if err != nil {
			fail(c, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
			return from, to, false
		}
		from = d
	}
	if v := c.Query("endDate"); v != "" {
		d, err := time.ParseInLocation(dayLayout, v, loc)
		if err != nil {
			fail(c, http.StatusBadRequest, "endDate must be YYYY-MM-DD")
			return from, to, false
		}
		to = d.AddDate(0, 0, 1)
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		fail(c, http.StatusBadRequest, "startDate must not be after endDate")
		return from, to, false
	}
	return from, to, true
}

// scopeCreated limits a query to rows created in [from, to)
func scopeCreated(from, to time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !from.IsZero() {
			db = db.Where("created_at >= ?", from)
		}
		if !to.IsZero() {
			db = db.Where("created_at < ?", to)
		}
		return db
	}
}

// queryInt reads a positive integer query parameter, falling back to def
func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// likePattern escapes s for a case-insensitive LIKE match
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(strings.TrimSpace(s))) + "%"
}
