package controllers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/catering-app/middlewares"
	"github.com/yeremiapane/catering-app/services"
)

const dateLayout = "2006-01-02"

func invalid(field, format string, args ...interface{}) error {
	return &services.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// currentUser returns the authenticated user id. Routes that call it are guarded.
func currentUser(c *gin.Context) uint {
	id, _ := middlewares.UserID(c)
	return id
}

func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, invalid(name, "must be a positive integer")
	}
	return uint(id), nil
}

func queryUint(c *gin.Context, key string) (*uint, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, invalid(key, "must be a positive integer")
	}
	id := uint(v)
	return &id, nil
}

func requiredQueryUint(c *gin.Context, key string) (uint, error) {
	v, err := queryUint(c, key)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, invalid(key, "is required")
	}
	return *v, nil
}

// queryUintList reads repeated parameters such as ?id=1&id=2.
func queryUintList(c *gin.Context, key string) ([]uint, error) {
	raw := c.QueryArray(key)
	out := make([]uint, 0, len(raw))
	for _, r := range raw {
		v, err := strconv.ParseUint(r, 10, 64)
		if err != nil {
			return nil, invalid(key, "must be a list of positive integers")
		}
		out = append(out, uint(v))
	}
	return out, nil
}

func queryFloat(c *gin.Context, key string) (*float64, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, invalid(key, "must be a number")
	}
	return &v, nil
}

func queryBool(c *gin.Context, key string) (*bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, invalid(key, "must be true or false")
	}
	return &v, nil
}

func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, invalid(key, "expected YYYY-MM-DD")
	}
	return &v, nil
}
