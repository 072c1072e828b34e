package models

import (
	"errors"
	"strings"

	"github.com/ryanuber/go-glob"
	"gorm.io/gorm"
)

// CategoryRule resolves the category for new entries whose category is not
// set by matching a glob pattern against the entry description.
type CategoryRule struct {
	Model
	Priority uint     `json:"priority"` // Rules with lower priority are evaluated first
	Match    string   `json:"match" example:"Supermarket*"`
	Category Category `json:"category"`
}

var ErrRuleMatchEmpty = errors.New("the match pattern must not be empty")

// BeforeSave verifies all user configurable fields.
func (r *CategoryRule) BeforeSave(_ *gorm.DB) error {
	r.Match = strings.TrimSpace(r.Match)
	if r.Match == "" {
		return ErrRuleMatchEmpty
	}

	if !r.Category.Valid() {
		return ErrCategoryInvalid
	}

	return nil
}

// ResolveCategory returns the category of the first rule matching the
// description. The second return value is false when no rule matches.
func ResolveCategory(db *gorm.DB, description string) (Category, bool, error) {
	var rules []CategoryRule

	err := db.Order("priority ASC, id ASC").Find(&rules).Error
	if err != nil {
		return "", false, err
	}

	for _, rule := range rules {
		if glob.Glob(rule.Match, description) {
			return rule.Category, true, nil
		}
	}

	return "", false, nil
}
