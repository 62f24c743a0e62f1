package access

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Rule grants a level on every resource matching Pattern.
type Rule struct {
	Pattern string
	Level   Level
}

// Resolver decides the level a user has on a resource.
type Resolver struct {
	AnonymousAccess Level
	PublicRules     []Rule
	UserRules       map[string][]Rule
	Admins          map[string]bool
}

func NewResolver() *Resolver {
	return &Resolver{
		AnonymousAccess: None,
		UserRules:       make(map[string][]Rule),
		Admins:          make(map[string]bool),
	}
}

func (r *Resolver) SetAnonymousAccess(level Level) {
	r.AnonymousAccess = level
}

func (r *Resolver) AddAdmin(username string) {
	r.Admins[username] = true
}

func (r *Resolver) AddPublicRule(pattern string, level Level) {
	r.PublicRules = append(r.PublicRules, Rule{Pattern: pattern, Level: level})
}

func (r *Resolver) AddUserRule(username, pattern string, level Level) {
	r.UserRules[username] = append(r.UserRules[username], Rule{Pattern: pattern, Level: level})
}

// IsAdmin reports whether user has global admin rights.
func (r *Resolver) IsAdmin(user *UserInfo) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin || (!user.IsAnonymous && r.Admins[user.Name])
}

// Resolve returns the level of user on resource. Admins always get Admin.
// Otherwise the first matching user rule wins, then the first matching
// public rule, then the anonymous default.
func (r *Resolver) Resolve(user *UserInfo, resource string) Level {
	if r.IsAdmin(user) {
		return Admin
	}
	if user != nil && !user.IsAnonymous {
		if level, ok := matchRules(r.UserRules[user.Name], resource); ok {
			return level
		}
	}
	if level, ok := matchRules(r.PublicRules, resource); ok {
		return level
	}
	return r.AnonymousAccess
}

// Visible filters resources down to those user can read.
func (r *Resolver) Visible(user *UserInfo, resources []string) []string {
	out := make([]string, 0, len(resources))
	for _, name := range resources {
		if r.Resolve(user, name).CanRead() {
			out = append(out, name)
		}
	}
	return out
}

func matchRules(rules []Rule, resource string) (Level, bool) {
	for _, rule := range rules {
		if matchPattern(rule.Pattern, resource) {
			return rule.Level, true
		}
	}
	return None, false
}

// matchPattern matches a resource name against a doublestar pattern.
// Patterns are case-insensitive.
func matchPattern(pattern, resource string) bool {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	resource = strings.ToLower(strings.TrimSpace(resource))
	if pattern == "" || resource == "" {
		return false
	}
	if pattern == resource {
		return true
	}
	matched, err := doublestar.Match(pattern, resource)
	return err == nil && matched
}
