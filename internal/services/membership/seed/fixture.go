// Package seed loads membership fixtures from TOML and applies them through
// the membership domain service.
package seed

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Fixture is the decoded contents of a seed file.
type Fixture struct {
	Users    []UserFixture    `toml:"users"`
	Groups   []GroupFixture   `toml:"groups"`
	Sections []SectionFixture `toml:"sections"`
}

// UserFixture describes one imported profile.
type UserFixture struct {
	ID              string `toml:"id"`
	FirstName       string `toml:"first_name"`
	LastName        string `toml:"last_name"`
	Email           string `toml:"email"`
	Status          string `toml:"status"`
	RequestedStatus string `toml:"requested_status"`
	Admin           bool   `toml:"admin"`
}

// GroupFixture describes one access group. Key is local to the fixture and
// is how sections refer to the group.
type GroupFixture struct {
	Key          string   `toml:"key"`
	Name         string   `toml:"name"`
	Description  string   `toml:"description"`
	Statuses     []string `toml:"statuses"`
	Members      []string `toml:"members"`
	Subscribable bool     `toml:"subscribable"`
}

// SectionFixture describes one section by its group keys.
type SectionFixture struct {
	Name          string   `toml:"name"`
	Type          string   `toml:"type"`
	ViewingGroups []string `toml:"viewing_groups"`
	MemberGroups  []string `toml:"member_groups"`
}

// LoadFile decodes and validates a fixture file.
func LoadFile(path string) (Fixture, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Fixture{}, errors.New("seed file path is required")
	}
	var fixture Fixture
	meta, err := toml.DecodeFile(path, &fixture)
	if err != nil {
		return Fixture{}, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	if err := checkUndecoded(meta); err != nil {
		return Fixture{}, fmt.Errorf("seed file %s: %w", path, err)
	}
	return fixture, fixture.Validate()
}

// Parse decodes and validates fixture text.
func Parse(data string) (Fixture, error) {
	var fixture Fixture
	meta, err := toml.Decode(data, &fixture)
	if err != nil {
		return Fixture{}, fmt.Errorf("decode seed fixture: %w", err)
	}
	if err := checkUndecoded(meta); err != nil {
		return Fixture{}, err
	}
	return fixture, fixture.Validate()
}

func checkUndecoded(meta toml.MetaData) error {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, 0, len(undecoded))
	for _, key := range undecoded {
		keys = append(keys, key.String())
	}
	sort.Strings(keys)
	return fmt.Errorf("unknown seed keys: %s", strings.Join(keys, ", "))
}

// Validate checks fixture-local references. Field values are validated by
// the domain service when the fixture is applied.
func (f Fixture) Validate() error {
	users := make(map[string]struct{}, len(f.Users))
	admins := 0
	for i, user := range f.Users {
		userID := strings.TrimSpace(user.ID)
		if userID == "" {
			return fmt.Errorf("users[%d]: id is required", i)
		}
		if _, ok := users[userID]; ok {
			return fmt.Errorf("users[%d]: duplicate id %q", i, userID)
		}
		users[userID] = struct{}{}
		if user.Admin {
			admins++
		}
	}

	groups := make(map[string]struct{}, len(f.Groups))
	for i, group := range f.Groups {
		key := strings.TrimSpace(group.Key)
		if key == "" {
			return fmt.Errorf("groups[%d]: key is required", i)
		}
		if _, ok := groups[key]; ok {
			return fmt.Errorf("groups[%d]: duplicate key %q", i, key)
		}
		groups[key] = struct{}{}
	}

	for i, sec := range f.Sections {
		for _, key := range append(append([]string(nil), sec.ViewingGroups...), sec.MemberGroups...) {
			if _, ok := groups[strings.TrimSpace(key)]; !ok {
				return fmt.Errorf("sections[%d]: unknown group key %q", i, key)
			}
		}
	}

	if admins == 0 && (len(f.Groups) > 0 || len(f.Sections) > 0) {
		return errors.New("groups and sections require at least one admin user")
	}
	return nil
}
