package snapshot

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/verte-zerg/typeledger/internal/model"
)

const localThemePrefix = "local_"

// AddCustomTheme appends a theme with a fresh local id.
func (s *Store) AddCustomTheme(ctx context.Context, name string, colors []string) (model.CustomTheme, bool) {
	if s.snap == nil {
		return model.CustomTheme{}, false
	}
	if s.snap.CustomThemes == nil {
		s.snap.CustomThemes = []model.CustomTheme{}
	}
	if len(s.snap.CustomThemes) >= model.MaxCustomThemes {
		s.notifier.Add("Too many custom themes!", LevelNotice)
		return model.CustomTheme{}, false
	}
	theme := model.CustomTheme{
		ID:     localThemePrefix + uuid.NewString(),
		Name:   name,
		Colors: append([]string(nil), colors...),
	}
	s.snap.CustomThemes = append(s.snap.CustomThemes, theme)
	s.Set(ctx, s.snap)
	return theme, true
}

// EditCustomTheme replaces the name and colors of an existing theme.
func (s *Store) EditCustomTheme(ctx context.Context, id, name string, colors []string) bool {
	if s.snap == nil {
		return false
	}
	i := s.themeIndex(id)
	if i < 0 {
		s.notifier.Add(fmt.Sprintf("Editing failed: Custom theme with id: %s does not exist", id), LevelError)
		return false
	}
	s.snap.CustomThemes[i] = model.CustomTheme{
		ID:     id,
		Name:   name,
		Colors: append([]string(nil), colors...),
	}
	s.Set(ctx, s.snap)
	return true
}

// DeleteCustomTheme removes a theme.
func (s *Store) DeleteCustomTheme(ctx context.Context, id string) bool {
	if s.snap == nil {
		return false
	}
	i := s.themeIndex(id)
	if i < 0 {
		return false
	}
	themes := s.snap.CustomThemes
	s.snap.CustomThemes = append(themes[:i:i], themes[i+1:]...)
	s.Set(ctx, s.snap)
	return true
}

func (s *Store) themeIndex(id string) int {
	for i, t := range s.snap.CustomThemes {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// AddBadge appends a badge to the inventory.
func (s *Store) AddBadge(ctx context.Context, badge model.Badge) {
	if s.snap == nil {
		return
	}
	s.snap.Inventory.Badges = append(s.snap.Inventory.Badges, badge)
	s.Set(ctx, s.snap)
}

// UpdateInboxUnreadSize sets the unread inbox counter.
func (s *Store) UpdateInboxUnreadSize(ctx context.Context, size int) {
	if s.snap == nil {
		return
	}
	s.snap.InboxUnreadSize = size
	s.Set(ctx, s.snap)
}

// AddTag creates a tag. Names are trimmed and must be unique.
func (s *Store) AddTag(ctx context.Context, name string) (model.Tag, bool) {
	if s.snap == nil {
		return model.Tag{}, false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		s.notifier.Add("Tag name cannot be empty", LevelError)
		return model.Tag{}, false
	}
	for _, t := range s.snap.Tags {
		if strings.EqualFold(t.Name, name) {
			s.notifier.Add(fmt.Sprintf("Tag %q already exists", name), LevelError)
			return model.Tag{}, false
		}
	}
	tag := model.Tag{
		ID:            uuid.NewString(),
		Name:          name,
		PersonalBests: model.NewPersonalBests(),
	}
	s.snap.Tags = append(s.snap.Tags, tag)
	s.Set(ctx, s.snap)
	return tag, true
}

// RemoveTag deletes a tag and strips it from every result.
func (s *Store) RemoveTag(ctx context.Context, id string) bool {
	if s.snap == nil {
		return false
	}
	for i, t := range s.snap.Tags {
		if t.ID != id {
			continue
		}
		s.snap.Tags = append(s.snap.Tags[:i:i], s.snap.Tags[i+1:]...)
		s.DeleteLocalTag(id)
		s.Set(ctx, s.snap)
		return true
	}
	s.notifier.Add(fmt.Sprintf("Tag with id %s does not exist", id), LevelError)
	return false
}

// SetTagActive marks a tag active or inactive.
func (s *Store) SetTagActive(ctx context.Context, id string, active bool) bool {
	if s.snap == nil {
		return false
	}
	tag, ok := s.snap.Tag(id)
	if !ok {
		s.notifier.Add(fmt.Sprintf("Tag with id %s does not exist", id), LevelError)
		return false
	}
	tag.Active = active
	s.Set(ctx, s.snap)
	return true
}

// FindTag resolves a tag by id or case-insensitive name.
func (s *Store) FindTag(ref string) (model.Tag, bool) {
	if s.snap == nil {
		return model.Tag{}, false
	}
	if tag, ok := s.snap.Tag(ref); ok {
		return *tag, true
	}
	for _, t := range s.snap.Tags {
		if strings.EqualFold(t.Name, ref) {
			return t, true
		}
	}
	return model.Tag{}, false
}
