package piwigo

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/pwgsync/pwgsync/pkg/types"
)

// SplitCategoryPath splits an album path on unescaped slashes.
// A backslash makes the next character literal, so `A\/B/C` yields
// ["A/B", "C"]. Names are trimmed; empty names are skipped, which makes
// leading, trailing and repeated slashes insignificant.
func SplitCategoryPath(path string) []string {
	var (
		segments []string
		cur      strings.Builder
		escaped  bool
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			segments = append(segments, s)
		}
		cur.Reset()
	}
	for _, r := range path {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '/':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		cur.WriteRune('\\')
	}
	flush()
	return segments
}

// JoinCategoryPath is the inverse of SplitCategoryPath.
func JoinCategoryPath(segments []string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		s = strings.ReplaceAll(s, `\`, `\\`)
		escaped[i] = strings.ReplaceAll(s, `/`, `\/`)
	}
	return strings.Join(escaped, "/")
}

type nameMatcher struct {
	fold cases.Caser
	ci   bool
}

func newNameMatcher(caseInsensitive bool) *nameMatcher {
	return &nameMatcher{fold: cases.Fold(), ci: caseInsensitive}
}

func (m *nameMatcher) key(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	if m.ci {
		name = m.fold.String(name)
	}
	return name
}

// findChild returns the child of parent named name. Among same named
// siblings the lowest id wins.
func (m *nameMatcher) findChild(cats []Category, parent types.NullableInt, name string) (Category, bool) {
	want := m.key(name)
	var (
		found Category
		ok    bool
	)
	for _, cat := range cats {
		if !cat.ParentID.Equal(parent) || m.key(cat.Name) != want {
			continue
		}
		if !ok || cat.ID < found.ID {
			found, ok = cat, true
		}
	}
	return found, ok
}

// ResolveCategoryPath returns the id of the album at path, creating every
// missing album along the way, like mkdir -p. The album list is fetched
// once per call. Resolving an existing path creates nothing.
//
// A failure while creating an album is returned as a *SegmentError wrapping
// the underlying error. Albums created before the failure are kept.
func (c *Client) ResolveCategoryPath(ctx context.Context, path string) (int64, error) {
	segments := SplitCategoryPath(path)
	if len(segments) == 0 {
		return 0, ErrInvalidPath.Msg(fmt.Sprintf("%q contains no album names", path))
	}

	cats, err := c.ListCategories(ctx)
	if err != nil {
		return 0, err
	}

	matcher := newNameMatcher(c.Config().CaseInsensitiveNames)
	logger := c.logger.With().Str("path", path).Logger()

	cursor := types.NullInt()
	creating := false
	for i, seg := range segments {
		if !creating {
			if cat, ok := matcher.findChild(cats, cursor, seg); ok {
				cursor = types.NullableIntFrom(cat.ID)
				continue
			}
			creating = true
		}
		id, err := c.AddCategory(ctx, seg, cursor)
		if err != nil {
			return 0, &SegmentError{Path: path, Segment: seg, Index: i, Err: err}
		}
		logger.Info().Str("name", seg).Stringer("parent", cursor).Int64("id", id).Msg("album created")
		cursor = types.NullableIntFrom(id)
	}
	return cursor.Value, nil
}

// EnsureCategory is ResolveCategoryPath under the name used by host plugins.
func (c *Client) EnsureCategory(ctx context.Context, path string) (int64, error) {
	return c.ResolveCategoryPath(ctx, path)
}
