package inmemdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/course"
)

func TestQueryClasses(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseRepository(Open())

	c := newCourse("C001")
	require.NoError(t, repo.CreateCourse(ctx, c))
	intro := course.Class{ID: core.NewID(), CourseID: c.ID, Part: 1, Title: "Intro"}
	basics := course.Class{ID: core.NewID(), CourseID: c.ID, Part: 2, Title: "Basics"}
	require.NoError(t, repo.CreateClass(ctx, intro))
	require.NoError(t, repo.CreateClass(ctx, basics))

	tests := []struct {
		name     string
		ordering core.DBOrdering
		want     []string
		wantErr  bool
	}{
		{name: "part asc", ordering: core.DBOrdering{Field: "part", Ascending: true}, want: []string{intro.ID, basics.ID}},
		{name: "part desc", ordering: core.DBOrdering{Field: "part"}, want: []string{basics.ID, intro.ID}},
		{name: "title asc", ordering: core.DBOrdering{Field: "title", Ascending: true}, want: []string{basics.ID, intro.ID}},
		{name: "title desc", ordering: core.DBOrdering{Field: "title"}, want: []string{intro.ID, basics.ID}},
		{name: "unknown field", ordering: core.DBOrdering{Field: "id; DROP TABLE classes"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classes, err := repo.QueryClasses(ctx, c.ID, tt.ordering)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			ids := make([]string, 0, len(classes))
			for _, cls := range classes {
				ids = append(ids, cls.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}
