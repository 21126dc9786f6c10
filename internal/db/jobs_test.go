package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatus(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("future expiry is active", func(t *testing.T) {
		j := Job{ExpiryDate: now.Add(24 * time.Hour)}
		assert.True(t, j.IsActive(now))
		assert.Equal(t, JobStatusActive, j.Status(now))
	})

	t.Run("past expiry is expired", func(t *testing.T) {
		j := Job{ExpiryDate: now.Add(-24 * time.Hour)}
		assert.False(t, j.IsActive(now))
		assert.Equal(t, JobStatusExpired, j.Status(now))
	})

	t.Run("expiry exactly now counts as expired", func(t *testing.T) {
		j := Job{ExpiryDate: now}
		assert.Equal(t, JobStatusExpired, j.Status(now))
	})
}

func TestFilterJobsByText(t *testing.T) {
	jobs := []Job{
		{Title: "Data Engineer", Company: "Acme", Description: "Pipelines"},
		{Title: "Nurse", Company: "City Hospital", Description: "Care for patients", City: "Berlin"},
		{Title: "Backend Developer", Company: "DataCorp", Description: "APIs", Tags: []string{"go", "postgres"}},
	}

	t.Run("title matches rank first", func(t *testing.T) {
		result := FilterJobsByText(jobs, "data")
		require.Len(t, result, 2)
		assert.Equal(t, "Data Engineer", result[0].Title)
		assert.Equal(t, "Backend Developer", result[1].Title)
	})

	t.Run("matches are case-insensitive", func(t *testing.T) {
		result := FilterJobsByText(jobs, "BERLIN")
		require.Len(t, result, 1)
		assert.Equal(t, "Nurse", result[0].Title)
	})

	t.Run("tag match", func(t *testing.T) {
		result := FilterJobsByText(jobs, "postgres")
		require.Len(t, result, 1)
		assert.Equal(t, "Backend Developer", result[0].Title)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, FilterJobsByText(jobs, "astronaut"))
	})

	t.Run("blank query returns everything", func(t *testing.T) {
		assert.Len(t, FilterJobsByText(jobs, "   "), 3)
	})
}

func TestJobUpdate_MergeHighlights(t *testing.T) {
	existing := Highlights{
		Qualifications:   []string{"BSc"},
		Responsibilities: []string{"Ship code"},
		Benefits:         []string{"Coffee"},
	}

	t.Run("present list replaces, absent lists survive", func(t *testing.T) {
		quals := []string{"MSc", "5 years Go"}
		u := JobUpdate{Qualifications: &quals}

		merged := u.MergeHighlights(existing)
		assert.Equal(t, quals, merged.Qualifications)
		assert.Equal(t, existing.Responsibilities, merged.Responsibilities)
		assert.Equal(t, existing.Benefits, merged.Benefits)
	})

	t.Run("explicit empty list clears", func(t *testing.T) {
		empty := []string{}
		u := JobUpdate{Benefits: &empty}

		merged := u.MergeHighlights(existing)
		assert.Empty(t, merged.Benefits)
		assert.Equal(t, existing.Qualifications, merged.Qualifications)
	})

	t.Run("HasHighlights", func(t *testing.T) {
		assert.False(t, (&JobUpdate{}).HasHighlights())
		empty := []string{}
		assert.True(t, (&JobUpdate{Responsibilities: &empty}).HasHighlights())
	})
}

func TestBuildJobUpdateSet(t *testing.T) {
	strPtr := func(s string) *string { return &s }
	f64Ptr := func(f float64) *float64 { return &f }
	boolPtr := func(b bool) *bool { return &b }

	t.Run("empty update produces no clauses", func(t *testing.T) {
		clauses, args, err := buildJobUpdateSet(&JobUpdate{})
		require.NoError(t, err)
		assert.Empty(t, clauses)
		assert.Empty(t, args)
	})

	t.Run("placeholders are sequential", func(t *testing.T) {
		u := &JobUpdate{
			Title:     strPtr("New"),
			Remote:    boolPtr(true),
			SalaryMin: f64Ptr(1000),
		}
		clauses, args, err := buildJobUpdateSet(u)
		require.NoError(t, err)
		require.Len(t, clauses, 3)
		require.Len(t, args, 3)
		assert.Equal(t, "title = $1", clauses[0])
		assert.Equal(t, "remote = $2", clauses[1])
		assert.Equal(t, "salary_min = $3", clauses[2])
		assert.Equal(t, "New", args[0])
		assert.Equal(t, true, args[1])
		assert.Equal(t, 1000.0, args[2])
	})

	t.Run("zero values are written, not skipped", func(t *testing.T) {
		u := &JobUpdate{
			SalaryMin: f64Ptr(0),
			PostedBy:  strPtr(""),
			Remote:    boolPtr(false),
		}
		clauses, args, err := buildJobUpdateSet(u)
		require.NoError(t, err)
		assert.Len(t, clauses, 3)
		assert.Contains(t, args, 0.0)
		assert.Contains(t, args, "")
		assert.Contains(t, args, false)
	})

	t.Run("empty external link becomes NULL", func(t *testing.T) {
		u := &JobUpdate{ExternalLink: strPtr("")}
		clauses, args, err := buildJobUpdateSet(u)
		require.NoError(t, err)
		require.Len(t, clauses, 1)
		assert.Equal(t, "external_link = $1", clauses[0])
		assert.Nil(t, args[0].(*string))
	})

	t.Run("tags marshal to JSON", func(t *testing.T) {
		tags := []string{"go", "remote"}
		u := &JobUpdate{Tags: &tags}
		clauses, args, err := buildJobUpdateSet(u)
		require.NoError(t, err)
		require.Len(t, clauses, 1)
		assert.Equal(t, "tags = $1", clauses[0])
		assert.JSONEq(t, `["go","remote"]`, string(args[0].([]byte)))
	})
}

// stubJobRow fills only the JSONB columns of a job row scan.
type stubJobRow struct {
	highlights, tags, coords []byte
}

func (r stubJobRow) Scan(dest ...any) error {
	*(dest[13].(*[]byte)) = r.highlights
	*(dest[14].(*[]byte)) = r.tags
	*(dest[15].(*[]byte)) = r.coords
	return nil
}

func TestScanJobJSONFields(t *testing.T) {
	t.Run("stored JSONB is parsed", func(t *testing.T) {
		j, err := scanJob(stubJobRow{
			highlights: []byte(`{"qualifications":["Go"],"responsibilities":["Ship"]}`),
			tags:       []byte(`["remote"]`),
			coords:     []byte(`{"lat":52.52,"lng":13.4}`),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Go"}, j.Highlights.Qualifications)
		assert.Equal(t, []string{"remote"}, j.Tags)
		require.NotNil(t, j.Coordinates)
		assert.Equal(t, 52.52, j.Coordinates.Lat)
	})

	t.Run("corrupt highlights surface an error", func(t *testing.T) {
		_, err := scanJob(stubJobRow{highlights: []byte(`{broken`)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "highlights")
	})

	t.Run("corrupt tags surface an error", func(t *testing.T) {
		_, err := scanJob(stubJobRow{tags: []byte(`[broken`)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tags")
	})

	t.Run("absent JSONB columns stay zero", func(t *testing.T) {
		j, err := scanJob(stubJobRow{})
		require.NoError(t, err)
		assert.Empty(t, j.Highlights.Qualifications)
		assert.Nil(t, j.Tags)
		assert.Nil(t, j.Coordinates)
	})
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	require.NotNil(t, nullIfEmpty("x"))
	assert.Equal(t, "x", *nullIfEmpty("x"))
}
