package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRow(t *testing.T) {
	valid := Row{Email: "a@b.com", FirstName: "A", LastName: "B", Company: "Acme", Phone: "01012345678"}

	cases := []struct {
		name    string
		mutate  func(*Row)
		problem string
	}{
		{"valid", func(r *Row) {}, ""},
		{"valid without phone", func(r *Row) { r.Phone = "" }, ""},
		{"valid with country code", func(r *Row) { r.Phone = "+201112345678" }, ""},
		{"missing email", func(r *Row) { r.Email = "" }, "email is required"},
		{"bad email", func(r *Row) { r.Email = "not-an-email" }, "invalid email format"},
		{"missing first name", func(r *Row) { r.FirstName = "" }, "firstName is required"},
		{"missing last name", func(r *Row) { r.LastName = "" }, "lastName is required"},
		{"missing company", func(r *Row) { r.Company = "" }, "company is required"},
		{"bad phone prefix", func(r *Row) { r.Phone = "01312345678" }, "invalid phone number"},
		{"short phone", func(r *Row) { r.Phone = "0101234567" }, "invalid phone number"},
		{"landline", func(r *Row) { r.Phone = "0223456789" }, "invalid phone number"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := valid
			tc.mutate(&row)
			problems := ValidateRow(row)
			if tc.problem == "" {
				assert.Empty(t, problems)
			} else {
				assert.Contains(t, strings.Join(problems, "; "), tc.problem)
			}
		})
	}
}

func TestMapHeader(t *testing.T) {
	t.Run("tolerates case and separators", func(t *testing.T) {
		setters, hasEmail := MapHeader([]string{"Email", "First Name", "LAST_NAME", "phone", "unknown"})
		assert.True(t, hasEmail)
		assert.NotNil(t, setters[0])
		assert.NotNil(t, setters[1])
		assert.NotNil(t, setters[2])
		assert.NotNil(t, setters[3])
		assert.Nil(t, setters[4])
	})

	t.Run("no email column", func(t *testing.T) {
		_, hasEmail := MapHeader([]string{"firstName", "lastName"})
		assert.False(t, hasEmail)
	})
}

func TestPreflight(t *testing.T) {
	records := [][]string{
		{"email", "firstName", "lastName", "company", "phone"},
		{"a@b.com", "A", "One", "Acme", "01012345678"},
		{"b@b.com", "B", "Two", "Globex", ""},
		{"a@b.com", "A", "Again", "Acme", ""},           // duplicate of row 2
		{"c@b.com", "C", "Three", "Initech", "12345"},   // bad phone
		{"", "D", "Four", "Hooli", ""},                  // missing email
		{"d@b.com", "D", "Five", "", ""},                // missing company
		{"e@b.com", "E", "Six", "Umbrella", "+201512345678"},
		{"B@B.com", "B", "Caps", "Globex", ""},          // duplicate, case-insensitive
	}

	rows, errs := Preflight(records)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a@b.com", "b@b.com", "e@b.com"},
		[]string{rows[0].Email, rows[1].Email, rows[2].Email})

	require.Len(t, errs, 5)
	assert.Equal(t, 4, errs[0].Row)
	assert.Contains(t, errs[0].Message, "duplicate email")
	assert.Contains(t, errs[1].Message, "invalid phone")
	assert.Contains(t, errs[2].Message, "email is required")
	assert.Contains(t, errs[3].Message, "company is required")
	assert.Equal(t, 9, errs[4].Row)
	assert.Contains(t, errs[4].Message, "duplicate email")
}

func TestPreflightNoEmailColumn(t *testing.T) {
	rows, errs := Preflight([][]string{{"name"}, {"x"}})
	assert.Empty(t, rows)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "no email column")
}
