package importer

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Egyptian mobile numbers: operator prefixes 010/011/012/015, with an
	// optional +20/20 country code in place of the leading zero.
	phoneRe = regexp.MustCompile(`^(?:\+20|20|0)1[0125][0-9]{8}$`)
)

// Row is one parsed CSV line.
type Row struct {
	Line      int    `json:"row"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
	Title     string `json:"title,omitempty"`
	Company   string `json:"company,omitempty"`
	Comment   string `json:"comment,omitempty"`
}

// RowError reports why one CSV line was rejected.
type RowError struct {
	Row     int    `json:"row"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message"`
}

// columnFields maps normalized header names to Row field setters.
var columnFields = map[string]func(*Row, string){
	"email":     func(r *Row, v string) { r.Email = v },
	"firstname": func(r *Row, v string) { r.FirstName = v },
	"lastname":  func(r *Row, v string) { r.LastName = v },
	"phone":     func(r *Row, v string) { r.Phone = v },
	"title":     func(r *Row, v string) { r.Title = v },
	"company":   func(r *Row, v string) { r.Company = v },
	"comment":   func(r *Row, v string) { r.Comment = v },
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "")
	name = strings.ReplaceAll(name, "_", "")
	return name
}

// MapHeader resolves each CSV column to a Row field. Unknown columns map
// to nil and are skipped. An input without an email column is unusable.
func MapHeader(header []string) ([]func(*Row, string), bool) {
	setters := make([]func(*Row, string), len(header))
	hasEmail := false
	for i, name := range header {
		key := normalizeHeader(name)
		setters[i] = columnFields[key]
		if key == "email" {
			hasEmail = true
		}
	}
	return setters, hasEmail
}

// ValidateRow checks required fields (email, firstName, lastName,
// company) and formats. Phone is optional but must be a valid Egyptian
// mobile number when present.
func ValidateRow(r Row) []string {
	var problems []string
	switch {
	case r.Email == "":
		problems = append(problems, "email is required")
	case !emailRe.MatchString(r.Email):
		problems = append(problems, "invalid email format")
	}
	if r.FirstName == "" {
		problems = append(problems, "firstName is required")
	}
	if r.LastName == "" {
		problems = append(problems, "lastName is required")
	}
	if r.Company == "" {
		problems = append(problems, "company is required")
	}
	if r.Phone != "" && !phoneRe.MatchString(r.Phone) {
		problems = append(problems, "invalid phone number")
	}
	return problems
}

// Preflight maps and validates every record after the header, rejecting
// malformed rows and emails repeated within the file. Line numbers are
// 1-based and include the header line, matching what a spreadsheet shows.
func Preflight(records [][]string) ([]Row, []RowError) {
	if len(records) == 0 {
		return nil, nil
	}
	setters, hasEmail := MapHeader(records[0])
	if !hasEmail {
		return nil, []RowError{{Row: 1, Message: "file has no email column"}}
	}

	var (
		rows []Row
		errs []RowError
		seen = map[string]bool{}
	)
	for i, record := range records[1:] {
		row := Row{Line: i + 2}
		for col, value := range record {
			if col < len(setters) && setters[col] != nil {
				setters[col](&row, strings.TrimSpace(value))
			}
		}
		if problems := ValidateRow(row); len(problems) > 0 {
			errs = append(errs, RowError{Row: row.Line, Email: row.Email, Message: strings.Join(problems, "; ")})
			continue
		}
		key := strings.ToLower(row.Email)
		if seen[key] {
			errs = append(errs, RowError{Row: row.Line, Email: row.Email, Message: "duplicate email in file"})
			continue
		}
		seen[key] = true
		rows = append(rows, row)
	}
	return rows, errs
}
