package contacts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Column names of a Google Contacts export.
var (
	emailColumns = []string{"E-mail 1 - Value", "E-mail 2 - Value", "E-mail 3 - Value"}
	orgColumns   = []string{"Organization Name", "Organization 1 - Name"}
)

const (
	firstNameColumn = "First Name"
	lastNameColumn  = "Last Name"
)

// ImportCSV builds a directory from a Google Contacts CSV export. Rows
// without any usable field are skipped; invalid addresses are dropped.
func ImportCSV(r io.Reader, now time.Time) (*Directory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("contacts csv is empty")
		}
		return nil, fmt.Errorf("reading contacts csv header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	dir := NewDirectory()
	dir.LastUpdated = now.UTC()

	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading contacts csv line %d: %w", line, err)
		}

		var emails []string
		for _, c := range emailColumns {
			// Google joins several addresses in one cell with " ::: ".
			for _, e := range strings.Split(field(row, c), ":::") {
				emails = append(emails, strings.TrimSpace(e))
			}
		}

		org := ""
		for _, c := range orgColumns {
			if org = field(row, c); org != "" {
				break
			}
		}

		dir.AddPerson(field(row, firstNameColumn), field(row, lastNameColumn), org, emails...)
	}

	return dir, nil
}
