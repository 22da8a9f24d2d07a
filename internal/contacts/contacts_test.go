package contacts

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func testDirectory() *Directory {
	d := NewDirectory()
	d.AddPerson("John", "Smith", "Acme Corp", "John.Smith@Example.com")
	d.AddPerson("Maria", "Garcia", "", "maria@example.org", "not-an-address")
	return d
}

func TestExtractAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from   string
		want   string
		wantOK bool
	}{
		{"John Smith <john.smith@example.com>", "john.smith@example.com", true},
		{`"Smith, John" <John.Smith@EXAMPLE.com>`, "john.smith@example.com", true},
		{"maria@example.org", "maria@example.org", true},
		{"  maria@example.org  ", "maria@example.org", true},
		{"Broken <not an address>", "", false},
		{"", "", false},
		{"<>", "", false},
	}

	for _, tt := range tests {
		got, ok := ExtractAddress(tt.from)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ExtractAddress(%q) = %q, %v; want %q, %v", tt.from, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestIsContact(t *testing.T) {
	t.Parallel()

	dir := testDirectory()

	if !IsContact("John <john.smith@example.com>", dir) {
		t.Error("known address not matched")
	}
	if IsContact("Stranger <stranger@example.com>", dir) {
		t.Error("unknown address matched")
	}
	if IsContact("garbage", dir) {
		t.Error("malformed header matched")
	}
	if IsContact("john.smith@example.com", nil) {
		t.Error("nil directory matched")
	}
	if dir.Emails.Has("not-an-address") {
		t.Error("invalid address was stored")
	}
}

func TestMatchName(t *testing.T) {
	t.Parallel()

	dir := testDirectory()

	tests := []struct {
		name string
		want NameMatch
	}{
		{"john smith", NameMatch{Full: true}},
		{"John Smith", NameMatch{Full: true}},
		{"john", NameMatch{Full: true}},
		{"john garcia", NameMatch{First: true, Last: true}},
		{"dr maria x", NameMatch{First: true}},
		{"mr smith jr", NameMatch{Last: true}},
		{"nobody known", NameMatch{}},
		{"", NameMatch{}},
	}

	for _, tt := range tests {
		if got := dir.MatchName(tt.name); got != tt.want {
			t.Errorf("MatchName(%q) = %+v, want %+v", tt.name, got, tt.want)
		}
	}

	if !(NameMatch{}).None() {
		t.Error("zero NameMatch should be None")
	}
	if got := (*Directory)(nil).MatchName("john"); !got.None() {
		t.Errorf("nil directory MatchName = %+v", got)
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	if got := DisplayName(`"John Smith" <j@example.com>`); got != "john smith" {
		t.Errorf("DisplayName = %q", got)
	}
	if got := DisplayName("j@example.com"); got != "j@example.com" {
		t.Errorf("DisplayName bare = %q", got)
	}
}

func TestMatchOrganization(t *testing.T) {
	t.Parallel()

	dir := testDirectory()
	if org, ok := dir.MatchOrganization("quarterly update from acme corp team"); !ok || org != "acme corp" {
		t.Errorf("MatchOrganization = %q, %v", org, ok)
	}
	if _, ok := dir.MatchOrganization("nothing relevant"); ok {
		t.Error("unexpected organization match")
	}
}

func TestImportCSV(t *testing.T) {
	t.Parallel()

	csvData := strings.Join([]string{
		"First Name,Last Name,Organization Name,E-mail 1 - Value,E-mail 2 - Value,E-mail 3 - Value",
		"John,Smith,Acme Corp,john@example.com ::: j.smith@example.com,,",
		"Maria,,,maria@example.org,bad-address,",
		",,Solo Org,,,",
	}, "\n")

	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	dir, err := ImportCSV(strings.NewReader(csvData), now)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}

	wantEmails := []string{"j.smith@example.com", "john@example.com", "maria@example.org"}
	if got := dir.Emails.Sorted(); !reflect.DeepEqual(got, wantEmails) {
		t.Errorf("Emails = %v, want %v", got, wantEmails)
	}
	wantNames := []string{"john", "john smith", "maria", "smith"}
	if got := dir.Names.Sorted(); !reflect.DeepEqual(got, wantNames) {
		t.Errorf("Names = %v, want %v", got, wantNames)
	}
	wantOrgs := []string{"acme corp", "solo org"}
	if got := dir.Organizations.Sorted(); !reflect.DeepEqual(got, wantOrgs) {
		t.Errorf("Organizations = %v, want %v", got, wantOrgs)
	}
	if !dir.LastUpdated.Equal(now) {
		t.Errorf("LastUpdated = %v", dir.LastUpdated)
	}
}

func TestImportCSVEmpty(t *testing.T) {
	t.Parallel()

	if _, err := ImportCSV(strings.NewReader(""), time.Now()); err == nil {
		t.Error("ImportCSV of empty input succeeded")
	}
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "contacts.json")
	dir := testDirectory()
	dir.LastUpdated = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	if err := Save(path, dir); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got.Emails.Sorted(), dir.Emails.Sorted()) {
		t.Errorf("Emails = %v, want %v", got.Emails.Sorted(), dir.Emails.Sorted())
	}
	if !got.MatchName("john smith").Full {
		t.Error("loaded directory lost full names")
	}
	if !got.LastUpdated.Equal(dir.LastUpdated) {
		t.Errorf("LastUpdated = %v", got.LastUpdated)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	dir, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil || dir != nil {
		t.Errorf("Load(absent) = %v, %v; want nil, nil", dir, err)
	}
}

func TestDiff(t *testing.T) {
	t.Parallel()

	old := NewDirectory()
	old.AddPerson("John", "Smith", "", "john@example.com")

	updated := NewDirectory()
	updated.AddPerson("John", "Smith", "", "john@example.com")
	updated.AddPerson("Ana", "", "", "ana@example.com")

	changes := Diff(old, updated)
	if !reflect.DeepEqual(changes.Emails.Added, []string{"ana@example.com"}) || len(changes.Emails.Removed) != 0 {
		t.Errorf("Emails change = %+v", changes.Emails)
	}
	if !reflect.DeepEqual(changes.FirstNames.Added, []string{"ana"}) {
		t.Errorf("FirstNames change = %+v", changes.FirstNames)
	}
	if changes.Empty() {
		t.Error("Changes reported empty")
	}

	back := Diff(updated, old)
	if !reflect.DeepEqual(back.Emails.Removed, []string{"ana@example.com"}) {
		t.Errorf("reverse Emails change = %+v", back.Emails)
	}
	if !Diff(old, old).Empty() {
		t.Error("self diff not empty")
	}
}
