// ABOUTME: Remembers the emails recently used to log in
// ABOUTME: Stored as JSON in the config directory, most recent first

package recent

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// MaxLogins is the maximum number of emails to keep
const MaxLogins = 5

// FileName is the file the list is stored in, inside the config directory
const FileName = "recent.json"

// Logins manages the list of recently used login emails
type Logins struct {
	fs     afero.Fs
	dir    string
	emails []string
}

type recentData struct {
	Emails []string `json:"emails"`
}

// New creates a Logins manager over dir
func New(fs afero.Fs, dir string) *Logins {
	return &Logins{fs: fs, dir: dir}
}

func (l *Logins) path() string {
	return filepath.Join(l.dir, FileName)
}

// Load reads the list from disk. A missing or corrupt file is an empty list.
func (l *Logins) Load() ([]string, error) {
	data, err := afero.ReadFile(l.fs, l.path())
	if errors.Is(err, os.ErrNotExist) {
		l.emails = []string{}
		return l.emails, nil
	}
	if err != nil {
		return nil, err
	}

	var stored recentData
	if err := json.Unmarshal(data, &stored); err != nil {
		// Invalid JSON, start fresh
		l.emails = []string{}
		return l.emails, nil
	}

	l.emails = make([]string, 0, len(stored.Emails))
	for _, e := range stored.Emails {
		if e = strings.TrimSpace(e); e != "" {
			l.emails = append(l.emails, e)
		}
	}
	return l.emails, nil
}

// Save writes the list to disk, keeping at most MaxLogins entries
func (l *Logins) Save(emails []string) error {
	if err := l.fs.MkdirAll(l.dir, 0700); err != nil {
		return err
	}
	if len(emails) > MaxLogins {
		emails = emails[:MaxLogins]
	}
	l.emails = emails

	data, err := json.MarshalIndent(recentData{Emails: emails}, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(l.fs, l.path(), data, 0600)
}

// Add puts email at the front of the list. Emails compare case-insensitively.
func (l *Logins) Add(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	if l.emails == nil {
		if _, err := l.Load(); err != nil {
			l.emails = []string{}
		}
	}

	emails := make([]string, 0, len(l.emails)+1)
	emails = append(emails, email)
	for _, e := range l.emails {
		if !strings.EqualFold(e, email) {
			emails = append(emails, e)
		}
	}
	return l.Save(emails)
}

// Last returns the most recently used email, "" when there is none
func (l *Logins) Last() string {
	if l.emails == nil {
		_, _ = l.Load()
	}
	if len(l.emails) == 0 {
		return ""
	}
	return l.emails[0]
}
