package sheetstore

import (
	"database/sql"
	"fmt"
	"net/url"
)

// DBConfig selects where the sheet database lives: a local file, or a
// remote libsql instance when Url is set.
type DBConfig struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (c DBConfig) OpenDB() (*sql.DB, error) {
	if c.Url == "" {
		if c.File == "" {
			return nil, fmt.Errorf("neither a database file nor a url was specified")
		}
		return sql.Open("sqlite", c.File)
	}

	values := url.Values{}
	if c.AuthToken != "" {
		values.Add("authToken", c.AuthToken)
	}
	return sql.Open("libsql", c.Url+"?"+values.Encode())
}

// Open builds a Store from the config, applying the schema on first use.
func (c DBConfig) Open() (*SQLiteStore, error) {
	db, err := c.OpenDB()
	if err != nil {
		return nil, err
	}
	store, err := NewSQLite(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}
