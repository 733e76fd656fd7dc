package configlibsql

import (
	"database/sql"
	"fmt"

	"pmqwatch/pkg/migrations"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

type Struct struct {
	File string `json:"file"`
	// remote turso/libsql database, takes priority over File when set
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

// OpenDB opens the configured database and applies the given schema.
// schema may be empty when the caller manages the tables itself.
func (config Struct) OpenDB(schema string) (*sql.DB, error) {
	if config.Url != "" {
		url := config.Url
		if config.AuthToken != "" {
			url = fmt.Sprintf("%s?authToken=%s", url, config.AuthToken)
		}
		db, err := sql.Open("libsql", url)
		if err != nil {
			return nil, err
		}
		if schema == "" {
			return db, nil
		}
		_, err = db.Exec(schema)
		if err != nil {
			return nil, fmt.Errorf("apply schema: %w", err)
		}
		return db, nil
	}

	if config.File == "" {
		return nil, fmt.Errorf("a path was not specified")
	}
	return migrations.OpenAndMigrateDB(schema, config.File)
}
