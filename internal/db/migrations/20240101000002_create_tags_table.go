package migrations

func init() {
	Migrations = append(Migrations, createTagsTable)
}

var createTagsTable = &Migration{
	Name: "20240101000002_create_tags_table",
	Up: func() error {
		return exec(`
			CREATE TABLE IF NOT EXISTS tags (
				"name"        varchar(255) PRIMARY KEY,
				"class_id"    integer NOT NULL REFERENCES tag_classes(id),
				"owner"       uuid NULL,
				"deprecated"  boolean NOT NULL DEFAULT false,
				"description" text NOT NULL DEFAULT '',
				"created_at"  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS tags_owner_idx ON tags (owner);

			CREATE OR REPLACE FUNCTION user_to_id(handle text) RETURNS uuid AS $$
				SELECT id FROM users WHERE username = handle;
			$$ LANGUAGE sql STABLE;
		`)
	},
	Down: func() error {
		return exec(`
			DROP FUNCTION IF EXISTS user_to_id(text);
			DROP TABLE IF EXISTS tags;
		`)
	},
}
