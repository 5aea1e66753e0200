package migrations

func init() {
	Migrations = append(Migrations, createTagPostTable)
}

var createTagPostTable = &Migration{
	Name: "20240101000004_create_tag_post_table",
	Up: func() error {
		return exec(`
			CREATE TABLE IF NOT EXISTS tag_post (
				"post_id" bigint NOT NULL REFERENCES posts(id),
				"tag"     varchar(255) NOT NULL REFERENCES tags(name),
				PRIMARY KEY ("post_id", "tag")
			);
			CREATE INDEX IF NOT EXISTS tag_post_tag_idx ON tag_post (tag);

			CREATE OR REPLACE FUNCTION privacy_to_id(privacy_name text) RETURNS smallint AS $$
				SELECT CASE privacy_name
					WHEN 'public'   THEN 0
					WHEN 'unlisted' THEN 1
					WHEN 'private'  THEN 2
				END;
			$$ LANGUAGE sql IMMUTABLE;
		`)
	},
	Down: func() error {
		return exec(`
			DROP FUNCTION IF EXISTS privacy_to_id(text);
			DROP TABLE IF EXISTS tag_post;
		`)
	},
}
