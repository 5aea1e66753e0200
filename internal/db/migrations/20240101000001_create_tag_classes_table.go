package migrations

func init() {
	Migrations = append(Migrations, createTagClassesTable)
}

var createTagClassesTable = &Migration{
	Name: "20240101000001_create_tag_classes_table",
	Up: func() error {
		return exec(`
			CREATE TABLE IF NOT EXISTS tag_classes (
				"id"   SERIAL PRIMARY KEY,
				"name" varchar(50) NOT NULL UNIQUE
			);
			INSERT INTO tag_classes (name) VALUES
				('artist'), ('subject'), ('sponsor'), ('species'), ('gender'), ('misc')
			ON CONFLICT (name) DO NOTHING;

			CREATE OR REPLACE FUNCTION tag_class_to_id(class_name text) RETURNS integer AS $$
				SELECT id FROM tag_classes WHERE name = class_name;
			$$ LANGUAGE sql STABLE;
		`)
	},
	Down: func() error {
		return exec(`
			DROP FUNCTION IF EXISTS tag_class_to_id(text);
			DROP TABLE IF EXISTS tag_classes;
		`)
	},
}
