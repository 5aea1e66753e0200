package migrations

func init() {
	Migrations = append(Migrations, createTagInheritanceTable)
}

var createTagInheritanceTable = &Migration{
	Name: "20240101000003_create_tag_inheritance_table",
	Up: func() error {
		return exec(`
			CREATE TABLE IF NOT EXISTS tag_inheritance (
				"parent" varchar(255) NOT NULL REFERENCES tags(name),
				"child"  varchar(255) NOT NULL REFERENCES tags(name),
				PRIMARY KEY ("parent", "child")
			);
			CREATE INDEX IF NOT EXISTS tag_inheritance_child_idx ON tag_inheritance (child);
		`)
	},
	Down: func() error {
		return exec(`DROP TABLE IF EXISTS tag_inheritance;`)
	},
}
