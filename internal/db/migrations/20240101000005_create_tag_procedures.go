package migrations

func init() {
	Migrations = append(Migrations, createTagProcedures)
}

// createTagProcedures defines the three stored procedures add_tags,
// remove_tags, and inherit_tag. Each encapsulates a multi-row mutation
// atomically so TagRepository only needs a single CALL.
var createTagProcedures = &Migration{
	Name: "20240101000005_create_tag_procedures",
	Up: func() error {
		return exec(`
			CREATE OR REPLACE PROCEDURE add_tags(p_post_id bigint, p_user_id uuid, p_tags text[])
			LANGUAGE plpgsql AS $$
			DECLARE
				t text;
			BEGIN
				FOREACH t IN ARRAY p_tags LOOP
					INSERT INTO tags (name, class_id, owner)
					VALUES (t, tag_class_to_id('misc'), p_user_id)
					ON CONFLICT (name) DO NOTHING;

					INSERT INTO tag_post (post_id, tag)
					VALUES (p_post_id, t)
					ON CONFLICT (post_id, tag) DO NOTHING;
				END LOOP;
			END;
			$$;

			CREATE OR REPLACE PROCEDURE remove_tags(p_post_id bigint, p_user_id uuid, p_tags text[])
			LANGUAGE plpgsql AS $$
			BEGIN
				DELETE FROM tag_post WHERE post_id = p_post_id AND tag = ANY(p_tags);
			END;
			$$;

			CREATE OR REPLACE PROCEDURE inherit_tag(p_user_id uuid, p_parent text, p_child text, p_deprecate boolean)
			LANGUAGE plpgsql AS $$
			BEGIN
				IF p_parent = p_child THEN
					RAISE EXCEPTION 'tag % cannot inherit itself', p_parent
						USING ERRCODE = '23514';
				END IF;

				IF EXISTS (
					WITH RECURSIVE descendants AS (
						SELECT child FROM tag_inheritance WHERE parent = p_child
						UNION
						SELECT ti.child FROM tag_inheritance ti
						JOIN descendants d ON ti.parent = d.child
					)
					SELECT 1 FROM descendants WHERE child = p_parent
				) THEN
					RAISE EXCEPTION 'inheritance edge % -> % would create a cycle', p_parent, p_child
						USING ERRCODE = '23514';
				END IF;

				INSERT INTO tag_inheritance (parent, child) VALUES (p_parent, p_child);

				IF p_deprecate THEN
					UPDATE tags SET deprecated = true WHERE name = p_child;
				END IF;
			END;
			$$;
		`)
	},
	Down: func() error {
		return exec(`
			DROP PROCEDURE IF EXISTS add_tags(bigint, uuid, text[]);
			DROP PROCEDURE IF EXISTS remove_tags(bigint, uuid, text[]);
			DROP PROCEDURE IF EXISTS inherit_tag(uuid, text, text, boolean);
		`)
	},
}
