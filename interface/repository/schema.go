package repository

import (
	"github.com/behrang/sqlbatch"
)

// Schema creates the tables of the registry. It is safe to apply more than
// once.
const Schema = `
	create table if not exists records (
		kind        text        not null,
		address     text        not null,
		version     bigint      not null,
		body        jsonb       not null,
		update_time timestamptz not null,
		primary key (kind, address)
	);

	create index if not exists records_entity_registrar
		on records ((body->>'registrar'))
		where kind = 'entity';

	create table if not exists operations (
		id          bigserial   primary key,
		kind        text        not null,
		request     jsonb       not null,
		state       text        not null,
		error       text        not null default '',
		timestamp   bigint      not null,
		create_time timestamptz not null
	);

	create table if not exists memos (
		key  text  primary key,
		memo jsonb not null
	);
`

func Migrate(db BatchHandler) error {
	_, err := db.Batch(&BatchOptionNormal, []sqlbatch.Command{
		{
			Query: Schema,
		},
	})
	return err
}
