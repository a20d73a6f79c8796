package lineage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_JoinedTables(t *testing.T) {
	res := Extract("SELECT * FROM orders o JOIN customers c ON o.cust_id = c.id;")

	assert.Equal(t, []string{"customers", "orders"}, res.SourceTables)
	assert.Empty(t, res.DefinedTables)
}

func TestExtract_CreateView(t *testing.T) {
	res := Extract("CREATE VIEW reporting.active_users AS SELECT id FROM db.final_summary WHERE status='active';")

	assert.Equal(t, []string{"reporting.active_users"}, res.DefinedTables)
	assert.Equal(t, []string{"db.final_summary"}, res.SourceTables)
}

func TestExtract_SubqueryAlias(t *testing.T) {
	res := Extract("SELECT a.id FROM (SELECT id FROM t1) a;")

	assert.Equal(t, []string{"t1"}, res.SourceTables)
	assert.Empty(t, res.DefinedTables)
}

func TestExtract_FunctionArgumentsExcluded(t *testing.T) {
	res := Extract("SELECT COUNT(o.id) FROM orders o;")

	assert.Equal(t, []string{"orders"}, res.SourceTables)
	assert.NotContains(t, res.SourceTables, "o")
	assert.NotContains(t, res.SourceTables, "o.id")
}

func TestExtract_Deterministic(t *testing.T) {
	sql := "SELECT * FROM b, a, c; CREATE TABLE z (x INT); CREATE TABLE y (x INT);"

	first := Extract(sql)
	second := Extract(sql)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a", "b", "c"}, first.SourceTables)
	assert.Equal(t, []string{"y", "z"}, first.DefinedTables)
}

func TestExtract_CommentImmunity(t *testing.T) {
	sql := `/* CREATE TABLE ghost_def AS SELECT * FROM ghost_src */
SELECT 1 FROM real_tbl -- JOIN commented_out
;`
	res := Extract(sql)

	assert.Equal(t, []string{"real_tbl"}, res.SourceTables)
	assert.Empty(t, res.DefinedTables)
}

func TestExtract_DefinitionAndReferenceInterplay(t *testing.T) {
	res := Extract("CREATE VOLATILE TABLE tmp AS (SELECT x FROM src) WITH DATA;")

	assert.Contains(t, res.DefinedTables, "tmp")
	assert.Contains(t, res.SourceTables, "src")
	assert.NotContains(t, res.SourceTables, "tmp")
}

func TestExtract_DefinedTableQueriedLater(t *testing.T) {
	sql := `CREATE VOLATILE TABLE tmp AS (SELECT x FROM src) WITH DATA;
SELECT * FROM tmp;`
	res := Extract(sql)

	// The sets may overlap: tmp is both defined and later read.
	assert.Contains(t, res.DefinedTables, "tmp")
	assert.Contains(t, res.SourceTables, "tmp")
	assert.Contains(t, res.SourceTables, "src")
}

func TestExtract_TeradataScript(t *testing.T) {
	sql := `
/* load working copy */
CREATE VOLATILE TABLE temp_user_data AS (
    SELECT
        user_id,
        user_name,
        email_address -- picked up downstream
    FROM staging.raw_users src
    WHERE active_flag = 1
) WITH DATA PRIMARY INDEX (user_id);

INSERT INTO db_prod.final_user_summary (user_id, name, email)
SELECT
    tud.user_id,
    tud.user_name,
    tud.email_address
FROM temp_user_data tud;

CREATE VIEW reporting.active_users_view AS
SELECT id FROM db_prod.final_user_summary WHERE status = 'active';

MERGE INTO target_table tgt
USING (SELECT id, data FROM source_changes) AS src
ON tgt.id = src.id
WHEN MATCHED THEN UPDATE SET data = src.data
WHEN NOT MATCHED THEN INSERT (id, data) VALUES (src.id, src.data);

SELECT field FROM "yet-another-table";
`
	res := Extract(sql)

	assert.ElementsMatch(t, []string{
		"staging.raw_users",
		"db_prod.final_user_summary",
		"temp_user_data",
		"target_table",
		"source_changes",
		"yet-another-table",
	}, res.SourceTables)
	assert.ElementsMatch(t, []string{
		"temp_user_data",
		"reporting.active_users_view",
	}, res.DefinedTables)
}

func TestExtract_MalformedInputNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		";;;",
		"FROM",
		"SELECT * FROM",
		"CREATE",
		"CREATE VOLATILE",
		"'unterminated",
		"/* unterminated",
		")))((( , . ; FROM , JOIN",
		"\x00\xff\xfe FROM t",
	}
	for _, sql := range inputs {
		res := Extract(sql)
		require.NotNil(t, res, "input %q", sql)
	}
}

func TestExtract_InvalidUTF8IsReplaced(t *testing.T) {
	res := Extract("SELECT * FROM t\xff\xfe;")

	assert.Contains(t, res.SourceTables, "t")
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT * FROM db.orders;"), 0o644))

	res, err := ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"db.orders"}, res.SourceTables)
}

func TestExtractFile_Missing(t *testing.T) {
	res, err := ExtractFile(filepath.Join(t.TempDir(), "missing.sql"))

	require.Error(t, err)
	var fileErr *FileError
	require.ErrorAs(t, err, &fileErr)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// The result is still usable, just empty.
	require.NotNil(t, res)
	assert.Empty(t, res.SourceTables)
	assert.Empty(t, res.DefinedTables)
}

func TestExtractMany(t *testing.T) {
	dir := t.TempDir()
	good1 := filepath.Join(dir, "a.sql")
	good2 := filepath.Join(dir, "b.sql")
	missing := filepath.Join(dir, "missing.sql")
	require.NoError(t, os.WriteFile(good1, []byte("SELECT * FROM orders;"), 0o644))
	require.NoError(t, os.WriteFile(good2, []byte("CREATE TABLE t AS (SELECT 1 FROM src) WITH DATA;"), 0o644))

	batch := ExtractMany(context.Background(), []string{good1, good2, missing}, 2)

	require.Len(t, batch.Results, 3)
	assert.Equal(t, []string{"orders"}, batch.Results[good1].SourceTables)
	assert.Equal(t, []string{"t"}, batch.Results[good2].DefinedTables)
	assert.Equal(t, []string{"src"}, batch.Results[good2].SourceTables)

	// One bad file never aborts the batch.
	require.Len(t, batch.Errors, 1)
	var fileErr *FileError
	require.ErrorAs(t, batch.Errors[missing], &fileErr)
	assert.Equal(t, missing, fileErr.Path)
	assert.Empty(t, batch.Results[missing].SourceTables)
}

func TestExtractMany_DefaultWorkerLimit(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"x.sql", "y.sql"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("SELECT 1 FROM "+name[:1]+";"), 0o644))
		paths = append(paths, p)
	}

	batch := ExtractMany(context.Background(), paths, 0)

	require.Len(t, batch.Results, 2)
	assert.Empty(t, batch.Errors)
}

func TestExtractMany_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "a.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT 1 FROM t;"), 0o644))

	batch := ExtractMany(ctx, []string{path}, 1)

	require.Len(t, batch.Results, 1)
	assert.ErrorIs(t, batch.Errors[path], context.Canceled)
}
